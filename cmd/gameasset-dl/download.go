// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gameasset-dl/internal/pipeline"
)

var downloadCmd = &cobra.Command{
	Use:   "download [numbers...]",
	Short: "Download assets from the last search",
	Long: `Download saves assets from the last search, chosen by their numbers in
the search output (e.g. "download 1 3" or "download 2,4"). Use --all for the
whole result list or --link to download an asset page URL directly.

A failed item is reported and the remaining items are still attempted.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Bool("all", false, "download every asset of the last search")
	downloadCmd.Flags().String("link", "", "download an asset detail page URL directly")
	downloadCmd.Flags().StringP("output", "o", "", "output directory (default from config)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")
	link, _ := cmd.Flags().GetString("link")
	outputDir := outputDirFromFlags(cmd)

	if link == "" && !all && len(args) == 0 {
		return fmt.Errorf("provide result numbers, --all, or --link")
	}

	var indices []int
	if len(args) > 0 {
		var err error
		if indices, err = parseIndices(args); err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	if link != "" {
		out, err := a.pipeline.DownloadLink(ctx, link, outputDir)
		if err != nil {
			return err
		}
		renderItem(w, pipeline.ItemResult{Index: 1, Outcome: out})
		return nil
	}

	onItem := func(item pipeline.ItemResult) { renderItem(w, item) }
	var report pipeline.BatchReport
	if all {
		report, err = a.pipeline.DownloadAll(ctx, outputDir, onItem)
	} else {
		report, err = a.pipeline.DownloadIndices(ctx, indices, outputDir, onItem)
	}
	if err != nil {
		return err
	}

	renderReport(w, report)
	if report.HasFailures() {
		return fmt.Errorf("%d asset(s) failed to download", report.Failed)
	}
	return nil
}

// parseIndices reads 1-based result numbers given as separate arguments or
// comma-separated lists.
func parseIndices(args []string) ([]int, error) {
	var indices []int
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid result number %q", field)
			}
			indices = append(indices, n)
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no result numbers given")
	}
	return indices, nil
}
