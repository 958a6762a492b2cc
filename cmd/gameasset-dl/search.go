// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/gameasset-dl/internal/pipeline"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search catalogs for free game assets",
	Long: `Search looks up free game assets matching a query. With --source it
searches one catalog; without it every registered catalog is searched
concurrently and the results are merged in registration order.

Each result's detail page is checked for a download link to learn its file
type. The result list becomes the last search, which the download command
refers to by number.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringP("source", "s", "", "source to search (default: all sources)")
	searchCmd.Flags().Bool("2d", false, "only 2D assets")
	searchCmd.Flags().Bool("3d", false, "only 3D assets")
	searchCmd.Flags().String("tag", "", "filter by site tag")
	searchCmd.Flags().StringP("type", "t", "", "keep only this file type (e.g. zip, png)")
	searchCmd.Flags().IntP("limit", "l", 0, "maximum results per source (default from config, max 100)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("download", false, "download every result after searching")
	searchCmd.Flags().StringP("output", "o", "", "output directory for --download")

	rootCmd.AddCommand(searchCmd)
}

func searchOptionsFromFlags(cmd *cobra.Command, args []string) types.SearchOptions {
	source, _ := cmd.Flags().GetString("source")
	is2D, _ := cmd.Flags().GetBool("2d")
	is3D, _ := cmd.Flags().GetBool("3d")
	tag, _ := cmd.Flags().GetString("tag")
	fileType, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Search.Limit
	}

	return types.SearchOptions{
		Query:    strings.TrimSpace(strings.Join(args, " ")),
		Is2D:     is2D,
		Is3D:     is3D,
		Tag:      tag,
		FileType: fileType,
		Limit:    limit,
		Source:   strings.ToLower(strings.TrimSpace(source)),
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := searchOptionsFromFlags(cmd, args)
	if opts.Query == "" {
		return fmt.Errorf("provide a search query")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var result types.SearchResult
	if opts.Source == "" || opts.Source == types.SourceAll {
		out := a.pipeline.SearchAll(ctx, opts)
		for _, e := range out.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("warning: "+e.Error()))
		}
		if len(out.Errors) == len(a.pipeline.Registry().Names()) {
			return fmt.Errorf("all sources failed")
		}
		result = types.NewSearchResult(types.SourceAll, opts.Query, out.Assets)
		a.pipeline.Remember(ctx, result)
	} else {
		result, err = a.pipeline.Search(ctx, opts)
		if err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		renderSearchHeader(w, result)
		renderAssets(w, result.Assets)
		if len(result.Assets) > 0 {
			fmt.Fprintln(w, dimStyle.Render("Download with: gameasset-dl download <number...> or --all"))
		}
	}

	download, _ := cmd.Flags().GetBool("download")
	if !download || len(result.Assets) == 0 {
		return nil
	}

	outputDir := outputDirFromFlags(cmd)
	log.FromContext(ctx).Info("downloading results", "count", len(result.Assets), "dir", outputDir)
	report := a.pipeline.DownloadBatch(ctx, result.Assets, outputDir, func(item pipeline.ItemResult) {
		renderItem(cmd.ErrOrStderr(), item)
	})
	renderReport(cmd.ErrOrStderr(), report)
	if report.HasFailures() {
		return fmt.Errorf("%d asset(s) failed to download", report.Failed)
	}
	return nil
}

// outputDirFromFlags returns --output when given, else the configured
// download directory.
func outputDirFromFlags(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		return dir
	}
	return cfg.Download.OutputDir
}
