// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gameasset-dl/internal/pipeline"
	"github.com/pdiddy/gameasset-dl/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the last search as YAML or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := store.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.NewRegistry(), pipeline.Options{Persister: store.NewFileStore(cfg.Store)})
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.LastResult(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return store.WriteExport(w, result, format, time.Now())
}
