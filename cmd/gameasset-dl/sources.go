// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/gameasset-dl/internal/fetch"
	"github.com/pdiddy/gameasset-dl/internal/pipeline"
	"github.com/pdiddy/gameasset-dl/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available asset sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := pipeline.NewRegistry(sources.Defaults(fetch.New(cfg.HTTP))...)

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Source", "Name", "2D", "3D", "Search", "Download"})
		for _, name := range reg.Names() {
			info, _ := reg.Describe(name)
			t.AppendRow(table.Row{
				info.DisplayName, info.Name,
				yesNo(info.Supports2D), yesNo(info.Supports3D),
				yesNo(info.Searchable), yesNo(info.Downloadable),
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
