// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/gameasset-dl/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past searches",
	Long: `History lists searches recorded in the local SQLite log and shows the
assets any one of them returned.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		h, err := openHistory()
		if err != nil {
			return err
		}
		defer h.Close()

		records, err := h.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No searches recorded.")
			return nil
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "When", "Source", "Query", "Results"})
		for _, r := range records {
			t.AppendRow(table.Row{r.ID[:8], humanize.Time(r.CreatedAt), r.Source, truncate(r.Query, 40), r.Total})
		}
		t.Render()
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the assets of a recorded search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHistory()
		if err != nil {
			return err
		}
		defer h.Close()

		rec, assets, err := h.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%q on %s, %s", rec.Query, rec.Source, humanize.Time(rec.CreatedAt))))
		renderAssets(w, assets)
		return nil
	},
}

// errHistoryDisabled is returned by the history commands when
// store.record_history is off.
var errHistoryDisabled = errors.New("search history is disabled (store.record_history is false)")

// openHistory opens the history database, refusing to create one when
// recording is turned off.
func openHistory() (*store.History, error) {
	if !cfg.Store.RecordHistory {
		return nil, errHistoryDisabled
	}
	return store.OpenHistory(historyPath(cfg.Store))
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "number of searches to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
