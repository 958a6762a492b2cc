// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pdiddy/gameasset-dl/internal/pipeline"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// renderAssets prints assets as a numbered table. Numbers are the 1-based
// indices the download command accepts.
func renderAssets(w io.Writer, assets []types.Asset) {
	if len(assets) == 0 {
		fmt.Fprintln(w, "No assets found.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Title", "Author", "Type", "Source", "Link"})
	for i, a := range assets {
		fileType := a.FileType
		if fileType == "" {
			fileType = "-"
		}
		t.AppendRow(table.Row{i + 1, truncate(a.Title, 40), truncate(a.Author, 20), fileType, a.Source, a.Link})
	}
	t.Render()
}

func renderSearchHeader(w io.Writer, result types.SearchResult) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Found %d asset(s) for %q on %s", result.TotalFound, result.Query, result.Source)))
}

// renderItem prints one batch item as it finishes.
func renderItem(w io.Writer, item pipeline.ItemResult) {
	if item.OK() {
		fmt.Fprintf(w, "%s [%d] %s %s\n",
			okStyle.Render("✓"), item.Index, item.Outcome.Filename,
			dimStyle.Render("("+formatSize(item.Outcome.Bytes)+")"))
		return
	}
	label := item.Asset.Title
	if label == "" {
		label = "-"
	}
	fmt.Fprintf(w, "%s [%d] %s: %v\n", failStyle.Render("✗"), item.Index, label, item.Err)
}

func renderReport(w io.Writer, report pipeline.BatchReport) {
	summary := fmt.Sprintf("Downloaded %d, failed %d, total %d", report.Succeeded, report.Failed, report.Total())
	if report.HasFailures() {
		fmt.Fprintln(w, warnStyle.Render(summary))
		return
	}
	fmt.Fprintln(w, okStyle.Render(summary))
}

func formatSize(n int64) string {
	if n <= 0 {
		return "unknown size"
	}
	return humanize.Bytes(uint64(n))
}

func yesNo(b bool) string {
	if b {
		return okStyle.Render("yes")
	}
	return dimStyle.Render("no")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
