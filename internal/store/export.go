// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// Format is an export encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml, or json in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q (use yaml or json)", s)
}

// Export is the document written for a search result.
type Export struct {
	Source     string        `json:"source" yaml:"source"`
	Query      string        `json:"query" yaml:"query"`
	TotalFound int           `json:"totalFound" yaml:"total_found"`
	ExportedAt time.Time     `json:"exportedAt" yaml:"exported_at"`
	Assets     []types.Asset `json:"assets" yaml:"assets"`
}

// WriteExport encodes result to w in format.
func WriteExport(w io.Writer, result types.SearchResult, format Format, now time.Time) error {
	doc := Export{
		Source:     result.Source,
		Query:      result.Query,
		TotalFound: result.TotalFound,
		ExportedAt: now.UTC(),
		Assets:     result.Assets,
	}
	if doc.Assets == nil {
		doc.Assets = []types.Asset{}
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported export format %q", format)
}
