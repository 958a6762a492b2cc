// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

const (
	// DefaultSearchLimit applies when a caller leaves Limit unset.
	DefaultSearchLimit = 20

	// MaxSearchLimit is the ceiling for results per source.
	MaxSearchLimit = 100

	// SourceAll labels a merged multi-source result.
	SourceAll = "all"
)

// SearchOptions holds the parameters of one search.
type SearchOptions struct {
	// Query is the free-text search term.
	Query string `json:"query" yaml:"query"`

	Is2D bool `json:"is2D,omitempty" yaml:"is_2d,omitempty"`
	Is3D bool `json:"is3D,omitempty" yaml:"is_3d,omitempty"`

	// Tag is an optional site tag (e.g. "sprites").
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	// FileType keeps only assets whose enriched file type matches,
	// case-insensitively (e.g. "zip", "PNG").
	FileType string `json:"fileType,omitempty" yaml:"file_type,omitempty"`

	// Limit is the maximum number of results per source.
	Limit int `json:"limit" yaml:"limit"`

	// Source names the adapter to search.
	Source string `json:"source" yaml:"source"`
}

// EffectiveLimit returns Limit defaulted and clamped to MaxSearchLimit.
func (o SearchOptions) EffectiveLimit() int {
	switch {
	case o.Limit <= 0:
		return DefaultSearchLimit
	case o.Limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return o.Limit
	}
}

// MatchesFileType reports whether fileType satisfies the FileType filter.
// An empty filter matches everything.
func (o SearchOptions) MatchesFileType(fileType string) bool {
	want := strings.TrimPrefix(strings.TrimSpace(o.FileType), ".")
	if want == "" {
		return true
	}
	return strings.EqualFold(want, fileType)
}

// SearchResult is the snapshot produced by one search invocation.
type SearchResult struct {
	Assets     []Asset `json:"assets" yaml:"assets"`
	TotalFound int     `json:"totalFound" yaml:"total_found"`
	Source     string  `json:"source" yaml:"source"`
	Query      string  `json:"query" yaml:"query"`
}

// NewSearchResult wraps assets into a result for source and query.
func NewSearchResult(source, query string, assets []Asset) SearchResult {
	if assets == nil {
		assets = []Asset{}
	}
	return SearchResult{
		Assets:     assets,
		TotalFound: len(assets),
		Source:     source,
		Query:      query,
	}
}

// LastSearch is the persisted pairing of the most recent search.
type LastSearch struct {
	Source    string    `json:"source" yaml:"source"`
	Query     string    `json:"query" yaml:"query"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
