// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records shared by the acquisition pipeline, the
// source adapters, the persistence layer, and the CLI.
package types

import (
	"path"
	"strings"
)

// UntitledSentinel is the title adapters fall back to when listing markup has
// no usable title. Assets carrying it never leave an adapter.
const UntitledSentinel = "Untitled"

// Asset describes one discoverable item on a catalog site.
type Asset struct {
	// Title is the display name of the asset.
	Title string `json:"title" yaml:"title"`

	// Author is the display name of the creator. Each adapter has its own
	// fallback ("Unknown", "Kenney", ...) when extraction fails.
	Author string `json:"author" yaml:"author"`

	// Link is the absolute URL of the asset's detail page.
	Link string `json:"link" yaml:"link"`

	// Cover is an optional absolute https URL of a preview image.
	Cover string `json:"cover,omitempty" yaml:"cover,omitempty"`

	// FileType is the uppercase extension tag of the resolved download
	// (e.g. "ZIP"). Empty until detail-page resolution succeeds.
	FileType string `json:"fileType,omitempty" yaml:"file_type,omitempty"`

	// Source is the name of the adapter that produced the record.
	Source string `json:"source" yaml:"source"`
}

// Valid reports whether the asset may appear in a result set.
func (a Asset) Valid() bool {
	return a.Link != "" && a.Title != "" && a.Title != UntitledSentinel
}

// DownloadDescriptor identifies the concrete downloadable resource for an asset.
type DownloadDescriptor struct {
	URL      string `json:"url" yaml:"url"`
	Filename string `json:"filename" yaml:"filename"`
}

// FileType returns the uppercase extension of the descriptor's filename, or
// "" when the filename has no extension.
func (d DownloadDescriptor) FileType() string {
	ext := path.Ext(d.Filename)
	if len(ext) <= 1 {
		return ""
	}
	return strings.ToUpper(ext[1:])
}

// FileInfo is the result of resolving an asset's detail page.
type FileInfo struct {
	FileType string
	Download *DownloadDescriptor
}

// DownloadOutcome reports a transport-level download attempt. A failed
// transfer is reported here rather than as an error so batches can continue.
type DownloadOutcome struct {
	Success  bool    `json:"success"`
	Path     string  `json:"path,omitempty"`
	Filename string  `json:"filename"`
	Bytes    int64   `json:"bytes,omitempty"`
	SizeMB   float64 `json:"sizeMb,omitempty"`
	Error    string  `json:"error,omitempty"`
}
