// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoLastSearch is returned when a download refers to previous results but
// neither memory nor the persister holds any.
var ErrNoLastSearch = errors.New("no previous search results; run a search first")

// UnknownSourceError reports a source name that is not registered.
type UnknownSourceError struct {
	Name      string
	Available []string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// UnsupportedOperationError reports an adapter that declares the requested
// capability unsupported.
type UnsupportedOperationError struct {
	Source    string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("source %s does not support %s", e.Source, e.Operation)
}

// DownloadLinkNotFoundError reports that no resolution heuristic matched an
// asset's detail page.
type DownloadLinkNotFoundError struct {
	Title string
	Link  string
}

func (e *DownloadLinkNotFoundError) Error() string {
	return fmt.Sprintf("no download link found for %q (%s)", e.Title, e.Link)
}

// DownloadFailedError reports a failed transfer of a resolved descriptor.
type DownloadFailedError struct {
	Filename string
	Message  string
	Err      error
}

func (e *DownloadFailedError) Error() string {
	return fmt.Sprintf("downloading %s: %s", e.Filename, e.Message)
}

func (e *DownloadFailedError) Unwrap() error { return e.Err }

// InvalidIndexError reports a 1-based result index outside the last search.
type InvalidIndexError struct {
	Index int
	Count int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid index %d (valid: 1-%d)", e.Index, e.Count)
}
