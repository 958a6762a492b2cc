// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

func sampleAssets() []types.Asset {
	return []types.Asset{
		{Title: "Dungeon Tiles", Author: "A", Link: "https://a.itch.io/dungeon", FileType: "ZIP", Source: "itch"},
		{Title: "UI Pack", Author: "Kenney", Link: "https://kenney.nl/assets/ui-pack", Cover: "https://kenney.nl/c.png", Source: "kenney"},
	}
}

// --- FileStore ---

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(types.StoreConfig{Dir: dir})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fs.now = func() time.Time { return fixed }

	require.NoError(t, fs.PersistLastSearch("itch", "dungeon"))
	require.NoError(t, fs.PersistAssets(sampleAssets()))

	assert.FileExists(t, filepath.Join(dir, "search-results.json"))
	assert.FileExists(t, filepath.Join(dir, ".search-history.json"))

	last, ok, err := fs.LoadLastSearch()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.LastSearch{Source: "itch", Query: "dungeon", Timestamp: fixed}, last)

	assets, err := fs.LoadAssets()
	require.NoError(t, err)
	assert.Equal(t, sampleAssets(), assets)
}

func TestFileStoreResultsFileShape(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(types.StoreConfig{Dir: dir})
	require.NoError(t, fs.PersistAssets(sampleAssets()[:1]))

	data, err := os.ReadFile(fs.ResultsPath())
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "ZIP", raw[0]["fileType"])
	assert.NotContains(t, raw[0], "cover")
}

func TestFileStoreMissingFiles(t *testing.T) {
	fs := NewFileStore(types.StoreConfig{Dir: t.TempDir()})

	_, ok, err := fs.LoadLastSearch()
	require.NoError(t, err)
	assert.False(t, ok)

	assets, err := fs.LoadAssets()
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "search-results.json"), []byte("{not json"), 0o644))

	_, err := NewFileStore(types.StoreConfig{Dir: dir}).LoadAssets()
	assert.Error(t, err)
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	fs := NewFileStore(types.StoreConfig{Dir: dir, ResultsFile: "r.json", LastSearchFile: "l.json"})
	require.NoError(t, fs.PersistAssets(nil))

	assets, err := fs.LoadAssets()
	require.NoError(t, err)
	assert.Empty(t, assets)
	assert.FileExists(t, filepath.Join(dir, "r.json"))
}

// --- History ---

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryRecordAndGet(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	id, err := h.Record(ctx, types.NewSearchResult("itch", "dungeon", sampleAssets()))
	require.NoError(t, err)
	require.Len(t, id, 36)

	rec, assets, err := h.Get(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "itch", rec.Source)
	assert.Equal(t, "dungeon", rec.Query)
	assert.Equal(t, 2, rec.Total)
	assert.Equal(t, sampleAssets(), assets)
}

func TestHistoryRecentNewestFirst(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, q := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		h.now = func() time.Time { return at }
		_, err := h.Record(ctx, types.NewSearchResult("kenney", q, nil))
		require.NoError(t, err)
	}

	recs, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "third", recs[0].Query)
	assert.Equal(t, "second", recs[1].Query)
	assert.Equal(t, base.Add(2*time.Minute), recs[0].CreatedAt)
	assert.Zero(t, recs[0].Total)
}

func TestHistoryGetNotFound(t *testing.T) {
	h := openTestHistory(t)
	_, _, err := h.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHistoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(path)
	require.NoError(t, err)
	_, err = h.Record(context.Background(), types.NewSearchResult("all", "trees", sampleAssets()))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	h, err = OpenHistory(path)
	require.NoError(t, err)
	defer h.Close()
	recs, err := h.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "all", recs[0].Source)
}

// --- Export ---

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestWriteExport(t *testing.T) {
	result := types.NewSearchResult("itch", "dungeon", sampleAssets())
	now := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteExport(&buf, result, FormatJSON, now))
		var doc Export
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, "itch", doc.Source)
		assert.Equal(t, 2, doc.TotalFound)
		assert.Equal(t, now, doc.ExportedAt)
		assert.Equal(t, sampleAssets(), doc.Assets)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteExport(&buf, result, FormatYAML, now))
		assert.Contains(t, buf.String(), "total_found: 2")
		assert.Contains(t, buf.String(), "file_type: ZIP")
		var doc Export
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, "dungeon", doc.Query)
		assert.Len(t, doc.Assets, 2)
	})

	t.Run("empty result", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteExport(&buf, types.SearchResult{}, FormatJSON, now))
		assert.Contains(t, buf.String(), `"assets": []`)
	})
}
