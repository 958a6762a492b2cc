// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists search state: the last search as JSON files in the
// working directory, a SQLite log of past searches, and YAML/JSON exports.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/duke-git/lancet/v2/fileutil"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// FileStore keeps the last search in two JSON files: the asset list and the
// source/query pairing.
type FileStore struct {
	resultsPath    string
	lastSearchPath string
	now            func() time.Time
}

// NewFileStore returns a FileStore rooted at cfg.Dir. Empty fields fall back
// to types.DefaultConfig.
func NewFileStore(cfg types.StoreConfig) *FileStore {
	def := types.DefaultConfig().Store
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.ResultsFile == "" {
		cfg.ResultsFile = def.ResultsFile
	}
	if cfg.LastSearchFile == "" {
		cfg.LastSearchFile = def.LastSearchFile
	}
	return &FileStore{
		resultsPath:    filepath.Join(cfg.Dir, cfg.ResultsFile),
		lastSearchPath: filepath.Join(cfg.Dir, cfg.LastSearchFile),
		now:            time.Now,
	}
}

// ResultsPath returns the path of the asset list file.
func (s *FileStore) ResultsPath() string { return s.resultsPath }

// PersistLastSearch records the source and query of the last search.
func (s *FileStore) PersistLastSearch(source, query string) error {
	return writeJSON(s.lastSearchPath, types.LastSearch{
		Source:    source,
		Query:     query,
		Timestamp: s.now().UTC(),
	})
}

// PersistAssets records the asset list of the last search.
func (s *FileStore) PersistAssets(assets []types.Asset) error {
	if assets == nil {
		assets = []types.Asset{}
	}
	return writeJSON(s.resultsPath, assets)
}

// LoadLastSearch returns the recorded pairing. The boolean is false when
// nothing has been recorded yet.
func (s *FileStore) LoadLastSearch() (types.LastSearch, bool, error) {
	var last types.LastSearch
	ok, err := readJSON(s.lastSearchPath, &last)
	return last, ok, err
}

// LoadAssets returns the recorded asset list, or nil when none exists.
func (s *FileStore) LoadAssets() ([]types.Asset, error) {
	var assets []types.Asset
	if _, err := readJSON(s.resultsPath, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if dir := filepath.Dir(path); !fileutil.IsExist(dir) {
		if err := fileutil.CreateDir(dir); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}
