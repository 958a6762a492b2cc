// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/gameasset-dl/internal/fetch"
	"github.com/pdiddy/gameasset-dl/internal/pipeline"
	"github.com/pdiddy/gameasset-dl/internal/sources"
	"github.com/pdiddy/gameasset-dl/internal/store"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// app wires the pipeline to its transport and persistence for one command.
type app struct {
	pipeline *pipeline.Pipeline
	files    *store.FileStore
	history  *store.History
}

func newApp(ctx context.Context, c types.Config) (*app, error) {
	files := store.NewFileStore(c.Store)
	opts := pipeline.Options{
		Persister:         files,
		EnrichConcurrency: c.Search.EnrichConcurrency,
		DescriptorTTL:     c.Download.DescriptorTTL,
	}

	a := &app{files: files}
	if c.Store.RecordHistory {
		h, err := store.OpenHistory(historyPath(c.Store))
		if err != nil {
			log.FromContext(ctx).Warn("search history disabled", "err", err)
		} else {
			a.history = h
			opts.History = h
		}
	}

	reg := pipeline.NewRegistry(sources.Defaults(fetch.New(c.HTTP))...)
	p, err := pipeline.New(reg, opts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}
	a.pipeline = p
	return a, nil
}

// Close releases the pipeline and the history database.
func (a *app) Close() {
	if a.pipeline != nil {
		a.pipeline.Close()
	}
	if a.history != nil {
		a.history.Close()
	}
}

// historyPath resolves the history database relative to the store directory.
func historyPath(sc types.StoreConfig) string {
	if filepath.IsAbs(sc.HistoryDB) {
		return sc.HistoryDB
	}
	return filepath.Join(sc.Dir, sc.HistoryDB)
}
