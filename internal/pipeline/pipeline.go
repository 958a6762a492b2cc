// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs searches and downloads across registered source
// adapters. A single-source search builds the listing URL, fetches and
// parses the listing, enriches every stub with its detail page's file type,
// filters, and becomes the new last-search result. Downloads resolve an
// asset's descriptor through its adapter and stream it to disk.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/gameasset-dl/internal/sources"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// Persister durably records the last search so it survives a restart.
type Persister interface {
	PersistLastSearch(source, query string) error
	PersistAssets(assets []types.Asset) error
	LoadLastSearch() (types.LastSearch, bool, error)
	LoadAssets() ([]types.Asset, error)
}

// HistoryRecorder appends remembered searches to a log and returns the
// record ID.
type HistoryRecorder interface {
	Record(ctx context.Context, result types.SearchResult) (string, error)
}

// Options configures a Pipeline. Nil collaborators are skipped.
type Options struct {
	Persister         Persister
	History           HistoryRecorder
	EnrichConcurrency int
	DescriptorTTL     time.Duration
}

// Pipeline orchestrates searches and downloads over a Registry and owns the
// last-search result.
type Pipeline struct {
	registry    *Registry
	persister   Persister
	history     HistoryRecorder
	descriptors *descriptorCache
	concurrency int

	mu   sync.RWMutex
	last *types.SearchResult
}

// New returns a Pipeline over reg.
func New(reg *Registry, opts Options) (*Pipeline, error) {
	descriptors, err := newDescriptorCache(opts.DescriptorTTL)
	if err != nil {
		return nil, fmt.Errorf("creating descriptor cache: %w", err)
	}
	concurrency := opts.EnrichConcurrency
	if concurrency <= 0 {
		concurrency = types.DefaultConfig().Search.EnrichConcurrency
	}
	return &Pipeline{
		registry:    reg,
		persister:   opts.Persister,
		history:     opts.History,
		descriptors: descriptors,
		concurrency: concurrency,
	}, nil
}

// Registry returns the pipeline's adapter registry.
func (p *Pipeline) Registry() *Registry { return p.registry }

// Close releases the descriptor cache.
func (p *Pipeline) Close() { p.descriptors.close() }

// Search runs a single-source search for opts.Source and makes the result
// the new last search. Unknown and unsearchable sources fail before any
// network call; a failed listing fetch fails the whole search.
func (p *Pipeline) Search(ctx context.Context, opts types.SearchOptions) (types.SearchResult, error) {
	assets, err := p.searchSource(ctx, opts.Source, opts)
	if err != nil {
		return types.SearchResult{}, err
	}
	result := types.NewSearchResult(opts.Source, opts.Query, assets)
	p.Remember(ctx, result)
	return result, nil
}

// SourceError records one adapter's failure during SearchAll.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string { return fmt.Sprintf("%s: %v", e.Source, e.Err) }

// SearchAllOutput is the merged result of a multi-source search.
type SearchAllOutput struct {
	// Assets holds each source's results in registration order.
	Assets []types.Asset

	// Errors holds the sources that failed, in registration order.
	Errors []SourceError
}

// SearchAll runs opts against every registered adapter concurrently.
// opts.Source is ignored. One source failing does not affect the others.
// The last-search state is left untouched; see Remember.
func (p *Pipeline) SearchAll(ctx context.Context, opts types.SearchOptions) SearchAllOutput {
	logger := log.FromContext(ctx).WithPrefix("pipeline")
	adapters := p.registry.Adapters()

	type sourceResult struct {
		assets []types.Asset
		err    error
	}
	results := make([]sourceResult, len(adapters))

	var wg sync.WaitGroup
	for i, a := range adapters {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			assets, err := p.searchSource(ctx, name, opts)
			results[i] = sourceResult{assets: assets, err: err}
		}(i, a.Info().Name)
	}
	wg.Wait()

	out := SearchAllOutput{Assets: []types.Asset{}}
	for i, r := range results {
		name := adapters[i].Info().Name
		if r.err != nil {
			logger.Warn("source failed", "source", name, "err", r.err)
			out.Errors = append(out.Errors, SourceError{Source: name, Err: r.err})
			continue
		}
		out.Assets = append(out.Assets, r.assets...)
	}
	return out
}

// searchSource runs the listing, enrichment and filter steps for one
// adapter.
func (p *Pipeline) searchSource(ctx context.Context, name string, opts types.SearchOptions) ([]types.Asset, error) {
	a, err := p.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if !a.Info().Searchable {
		return nil, &UnsupportedOperationError{Source: name, Operation: "search"}
	}

	listingURL := a.BuildListingURL(opts)
	log.FromContext(ctx).WithPrefix("pipeline").Debug("fetching listing", "source", name, "url", listingURL)

	html, err := a.FetchPage(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", name, err)
	}

	assets := a.ParseListing(html, opts.EffectiveLimit())
	p.enrich(ctx, a, assets)
	return filterByFileType(assets, opts), nil
}

// enrich resolves each asset's detail page in place. A failure leaves that
// asset's FileType empty and never affects its siblings.
func (p *Pipeline) enrich(ctx context.Context, a sources.Adapter, assets []types.Asset) {
	logger := log.FromContext(ctx).WithPrefix("pipeline")

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i := range assets {
		g.Go(func() error {
			info, err := sources.FetchFileInfo(ctx, a, assets[i].Link)
			if err != nil {
				logger.Debug("enrichment failed", "link", assets[i].Link, "err", err)
				return nil
			}
			if info.Download == nil {
				logger.Debug("no download link", "link", assets[i].Link)
				return nil
			}
			assets[i].FileType = info.FileType
			p.descriptors.put(assets[i].Link, *info.Download)
			return nil
		})
	}
	_ = g.Wait()
}

// filterByFileType keeps assets matching opts.FileType, preserving order.
func filterByFileType(assets []types.Asset, opts types.SearchOptions) []types.Asset {
	if opts.FileType == "" {
		return assets
	}
	kept := make([]types.Asset, 0, len(assets))
	for _, a := range assets {
		if a.FileType != "" && opts.MatchesFileType(a.FileType) {
			kept = append(kept, a)
		}
	}
	return kept
}

// Remember makes result the last search, persists it, and records it in the
// history log. Persistence failures are logged and otherwise ignored.
func (p *Pipeline) Remember(ctx context.Context, result types.SearchResult) {
	logger := log.FromContext(ctx).WithPrefix("pipeline")

	stored := result
	stored.Assets = slices.Clone(result.Assets)
	p.mu.Lock()
	p.last = &stored
	p.mu.Unlock()

	if p.persister != nil {
		if err := p.persister.PersistLastSearch(result.Source, result.Query); err != nil {
			logger.Warn("persisting last search", "err", err)
		}
		if err := p.persister.PersistAssets(result.Assets); err != nil {
			logger.Warn("persisting assets", "err", err)
		}
	}
	if p.history != nil {
		id, err := p.history.Record(ctx, result)
		if err != nil {
			logger.Warn("recording history", "err", err)
		} else {
			logger.Debug("recorded search", "id", id)
		}
	}
}

// LastResult returns the last search. With nothing in memory it reloads the
// persisted state and keeps it for later calls.
func (p *Pipeline) LastResult(ctx context.Context) (types.SearchResult, error) {
	p.mu.RLock()
	last := p.last
	p.mu.RUnlock()
	if last != nil {
		return *last, nil
	}
	if p.persister == nil {
		return types.SearchResult{}, ErrNoLastSearch
	}

	assets, err := p.persister.LoadAssets()
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("loading saved results: %w", err)
	}
	if len(assets) == 0 {
		return types.SearchResult{}, ErrNoLastSearch
	}
	meta, _, err := p.persister.LoadLastSearch()
	if err != nil {
		log.FromContext(ctx).WithPrefix("pipeline").Warn("loading last search", "err", err)
	}

	result := types.NewSearchResult(meta.Source, meta.Query, assets)
	p.mu.Lock()
	if p.last == nil {
		p.last = &result
	}
	p.mu.Unlock()
	return result, nil
}
