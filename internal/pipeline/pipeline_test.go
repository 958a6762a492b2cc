// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gameasset-dl/internal/fetch"
	"github.com/pdiddy/gameasset-dl/internal/sources"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// --- fake adapter ---

var zipBytes = []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00fake zip body")

type fakeAdapter struct {
	info        sources.Info
	listing     []types.Asset
	listingErr  error
	descriptors map[string]types.DownloadDescriptor // detail link -> descriptor
	failDetail  map[string]bool
	failURL     map[string]bool // download URLs that fail

	mu          sync.Mutex
	fetches     []string
	downloadURL []string
}

func newFake(name string, assets ...types.Asset) *fakeAdapter {
	for i := range assets {
		assets[i].Source = name
	}
	return &fakeAdapter{
		info: sources.Info{
			Name:        name,
			DisplayName: strings.ToUpper(name),
			Origin:      "https://" + name + ".test",
			Capabilities: sources.Capabilities{
				Supports2D: true, Supports3D: true, Searchable: true, Downloadable: true,
			},
		},
		listing:     assets,
		descriptors: map[string]types.DownloadDescriptor{},
		failDetail:  map[string]bool{},
		failURL:     map[string]bool{},
	}
}

func asset(title, link string) types.Asset {
	return types.Asset{Title: title, Author: "someone", Link: link}
}

func (f *fakeAdapter) Info() sources.Info { return f.info }

func (f *fakeAdapter) BuildListingURL(opts types.SearchOptions) string {
	return f.info.Origin + "/search?q=" + opts.Query
}

func (f *fakeAdapter) ParseListing(_ string, limit int) []types.Asset {
	out := append([]types.Asset(nil), f.listing...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeAdapter) ResolveDownload(_ string, detailURL string) (types.DownloadDescriptor, bool) {
	d, ok := f.descriptors[detailURL]
	return d, ok
}

func (f *fakeAdapter) FetchPage(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, url)
	f.mu.Unlock()
	if strings.Contains(url, "/search?") {
		if f.listingErr != nil {
			return "", f.listingErr
		}
		return "<html></html>", nil
	}
	if f.failDetail[url] {
		return "", &fetch.TransportError{URL: url, StatusCode: 503}
	}
	return "<html></html>", nil
}

func (f *fakeAdapter) PerformDownload(_ context.Context, url, destPath string) types.DownloadOutcome {
	f.mu.Lock()
	f.downloadURL = append(f.downloadURL, url)
	f.mu.Unlock()
	if f.failURL[url] {
		return types.DownloadOutcome{Filename: filepath.Base(destPath), Error: "connection reset"}
	}
	if err := os.WriteFile(destPath, zipBytes, 0o644); err != nil {
		return types.DownloadOutcome{Error: err.Error()}
	}
	return types.DownloadOutcome{Success: true, Path: destPath, Filename: filepath.Base(destPath), Bytes: int64(len(zipBytes))}
}

func (f *fakeAdapter) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

// --- fake persistence ---

type fakePersister struct {
	last   *types.LastSearch
	assets []types.Asset
	err    error
}

func (p *fakePersister) PersistLastSearch(source, query string) error {
	if p.err != nil {
		return p.err
	}
	p.last = &types.LastSearch{Source: source, Query: query, Timestamp: time.Now()}
	return nil
}

func (p *fakePersister) PersistAssets(assets []types.Asset) error {
	if p.err != nil {
		return p.err
	}
	p.assets = assets
	return nil
}

func (p *fakePersister) LoadLastSearch() (types.LastSearch, bool, error) {
	if p.last == nil {
		return types.LastSearch{}, false, nil
	}
	return *p.last, true, nil
}

func (p *fakePersister) LoadAssets() ([]types.Asset, error) { return p.assets, nil }

type fakeHistory struct{ recorded []types.SearchResult }

func (h *fakeHistory) Record(_ context.Context, r types.SearchResult) (string, error) {
	h.recorded = append(h.recorded, r)
	return "id-1", nil
}

func newPipeline(t *testing.T, opts Options, adapters ...sources.Adapter) *Pipeline {
	t.Helper()
	p, err := New(NewRegistry(adapters...), opts)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

// --- Search ---

func TestSearchUnknownSourceMakesNoNetworkCall(t *testing.T) {
	f := newFake("fake", asset("A", "https://fake.test/a"))
	p := newPipeline(t, Options{}, f)

	_, err := p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "nope"})

	var use *UnknownSourceError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, "nope", use.Name)
	assert.Equal(t, []string{"fake"}, use.Available)
	assert.Zero(t, f.fetchCount())
}

func TestSearchUnsearchableSource(t *testing.T) {
	f := newFake("static")
	f.info.Searchable = false
	p := newPipeline(t, Options{}, f)

	_, err := p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "static"})

	var uoe *UnsupportedOperationError
	require.True(t, errors.As(err, &uoe))
	assert.Equal(t, "search", uoe.Operation)
	assert.Zero(t, f.fetchCount())
}

func TestSearchListingFailureIsFatal(t *testing.T) {
	f := newFake("fake", asset("A", "https://fake.test/a"))
	f.listingErr = &fetch.TransportError{URL: "https://fake.test/search", StatusCode: 500}
	p := newPipeline(t, Options{}, f)

	res, err := p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "fake"})

	var te *fetch.TransportError
	require.True(t, errors.As(err, &te))
	assert.Empty(t, res.Assets)
	_, err = p.LastResult(context.Background())
	assert.ErrorIs(t, err, ErrNoLastSearch)
}

func TestSearchEnrichmentFailureIsAbsorbed(t *testing.T) {
	f := newFake("fake",
		asset("A", "https://fake.test/a"),
		asset("B", "https://fake.test/b"),
		asset("C", "https://fake.test/c"),
	)
	f.descriptors["https://fake.test/a"] = types.DownloadDescriptor{URL: "https://cdn/a.zip", Filename: "a.zip"}
	f.descriptors["https://fake.test/b"] = types.DownloadDescriptor{URL: "https://cdn/b.png", Filename: "b.png"}
	f.failDetail["https://fake.test/b"] = true
	p := newPipeline(t, Options{EnrichConcurrency: 3}, f)

	res, err := p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "fake"})
	require.NoError(t, err)

	require.Len(t, res.Assets, 3)
	assert.Equal(t, []string{"A", "B", "C"}, titles(res.Assets))
	assert.Equal(t, "ZIP", res.Assets[0].FileType)
	assert.Empty(t, res.Assets[1].FileType)
	assert.Empty(t, res.Assets[2].FileType)
	assert.Equal(t, 3, res.TotalFound)
	assert.Equal(t, "fake", res.Source)
	assert.Equal(t, "x", res.Query)
}

func TestSearchFileTypeFilterIsStable(t *testing.T) {
	f := newFake("fake",
		asset("A", "https://fake.test/a"),
		asset("B", "https://fake.test/b"),
		asset("C", "https://fake.test/c"),
		asset("D", "https://fake.test/d"),
	)
	f.descriptors["https://fake.test/a"] = types.DownloadDescriptor{URL: "u", Filename: "a.zip"}
	f.descriptors["https://fake.test/b"] = types.DownloadDescriptor{URL: "u", Filename: "b.png"}
	f.descriptors["https://fake.test/c"] = types.DownloadDescriptor{URL: "u", Filename: "c.ZIP"}
	p := newPipeline(t, Options{}, f)

	res, err := p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "fake", FileType: "zip"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, titles(res.Assets))
}

func TestSearchLimitIsPassedToParser(t *testing.T) {
	var assets []types.Asset
	for i := 0; i < 30; i++ {
		assets = append(assets, asset(string(rune('A'+i%26)), "https://fake.test/"+string(rune('a'+i%26))))
	}
	f := newFake("fake", assets...)
	p := newPipeline(t, Options{}, f)

	res, err := p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "fake"})
	require.NoError(t, err)
	assert.Len(t, res.Assets, types.DefaultSearchLimit)

	res, err = p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "fake", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, res.Assets, 5)
}

func TestSearchRemembersPersistsAndRecords(t *testing.T) {
	f := newFake("fake", asset("A", "https://fake.test/a"))
	per := &fakePersister{}
	hist := &fakeHistory{}
	p := newPipeline(t, Options{Persister: per, History: hist}, f)

	res, err := p.Search(context.Background(), types.SearchOptions{Query: "tiles", Source: "fake"})
	require.NoError(t, err)

	last, err := p.LastResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res, last)

	require.NotNil(t, per.last)
	assert.Equal(t, "fake", per.last.Source)
	assert.Equal(t, "tiles", per.last.Query)
	assert.Equal(t, res.Assets, per.assets)
	require.Len(t, hist.recorded, 1)
	assert.Equal(t, res, hist.recorded[0])
}

func TestSearchPersistenceFailureIsIgnored(t *testing.T) {
	f := newFake("fake", asset("A", "https://fake.test/a"))
	p := newPipeline(t, Options{Persister: &fakePersister{err: errors.New("disk full")}}, f)

	res, err := p.Search(context.Background(), types.SearchOptions{Query: "x", Source: "fake"})
	require.NoError(t, err)
	assert.Len(t, res.Assets, 1)
}

func TestSearchReplacesLastResult(t *testing.T) {
	f := newFake("fake", asset("A", "https://fake.test/a"))
	p := newPipeline(t, Options{}, f)

	_, err := p.Search(context.Background(), types.SearchOptions{Query: "first", Source: "fake"})
	require.NoError(t, err)
	_, err = p.Search(context.Background(), types.SearchOptions{Query: "second", Source: "fake"})
	require.NoError(t, err)

	last, err := p.LastResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", last.Query)
}

// --- SearchAll ---

func TestSearchAllMergesInRegistrationOrder(t *testing.T) {
	a := newFake("alpha", asset("A1", "https://alpha.test/1"), asset("A2", "https://alpha.test/2"))
	b := newFake("beta", asset("B1", "https://beta.test/1"))
	b.listingErr = &fetch.TransportError{URL: "https://beta.test/search", StatusCode: 403}
	c := newFake("gamma", asset("C1", "https://gamma.test/1"))
	p := newPipeline(t, Options{}, a, b, c)

	out := p.SearchAll(context.Background(), types.SearchOptions{Query: "x", Source: "ignored"})

	assert.Equal(t, []string{"A1", "A2", "C1"}, titles(out.Assets))
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "beta", out.Errors[0].Source)

	_, err := p.LastResult(context.Background())
	assert.ErrorIs(t, err, ErrNoLastSearch)
}

func TestRememberMergedResult(t *testing.T) {
	a := newFake("alpha", asset("A1", "https://alpha.test/1"))
	per := &fakePersister{}
	p := newPipeline(t, Options{Persister: per}, a)

	out := p.SearchAll(context.Background(), types.SearchOptions{Query: "x"})
	p.Remember(context.Background(), types.NewSearchResult(types.SourceAll, "x", out.Assets))

	last, err := p.LastResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.SourceAll, last.Source)
	assert.Equal(t, types.SourceAll, per.last.Source)
}

// --- LastResult ---

func TestLastResultRehydratesFromPersister(t *testing.T) {
	per := &fakePersister{
		last:   &types.LastSearch{Source: "fake", Query: "saved"},
		assets: []types.Asset{{Title: "Saved", Link: "https://fake.test/s", Source: "fake"}},
	}
	p := newPipeline(t, Options{Persister: per}, newFake("fake"))

	last, err := p.LastResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "saved", last.Query)
	assert.Equal(t, "fake", last.Source)
	assert.Equal(t, []string{"Saved"}, titles(last.Assets))
}

func TestLastResultEmptyPersister(t *testing.T) {
	p := newPipeline(t, Options{Persister: &fakePersister{}}, newFake("fake"))
	_, err := p.LastResult(context.Background())
	assert.ErrorIs(t, err, ErrNoLastSearch)
}

func titles(assets []types.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Title
	}
	return out
}
