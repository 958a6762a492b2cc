// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// ItemResult is the outcome of one requested item in a batch.
type ItemResult struct {
	// Index is the 1-based position in the result set that was requested.
	Index   int
	Asset   types.Asset
	Outcome types.DownloadOutcome
	Err     error
}

// OK reports whether the item downloaded.
func (r ItemResult) OK() bool { return r.Err == nil }

// BatchReport tallies a batch download. Items follow request order.
type BatchReport struct {
	Succeeded int
	Failed    int
	Items     []ItemResult
}

// Total returns the number of items attempted.
func (r BatchReport) Total() int { return r.Succeeded + r.Failed }

// HasFailures reports whether any item failed.
func (r BatchReport) HasFailures() bool { return r.Failed > 0 }

// ItemFunc observes each item as soon as it finishes.
type ItemFunc func(ItemResult)

// DownloadBatch downloads every asset in order. A failed item is recorded
// and the batch moves on.
func (p *Pipeline) DownloadBatch(ctx context.Context, assets []types.Asset, outputDir string, onItem ItemFunc) BatchReport {
	indices := make([]int, len(assets))
	for i := range assets {
		indices[i] = i + 1
	}
	return p.downloadSelected(ctx, assets, indices, outputDir, onItem)
}

// DownloadIndices downloads the 1-based indices of the last search. Indices
// outside the result set count as failed items.
func (p *Pipeline) DownloadIndices(ctx context.Context, indices []int, outputDir string, onItem ItemFunc) (BatchReport, error) {
	last, err := p.LastResult(ctx)
	if err != nil {
		return BatchReport{}, err
	}
	return p.downloadSelected(ctx, last.Assets, indices, outputDir, onItem), nil
}

// DownloadAll downloads every asset of the last search.
func (p *Pipeline) DownloadAll(ctx context.Context, outputDir string, onItem ItemFunc) (BatchReport, error) {
	last, err := p.LastResult(ctx)
	if err != nil {
		return BatchReport{}, err
	}
	return p.DownloadBatch(ctx, last.Assets, outputDir, onItem), nil
}

func (p *Pipeline) downloadSelected(ctx context.Context, assets []types.Asset, indices []int, outputDir string, onItem ItemFunc) BatchReport {
	logger := log.FromContext(ctx).WithPrefix("pipeline")
	report := BatchReport{Items: make([]ItemResult, 0, len(indices))}

	for _, idx := range indices {
		item := ItemResult{Index: idx}
		if idx < 1 || idx > len(assets) {
			item.Err = &InvalidIndexError{Index: idx, Count: len(assets)}
		} else {
			item.Asset = assets[idx-1]
			item.Outcome, item.Err = p.Download(ctx, item.Asset, outputDir)
		}

		if item.Err != nil {
			logger.Warn("download failed", "index", idx, "err", item.Err)
			report.Failed++
		} else {
			report.Succeeded++
		}
		report.Items = append(report.Items, item)
		if onItem != nil {
			onItem(item)
		}
	}

	logger.Info("batch complete", "succeeded", report.Succeeded, "failed", report.Failed, "total", report.Total())
	return report
}
