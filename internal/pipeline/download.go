// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/gabriel-vasile/mimetype"

	"github.com/pdiddy/gameasset-dl/internal/sources"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// Download resolves asset's descriptor through its source adapter and saves
// the file under outputDir with a sanitized name. Generic site names are
// replaced by the asset title and an existing file is never overwritten.
// The returned outcome's Path is the final on-disk path.
func (p *Pipeline) Download(ctx context.Context, asset types.Asset, outputDir string) (types.DownloadOutcome, error) {
	logger := log.FromContext(ctx).WithPrefix("pipeline")

	a, err := p.registry.Get(asset.Source)
	if err != nil {
		return types.DownloadOutcome{}, err
	}
	if !a.Info().Downloadable {
		return types.DownloadOutcome{}, &UnsupportedOperationError{Source: asset.Source, Operation: "download"}
	}

	if !fileutil.IsExist(outputDir) {
		if err := fileutil.CreateDir(outputDir); err != nil {
			return types.DownloadOutcome{}, fmt.Errorf("creating output directory %s: %w", outputDir, err)
		}
	}

	desc, ok := p.descriptors.get(asset.Link)
	if ok {
		logger.Debug("reusing descriptor", "link", asset.Link)
	} else {
		info, err := sources.FetchFileInfo(ctx, a, asset.Link)
		if err != nil {
			return types.DownloadOutcome{}, &DownloadFailedError{Filename: asset.Title, Message: err.Error(), Err: err}
		}
		if info.Download == nil {
			return types.DownloadOutcome{}, &DownloadLinkNotFoundError{Title: asset.Title, Link: asset.Link}
		}
		desc = *info.Download
	}

	name := targetName(outputDir, desc.Filename, asset.Title)
	dest := filepath.Join(outputDir, name)
	logger.Debug("downloading", "url", desc.URL, "dest", dest)

	out := a.PerformDownload(ctx, desc.URL, dest)
	if out.Filename == "" {
		out.Filename = name
	}
	if !out.Success {
		return out, &DownloadFailedError{Filename: name, Message: out.Error}
	}
	if out.Path == "" {
		out.Path = dest
	}
	if filepath.Ext(name) == "" {
		out = fixExtension(ctx, out)
	}
	return out, nil
}

// DownloadLink downloads a detail-page URL directly, routing it to the
// adapter whose origin serves the link's host.
func (p *Pipeline) DownloadLink(ctx context.Context, link, outputDir string) (types.DownloadOutcome, error) {
	a, ok := p.registry.ForLink(link)
	if !ok {
		host := link
		if u, err := url.Parse(link); err == nil && u.Host != "" {
			host = u.Host
		}
		return types.DownloadOutcome{}, &UnknownSourceError{Name: host, Available: p.registry.Names()}
	}
	return p.Download(ctx, types.Asset{
		Title:  "Direct Download",
		Author: "Unknown",
		Link:   link,
		Source: a.Info().Name,
	}, outputDir)
}

// fixExtension sniffs a file saved without an extension and renames it with
// the detected one. Detection or rename failures keep the original name.
func fixExtension(ctx context.Context, out types.DownloadOutcome) types.DownloadOutcome {
	mtype, err := mimetype.DetectFile(out.Path)
	if err != nil || mtype.Extension() == "" {
		return out
	}
	dir := filepath.Dir(out.Path)
	renamed := filepath.Join(dir, uniqueName(dir, filepath.Base(out.Path)+mtype.Extension()))
	if err := os.Rename(out.Path, renamed); err != nil {
		log.FromContext(ctx).WithPrefix("pipeline").Warn("adding extension", "path", out.Path, "err", err)
		return out
	}
	out.Path = renamed
	out.Filename = filepath.Base(renamed)
	return out
}
