// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch is the page transport shared by the source adapters and the
// pipeline: it fetches HTML as text and streams files to disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.5"
)

// Transport is the contract adapters and the pipeline consume.
type Transport interface {
	// FetchText returns the body of url. It fails with *TransportError on
	// network failure, timeout, or a non-2xx status.
	FetchText(ctx context.Context, url string) (string, error)

	// DownloadToFile streams url to destPath. Failures, including ones
	// partway through the transfer, are reported in the outcome.
	DownloadToFile(ctx context.Context, url, destPath string) types.DownloadOutcome
}

// TransportError reports a failed fetch.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Fetcher implements Transport on a resty client.
type Fetcher struct {
	client          *resty.Client
	fetchTimeout    time.Duration
	downloadTimeout time.Duration
}

// New builds a Fetcher from cfg. Zero values fall back to the defaults of
// types.DefaultConfig.
func New(cfg types.HTTPConfig) *Fetcher {
	def := types.DefaultConfig().HTTP
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = def.DownloadTimeout
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}

	client := resty.New()
	client.SetHeaders(map[string]string{
		"User-Agent":      cfg.UserAgent,
		"Accept":          acceptHTML,
		"Accept-Language": acceptLanguage,
	})
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.MaxRedirects))
	if cfg.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	return &Fetcher{
		client:          client,
		fetchTimeout:    cfg.FetchTimeout,
		downloadTimeout: cfg.DownloadTimeout,
	}
}

// FetchText implements Transport.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	log.FromContext(ctx).WithPrefix("fetch").Debug("fetching page", "url", url)

	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	if !res.IsSuccess() {
		return "", &TransportError{URL: url, StatusCode: res.StatusCode()}
	}
	return res.String(), nil
}

// DownloadToFile implements Transport. The body is written to a temporary
// file next to destPath and renamed on success; a failed transfer leaves no
// file behind. The download timeout bounds the wait for the response, not
// the body transfer, so large files are never cut off mid-stream.
func (f *Fetcher) DownloadToFile(ctx context.Context, url, destPath string) types.DownloadOutcome {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	timer := time.AfterFunc(f.downloadTimeout, cancel)

	outcome := types.DownloadOutcome{Filename: filepath.Base(destPath)}
	fail := func(err error) types.DownloadOutcome {
		outcome.Error = err.Error()
		return outcome
	}

	log.FromContext(ctx).WithPrefix("fetch").Debug("downloading file", "url", url, "dest", destPath)

	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetDoNotParseResponse(true).
		Get(url)
	timedOut := !timer.Stop()
	if err != nil {
		if timedOut {
			return fail(fmt.Errorf("HTTP request: no response within %s", f.downloadTimeout))
		}
		return fail(fmt.Errorf("HTTP request: %w", err))
	}
	if timedOut {
		res.RawBody().Close()
		return fail(fmt.Errorf("HTTP request: no response within %s", f.downloadTimeout))
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		return fail(fmt.Errorf("HTTP %d from %s", res.StatusCode(), url))
	}

	n, err := writeFile(body, destPath)
	if err != nil {
		return fail(err)
	}

	outcome.Success = true
	outcome.Path = destPath
	outcome.Bytes = n
	outcome.SizeMB = math.Round(float64(n)/(1024*1024)*100) / 100
	return outcome
}

// writeFile copies r to destPath through a temporary file in the same directory.
func writeFile(r io.Reader, destPath string) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".gameasset-*.part")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}
