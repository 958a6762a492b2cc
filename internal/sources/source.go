// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources translates catalog websites into canonical asset records.
// Each site is an Adapter: it builds the listing URL for a query, parses the
// listing page into asset stubs, and resolves an asset's detail page into a
// download descriptor.
package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/gameasset-dl/internal/fetch"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// Capabilities declares what an adapter supports.
type Capabilities struct {
	Supports2D   bool `json:"supports2D"`
	Supports3D   bool `json:"supports3D"`
	Searchable   bool `json:"searchable"`
	Downloadable bool `json:"downloadable"`
}

// Info is the identity and capability summary of an adapter.
type Info struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Origin      string `json:"origin"`
	Capabilities
}

// Adapter is one catalog site.
type Adapter interface {
	// Info returns the adapter's stable name, display name, origin, and
	// capability flags.
	Info() Info

	// BuildListingURL returns the site's search URL for opts. It is
	// deterministic and percent-encodes the free-text query.
	BuildListingURL(opts types.SearchOptions) string

	// ParseListing extracts up to limit assets from listing markup in
	// document order. Candidates without a title or link are skipped.
	ParseListing(html string, limit int) []types.Asset

	// ResolveDownload finds the download descriptor on a detail page. The
	// boolean is false when no heuristic matched.
	ResolveDownload(detailHTML, detailURL string) (types.DownloadDescriptor, bool)

	// FetchPage fetches url through the adapter's transport.
	FetchPage(ctx context.Context, url string) (string, error)

	// PerformDownload streams downloadURL to destPath.
	PerformDownload(ctx context.Context, downloadURL, destPath string) types.DownloadOutcome
}

// Site carries what every adapter shares: its identity and its transport.
// Adapters embed it and inherit FetchPage and PerformDownload.
type Site struct {
	info      Info
	transport fetch.Transport
}

func newSite(info Info, transport fetch.Transport) Site {
	return Site{info: info, transport: transport}
}

// Info implements Adapter.
func (s Site) Info() Info { return s.info }

// FetchPage implements Adapter.
func (s Site) FetchPage(ctx context.Context, url string) (string, error) {
	return s.transport.FetchText(ctx, url)
}

// PerformDownload implements Adapter. None of the bundled sites need extra
// headers or cookies, so it delegates to the transport.
func (s Site) PerformDownload(ctx context.Context, downloadURL, destPath string) types.DownloadOutcome {
	return s.transport.DownloadToFile(ctx, downloadURL, destPath)
}

// absolute resolves ref against the site origin. Relative paths and
// protocol-relative URLs become absolute https URLs. A ref that is empty,
// unparseable, not http(s), or resolves to a bare origin yields "".
func (s Site) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base, err := url.Parse(s.info.Origin)
	if err != nil {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" || resolved.Path == "" || resolved.Path == "/" {
		return ""
	}
	return resolved.String()
}

// secure absolutizes ref and upgrades http to https.
func (s Site) secure(ref string) string {
	return ensureHTTPS(s.absolute(ref))
}

// ensureHTTPS upgrades an http URL to https. Other URLs are returned as-is.
func ensureHTTPS(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

// encodeQuery percent-encodes a free-text query component, encoding spaces
// as %20.
func encodeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}

// parseHTML loads markup into a goquery document.
func parseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// text returns the trimmed text of the first element in sel.
func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

// firstHref returns the href of the first element in sel that has one.
func firstHref(sel *goquery.Selection) string {
	var href string
	sel.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		href = strings.TrimSpace(el.AttrOr("href", ""))
		return href == ""
	})
	return href
}

// metaContent returns the content of <meta property="prop">.
func metaContent(doc *goquery.Document, prop string) string {
	return strings.TrimSpace(doc.Find(fmt.Sprintf(`meta[property=%q]`, prop)).First().AttrOr("content", ""))
}

// FetchFileInfo fetches an asset's detail page and resolves its download
// descriptor. FileType is the uppercase extension of the resolved filename.
// Download is nil when the adapter found no descriptor; a transport failure
// is returned as an error.
func FetchFileInfo(ctx context.Context, a Adapter, detailURL string) (types.FileInfo, error) {
	html, err := a.FetchPage(ctx, detailURL)
	if err != nil {
		return types.FileInfo{}, err
	}
	desc, ok := a.ResolveDownload(html, detailURL)
	if !ok {
		return types.FileInfo{}, nil
	}
	return types.FileInfo{
		FileType: desc.FileType(),
		Download: &desc,
	}, nil
}

var fullCapabilities = Capabilities{
	Supports2D:   true,
	Supports3D:   true,
	Searchable:   true,
	Downloadable: true,
}

// Defaults returns the bundled adapters in registration order.
func Defaults(t fetch.Transport) []Adapter {
	return []Adapter{
		NewItch(t),
		NewKenney(t),
		NewOpenGameArt(t),
	}
}
