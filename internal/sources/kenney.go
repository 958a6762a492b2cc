// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/gameasset-dl/internal/fetch"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

const kenneyOrigin = "https://kenney.nl"

// backgroundImage extracts the URL of a CSS background-image declaration.
var backgroundImage = regexp.MustCompile(`background-image:\s*url\(["']?([^"')]+)["']?\)`)

// Kenney scrapes the asset catalog of kenney.nl. Every asset is authored by
// Kenney himself.
type Kenney struct {
	Site
}

// NewKenney returns the kenney.nl adapter.
func NewKenney(t fetch.Transport) *Kenney {
	return &Kenney{Site: newSite(Info{
		Name:         "kenney",
		DisplayName:  "Kenney Assets",
		Origin:       kenneyOrigin,
		Capabilities: fullCapabilities,
	}, t)}
}

// BuildListingURL implements Adapter. A single dimension flag selects the
// fixed category path; asking for both is the same as asking for neither.
func (a *Kenney) BuildListingURL(opts types.SearchOptions) string {
	base := kenneyOrigin + "/assets"
	switch {
	case opts.Is2D && !opts.Is3D:
		base += "/category:2D"
	case opts.Is3D && !opts.Is2D:
		base += "/category:3D"
	}
	u := base + "?q=" + encodeQuery(opts.Query) + "&type=game+assets&price=free"
	if opts.Tag != "" {
		u += "&tag=" + encodeQuery(opts.Tag)
	}
	return u
}

// ParseListing implements Adapter. Category and collection tiles share the
// asset markup and are skipped.
func (a *Kenney) ParseListing(html string, limit int) []types.Asset {
	if limit <= 0 {
		return nil
	}
	doc, err := parseHTML(html)
	if err != nil {
		return nil
	}

	var results []types.Asset
	doc.Find(".asset").EachWithBreak(func(_ int, tile *goquery.Selection) bool {
		titleEl := tile.Find("h2 a").First()
		title := strings.TrimSpace(titleEl.Text())
		if title == "" {
			title = types.UntitledSentinel
		}
		href := strings.TrimSpace(titleEl.AttrOr("href", ""))
		if strings.Contains(href, "/category") || strings.Contains(href, "/collections") {
			return true
		}

		asset := types.Asset{
			Title:  title,
			Author: "Kenney",
			Link:   a.absolute(href),
			Source: a.info.Name,
		}
		style := tile.Find(".cover").First().AttrOr("style", "")
		if m := backgroundImage.FindStringSubmatch(style); m != nil {
			asset.Cover = a.secure(m[1])
		}
		if asset.Valid() {
			results = append(results, asset)
		}
		return len(results) < limit
	})
	return results
}

// ResolveDownload implements Adapter. Heuristics in priority order:
//  1. a link to a known asset archive or source file
//  2. a primary download button
//  3. the page's og:url
func (a *Kenney) ResolveDownload(detailHTML, _ string) (types.DownloadDescriptor, bool) {
	doc, err := parseHTML(detailHTML)
	if err != nil {
		return types.DownloadDescriptor{}, false
	}

	files := doc.Find(`a[href*=".zip"], a[href*=".png"], a[href*=".psd"], a[href*=".blend"]`)
	if href := firstHref(files); href != "" {
		if u := a.secure(href); u != "" {
			return types.DownloadDescriptor{
				URL:      u,
				Filename: filenameFromURL(href, "download.zip"),
			}, true
		}
	}

	if u := a.secure(firstHref(doc.Find("a.btn-primary, a.button-download, .download-btn a"))); u != "" {
		return types.DownloadDescriptor{URL: u, Filename: "download.zip"}, true
	}

	if og := metaContent(doc, "og:url"); og != "" {
		return types.DownloadDescriptor{URL: og, Filename: "download.zip"}, true
	}

	return types.DownloadDescriptor{}, false
}

// filenameFromURL returns the last path segment of raw, or fallback.
func filenameFromURL(raw, fallback string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
