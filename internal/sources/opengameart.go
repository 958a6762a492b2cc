// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/gameasset-dl/internal/fetch"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

const openGameArtOrigin = "https://opengameart.org"

// OpenGameArt art type taxonomy IDs used by the advanced search.
const (
	ogaArtType2D = "9"
	ogaArtType3D = "10"
)

// OpenGameArt scrapes opengameart.org search results.
type OpenGameArt struct {
	Site
}

// NewOpenGameArt returns the opengameart.org adapter.
func NewOpenGameArt(t fetch.Transport) *OpenGameArt {
	return &OpenGameArt{Site: newSite(Info{
		Name:         "opengameart",
		DisplayName:  "OpenGameArt",
		Origin:       openGameArtOrigin,
		Capabilities: fullCapabilities,
	}, t)}
}

// BuildListingURL implements Adapter. Plain keyword searches use the simple
// search page; dimension and tag filters need the advanced one.
func (a *OpenGameArt) BuildListingURL(opts types.SearchOptions) string {
	keys := encodeQuery(opts.Query)
	if !opts.Is2D && !opts.Is3D && opts.Tag == "" {
		return openGameArtOrigin + "/art-search?keys=" + keys
	}

	var b strings.Builder
	b.WriteString(openGameArtOrigin + "/art-search-advanced?keys=" + keys)
	if opts.Is2D {
		b.WriteString("&field_art_type_tid%5B%5D=" + ogaArtType2D)
	}
	if opts.Is3D {
		b.WriteString("&field_art_type_tid%5B%5D=" + ogaArtType3D)
	}
	if opts.Tag != "" {
		b.WriteString("&field_art_tags_tid=" + encodeQuery(opts.Tag))
	}
	return b.String()
}

// ParseListing implements Adapter.
func (a *OpenGameArt) ParseListing(html string, limit int) []types.Asset {
	if limit <= 0 {
		return nil
	}
	doc, err := parseHTML(html)
	if err != nil {
		return nil
	}

	var results []types.Asset
	doc.Find(".views-row.art-previews-inline").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		titleEl := row.Find(".field-name-title a").First()
		title := strings.TrimSpace(titleEl.Text())
		if title == "" {
			title = types.UntitledSentinel
		}

		author := text(row.Find(".username, .user-name"))
		if author == "" {
			author = text(row.Find(`.field-name-field-art-author a, [rel="foaf:maker"] a`))
		}
		if author == "" {
			author = "Unknown"
		}

		asset := types.Asset{
			Title:  title,
			Author: author,
			Link:   a.absolute(titleEl.AttrOr("href", "")),
			Source: a.info.Name,
		}
		if cover := row.Find(".field-name-field-art-preview img").First().AttrOr("src", ""); cover != "" {
			asset.Cover = a.secure(cover)
		}
		if asset.Valid() {
			results = append(results, asset)
		}
		return len(results) < limit
	})
	return results
}

// ResolveDownload implements Adapter. Heuristics in priority order:
//  1. the first attached art file, named after its link text
//  2. any generic download link
func (a *OpenGameArt) ResolveDownload(detailHTML, _ string) (types.DownloadDescriptor, bool) {
	doc, err := parseHTML(detailHTML)
	if err != nil {
		return types.DownloadDescriptor{}, false
	}

	fileLink := doc.Find(".field-name-field-art-files .file a").First()
	if u := a.secure(firstHref(fileLink)); u != "" {
		name, _, _ := strings.Cut(strings.TrimSpace(fileLink.Text()), "\n")
		name = strings.TrimSpace(name)
		if name == "" {
			name = "download"
		}
		return types.DownloadDescriptor{URL: u, Filename: name}, true
	}

	if u := a.secure(firstHref(doc.Find(`a[href*="/download"], .download-links a, .file-download a`))); u != "" {
		return types.DownloadDescriptor{URL: u, Filename: "download"}, true
	}

	return types.DownloadDescriptor{}, false
}
