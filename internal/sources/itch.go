// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/gameasset-dl/internal/fetch"
	"github.com/pdiddy/gameasset-dl/pkg/types"
)

const itchOrigin = "https://itch.io"

// itchFilename is used when itch.io exposes no filename before download.
const itchFilename = "download.zip"

// Itch scrapes the free game-assets section of itch.io.
type Itch struct {
	Site
}

// NewItch returns the itch.io adapter.
func NewItch(t fetch.Transport) *Itch {
	return &Itch{Site: newSite(Info{
		Name:         "itch",
		DisplayName:  "itch.io",
		Origin:       itchOrigin,
		Capabilities: fullCapabilities,
	}, t)}
}

// BuildListingURL implements Adapter. itch.io filters by repeated tag
// parameters: 2d, 3d, then the free-form tag.
func (a *Itch) BuildListingURL(opts types.SearchOptions) string {
	var b strings.Builder
	b.WriteString(itchOrigin + "/game-assets/free?q=" + encodeQuery(opts.Query))
	if opts.Is2D {
		b.WriteString("&tag=2d")
	}
	if opts.Is3D {
		b.WriteString("&tag=3d")
	}
	if opts.Tag != "" {
		b.WriteString("&tag=" + encodeQuery(opts.Tag))
	}
	return b.String()
}

// ParseListing implements Adapter.
func (a *Itch) ParseListing(html string, limit int) []types.Asset {
	if limit <= 0 {
		return nil
	}
	doc, err := parseHTML(html)
	if err != nil {
		return nil
	}

	var results []types.Asset
	doc.Find(".game_cell").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		titleEl := cell.Find(".game_title .title").First()

		title := strings.TrimSpace(titleEl.Text())
		if title == "" {
			title = types.UntitledSentinel
		}
		author := text(cell.Find(".game_author a"))
		if author == "" {
			author = "Unknown"
		}

		img := cell.Find(".game_thumb img").First()
		cover := img.AttrOr("data-lazy_src", "")
		if cover == "" {
			cover = img.AttrOr("src", "")
		}

		asset := types.Asset{
			Title:  title,
			Author: author,
			Link:   a.absolute(titleEl.AttrOr("href", "")),
			Source: a.info.Name,
		}
		if cover != "" {
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
//  1. a download button in the upload list
//  2. the direct download link of the file widget
//  3. an og:url pointing at a download page
//  4. any absolute link inside an upload entry
//  5. a named upload, downloaded from the detail page itself
func (a *Itch) ResolveDownload(detailHTML, detailURL string) (types.DownloadDescriptor, bool) {
	doc, err := parseHTML(detailHTML)
	if err != nil {
		return types.DownloadDescriptor{}, false
	}

	if u := a.absolute(firstHref(doc.Find(`.upload_list .button[href*="/download"]`))); u != "" {
		return types.DownloadDescriptor{URL: u, Filename: itchFilename}, true
	}

	if u := a.absolute(firstHref(doc.Find(".file_download .download_btn .link"))); u != "" {
		return types.DownloadDescriptor{URL: u, Filename: itchFilename}, true
	}

	if og := metaContent(doc, "og:url"); strings.Contains(og, "/download") {
		return types.DownloadDescriptor{URL: og, Filename: itchFilename}, true
	}

	if u := a.absolute(firstHref(doc.Find(`.upload_list .upload a[href*="https://"]`))); u != "" {
		return types.DownloadDescriptor{URL: u, Filename: itchFilename}, true
	}

	if name := doc.Find(".upload_name .name").First(); name.Length() > 0 {
		filename := strings.TrimSpace(name.AttrOr("title", ""))
		if filename == "" {
			filename = strings.TrimSpace(name.Text())
		}
		if filename != "" {
			return types.DownloadDescriptor{URL: detailURL, Filename: filename}, true
		}
	}

	return types.DownloadDescriptor{}, false
}
