// Package archive provides a data-driven fallback to web archives
// (Wayback Machine, Archive.is) when a direct fetch is blocked or
// unavailable.
package archive

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/transport"
)

// Source models one archive provider as data: a URL template and a pair
// of pre/post-processing hooks, so adding an archive provider never
// requires new control flow, only a new table row.
//
// The URL is built with raw string concatenation, not net/url joining —
// this is deliberate (see DESIGN.md, Open Question 1): these archive
// endpoints take a raw target URL as a path/query suffix and a
// double-encoding pass would break the lookup, so plain string building
// is kept as-is rather than "fixed" into a net/url-based builder.
type Source struct {
	Name        string
	BuildURL    func(targetURL string) string
	IsNotFound  func(status int, body string) bool
	PostProcess func(html string) string
}

// notFoundPhrases are Archive.is's not-yet-archived page text, checked
// only on small responses so a long archived page that happens to mention
// one of these phrases in passing is never misclassified.
var notFoundPhrases = []string{
	"No results",
	"has not been archived",
	"no snapshots",
	"webpage not found",
}

const archiveIsNotFoundMaxBytes = 5000

// Sources is tried in order: Wayback first (broadest coverage, stable
// single-hop snapshot URL), then Archive.is (better for very recent pages
// Wayback hasn't crawled yet).
var Sources = []Source{
	{
		Name: "wayback",
		BuildURL: func(targetURL string) string {
			return "https://web.archive.org/web/2if_/" + targetURL
		},
		IsNotFound: func(status int, body string) bool {
			return status == 404 || strings.Contains(body, "Wayback Machine doesn't have that page archived")
		},
		PostProcess: stripWaybackChrome,
	},
	{
		Name: "archive.is",
		BuildURL: func(targetURL string) string {
			return "https://archive.is/latest/" + targetURL
		},
		IsNotFound: func(status int, body string) bool {
			if len(body) >= archiveIsNotFoundMaxBytes {
				return false
			}
			for _, phrase := range notFoundPhrases {
				if strings.Contains(body, phrase) {
					return true
				}
			}
			return false
		},
		PostProcess: func(html string) string { return html },
	},
}

// stripWaybackChrome removes the injected Wayback Machine toolbar
// (the "BEGIN WAYBACK TOOLBAR INSERT" block) and its "_static" loader
// script from an archived snapshot's HTML, so downstream extraction sees
// only the original page content.
func stripWaybackChrome(html string) string {
	html = stripBetween(html, "<!-- BEGIN WAYBACK TOOLBAR INSERT -->", "<!-- END WAYBACK TOOLBAR INSERT -->")
	return stripStaticScripts(html)
}

func stripBetween(html, startMarker, endMarker string) string {
	start := strings.Index(html, startMarker)
	if start < 0 {
		return html
	}
	end := strings.Index(html[start:], endMarker)
	if end < 0 {
		return html
	}
	end += start + len(endMarker)
	return html[:start] + html[end:]
}

// staticScriptPattern matches a <script ...src="...\_static\...">...</script>
// tag the Wayback Machine injects to load its toolbar assets.
var staticScriptPattern = regexp.MustCompile(`(?s)<script[^>]*src="[^"]*/_static/[^"]*"[^>]*>.*?</script>`)

// stripStaticScripts drops every Wayback toolbar asset script tag.
func stripStaticScripts(html string) string {
	return staticScriptPattern.ReplaceAllString(html, "")
}

// Client fetches a page through the archive sources when a direct fetch
// fails or is blocked.
type Client struct {
	transport *transport.Client
}

func New(t *transport.Client) *Client {
	return &Client{transport: t}
}

// Fetch tries each archive source in order and returns the first
// successfully recovered snapshot.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*model.FetchResult, error) {
	var lastErr error
	for _, src := range Sources {
		archiveURL := src.BuildURL(targetURL)
		resp, err := c.transport.Do(ctx, transport.Request{URL: archiveURL})
		if err != nil {
			lastErr = err
			continue
		}
		body := string(resp.Body)
		if src.IsNotFound(resp.StatusCode, body) {
			lastErr = fmt.Errorf("archive: %s: not_archived: no snapshot for %s", src.Name, targetURL)
			continue
		}
		processed := src.PostProcess(body)
		return &model.FetchResult{
			URL:         targetURL,
			FinalURL:    resp.FinalURL,
			StatusCode:  resp.StatusCode,
			Headers:     resp.Headers,
			Body:        []byte(processed),
			FromArchive: true,
			ArchiveName: src.Name,
			ArchiveURL:  archiveURL,
		}, nil
	}
	return nil, fmt.Errorf("archive: no_archive_available: all sources exhausted: %w", lastErr)
}
