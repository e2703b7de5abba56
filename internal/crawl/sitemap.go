package crawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/use-agent/lynxget/internal/transport"
)

// maxSitemapRecursionDepth bounds sitemapindex -> sitemap -> sitemapindex
// chains so a misconfigured or adversarial site can't force unbounded
// recursion.
const maxSitemapRecursionDepth = 3

// maxSitemapEntries caps the total number of URLs collected across all
// recursively-fetched sitemaps, independent of the crawler's own page cap,
// so sitemap expansion alone can't exhaust memory before the frontier
// logic gets a chance to apply its own bounds.
const maxSitemapEntries = 50000

// SitemapEntry is one <url> or <sitemap> entry.
type SitemapEntry struct {
	URL string
}

// FetchSitemap recursively fetches and flattens sitemapindex/urlset XML
// into a list of page URLs.
func FetchSitemap(ctx context.Context, t *transport.Client, sitemapURL string) ([]SitemapEntry, error) {
	var entries []SitemapEntry
	err := fetchSitemapRec(ctx, t, sitemapURL, 0, &entries)
	return entries, err
}

func fetchSitemapRec(ctx context.Context, t *transport.Client, sitemapURL string, depth int, entries *[]SitemapEntry) error {
	if depth > maxSitemapRecursionDepth {
		return fmt.Errorf("crawl: sitemap recursion depth exceeded at %s", sitemapURL)
	}
	if len(*entries) >= maxSitemapEntries {
		return nil
	}

	resp, err := t.Do(ctx, transport.Request{URL: sitemapURL})
	if err != nil {
		return fmt.Errorf("crawl: fetch sitemap %s: %w", sitemapURL, err)
	}
	body := resp.Body
	if strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") {
		// Gzip-compressed sitemaps are out of scope for direct decoding
		// here; the transport already transparently decompresses
		// Content-Encoding: gzip responses, so a literal .gz URL with an
		// uncompressed body (common when servers pre-decompress) still
		// works; a genuinely double-compressed body is skipped.
	}

	doc, err := xmlquery.Parse(strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("crawl: parse sitemap %s: %w", sitemapURL, err)
	}

	if nested := xmlquery.Find(doc, "//sitemapindex/sitemap/loc"); len(nested) > 0 {
		for _, n := range nested {
			if len(*entries) >= maxSitemapEntries {
				return nil
			}
			loc := strings.TrimSpace(n.InnerText())
			if loc == "" {
				continue
			}
			if err := fetchSitemapRec(ctx, t, loc, depth+1, entries); err != nil {
				continue
			}
		}
		return nil
	}

	urls := xmlquery.Find(doc, "//urlset/url/loc")
	for _, n := range urls {
		if len(*entries) >= maxSitemapEntries {
			break
		}
		loc := strings.TrimSpace(n.InnerText())
		if loc == "" {
			continue
		}
		*entries = append(*entries, SitemapEntry{URL: loc})
	}
	return nil
}
