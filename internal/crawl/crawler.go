package crawl

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/use-agent/lynxget/internal/extract"
	"github.com/use-agent/lynxget/internal/extract/strategy"
	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/transport"
)

// PageResult is one crawled page's outcome.
type PageResult struct {
	URL        string
	Depth      int
	Extraction *model.ExtractionResult
	Err        error
	Duplicate  bool
}

// Crawler runs a bounded BFS crawl starting from a seed URL, respecting
// robots.txt and sitemap hints, skipping near-duplicate pages via DOM
// structural fingerprinting, and extracting each visited page through the
// orchestrator.
type Crawler struct {
	transport    *transport.Client
	orchestrator *extract.Orchestrator
	limiter      *rate.Limiter
	userAgent    string

	seenFingerprints []uint64
	dedupThreshold   int
}

// NewCrawler builds a Crawler. requestsPerSecond bounds fetch rate.
func NewCrawler(t *transport.Client, o *extract.Orchestrator, requestsPerSecond float64, userAgent string) *Crawler {
	return &Crawler{
		transport:      t,
		orchestrator:   o,
		limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent:      userAgent,
		dedupThreshold: 3,
	}
}

// Crawl runs the bounded BFS crawl described by cfg, emitting one
// PageResult per visited page on the returned channel. The channel is
// closed when the crawl completes or ctx is canceled.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, cfg Config) (<-chan PageResult, error) {
	origin, err := NormalizeOrigin(seedURL)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	cfg.Origin = seedURL

	frontier, err := NewFrontier(cfg)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	frontier.Seed(seedURL)

	robots, err := FetchRobots(ctx, c.transport, origin)
	if err != nil {
		robots = nil // treated as allow-all by Allowed()
	}
	for _, sm := range robots.Sitemaps() {
		entries, err := FetchSitemap(ctx, c.transport, sm)
		if err != nil {
			continue
		}
		for _, e := range entries {
			frontier.Add(e.URL, 1, true)
		}
	}

	out := make(chan PageResult)
	go func() {
		defer close(out)
		for {
			entry, ok := frontier.Next()
			if !ok {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			robotsPath := entry.URL
			if pu, err := url.Parse(entry.URL); err == nil {
				robotsPath = pu.RequestURI()
			}
			if !robots.Allowed(c.userAgent, robotsPath) {
				continue
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}

			res := c.visit(ctx, entry)
			out <- res

			if res.Err == nil && res.Extraction != nil {
				for _, link := range strategy.ExtractLinks(res.Extraction.ContentHTML, entry.URL) {
					frontier.Add(link, entry.Depth+1, false)
				}
			}
		}
	}()
	return out, nil
}

func (c *Crawler) visit(ctx context.Context, entry model.FrontierEntry) PageResult {
	resp, err := c.transport.Do(ctx, transport.Request{URL: entry.URL})
	if err != nil {
		return PageResult{URL: entry.URL, Depth: entry.Depth, Err: err}
	}
	html := string(resp.Body)

	fp := fingerprintDOM(html)
	if c.isDuplicate(fp) {
		return PageResult{URL: entry.URL, Depth: entry.Depth, Duplicate: true}
	}
	c.recordFingerprint(fp)

	res, err := c.orchestrator.Extract(ctx, html, entry.URL)
	if err != nil {
		return PageResult{URL: entry.URL, Depth: entry.Depth, Err: err}
	}
	return PageResult{URL: entry.URL, Depth: entry.Depth, Extraction: res}
}

func (c *Crawler) isDuplicate(fp uint64) bool {
	if fp == 0 {
		return false
	}
	for _, seen := range c.seenFingerprints {
		if similar(seen, fp, c.dedupThreshold) {
			return true
		}
	}
	return false
}

func (c *Crawler) recordFingerprint(fp uint64) {
	if fp == 0 {
		return
	}
	c.seenFingerprints = append(c.seenFingerprints, fp)
}
