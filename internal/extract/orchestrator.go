// Package extract orchestrates the individual strategies in
// internal/extract/strategy against a fetched HTML document, applying a
// disciplined fallback chain instead of a single best-effort parse.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/use-agent/lynxget/internal/extract/strategy"
	"github.com/use-agent/lynxget/internal/model"
)

// defaultChain is the priority order strategies are tried in when no
// domain memory hint applies: Readability first, since Mozilla's
// Readability port is the highest-precision general-purpose parser; then
// the framework-hydration strategies, cheapest/most specific first (their
// Applicable() check is near-instant, so ordering them early is free);
// JSON-LD next, since a structured-data block is trustworthy but often
// thinner than the rendered body; selector and density last, since they
// are progressively less precise, most-always-matches fallbacks, with
// density guaranteed to produce *something*, correct or not.
func defaultChain(fetcher strategy.Fetcher) []strategy.Strategy {
	return []strategy.Strategy{
		strategy.NewReadability(),
		strategy.NewReactRouter(),
		strategy.NewNuxt(),
		strategy.NewNextRSC(),
		strategy.NewNextData(fetcher),
		strategy.NewWordPressREST(fetcher),
		strategy.NewWordPressAJAX(fetcher),
		strategy.NewJSONLD(),
		strategy.NewSelector(),
		strategy.NewDensity(),
	}
}

// goodEnoughLength is the "good" content-length threshold from spec §4.3:
// once a candidate's recovered text clears this many characters, Extract
// stops trying further strategies instead of chasing a longer result.
const goodEnoughLength = 500

// Orchestrator runs the fallback chain and remembers, per domain, which
// strategy last succeeded.
type Orchestrator struct {
	chain  []strategy.Strategy
	byName map[string]strategy.Strategy
	memory *DomainMemory
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFetcher supplies the Fetcher used by strategies that need a
// follow-up request (WordPress REST/AJAX, Next.js data routes).
func WithFetcher(f strategy.Fetcher) Option {
	return func(o *Orchestrator) { o.chain = defaultChain(f); o.index() }
}

// WithMemory injects a pre-built DomainMemory (mainly for tests; a fresh
// one is created by default).
func WithMemory(m *DomainMemory) Option {
	return func(o *Orchestrator) { o.memory = m }
}

func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		chain:  defaultChain(nil),
		memory: NewDomainMemory(),
	}
	o.index()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) index() {
	o.byName = make(map[string]strategy.Strategy, len(o.chain))
	for _, s := range o.chain {
		o.byName[s.Name()] = s
	}
}

// Close releases the orchestrator's background resources (domain memory
// cleanup goroutine).
func (o *Orchestrator) Close() { o.memory.Close() }

// Extract runs the fallback chain against htmlStr, tracking the longest
// ContentText seen so far and stopping early only once a candidate clears
// goodEnoughLength — the same best-so-far/early-stop shape spec.md §4.3
// describes, rather than accepting the first strategy that merely runs
// without error. The result is enriched with document-wide metadata (Open
// Graph tags, media, JSON-LD byline/date/access info). If every
// content-bearing strategy fails, it returns the density strategy's
// raw-HTML-wrapped fallback rather than an error, matching spec.md's
// "always returns something" contract.
func (o *Orchestrator) Extract(ctx context.Context, htmlStr, pageURL string) (*model.ExtractionResult, error) {
	order := o.chain
	if hint, ok := o.memory.Get(pageURL); ok {
		if s, ok := o.byName[hint]; ok {
			order = prepend(s, o.chain)
		}
	}

	var lastErr error
	var best *model.ExtractionResult
	var bestStrategy string
	var fallback *model.ExtractionResult
	for _, s := range order {
		if !s.Applicable(htmlStr, pageURL) {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := s.Extract(ctx, htmlStr, pageURL)
		if err != nil {
			lastErr = err
			continue
		}
		if s.Name() == "density" {
			fallback = res
			continue
		}
		if best == nil || len(res.ContentText) > len(best.ContentText) {
			best = res
			bestStrategy = s.Name()
		}
		if len(best.ContentText) >= goodEnoughLength {
			break
		}
	}

	if best != nil {
		o.memory.Set(pageURL, bestStrategy)
		enrich(best, htmlStr, pageURL)
		return best, nil
	}
	if fallback != nil {
		enrich(fallback, htmlStr, pageURL)
		return fallback, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("extract: no strategy produced content")
	}
	return nil, fmt.Errorf("extract: all strategies exhausted: %w", lastErr)
}

func prepend(s strategy.Strategy, chain []strategy.Strategy) []strategy.Strategy {
	out := make([]strategy.Strategy, 0, len(chain)+1)
	out = append(out, s)
	for _, c := range chain {
		if c.Name() != s.Name() {
			out = append(out, c)
		}
	}
	return out
}

func enrich(res *model.ExtractionResult, htmlStr, pageURL string) {
	res.Media = strategy.ExtractMedia(htmlStr, pageURL)
	og := strategy.ExtractOGMetadata(htmlStr)
	if res.Title == "" {
		res.Title = og.Title
	}
	if res.SiteName == "" {
		res.SiteName = og.SiteName
	}

	meta := strategy.ExtractJSONLDMetadata(htmlStr)
	if res.Byline == "" {
		res.Byline = meta.Byline
	}
	if res.PublishedAt.IsZero() {
		res.PublishedAt = meta.PublishedAt
	}
	if meta.HasAccessInfo {
		res.IsAccessibleForFree = meta.IsAccessibleForFree
	} else {
		res.IsAccessibleForFree = true
	}
	if meta.DeclaredWordCount > 0 {
		res.DeclaredWordCount = meta.DeclaredWordCount
	}
}

// fallbackLatency is exposed for callers that want to budget how long to
// wait before accepting a lower-confidence result; it is not enforced
// here since Extract does not race strategies concurrently (they are
// cheap, CPU-bound parses, unlike the fetch engines this pattern was
// originally built for).
const fallbackLatency = 0 * time.Millisecond
