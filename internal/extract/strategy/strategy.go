// Package strategy implements the individual extraction strategies that
// internal/extract's orchestrator tries, in priority order, against a
// fetched HTML document.
package strategy

import (
	"context"

	"github.com/use-agent/lynxget/internal/model"
)

// Strategy extracts structured content from one HTML document.
type Strategy interface {
	// Name identifies the strategy for logging and domain-memory keys.
	Name() string
	// Applicable does a cheap pre-check (no full parse) so the
	// orchestrator can skip strategies that obviously won't apply.
	Applicable(html string, pageURL string) bool
	// Extract attempts the strategy and returns a populated result. A
	// non-nil error means the strategy could not produce any content;
	// the orchestrator moves on to the next strategy in the chain.
	Extract(ctx context.Context, html string, pageURL string) (*model.ExtractionResult, error)
}

// Fetcher is the narrow subset of transport.Client the strategies that
// need a follow-up request (WordPress REST/AJAX, Next.js data routes)
// depend on. Defined here, not imported from internal/transport, to keep
// this package free of a transport dependency for the strategies that
// don't need one.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, int, error)
}
