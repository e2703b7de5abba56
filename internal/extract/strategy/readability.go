package strategy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// minContentLength is the recovered-content length below which a result
// is considered too thin to trust, matching the teacher's own threshold.
// Used by the structural strategies (selector, nuxt, react-router,
// next-rsc, next-data, wp-ajax); the Readability strategy itself uses the
// stricter two-tier thresholds below.
const minContentLength = 50

// readabilityMinLength and readabilityRelaxedMinLength are Readability's
// own two acceptance tiers: a normal parse must clear 200 chars to be
// trusted as "readability"; go-shiori/go-readability's FromReader has no
// tunable char-threshold knob to actually re-run at a different setting,
// so both tiers are evaluated against the single parse's TextContent —
// between 100 and 200 chars the result is still returned, tagged
// "readability-relaxed" so callers can weigh it accordingly.
const (
	readabilityMinLength        = 200
	readabilityRelaxedMinLength = 100
)

// Readability wraps go-shiori/go-readability (a Mozilla Readability port),
// the highest-confidence strategy for conventional article pages.
type Readability struct{}

func NewReadability() *Readability { return &Readability{} }

func (r *Readability) Name() string { return "readability" }

func (r *Readability) Applicable(html string, pageURL string) bool {
	return strings.Contains(html, "<article") || strings.Contains(html, "<p") || true
}

func (r *Readability) Extract(ctx context.Context, html string, pageURL string) (*model.ExtractionResult, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: invalid url: %w", err)
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	textLen := len(strings.TrimSpace(article.TextContent))
	if textLen < readabilityRelaxedMinLength {
		return nil, fmt.Errorf("readability: content too short (%d chars)", textLen)
	}
	strategyName := r.Name()
	if textLen < readabilityMinLength {
		strategyName = "readability-relaxed"
	}
	cleanHTML, err := sanitize.HTML(article.Content)
	if err != nil {
		cleanHTML = article.Content
	}
	return &model.ExtractionResult{
		Strategy:    strategyName,
		Title:       article.Title,
		Byline:      article.Byline,
		SiteName:    article.SiteName,
		Excerpt:     article.Excerpt,
		ContentHTML: cleanHTML,
		ContentText: article.TextContent,
		Lang:        article.Language,
		WordCount:   sanitize.WordCount(article.TextContent),
		Confidence:  0.9,
	}, nil
}
