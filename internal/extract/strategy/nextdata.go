package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// nextDataScript matches Next.js Pages Router's inline
// <script id="__NEXT_DATA__" type="application/json"> state blob, which
// carries the buildId needed to construct the equivalent JSON data route.
var nextDataScript = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__"[^>]*>(.*?)</script>`)

// nextDataContentPaths are tried, in priority order, against a payload of
// the inline __NEXT_DATA__ shape (pageProps nested under "props").
var nextDataContentPaths = []string{
	"props.pageProps.post.content",
	"props.pageProps.article.content",
	"props.pageProps.content",
}

// NextData recovers article content via Next.js's Pages Router data
// route (/_next/data/<buildId>/<path>.json), which serves the same
// pageProps a client-side navigation would receive, without evaluating
// any JavaScript.
type NextData struct {
	Fetcher Fetcher
}

func NewNextData(f Fetcher) *NextData { return &NextData{Fetcher: f} }

func (n *NextData) Name() string { return "next-data" }

func (n *NextData) Applicable(htmlStr string, pageURL string) bool {
	return strings.Contains(htmlStr, "__NEXT_DATA__")
}

func (n *NextData) Extract(ctx context.Context, htmlStr string, pageURL string) (*model.ExtractionResult, error) {
	m := nextDataScript.FindStringSubmatch(htmlStr)
	if m == nil {
		return nil, fmt.Errorf("next-data: no __NEXT_DATA__ script found")
	}
	var inline struct {
		BuildID string `json:"buildId"`
		Page    string `json:"page"`
	}
	if err := json.Unmarshal([]byte(m[1]), &inline); err != nil {
		return nil, fmt.Errorf("next-data: decode inline state: %w", err)
	}

	// First try the inline payload itself — some pages already embed
	// pageProps in full (no extra fetch needed).
	var full any
	json.Unmarshal([]byte(m[1]), &full)
	if res := contentFromPageProps(full, n.Name(), 0.7); res != nil {
		return res, nil
	}

	if inline.BuildID == "" || n.Fetcher == nil {
		return nil, fmt.Errorf("next-data: inline payload incomplete and no fetcher available")
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("next-data: invalid url: %w", err)
	}
	dataPath := strings.TrimSuffix(u.Path, "/")
	if dataPath == "" {
		dataPath = "/index"
	}
	dataURL := fmt.Sprintf("%s://%s/_next/data/%s%s.json", u.Scheme, u.Host, inline.BuildID, dataPath)

	body, status, err := n.Fetcher.Get(ctx, dataURL)
	if err != nil {
		return nil, fmt.Errorf("next-data: fetch: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("next-data: unexpected status %d", status)
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("next-data: decode data route: %w", err)
	}
	// The data route answers with {"pageProps": ...}; wrap it in the
	// inline __NEXT_DATA__ shape so the same content paths apply.
	res := contentFromPageProps(map[string]any{"props": payload}, n.Name(), 0.75)
	if res == nil {
		return nil, fmt.Errorf("next-data: no content field found in pageProps")
	}
	return res, nil
}

func contentFromPageProps(payload any, strategyName string, confidence float64) *model.ExtractionResult {
	for _, path := range nextDataContentPaths {
		body, err := sanitize.DotPathString(payload, path)
		if err != nil || len(body) < minContentLength {
			continue
		}
		clean, err := sanitize.HTML(body)
		if err != nil {
			clean = body
		}
		text := sanitize.VisibleText(clean)
		return &model.ExtractionResult{
			Strategy:    strategyName,
			ContentHTML: clean,
			ContentText: text,
			WordCount:   sanitize.WordCount(text),
			Confidence:  confidence,
		}
	}
	return nil
}
