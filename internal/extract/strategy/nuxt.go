package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// nuxtContentKeys are the field names Nuxt content modules (Nuxt
// Content, most blog/docs themes) commonly use for the rendered article
// body inside the __NUXT_DATA__ payload.
var nuxtContentKeys = []string{"body", "content", "html", "text"}
var nuxtTitleKeys = []string{"title", "headline"}

// Nuxt recovers article content from Nuxt 3's inlined
// <script id="__NUXT_DATA__" type="application/json"> state payload,
// which Nuxt's devalue-flattened array format stores as a flat array of
// values referencing each other by index.
type Nuxt struct{}

func NewNuxt() *Nuxt { return &Nuxt{} }

func (n *Nuxt) Name() string { return "nuxt" }

func (n *Nuxt) Applicable(htmlStr string, pageURL string) bool {
	return strings.Contains(htmlStr, "__NUXT_DATA__")
}

func (n *Nuxt) Extract(ctx context.Context, htmlStr string, pageURL string) (*model.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("nuxt: parse: %w", err)
	}
	script := doc.Find("script#__NUXT_DATA__")
	if script.Length() == 0 {
		return nil, fmt.Errorf("nuxt: no __NUXT_DATA__ script found")
	}

	var payload []any
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
		return nil, fmt.Errorf("nuxt: decode devalue array: %w", err)
	}

	title := findNuxtString(payload, nuxtTitleKeys)
	body := findNuxtString(payload, nuxtContentKeys)
	if body == "" {
		return nil, fmt.Errorf("nuxt: no content field found in payload")
	}

	clean, err := sanitize.HTML(body)
	if err != nil {
		clean = body
	}
	text := sanitize.VisibleText(clean)
	if len(text) < minContentLength {
		return nil, fmt.Errorf("nuxt: recovered content too short")
	}

	return &model.ExtractionResult{
		Strategy:    n.Name(),
		Title:       title,
		ContentHTML: clean,
		ContentText: text,
		WordCount:   sanitize.WordCount(text),
		Confidence:  0.7,
	}, nil
}

// findNuxtString walks the devalue-flattened array looking for an object
// whose key matches one of keys and whose value is a long-enough string,
// resolving one level of index indirection (devalue replaces nested
// values with an integer index into the same top-level array).
func findNuxtString(payload []any, keys []string) string {
	best := ""
	for _, item := range payload {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range keys {
			raw, ok := obj[k]
			if !ok {
				continue
			}
			s := resolveNuxtValue(payload, raw)
			if len(s) > len(best) {
				best = s
			}
		}
	}
	return best
}

func resolveNuxtValue(payload []any, raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		idx := int(v)
		if idx >= 0 && idx < len(payload) {
			if s, ok := payload[idx].(string); ok {
				return s
			}
		}
	}
	return ""
}
