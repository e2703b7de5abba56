package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// articleTypes are the schema.org @type values JSONLD treats as an
// article-shaped payload worth extracting.
var articleTypes = map[string]bool{
	"Article":              true,
	"NewsArticle":          true,
	"BlogPosting":          true,
	"WebPage":              true,
	"ReportageNewsArticle": true,
	"TechArticle":          true,
}

// minJSONLDLength is the minimum recovered body length below which a
// JSON-LD candidate is discarded as too thin to be the article body
// (some WebPage nodes only carry a short teaser in "description").
const minJSONLDLength = 200

// JSONLD extracts structured article data from <script
// type="application/ld+json"> blocks, preferring schema.org Article-family
// payloads.
type JSONLD struct{}

func NewJSONLD() *JSONLD { return &JSONLD{} }

func (j *JSONLD) Name() string { return "json-ld" }

func (j *JSONLD) Applicable(htmlStr string, pageURL string) bool {
	return strings.Contains(htmlStr, "application/ld+json")
}

func (j *JSONLD) Extract(ctx context.Context, htmlStr string, pageURL string) (*model.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("jsonld: parse: %w", err)
	}

	var result *model.ExtractionResult
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		for _, candidate := range flattenJSONLD(raw) {
			if r := articleFromJSONLD(candidate); r != nil {
				result = r
				return false
			}
		}
		return true
	})
	if result == nil {
		return nil, fmt.Errorf("jsonld: no article-typed block found")
	}
	return result, nil
}

// flattenJSONLD expands @graph arrays and bare objects into a flat list of
// candidate nodes to inspect for an article @type.
func flattenJSONLD(raw any) []map[string]any {
	var out []map[string]any
	switch v := raw.(type) {
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			for _, g := range graph {
				if m, ok := g.(map[string]any); ok {
					out = append(out, m)
				}
			}
		}
		out = append(out, v)
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func articleFromJSONLD(m map[string]any) *model.ExtractionResult {
	typeName, _ := m["@type"].(string)
	if !articleTypes[typeName] {
		return nil
	}
	body, _ := m["articleBody"].(string)
	if body == "" {
		body, _ = m["text"].(string)
	}
	if body == "" {
		body, _ = m["description"].(string)
	}
	if len(body) < minJSONLDLength {
		return nil
	}
	title, _ := m["headline"].(string)
	if title == "" {
		title, _ = m["name"].(string)
	}
	byline := bylineFromJSONLD(m)
	published := publishedFromJSONLD(m)
	var siteName string
	if pub, ok := m["publisher"].(map[string]any); ok {
		siteName, _ = pub["name"].(string)
	}

	return &model.ExtractionResult{
		Strategy:    "json-ld",
		Title:       title,
		Byline:      byline,
		SiteName:    siteName,
		ContentText: body,
		ContentHTML: "<p>" + strings.ReplaceAll(body, "\n\n", "</p><p>") + "</p>",
		PublishedAt: published,
		WordCount:   sanitize.WordCount(body),
		Confidence:  0.85,
	}
}

func bylineFromJSONLD(m map[string]any) string {
	switch author := m["author"].(type) {
	case map[string]any:
		name, _ := author["name"].(string)
		return name
	case []any:
		var names []string
		for _, a := range author {
			if am, ok := a.(map[string]any); ok {
				if n, ok := am["name"].(string); ok {
					names = append(names, n)
				}
			}
		}
		return strings.Join(names, ", ")
	case string:
		return author
	}
	return ""
}

func publishedFromJSONLD(m map[string]any) time.Time {
	dateStr, ok := m["datePublished"].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}
	}
	return t
}

// JSONLDMetadata is the byline/published-date/access/word-count fields a
// JSON-LD block can carry even when its @type or body isn't substantial
// enough for the JSONLD strategy itself to win — used to backfill a
// different strategy's result rather than to produce one of its own.
type JSONLDMetadata struct {
	Byline              string
	PublishedAt         time.Time
	HasAccessInfo       bool
	IsAccessibleForFree bool
	DeclaredWordCount   int
}

// ExtractJSONLDMetadata scans every JSON-LD block in the document (not
// just article-typed ones) for byline/published-date/paywall/word-count
// metadata, returning the first non-empty value found for each field.
func ExtractJSONLDMetadata(htmlStr string) JSONLDMetadata {
	var meta JSONLDMetadata
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return meta
	}
	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return
		}
		for _, m := range flattenJSONLD(raw) {
			if meta.Byline == "" {
				meta.Byline = bylineFromJSONLD(m)
			}
			if meta.PublishedAt.IsZero() {
				meta.PublishedAt = publishedFromJSONLD(m)
			}
			if !meta.HasAccessInfo {
				if v, ok := m["isAccessibleForFree"].(bool); ok {
					meta.HasAccessInfo = true
					meta.IsAccessibleForFree = v
				}
			}
			if meta.DeclaredWordCount == 0 {
				switch wc := m["wordCount"].(type) {
				case float64:
					meta.DeclaredWordCount = int(wc)
				case string:
					if parsed, err := strconv.Atoi(wc); err == nil {
						meta.DeclaredWordCount = parsed
					}
				}
			}
		}
	})
	return meta
}
