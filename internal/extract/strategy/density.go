package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// Density scores the body's top-level (and one level of nested)
// containers by a CETD-style (Content Extraction via Tag-weighted
// Density) formula and keeps whichever block scores highest. It is the
// fallback of last resort before raw HTML: it works on pages with no
// semantic markup and no readability-friendly paragraph density at all.
type Density struct {
	scoreThreshold float64
}

func NewDensity() *Density { return &Density{scoreThreshold: 0.0} }

func (d *Density) Name() string { return "density" }

func (d *Density) Applicable(htmlStr string, pageURL string) bool { return len(htmlStr) > 0 }

const (
	wTextDensity   = 3.0
	wLinkDensity   = -2.0
	wTagWeight     = 1.5
	wClassIDWeight = 1.0
	wTextLength    = 0.5
)

var positiveClassIDPatterns = []string{"article", "content", "post", "story", "body", "main", "entry", "text"}
var negativeClassIDPatterns = []string{"nav", "menu", "sidebar", "footer", "header", "comment", "share", "related", "ad", "promo", "widget"}

func (d *Density) Extract(ctx context.Context, htmlStr string, pageURL string) (*model.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("density: parse: %w", err)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil, fmt.Errorf("density: no body element")
	}

	var best *goquery.Selection
	bestScore := d.scoreThreshold

	consider := func(_ int, s *goquery.Selection) {
		score := scoreNode(s)
		if score > bestScore {
			bestScore = score
			sel := s
			best = sel
		}
	}
	body.Children().Each(func(i int, s *goquery.Selection) {
		consider(i, s)
		s.Children().Each(consider)
	})

	var html string
	if best != nil {
		html, err = goquery.OuterHtml(best)
		if err != nil {
			html = ""
		}
	}
	if html == "" {
		html, err = body.Html()
		if err != nil {
			return nil, fmt.Errorf("density: could not serialize body: %w", err)
		}
	}
	clean, err := sanitize.HTML(html)
	if err != nil {
		clean = html
	}
	text := sanitize.VisibleText(clean)
	return &model.ExtractionResult{
		Strategy:     d.Name(),
		ContentHTML:  clean,
		ContentText:  text,
		WordCount:    sanitize.WordCount(text),
		Confidence:   0.4,
		FallbackUsed: best == nil,
	}, nil
}

func scoreNode(s *goquery.Selection) float64 {
	text := strings.TrimSpace(s.Text())
	textLen := float64(len(text))
	if textLen == 0 {
		return 0
	}
	linkText := 0.0
	s.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkText += float64(len(strings.TrimSpace(a.Text())))
	})
	htmlLen, _ := s.Html()
	tagLen := float64(len(htmlLen))
	if tagLen == 0 {
		tagLen = textLen
	}
	textDensity := textLen / tagLen
	linkDensity := linkText / textLen

	tag := goquery.NodeName(s)
	score := wTextDensity*textDensity +
		wLinkDensity*linkDensity +
		wTagWeight*tagWeight(tag) +
		wClassIDWeight*classIDWeight(s) +
		wTextLength*minF(textLen/1000.0, 1.0)
	return score
}

func tagWeight(tag string) float64 {
	switch tag {
	case "article", "main", "section":
		return 5.0
	case "nav", "footer", "aside", "header":
		return -5.0
	default:
		return 0
	}
}

func classIDWeight(s *goquery.Selection) float64 {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	combined := strings.ToLower(class + " " + id)
	weight := 0.0
	for _, p := range positiveClassIDPatterns {
		if strings.Contains(combined, p) {
			weight += 2.0
		}
	}
	for _, p := range negativeClassIDPatterns {
		if strings.Contains(combined, p) {
			weight -= 2.0
		}
	}
	return weight
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
