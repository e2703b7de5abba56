package strategy

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// defaultContentSelectors are tried in order; the first selector whose
// matched nodes carry at least minContentLength characters of visible
// text wins. Grounded on the common conventions
// across blogging platforms and CMSes.
var defaultContentSelectors = []string{
	"article",
	"[itemprop='articleBody']",
	"main article",
	".post-content",
	".entry-content",
	".article-content",
	"#content article",
	"main",
}

// Selector harvests content by matching a prioritized list of CSS
// selectors against the parsed DOM, falling back through the list until
// one matches.
type Selector struct {
	selectors []string
}

func NewSelector(selectors ...string) *Selector {
	if len(selectors) == 0 {
		selectors = defaultContentSelectors
	}
	return &Selector{selectors: selectors}
}

func (s *Selector) Name() string { return "selector" }

func (s *Selector) Applicable(htmlStr string, pageURL string) bool {
	return len(htmlStr) > 0
}

func (s *Selector) Extract(ctx context.Context, htmlStr string, pageURL string) (*model.ExtractionResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("selector: parse: %w", err)
	}
	for _, sel := range s.selectors {
		matcher, err := cascadia.Parse(sel)
		if err != nil {
			continue
		}
		nodes := cascadia.QueryAll(doc, matcher)
		if len(nodes) == 0 {
			continue
		}
		var buf bytes.Buffer
		for _, n := range nodes {
			html.Render(&buf, n)
		}
		text := sanitize.VisibleText(buf.String())
		if len(text) < minContentLength {
			continue
		}
		clean, err := sanitize.HTML(buf.String())
		if err != nil {
			clean = buf.String()
		}
		return &model.ExtractionResult{
			Strategy:    s.Name(),
			ContentHTML: clean,
			ContentText: text,
			WordCount:   sanitize.WordCount(text),
			Confidence:  0.6,
		}, nil
	}
	return nil, fmt.Errorf("selector: no configured selector matched")
}
