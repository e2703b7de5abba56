package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// WordPressAJAX recovers article content loaded via admin-ajax.php (the
// classic WordPress "load more"/infinite-scroll pattern, still common on
// themes that render the initial article body client-side via an
// action=get_post_content-style endpoint). The request is always
// rewritten to the document's own origin — never to a host named only in
// the page content — so a compromised page cannot use this strategy to
// make the fetcher call an attacker-controlled internal URL (SSRF gate).
type WordPressAJAX struct {
	Fetcher Fetcher
}

func NewWordPressAJAX(f Fetcher) *WordPressAJAX { return &WordPressAJAX{Fetcher: f} }

func (w *WordPressAJAX) Name() string { return "wp-ajax" }

func (w *WordPressAJAX) Applicable(htmlStr string, pageURL string) bool {
	return strings.Contains(htmlStr, "admin-ajax.php")
}

func (w *WordPressAJAX) Extract(ctx context.Context, htmlStr string, pageURL string) (*model.ExtractionResult, error) {
	if w.Fetcher == nil {
		return nil, fmt.Errorf("wp-ajax: no fetcher configured")
	}
	pageOrigin, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("wp-ajax: invalid page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("wp-ajax: parse: %w", err)
	}

	action, postID := findAjaxContentAction(doc)
	if action == "" {
		return nil, fmt.Errorf("wp-ajax: no content-loading ajax action found")
	}

	ajaxURL := fmt.Sprintf("%s://%s/wp-admin/admin-ajax.php?action=%s&post_id=%s",
		pageOrigin.Scheme, pageOrigin.Host, url.QueryEscape(action), url.QueryEscape(postID))

	body, status, err := w.Fetcher.Get(ctx, ajaxURL)
	if err != nil {
		return nil, fmt.Errorf("wp-ajax: fetch: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("wp-ajax: unexpected status %d", status)
	}

	content := string(body)
	// Some ajax endpoints wrap the HTML fragment in a JSON envelope
	// ({"success":true,"data":"<p>...</p>"}); try that first.
	var envelope struct {
		Data any `json:"data"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if s, ok := envelope.Data.(string); ok && s != "" {
			content = s
		}
	}

	clean, err := sanitize.HTML(content)
	if err != nil {
		clean = content
	}
	text := sanitize.VisibleText(clean)
	if len(text) < minContentLength {
		return nil, fmt.Errorf("wp-ajax: recovered content too short")
	}

	return &model.ExtractionResult{
		Strategy:    w.Name(),
		ContentHTML: clean,
		ContentText: text,
		WordCount:   sanitize.WordCount(text),
		Confidence:  0.5,
	}, nil
}

// findAjaxContentAction looks for a data-action/data-post-id pair naming a
// content-shaped ajax action (as opposed to comments, likes, or share
// counters, which also commonly use admin-ajax.php). Failing that, it
// scans inline scripts that mention admin-ajax.php for one of the
// content-action hints and returns that hint word as the action; no post
// id is recovered from scripts.
func findAjaxContentAction(doc *goquery.Document) (action, postID string) {
	contentActionHints := []string{"get_content", "load_content", "post_content", "single_content", "article_content"}

	var found string
	var foundID string
	doc.Find("[data-action]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		a, _ := s.Attr("data-action")
		for _, hint := range contentActionHints {
			if strings.Contains(a, hint) {
				found = a
				foundID, _ = s.Attr("data-post-id")
				return false
			}
		}
		return true
	})
	if found != "" {
		return found, foundID
	}

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		idx := strings.Index(t, "admin-ajax.php")
		if idx < 0 {
			return true
		}
		for _, hint := range contentActionHints {
			hintIdx := strings.Index(t, hint)
			if hintIdx > 0 {
				found = hint
				return false
			}
		}
		return true
	})
	return found, foundID
}
