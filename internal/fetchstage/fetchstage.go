// Package fetchstage glues together the transport, anti-bot detector,
// sanitizer, extraction orchestrator, and markdown converter into the
// single "fetch a URL, get structured content back" operation the CLI and
// MCP server expose.
package fetchstage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/lynxget/internal/antibot"
	"github.com/use-agent/lynxget/internal/archive"
	"github.com/use-agent/lynxget/internal/extract"
	"github.com/use-agent/lynxget/internal/markdownconv"
	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
	"github.com/use-agent/lynxget/internal/transport"
)

// Stage wires the collaborators together.
type Stage struct {
	transport          *transport.Client
	orchestrator       *extract.Orchestrator
	detector           *antibot.Detector
	archiveClient      *archive.Client
	markdown           *markdownconv.Converter
	useArchiveFallback bool
	includeSelectors   []string
	excludeSelectors   []string
}

// StageConfig controls which fallbacks the stage will use.
type StageConfig struct {
	UseArchiveFallback bool
	// IncludeSelectors/ExcludeSelectors apply internal/sanitize's
	// selector-based content filter to the extracted HTML before
	// markdown conversion, the same include/exclude shape the crawler's
	// frontier applies to URLs.
	IncludeSelectors []string
	ExcludeSelectors []string
}

func New(t *transport.Client, o *extract.Orchestrator, md *markdownconv.Converter, cfg StageConfig) *Stage {
	return &Stage{
		transport:          t,
		orchestrator:       o,
		detector:           antibot.NewDetector(),
		archiveClient:      archive.New(t),
		markdown:           md,
		useArchiveFallback: cfg.UseArchiveFallback,
		includeSelectors:   cfg.IncludeSelectors,
		excludeSelectors:   cfg.ExcludeSelectors,
	}
}

// Result is the full outcome of one Fetch call: the raw fetch, any
// anti-bot detections, and (if extraction succeeded) the structured
// result with Markdown attached.
type Result struct {
	Fetch      model.FetchResult
	Detections []model.AntibotDetection
	Extraction *model.ExtractionResult
}

// minBodyBytes and minQuickValidateWords are the quick_validate gates from
// spec §4.4 step 4: a response passing status/content-type checks can
// still be a thin interstitial, so the body is also checked for bulk.
const (
	minBodyBytes          = 5 * 1024
	minQuickValidateWords = 100
)

// Fetch performs fetch -> quick-validate -> antibot-detect -> (archive
// fallback if blocked) -> extract -> markdown-convert for one URL.
func (s *Stage) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if rawURL == "" || !strings.HasPrefix(rawURL, "http") {
		return nil, NewFetchError(ErrTagInvalidURL, fmt.Sprintf("not an http(s) url: %q", rawURL), nil)
	}

	start := time.Now()
	resp, err := s.transport.Do(ctx, transport.Request{URL: rawURL})
	if err != nil {
		return nil, NewFetchError(ErrTagNetwork, "transport request failed", err)
	}

	fr := model.FetchResult{
		URL:         rawURL,
		FinalURL:    resp.FinalURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Headers,
		Body:        resp.Body,
		ContentType: resp.Headers["content-type"],
		Duration:    time.Since(start),
	}

	detections := s.detector.Detect(fr)
	blocked := fr.StatusCode >= 400 || anySuggestsAlt(detections)
	quickErr := quickValidate(fr)
	if quickErr != "" {
		blocked = true
	}

	if blocked && s.useArchiveFallback {
		if archived, err := s.archiveClient.Fetch(ctx, rawURL); err == nil {
			fr = *archived
			detections = append(detections, model.AntibotDetection{
				Name: archived.ArchiveName, Category: "archive_fallback_used", Confidence: 100,
				SuggestedAction: model.ActionGiveUp,
			})
			blocked = false
			quickErr = ""
		} else {
			return &Result{Fetch: fr, Detections: detections}, NewFetchError(ErrTagNoArchiveAvailable,
				"direct fetch blocked and no archive snapshot available", err)
		}
	}

	if blocked {
		if quickErr != "" {
			return &Result{Fetch: fr, Detections: detections}, NewFetchError(quickErr,
				fmt.Sprintf("quick_validate failed (status=%d)", fr.StatusCode), nil)
		}
		if fr.StatusCode == http.StatusTooManyRequests {
			return &Result{Fetch: fr, Detections: detections}, NewFetchError(ErrTagRateLimited,
				"rate limited", nil)
		}
		return &Result{Fetch: fr, Detections: detections}, NewFetchError(ErrTagHTTPError,
			fmt.Sprintf("blocked (status=%d)", fr.StatusCode), nil)
	}
	if fr.StatusCode >= http.StatusBadRequest {
		return &Result{Fetch: fr, Detections: detections}, NewFetchError(ErrTagHTTPStatus,
			fmt.Sprintf("unexpected status %d", fr.StatusCode), nil)
	}

	extraction, err := s.orchestrator.Extract(ctx, string(fr.Body), fr.URL)
	if err != nil {
		return &Result{Fetch: fr, Detections: detections}, NewFetchError(ErrTagExtraction, "no strategy produced content", err)
	}
	extraction.ArchiveURL = fr.ArchiveURL

	if len(s.includeSelectors) > 0 || len(s.excludeSelectors) > 0 {
		if filtered, ferr := sanitize.FilterContent(extraction.ContentHTML, s.includeSelectors, s.excludeSelectors); ferr == nil {
			extraction.ContentHTML = filtered
			extraction.ContentText = sanitize.VisibleText(filtered)
			extraction.WordCount = sanitize.WordCount(extraction.ContentText)
		}
	}

	extraction.Markdown = s.markdown.HTMLToMarkdown(extraction.ContentHTML, hostOf(fr.URL))

	return &Result{Fetch: fr, Detections: detections, Extraction: extraction}, nil
}

// quickValidate runs spec §4.4 step 4's cheap pre-extraction checks on a
// 2xx response: text/html content type, non-trivial size and word count.
// It returns "" when the response passes. A non-2xx response is not
// judged here (it also returns ""); Fetch handles status codes itself.
func quickValidate(fr model.FetchResult) ErrorTag {
	if fr.StatusCode < 200 || fr.StatusCode >= 300 {
		return ""
	}
	if fr.ContentType != "" && !strings.Contains(strings.ToLower(fr.ContentType), "text/html") {
		return ErrTagWrongContentType
	}
	if len(fr.Body) < minBodyBytes {
		return ErrTagBodyTooSmall
	}
	text := sanitize.VisibleText(string(fr.Body))
	if sanitize.WordCount(text) < minQuickValidateWords {
		return ErrTagInsufficientContent
	}
	return ""
}

// Close releases the stage's background resources.
func (s *Stage) Close() { s.orchestrator.Close() }

func anySuggestsAlt(detections []model.AntibotDetection) bool {
	for _, d := range detections {
		if d.SuggestedAction == model.ActionTryArchive && d.Confidence >= 70 {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	const prefix1, prefix2 = "https://", "http://"
	s := rawURL
	if strings.HasPrefix(s, prefix1) {
		s = s[len(prefix1):]
	} else if strings.HasPrefix(s, prefix2) {
		s = s[len(prefix2):]
	}
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	return s
}
