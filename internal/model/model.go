// Package model holds the data types shared by the extraction, fetch,
// anti-bot, and crawl packages.
package model

import "time"

// MediaKind classifies a MediaElement.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
)

// MediaElement is a non-text asset referenced by an extracted page.
type MediaElement struct {
	Kind    MediaKind
	URL     string
	Alt     string
	Caption string
	Width   int
	Height  int
}

// ExtractionResult is the product of running the extraction orchestrator
// against a fetched HTML document.
type ExtractionResult struct {
	Strategy            string
	Title               string
	Byline              string
	SiteName            string
	Excerpt             string
	ContentHTML         string
	ContentText         string
	Markdown            string
	Lang                string
	PublishedAt         time.Time
	Media               []MediaElement
	WordCount           int
	Confidence          float64
	Truncated           bool
	FallbackUsed        bool
	ArchiveURL          string
	IsAccessibleForFree bool
	DeclaredWordCount   int
}

// HasByline reports whether a byline was recovered.
func (r ExtractionResult) HasByline() bool { return r.Byline != "" }

// HasPublishedAt reports whether a publish date was recovered.
func (r ExtractionResult) HasPublishedAt() bool { return !r.PublishedAt.IsZero() }

// FetchResult is the raw product of a transport fetch, before extraction.
type FetchResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	Headers     map[string]string
	Cookies     []string
	Body        []byte
	ContentType string
	Duration    time.Duration
	FromArchive bool
	ArchiveName string
	ArchiveURL  string
}

// SuggestedAction is the remediation an anti-bot detection recommends to
// the caller.
type SuggestedAction string

const (
	ActionRetryTLS     SuggestedAction = "retry-tls"
	ActionTryArchive   SuggestedAction = "try-archive"
	ActionRetryHeaders SuggestedAction = "retry-headers"
	ActionSolveCaptcha SuggestedAction = "solve-captcha"
	ActionGiveUp       SuggestedAction = "give-up"
	ActionUnknown      SuggestedAction = "unknown"
)

// AntibotDetection describes one matched anti-bot/bot-protection provider,
// with evidence merged from every signature row that matched it.
type AntibotDetection struct {
	Name            string
	Category        string
	Confidence      int
	Evidence        []string
	SuggestedAction SuggestedAction
}

// SignatureSource names which part of the response a Signature inspects.
type SignatureSource string

const (
	SourceStatusCode SignatureSource = "status_code"
	SourceHeader     SignatureSource = "header"
	SourceCookie     SignatureSource = "cookie"
	SourceBody       SignatureSource = "body"
	SourceWindowPath SignatureSource = "window_path"
)

// Signature is one row of the process-wide, read-only anti-bot signature
// table.
type Signature struct {
	Name            string
	Category        string
	Source          SignatureSource
	Key             string // header/cookie name, ignored for body/status/window_path sources
	Match           string // substring, status code literal, or (window_path) regex
	Confidence      int
	SuggestedAction SuggestedAction
	Description     string
}

// FrontierEntry is one URL queued by the crawler.
type FrontierEntry struct {
	URL       string
	Depth     int
	Discovered time.Time
	FromSitemap bool
}
