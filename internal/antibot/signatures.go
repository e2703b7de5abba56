// Package antibot detects bot-protection and anti-scraping measures in a
// fetched response by matching a process-wide, read-only table of known
// provider signatures against status code, headers, cookies, body
// content, and SPA-root markup.
package antibot

import "github.com/use-agent/lynxget/internal/model"

// Signatures is the one piece of explicitly documented global, read-only
// state in this module (see SPEC_FULL.md §3 / spec.md §9): every known
// bot-protection signal lives here as data, not as branches in the
// detector's control flow, so adding a provider never requires touching
// detector.go.
var Signatures = []model.Signature{
	{Name: "generic", Category: "access_denied", Source: model.SourceStatusCode, Match: "403", Confidence: 90, SuggestedAction: model.ActionTryArchive, Description: "HTTP 403 Forbidden"},
	{Name: "cloudflare", Category: "challenge", Source: model.SourceStatusCode, Match: "503", Confidence: 70, SuggestedAction: model.ActionTryArchive, Description: "HTTP 503, commonly a Cloudflare challenge"},
	{Name: "generic", Category: "rate_limited", Source: model.SourceStatusCode, Match: "429", Confidence: 95, SuggestedAction: model.ActionRetryHeaders, Description: "HTTP 429 Too Many Requests"},

	{Name: "cloudflare", Category: "challenge", Source: model.SourceHeader, Key: "cf-mitigated", Match: "challenge", Confidence: 95, SuggestedAction: model.ActionTryArchive, Description: "cf-mitigated: challenge header"},
	{Name: "cloudflare", Category: "fronting", Source: model.SourceHeader, Key: "cf-ray", Match: "", Confidence: 30, SuggestedAction: model.ActionUnknown, Description: "cf-ray header present (Cloudflare-fronted, not necessarily blocking)"},
	{Name: "akamai", Category: "fronting", Source: model.SourceHeader, Key: "x-akamai-transformed", Match: "", Confidence: 30, SuggestedAction: model.ActionUnknown, Description: "Akamai-fronted"},
	{Name: "perimeterx", Category: "challenge", Source: model.SourceHeader, Key: "x-px-block-reason", Match: "", Confidence: 90, SuggestedAction: model.ActionTryArchive, Description: "PerimeterX block header present"},

	{Name: "cloudflare", Category: "challenge", Source: model.SourceCookie, Key: "cf_clearance", Match: "", Confidence: 20, SuggestedAction: model.ActionUnknown, Description: "cf_clearance cookie set (already cleared, informational)"},
	{Name: "cloudflare", Category: "challenge", Source: model.SourceCookie, Key: "__cf_bm", Match: "", Confidence: 35, SuggestedAction: model.ActionRetryTLS, Description: "__cf_bm bot-management cookie present"},
	{Name: "datadome", Category: "challenge", Source: model.SourceCookie, Key: "datadome", Match: "", Confidence: 40, SuggestedAction: model.ActionRetryTLS, Description: "datadome cookie present"},

	{Name: "cloudflare", Category: "challenge", Source: model.SourceBody, Match: "cf-browser-verification", Confidence: 90, SuggestedAction: model.ActionTryArchive, Description: "Cloudflare browser-verification page"},
	{Name: "cloudflare", Category: "challenge", Source: model.SourceBody, Match: "Just a moment...", Confidence: 90, SuggestedAction: model.ActionTryArchive, Description: "Cloudflare interstitial title"},
	{Name: "cloudflare", Category: "challenge", Source: model.SourceBody, Match: "challenge-platform", Confidence: 90, SuggestedAction: model.ActionTryArchive, Description: "Cloudflare challenge-platform script"},
	{Name: "recaptcha", Category: "captcha", Source: model.SourceBody, Match: "g-recaptcha", Confidence: 95, SuggestedAction: model.ActionSolveCaptcha, Description: "Google reCAPTCHA widget"},
	{Name: "hcaptcha", Category: "captcha", Source: model.SourceBody, Match: "h-captcha", Confidence: 95, SuggestedAction: model.ActionSolveCaptcha, Description: "hCaptcha widget"},
	{Name: "turnstile", Category: "captcha", Source: model.SourceBody, Match: "cf-turnstile", Confidence: 95, SuggestedAction: model.ActionSolveCaptcha, Description: "Cloudflare Turnstile widget"},
	{Name: "generic", Category: "access_denied", Source: model.SourceBody, Match: "Access Denied", Confidence: 85, SuggestedAction: model.ActionTryArchive, Description: "Generic access-denied page text"},
	{Name: "generic", Category: "access_denied", Source: model.SourceBody, Match: "prove you're not a robot", Confidence: 85, SuggestedAction: model.ActionSolveCaptcha, Description: "Generic human-verification prompt"},
	{Name: "generic", Category: "js_required", Source: model.SourceBody, Match: "enable JavaScript", Confidence: 70, SuggestedAction: model.ActionTryArchive, Description: "Page asks the visitor to enable JavaScript"},

	{Name: "spa", Category: "js_required", Source: model.SourceWindowPath, Match: `<div\s+id=["'](?:root|app|__next|__nuxt)["'][^>]*>\s*</div>`, Confidence: 85, SuggestedAction: model.ActionTryArchive, Description: "Empty SPA root element"},
	{Name: "spa", Category: "js_required", Source: model.SourceWindowPath, Match: `<app-root[^>]*>\s*</app-root>`, Confidence: 85, SuggestedAction: model.ActionTryArchive, Description: "Empty Angular app-root element"},
}
