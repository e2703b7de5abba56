package antibot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/lynxget/internal/model"
)

func TestDetect_CloudflareChallenge(t *testing.T) {
	d := NewDetector()
	fr := model.FetchResult{
		StatusCode: 503,
		Headers:    map[string]string{"cf-mitigated": "challenge"},
		Body:       []byte("<html><body>Just a moment...</body></html>"),
	}
	dets := d.Detect(fr)
	require.NotEmpty(t, dets)
	assert.Equal(t, "cloudflare", dets[0].Name)
	assert.Equal(t, "challenge", dets[0].Category)
	assert.GreaterOrEqual(t, dets[0].Confidence, 90)
	assert.Equal(t, model.ActionTryArchive, dets[0].SuggestedAction)
	assert.NotEmpty(t, dets[0].Evidence)
}

func TestDetect_CloudflareHeaderAndCookieCorroborateToFullConfidence(t *testing.T) {
	d := NewDetector()
	fr := model.FetchResult{
		StatusCode: 200,
		Headers:    map[string]string{"cf-mitigated": "challenge"},
		Cookies:    []string{"__cf_bm=abc123; Path=/"},
		Body:       []byte(strings.Repeat("normal page content. ", 50)),
	}
	dets := d.Detect(fr)
	require.NotEmpty(t, dets)

	var cf model.AntibotDetection
	for _, d := range dets {
		if d.Name == "cloudflare" {
			cf = d
		}
	}
	require.NotEmpty(t, cf.Name)
	assert.Equal(t, 100, cf.Confidence)
	joined := strings.Join(cf.Evidence, " | ")
	assert.Contains(t, joined, "cf-mitigated")
	assert.Contains(t, joined, "__cf_bm")
}

func TestDetect_RateLimitedDoesNotSuggestArchive(t *testing.T) {
	d := NewDetector()
	fr := model.FetchResult{StatusCode: 429, Body: []byte("too many requests")}
	dets := d.Detect(fr)
	require.NotEmpty(t, dets)
	var found bool
	for _, det := range dets {
		if det.Category == "rate_limited" {
			found = true
			assert.NotEqual(t, model.ActionTryArchive, det.SuggestedAction)
		}
	}
	assert.True(t, found)
}

func TestDetect_CleanPageProducesNoDetections(t *testing.T) {
	d := NewDetector()
	body := make([]byte, 0, 2000)
	for i := 0; i < 200; i++ {
		body = append(body, []byte("<p>This is a normal paragraph of real article content.</p>")...)
	}
	fr := model.FetchResult{StatusCode: 200, Body: body}
	dets := d.Detect(fr)
	assert.Empty(t, dets)
}

func TestMergeDetections_UnionsEvidenceAndEscalatesConfidence(t *testing.T) {
	in := []model.AntibotDetection{
		{Name: "cloudflare", Confidence: 30, Evidence: []string{"cf-ray present"}},
		{Name: "cloudflare", Confidence: 90, Evidence: []string{"Just a moment..."}},
		{Name: "recaptcha", Confidence: 95, Evidence: []string{"g-recaptcha"}},
	}
	out := MergeDetections(in)
	require.Len(t, out, 2)
	for _, d := range out {
		if d.Name == "cloudflare" {
			assert.Equal(t, 95, d.Confidence) // 90 + 5 for the one corroborating match
			assert.ElementsMatch(t, []string{"cf-ray present", "Just a moment..."}, d.Evidence)
		}
	}
}
