package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waybackSource(t *testing.T) Source {
	t.Helper()
	for _, s := range Sources {
		if s.Name == "wayback" {
			return s
		}
	}
	t.Fatal("wayback source not found")
	return Source{}
}

func archiveIsSource(t *testing.T) Source {
	t.Helper()
	for _, s := range Sources {
		if s.Name == "archive.is" {
			return s
		}
	}
	t.Fatal("archive.is source not found")
	return Source{}
}

func TestSources_BuildURLUsesSingleHopTemplates(t *testing.T) {
	wayback := waybackSource(t)
	u := wayback.BuildURL("https://example.com/post")
	assert.Equal(t, "https://web.archive.org/web/2if_/https://example.com/post", u)

	is := archiveIsSource(t)
	u = is.BuildURL("https://example.com/post")
	assert.Equal(t, "https://archive.is/latest/https://example.com/post", u)
}

func TestWaybackSource_NotFoundOn404OrKnownMessage(t *testing.T) {
	src := waybackSource(t)
	require.True(t, src.IsNotFound(404, ""))
	require.True(t, src.IsNotFound(200, "Wayback Machine doesn't have that page archived."))
	require.False(t, src.IsNotFound(200, "<html>actual archived snapshot content</html>"))
}

func TestArchiveIsSource_NotFoundRequiresSmallBodyAndPhrase(t *testing.T) {
	src := archiveIsSource(t)
	assert.True(t, src.IsNotFound(200, "No results for this URL"))
	assert.True(t, src.IsNotFound(200, "This page has not been archived"))
	assert.True(t, src.IsNotFound(200, "no snapshots found for that page"))
	assert.True(t, src.IsNotFound(200, "webpage not found in our index"))
	assert.False(t, src.IsNotFound(200, "<html>actual snapshot content</html>"))

	// A long response that happens to contain one of the phrases is not
	// flagged not-found; the byte-size gate protects against that.
	longBody := "No results" + strings.Repeat("x", archiveIsNotFoundMaxBytes)
	assert.False(t, src.IsNotFound(200, longBody))
}

func TestStripWaybackChrome_RemovesToolbarAndStaticScript(t *testing.T) {
	html := `<html><body>` +
		`<!-- BEGIN WAYBACK TOOLBAR INSERT -->toolbar junk<!-- END WAYBACK TOOLBAR INSERT -->` +
		`<script src="https://web-static.archive.org/_static/js/bundle.js"></script>` +
		`<article>real content</article></body></html>`
	out := stripWaybackChrome(html)
	assert.NotContains(t, out, "toolbar junk")
	assert.NotContains(t, out, "_static")
	assert.Contains(t, out, "real content")
}

func TestStripWaybackChrome_NoopWhenChromeAbsent(t *testing.T) {
	html := `<html><body><article>real content</article></body></html>`
	out := stripWaybackChrome(html)
	assert.Equal(t, html, out)
}
