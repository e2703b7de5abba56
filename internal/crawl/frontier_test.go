package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFrontier(t *testing.T, cfg Config) *Frontier {
	t.Helper()
	f, err := NewFrontier(cfg)
	require.NoError(t, err)
	return f
}

func TestFrontier_RejectsCrossOriginLinks(t *testing.T) {
	f := newTestFrontier(t, Config{Origin: "https://example.com", MaxDepth: 3, MaxPages: 100})
	assert.True(t, f.Add("https://example.com/a", 1, false))
	assert.False(t, f.Add("https://other.com/a", 1, false))
}

func TestFrontier_EnforcesDepthCap(t *testing.T) {
	f := newTestFrontier(t, Config{Origin: "https://example.com", MaxDepth: 2, MaxPages: 100})
	assert.True(t, f.Add("https://example.com/ok", 2, false))
	assert.False(t, f.Add("https://example.com/too-deep", 3, false))
}

func TestFrontier_DedupesNormalizedURLs(t *testing.T) {
	f := newTestFrontier(t, Config{Origin: "https://example.com", MaxDepth: 3, MaxPages: 100})
	assert.True(t, f.Add("https://example.com/a#frag1", 1, false))
	assert.False(t, f.Add("https://example.com/a#frag2", 1, false))
}

func TestFrontier_EnforcesQueueCapacity(t *testing.T) {
	f := newTestFrontier(t, Config{Origin: "https://example.com", MaxDepth: 3, MaxPages: 100, MaxQueueSize: 1})
	assert.True(t, f.Add("https://example.com/a", 1, false))
	assert.False(t, f.Add("https://example.com/b", 1, false))
}

func TestFrontier_IncludeExcludeGlobs(t *testing.T) {
	f := newTestFrontier(t, Config{
		Origin:   "https://example.com",
		MaxDepth: 3,
		MaxPages: 100,
		Include:  []string{"https://example.com/blog/*"},
		Exclude:  []string{"https://example.com/blog/drafts/*"},
	})
	assert.True(t, f.Add("https://example.com/blog/post-1", 1, false))
	assert.False(t, f.Add("https://example.com/about", 1, false))
	assert.False(t, f.Add("https://example.com/blog/drafts/wip", 1, false))
}

func TestFrontier_NextRespectsMaxPages(t *testing.T) {
	f := newTestFrontier(t, Config{Origin: "https://example.com", MaxDepth: 3, MaxPages: 1})
	f.Seed("https://example.com/")
	f.Add("https://example.com/a", 1, false)

	_, ok := f.Next()
	require.True(t, ok)

	_, ok = f.Next()
	assert.False(t, ok, "should stop once the page cap is reached")
}

func TestFrontier_NextPopsInFIFOOrder(t *testing.T) {
	f := newTestFrontier(t, Config{Origin: "https://example.com", MaxDepth: 3, MaxPages: 100})
	f.Seed("https://example.com/first")
	f.Add("https://example.com/second", 1, false)

	e1, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/first", e1.URL)

	e2, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/second", e2.URL)
}
