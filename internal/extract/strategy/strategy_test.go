package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body   []byte
	status int
	err    error
}

func (f fakeFetcher) Get(ctx context.Context, url string) ([]byte, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.body, f.status, nil
}

func longParagraph(n int) string {
	return "<p>" + strings.Repeat("word ", n) + "</p>"
}

func TestNuxt_ResolvesDevalueIndexIndirection(t *testing.T) {
	payload := []any{
		map[string]any{"title": 1.0, "body": 2.0},
		"My Nuxt Title",
		longParagraph(30),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	html := `<html><body><script id="__NUXT_DATA__" type="application/json">` + string(raw) + `</script></body></html>`

	n := NewNuxt()
	require.True(t, n.Applicable(html, "https://example.com/"))
	res, err := n.Extract(context.Background(), html, "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "My Nuxt Title", res.Title)
	assert.Contains(t, res.ContentText, "word")
}

func TestNuxt_NotApplicableWithoutMarker(t *testing.T) {
	n := NewNuxt()
	assert.False(t, n.Applicable(`<html><body>hi</body></html>`, "https://example.com/"))
}

func TestReactRouter_ExtractsKnownLoaderRoutePath(t *testing.T) {
	payload := map[string]any{
		"loaderData": map[string]any{
			"routes/article": map[string]any{
				"content": longParagraph(30),
			},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	html := `<html><script>window.__staticRouterHydrationData = ` + string(raw) + `;</script></html>`

	r := NewReactRouter()
	require.True(t, r.Applicable(html, "https://example.com/"))
	res, err := r.Extract(context.Background(), html, "https://example.com/")
	require.NoError(t, err)
	assert.Contains(t, res.ContentText, "word")
}

func TestReactRouter_FallsBackToLongestStringScan(t *testing.T) {
	payload := map[string]any{
		"loaderData": map[string]any{
			"routes/unknown-route": map[string]any{
				"unexpectedField": longParagraph(30),
				"short":           "x",
			},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	html := `<html><script>window.__staticRouterHydrationData = ` + string(raw) + `;</script></html>`

	r := NewReactRouter()
	res, err := r.Extract(context.Background(), html, "https://example.com/")
	require.NoError(t, err)
	assert.Contains(t, res.ContentText, "word")
}

func TestNextRSC_ReassemblesStreamedChunks(t *testing.T) {
	chunk1, _ := json.Marshal("1:" + longParagraph(30))
	html := `<html><body><script>self.__next_f.push([1,` + string(chunk1) + `])</script></body></html>`

	n := NewNextRSC()
	require.True(t, n.Applicable(html, "https://example.com/"))
	res, err := n.Extract(context.Background(), html, "https://example.com/")
	require.NoError(t, err)
	assert.Contains(t, res.ContentText, "word")
}

func TestNextRSC_NoChunksProducesError(t *testing.T) {
	n := NewNextRSC()
	_, err := n.Extract(context.Background(), `<html></html>`, "https://example.com/")
	assert.Error(t, err)
}

func TestWordPressREST_FetchesPostBySlugAndEmbedsAuthor(t *testing.T) {
	posts := []map[string]any{
		{
			"id":   1,
			"date": "2026-01-02T10:00:00",
			"title": map[string]any{"rendered": "Hello &amp; World"},
			"content": map[string]any{
				"rendered":  longParagraph(30),
				"protected": false,
			},
			"_embedded": map[string]any{
				"author": []map[string]any{{"name": "Jane Doe"}},
			},
		},
	}
	body, err := json.Marshal(posts)
	require.NoError(t, err)

	w := NewWordPressREST(fakeFetcher{body: body, status: 200})
	require.True(t, w.Applicable(`<html class="wp-content">`, "https://example.com/my-post"))

	res, err := w.Extract(context.Background(), "", "https://example.com/my-post")
	require.NoError(t, err)
	assert.Equal(t, "Hello & World", res.Title)
	assert.Equal(t, "Jane Doe", res.Byline)
	assert.False(t, res.Truncated)
}

func TestWordPressREST_FlagsTruncatedExcerptFallback(t *testing.T) {
	posts := []map[string]any{
		{
			"id":      2,
			"date":    "2026-01-02T10:00:00",
			"title":   map[string]any{"rendered": "Short"},
			"content": map[string]any{"rendered": "", "protected": false},
			"excerpt": map[string]any{"rendered": longParagraph(10)},
		},
	}
	body, err := json.Marshal(posts)
	require.NoError(t, err)

	w := NewWordPressREST(fakeFetcher{body: body, status: 200})
	res, err := w.Extract(context.Background(), "", "https://example.com/short-post")
	require.NoError(t, err)
	assert.True(t, res.Truncated)
}

func TestWordPressREST_PropagatesFetchError(t *testing.T) {
	w := NewWordPressREST(fakeFetcher{err: errors.New("network down")})
	_, err := w.Extract(context.Background(), "", "https://example.com/a")
	assert.Error(t, err)
}

func TestWordPressREST_RequiresFetcher(t *testing.T) {
	w := NewWordPressREST(nil)
	_, err := w.Extract(context.Background(), "", "https://example.com/a")
	assert.Error(t, err)
}
