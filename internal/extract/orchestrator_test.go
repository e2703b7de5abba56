package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonLDArticleBody = "Researchers found new species at extreme depths during the expedition. " +
	"The dive, conducted over several weeks aboard a research vessel, used a remotely " +
	"operated submersible to survey trenches previously unreachable with conventional equipment."

const jsonLDArticle = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Article","headline":"Deep Sea Findings",
 "author":{"@type":"Person","name":"A. Diver"},"datePublished":"2026-01-02T00:00:00Z",
 "articleBody":"` + jsonLDArticleBody + `"}
</script>
</head><body><p>irrelevant body filler that should not be used as content</p></body></html>`

const plainArticle = `<html><body><article><p>` +
	strings.Repeat("This is a long paragraph about ocean currents and tides. ", 20) +
	`</p></article></body></html>`

func TestExtract_PrefersJSONLDWhenPresent(t *testing.T) {
	o := New()
	defer o.Close()

	res, err := o.Extract(context.Background(), jsonLDArticle, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "Deep Sea Findings", res.Title)
	assert.Equal(t, "A. Diver", res.Byline)
}

func TestExtract_ReturnsContentWhenNoStructuredMarkersPresent(t *testing.T) {
	o := New()
	defer o.Close()

	res, err := o.Extract(context.Background(), plainArticle, "https://example.com/b")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ContentHTML)
}

func TestExtract_RemembersSuccessfulStrategyPerDomain(t *testing.T) {
	o := New()
	defer o.Close()

	url := "https://example.com/c"
	_, err := o.Extract(context.Background(), jsonLDArticle, url)
	require.NoError(t, err)

	hint, ok := o.memory.Get(url)
	require.True(t, ok)
	assert.Equal(t, "json-ld", hint)
}

func TestExtract_AlwaysReturnsSomethingEvenForSparsePage(t *testing.T) {
	o := New()
	defer o.Close()

	res, err := o.Extract(context.Background(), `<html><body><div>x</div></body></html>`, "https://example.com/d")
	require.NoError(t, err)
	require.NotNil(t, res)
}
