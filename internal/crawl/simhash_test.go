package crawl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_IdenticalTextProducesIdenticalFingerprint(t *testing.T) {
	a := fingerprint("the quick brown fox jumps over the lazy dog")
	b := fingerprint("the quick brown fox jumps over the lazy dog")
	assert.Equal(t, a, b)
}

func TestFingerprint_EmptyTextIsZero(t *testing.T) {
	assert.Equal(t, uint64(0), fingerprint(""))
}

func TestSimilar_NearDuplicateTextWithinThreshold(t *testing.T) {
	a := fingerprint("breaking news: the city council approved the new budget today")
	b := fingerprint("breaking news: the city council approved the new budget yesterday")
	assert.True(t, similar(a, b, 10), "near-identical text should fingerprint close together")
}

func TestSimilar_UnrelatedTextExceedsThreshold(t *testing.T) {
	a := fingerprint(strings.Repeat("alpha beta gamma delta epsilon ", 10))
	b := fingerprint(strings.Repeat("zeta eta theta iota kappa lambda mu nu xi omicron ", 10))
	assert.False(t, similar(a, b, 3))
}

func TestFingerprintDOM_IgnoresTextDifferencesSameTemplate(t *testing.T) {
	page1 := `<html><body><div><h1>Title One</h1><p>Some body text here.</p></div></body></html>`
	page2 := `<html><body><div><h1>Title Two</h1><p>Different body text entirely.</p></div></body></html>`
	a := fingerprintDOM(page1)
	b := fingerprintDOM(page2)
	assert.True(t, similar(a, b, 5), "same tag structure should fingerprint close regardless of text")
}

func TestFingerprintDOM_EmptyHTMLIsZero(t *testing.T) {
	assert.Equal(t, uint64(0), fingerprintDOM("no tags here"))
}

func TestMakeShingles_ProducesOverlappingNGrams(t *testing.T) {
	shingles := makeShingles([]string{"a", "b", "c", "d"}, 3)
	assert.Equal(t, []string{"a_b_c", "b_c_d"}, shingles)
}

func TestMakeShingles_NilWhenFewerTokensThanN(t *testing.T) {
	assert.Nil(t, makeShingles([]string{"a", "b"}, 3))
}
