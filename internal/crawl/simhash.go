package crawl

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// fingerprint computes a 64-bit SimHash of text using FNV-64a per-word
// hashing with bit-vector accumulation. Repurposed from a response
// cache-identity check into the crawler's near-duplicate page filter:
// pages that render through different URLs (pagination artifacts,
// tracking-parameter variants, AMP mirrors) but carry near-identical DOM
// structure are skipped rather than re-queued.
func fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	var vector [64]int
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}
	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// hammingDistance returns the number of differing bits between two
// fingerprints.
func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// similar reports whether two fingerprints are within threshold bits of
// each other.
func similar(a, b uint64, threshold int) bool {
	return hammingDistance(a, b) <= threshold
}

// fingerprintDOM fingerprints a page's tag-sequence structure (ignoring
// text/attributes) via 3-gram shingling, so the crawler can recognize
// "this is the same template with different copy" without comparing
// rendered text.
func fingerprintDOM(htmlStr string) uint64 {
	tags := extractTags(htmlStr)
	if len(tags) == 0 {
		return 0
	}
	shingles := makeShingles(tags, 3)
	if len(shingles) == 0 {
		return fingerprint(strings.Join(tags, " "))
	}
	return fingerprint(strings.Join(shingles, " "))
}

func extractTags(htmlStr string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	var tags []string
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tags = append(tags, string(tn))
		}
	}
}

func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
