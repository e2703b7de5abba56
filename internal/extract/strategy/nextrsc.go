package strategy

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// nextFPush matches each chunk Next.js App Router streams down for RSC
// hydration: self.__next_f.push([1,"<escaped-string-payload>"])
var nextFPush = regexp.MustCompile(`self\.__next_f\.push\(\[1,(".*?")\]\)`)

// rscLinePrefix strips a leading "<hex-id>:" RSC line marker, e.g. "3:I...".
var rscLinePrefix = regexp.MustCompile(`^[0-9a-f]+:`)

// NextRSC reassembles Next.js App Router's streamed RSC payload chunks
// and pulls the longest plausible article-body string out of the
// concatenated stream.
type NextRSC struct{}

func NewNextRSC() *NextRSC { return &NextRSC{} }

func (n *NextRSC) Name() string { return "next-rsc" }

func (n *NextRSC) Applicable(htmlStr string, pageURL string) bool {
	return strings.Contains(htmlStr, "self.__next_f.push")
}

func (n *NextRSC) Extract(ctx context.Context, htmlStr string, pageURL string) (*model.ExtractionResult, error) {
	matches := nextFPush.FindAllStringSubmatch(htmlStr, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("next-rsc: no streaming chunks found")
	}

	var sb strings.Builder
	for _, m := range matches {
		unquoted, err := strconv.Unquote(m[1])
		if err != nil {
			continue
		}
		line := rscLinePrefix.ReplaceAllString(unquoted, "")
		sb.WriteString(line)
	}
	stream := sb.String()

	body := longestHTMLish(stream)
	if len(body) < minContentLength {
		return nil, fmt.Errorf("next-rsc: no sufficiently long content segment in stream")
	}

	clean, err := sanitize.HTML(body)
	if err != nil {
		clean = body
	}
	text := sanitize.VisibleText(clean)
	if len(text) < minContentLength {
		return nil, fmt.Errorf("next-rsc: recovered content too short")
	}
	return &model.ExtractionResult{
		Strategy:    n.Name(),
		ContentHTML: clean,
		ContentText: text,
		WordCount:   sanitize.WordCount(text),
		Confidence:  0.55,
	}, nil
}

// longestHTMLish extracts the longest run of text that looks like it
// contains HTML paragraph markup, as a crude way to locate the article
// body inside an otherwise opaque RSC wire stream (which interleaves
// component props, client references, and string literals).
func longestHTMLish(stream string) string {
	candidates := strings.Split(stream, `\n`)
	best := ""
	for _, c := range candidates {
		if strings.Contains(c, "<p") || strings.Contains(c, "<P") {
			if len(c) > len(best) {
				best = c
			}
		}
	}
	if best != "" {
		return best
	}
	// No paragraph markup found; fall back to the single longest segment
	// delimited by RSC's quote-escaped string boundaries.
	parts := regexp.MustCompile(`\\"`).Split(stream, -1)
	for _, p := range parts {
		if len(p) > len(best) {
			best = p
		}
	}
	return best
}
