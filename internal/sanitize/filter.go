package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterContent removes nodes matching any selector in exclude, then — if
// include is non-empty — discards everything except nodes matching an
// include selector. Either list may be empty.
func FilterContent(htmlStr string, include, exclude []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}
	for _, sel := range exclude {
		doc.Find(sel).Remove()
	}
	if len(include) > 0 {
		keep := goquery.Selection{}
		for _, sel := range include {
			keep = *keep.AddSelection(doc.Find(sel))
		}
		var sb strings.Builder
		keep.Each(func(_ int, s *goquery.Selection) {
			h, err := goquery.OuterHtml(s)
			if err == nil {
				sb.WriteString(h)
			}
		})
		return sb.String(), nil
	}
	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return out, nil
}
