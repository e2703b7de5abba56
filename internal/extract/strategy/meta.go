package strategy

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/lynxget/internal/model"
)

// ExtractMedia harvests images and linked documents (.pdf, .docx, .xlsx)
// from the full document (not just the winning strategy's content block) so
// the orchestrator can attach media regardless of which strategy produced
// the text.
func ExtractMedia(htmlStr, pageURL string) []model.MediaElement {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(pageURL)

	var media []model.MediaElement
	seen := map[string]bool{}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, ok = s.Attr("data-src")
			if !ok {
				return
			}
		}
		abs := resolve(base, src)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		alt, _ := s.Attr("alt")
		media = append(media, model.MediaElement{Kind: model.MediaImage, URL: abs, Alt: alt})
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		if !(strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, ".docx") || strings.HasSuffix(lower, ".xlsx")) {
			return
		}
		abs := resolve(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		media = append(media, model.MediaElement{Kind: model.MediaDocument, URL: abs, Caption: s.Text()})
	})

	return media
}

// OGMetadata is the subset of Open Graph tags used to enrich an
// ExtractionResult when a strategy didn't find a title or site name
// itself.
type OGMetadata struct {
	Title    string
	SiteName string
	Image    string
	Type     string
}

func ExtractOGMetadata(htmlStr string) OGMetadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return OGMetadata{}
	}
	get := func(prop string) string {
		v, _ := doc.Find("meta[property='" + prop + "']").Attr("content")
		return v
	}
	return OGMetadata{
		Title:    get("og:title"),
		SiteName: get("og:site_name"),
		Image:    get("og:image"),
		Type:     get("og:type"),
	}
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// ExtractLinks returns absolute, deduplicated hyperlink targets.
func ExtractLinks(htmlStr, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(pageURL)
	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := resolve(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return links
}
