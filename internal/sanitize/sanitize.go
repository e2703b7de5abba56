// Package sanitize strips dangerous markup from extracted HTML and
// provides the small text utilities (word counting, token estimation,
// safe JSON path traversal) shared across the extraction strategies.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// dangerousTags are removed along with their subtree, regardless of where
// they appear in the document.
var dangerousTags = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"applet":   true,
	"form":     true,
	"noscript": true,
	"base":     true,
	"link":     true,
	"meta":     true,
	"svg":      true,
	"math":     true,
	"template": true,
}

// dangerousAttrPrefix catches inline event handlers (onclick, onerror, ...).
const dangerousAttrPrefix = "on"

var dangerousURISchemes = regexp.MustCompile(`(?i)^\s*(javascript|vbscript|data)\s*:`)

// uriAttrs lists attributes that may carry a URL and therefore need
// scheme defanging.
// formaction is stripped unconditionally by sanitizeAttrs, regardless of
// its value, so it is not listed here.
var uriAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"xlink:href": true,
}

// HTML parses and re-serializes an HTML fragment with dangerous elements,
// event-handler attributes, and javascript:/vbscript:/data: URIs removed.
func HTML(input string) (string, error) {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return "", err
	}
	sanitizeNode(doc)
	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func sanitizeNode(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && dangerousTags[strings.ToLower(c.Data)] {
			n.RemoveChild(c)
			continue
		}
		if c.Type == html.ElementNode {
			sanitizeAttrs(c)
		}
		sanitizeNode(c)
	}
}

func sanitizeAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, dangerousAttrPrefix) && key != "on" {
			continue
		}
		if key == "formaction" {
			continue
		}
		if uriAttrs[key] && isDangerousURI(a.Val) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// isDangerousURI reports whether a URI uses a scheme that can execute
// script, tolerating ASCII whitespace anywhere in the value (e.g.
// "java\tscript:alert(1)"). Other control characters are not removed.
func isDangerousURI(v string) bool {
	stripped := stripObfuscatingChars(v)
	return dangerousURISchemes.MatchString(stripped)
}

func stripObfuscatingChars(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == ' ' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
