package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"

	"github.com/use-agent/lynxget/internal/transport"
)

// RobotsPolicy wraps a parsed robots.txt for one origin.
type RobotsPolicy struct {
	data     *robotstxt.RobotsData
	sitemaps []string
}

// FetchRobots retrieves and parses /robots.txt for origin. A missing or
// unparsable robots.txt is treated as "allow everything" (robotstxt's own
// convention, matching how browsers and most well-behaved crawlers treat
// a 404 on robots.txt).
func FetchRobots(ctx context.Context, t *transport.Client, origin string) (*RobotsPolicy, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("crawl: invalid origin %q: %w", origin, err)
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	resp, err := t.Do(ctx, transport.Request{URL: robotsURL})
	if err != nil || resp.StatusCode >= 400 {
		data, _ := robotstxt.FromStatusAndString(404, "")
		return &RobotsPolicy{data: data}, nil
	}
	data, err := robotstxt.FromString(string(resp.Body))
	if err != nil {
		data, _ = robotstxt.FromStatusAndString(404, "")
		return &RobotsPolicy{data: data}, nil
	}
	return &RobotsPolicy{data: data, sitemaps: data.Sitemaps}, nil
}

// Allowed reports whether userAgent may fetch path per this policy.
func (p *RobotsPolicy) Allowed(userAgent, path string) bool {
	if p == nil || p.data == nil {
		return true
	}
	group := p.data.FindGroup(userAgent)
	return group.Test(path)
}

// Sitemaps returns sitemap URLs declared in robots.txt.
func (p *RobotsPolicy) Sitemaps() []string {
	if p == nil {
		return nil
	}
	return p.sitemaps
}

// NormalizeOrigin reduces raw to its origin: the lower-cased scheme and
// host joined as "scheme://host", with any path, query, or fragment
// dropped.
func NormalizeOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}
