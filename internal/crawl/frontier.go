package crawl

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/use-agent/lynxget/internal/model"
)

// Frontier is the crawler's bounded BFS queue: it enforces the same-
// origin constraint, include/exclude globs, depth and page caps, and URL
// normalization/deduplication.
type Frontier struct {
	mu           sync.Mutex
	queue        []model.FrontierEntry
	seen         map[string]bool
	origin       string
	maxDepth     int
	maxPages     int
	maxQueueSize int
	include      []glob.Glob
	exclude      []glob.Glob
	visited      int
}

// Config bounds the frontier's resource usage.
type Config struct {
	Origin       string
	MaxDepth     int
	MaxPages     int
	MaxQueueSize int
	Include      []string
	Exclude      []string
}

func NewFrontier(cfg Config) (*Frontier, error) {
	f := &Frontier{
		seen:         make(map[string]bool),
		origin:       cfg.Origin,
		maxDepth:     cfg.MaxDepth,
		maxPages:     cfg.MaxPages,
		maxQueueSize: cfg.MaxQueueSize,
	}
	for _, pattern := range cfg.Include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.include = append(f.include, g)
	}
	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Seed adds the crawl's starting URL at depth 0.
func (f *Frontier) Seed(rawURL string) {
	f.Add(rawURL, 0, false)
}

// Add normalizes and enqueues a discovered URL if it passes the
// same-origin, glob, depth, and capacity checks.
func (f *Frontier) Add(rawURL string, depth int, fromSitemap bool) bool {
	norm, ok := f.normalize(rawURL)
	if !ok {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[norm] {
		return false
	}
	if depth > f.maxDepth {
		return false
	}
	if f.maxQueueSize > 0 && len(f.queue) >= f.maxQueueSize {
		return false
	}
	if !f.passesGlobs(norm) {
		return false
	}

	f.seen[norm] = true
	f.queue = append(f.queue, model.FrontierEntry{
		URL:         norm,
		Depth:       depth,
		Discovered:  time.Now(),
		FromSitemap: fromSitemap,
	})
	return true
}

// Next pops the next entry in BFS (FIFO) order, or false if the frontier
// is empty or the page cap has been reached.
func (f *Frontier) Next() (model.FrontierEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return model.FrontierEntry{}, false
	}
	if f.maxPages > 0 && f.visited >= f.maxPages {
		return model.FrontierEntry{}, false
	}
	entry := f.queue[0]
	f.queue = f.queue[1:]
	f.visited++
	return entry, true
}

func (f *Frontier) passesGlobs(u string) bool {
	if len(f.exclude) > 0 {
		for _, g := range f.exclude {
			if g.Match(u) {
				return false
			}
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(u) {
			return true
		}
	}
	return false
}

// normalize resolves rawURL to an absolute URL, strips the fragment, and
// enforces the same-origin constraint against f.origin.
func (f *Frontier) normalize(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	if f.origin != "" {
		originURL, err := url.Parse(f.origin)
		if err == nil {
			u = originURL.ResolveReference(u)
			if !strings.EqualFold(u.Host, originURL.Host) {
				return "", false
			}
		}
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), true
}
