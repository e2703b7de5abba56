// Package transport is the only package in this module allowed to open
// raw network connections for page fetches. It presents a Chrome-shaped
// TLS fingerprint (via utls) so that TLS-fingerprint-based bot detection
// sees a normal browser handshake, and centralizes retry, proxy, and
// cookie-jar behavior behind a single transport.Client.
package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/proxy"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
	maxBodyBytes     = 10 << 20 // 10MB, matches the teacher's engine cap
)

// chromeSpec is computed once: a ClientHelloSpec that mimics Chrome's
// handshake, with ALPN forced to http/1.1 so utls's framing matches the
// plain net/http transport built on top of it.
var chromeSpec utls.ClientHelloID

func init() {
	chromeSpec = utls.HelloChrome_Auto
}

// Request is the fetch contract consumed by fetchstage, archive, and the
// WordPress/Next.js strategies.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Timeout time.Duration
}

// Response is the transport's result; Headers are lower-cased so the
// anti-bot detector can match on raw header names without re-normalizing.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	FinalURL   string
}

// Client fetches URLs with a Chrome TLS fingerprint, optional proxy, and a
// shared connection pool.
type Client struct {
	hc         *http.Client
	userAgent  string
	maxRetries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes all requests through proxyURL ("http://", "https://",
// or "socks5://").
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		if proxyURL == "" {
			return
		}
		t := c.hc.Transport.(*http.Transport)
		u, err := url.Parse(proxyURL)
		if err != nil {
			return
		}
		if u.Scheme == "socks5" {
			dialer, err := proxy.FromURL(u, proxy.Direct)
			if err == nil {
				t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
					return dialer.Dial(network, addr)
				}
			}
			return
		}
		t.Proxy = http.ProxyURL(u)
	}
}

// WithCookieJar attaches a cookie jar (typically loaded from a Netscape
// cookie file via internal/cookiejar).
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.hc.Jar = jar }
}

// WithUserAgent overrides the default Chrome UA string.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxRetries bounds the number of transient-network-error retries.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// New builds a Client with a Chrome-fingerprinted dial function.
func New(opts ...Option) *Client {
	t := &http.Transport{
		DialTLSContext:      dialTLSChrome,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	c := &Client{
		hc:         &http.Client{Transport: t},
		userAgent:  defaultUserAgent,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dialTLSChrome dials a TLS connection shaped like Chrome's ClientHello,
// with ALPN restricted to http/1.1 so framing stays compatible with
// net/http's h1 transport.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	rawConn, err := (&net.Dialer{Timeout: 15 * time.Second}).DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	uconn := utls.UClient(rawConn, &utls.Config{
		ServerName: host,
		NextProtos: []string{"http/1.1"},
	}, chromeSpec)
	if err := uconn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return uconn, nil
}

// Do performs req, retrying transient network errors (not HTTP status
// codes — those are the caller's decision per the fetch stage's error
// taxonomy) with exponential backoff bounded by maxRetries.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	var resp *Response
	op := func() error {
		r, err := c.doOnce(ctx, req)
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) doOnce(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[lowerHeader(k)] = resp.Header.Get(k)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

func lowerHeader(k string) string {
	b := []byte(k)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isTransient(err error) bool {
	var netErr net.Error
	if asNetError(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
