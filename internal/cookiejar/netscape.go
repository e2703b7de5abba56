// Package cookiejar loads cookies from the Netscape cookie-file format
// (the format produced by curl --cookie-jar and browser export extensions)
// into a standard net/http.CookieJar.
package cookiejar

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile parses a Netscape-format cookie file and returns a populated
// http.CookieJar. Each non-comment, non-blank line has seven
// tab-separated fields: domain, includeSubdomains, path, secure,
// expiry(unix), name, value.
func LoadFile(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	byDomain := map[string][]*http.Cookie{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}
		domain := fields[0]
		includeSub := strings.EqualFold(fields[1], "TRUE")
		path := fields[2]
		secure := strings.EqualFold(fields[3], "TRUE")
		var expires time.Time
		if unix, err := strconv.ParseInt(fields[4], 10, 64); err == nil && unix > 0 {
			expires = time.Unix(unix, 0)
		}
		name := fields[5]
		value := fields[6]

		c := &http.Cookie{
			Name:    name,
			Value:   value,
			Path:    path,
			Domain:  domain,
			Secure:  secure,
			Expires: expires,
		}
		key := strings.TrimPrefix(domain, ".")
		byDomain[key] = append(byDomain[key], c)
		if includeSub {
			// Netscape files mark subdomain-wide cookies by leading ".";
			// cookiejar.Jar applies domain-suffix matching on SetCookies
			// itself once the URL's host equals or is a subdomain of key.
			_ = includeSub
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for domain, cookies := range byDomain {
		u := &url.URL{Scheme: "https", Host: domain, Path: "/"}
		jar.SetCookies(u, cookies)
	}
	return jar, nil
}

// FormatError wraps a malformed cookie-file line for diagnostics.
func FormatError(line string) error {
	return fmt.Errorf("cookiejar: malformed Netscape cookie line: %q", line)
}
