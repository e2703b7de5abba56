package transport

import "context"

// SimpleFetcher adapts Client to the narrow strategy.Fetcher interface
// (Get(ctx, url) ([]byte, int, error)) the WordPress REST/AJAX and
// Next.js data-route strategies depend on, without those packages
// importing internal/transport directly.
type SimpleFetcher struct {
	Client *Client
}

func (f SimpleFetcher) Get(ctx context.Context, url string) ([]byte, int, error) {
	resp, err := f.Client.Do(ctx, Request{URL: url})
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.StatusCode, nil
}
