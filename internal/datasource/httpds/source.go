package httpds

import (
	"context"
	"io"
	"strings"
)

// Source streams the body of a GET request.
type Source struct {
	url    string
	client *client
}

// New returns a Source for url.
func New(url string, cfg Config) *Source {
	return &Source{url: url, client: newClient(cfg)}
}

// IsURL reports whether input names an http or https resource.
func IsURL(input string) bool {
	l := strings.ToLower(input)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Open performs the request and returns the response body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
