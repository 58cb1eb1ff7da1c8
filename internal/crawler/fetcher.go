package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/webcrawl/internal/model"
)

// StatusError reports a response whose status code was not a success.
// The fetch itself worked; the server declined to serve the content.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status the server returned.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Fetcher issues HTTP GET requests with a fixed timeout, a descriptive
// user agent, and a response body size cap. Both page and image fetches
// go through the same Fetcher so they share one request policy.
//
// Design decision: We require an external *http.Client because:
//  1. The timeout is configured once on the client by the caller
//  2. Tests inject httptest server clients
//  3. Proxy or transport tweaks stay out of this package
type Fetcher struct {
	// client is the HTTP client performing requests.
	client *http.Client

	// userAgent is the User-Agent header applied to every request.
	userAgent string

	// headers are extra headers applied to every request.
	headers map[string]string

	// maxBodySize limits the number of response body bytes read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra headers applied to every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// NewFetcher creates a Fetcher wrapping the given HTTP client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   "webcrawl/1.0 (+https://github.com/nao1215/webcrawl)",
		maxBodySize: model.MaxPageSize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request for rawURL and returns the response as a
// Page. Network-level failures return an error; any HTTP status is
// returned as a page, and callers decide what a non-2xx status means for
// them (pages count it as a failure, image downloads reject silently).
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", rawURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	page := &model.Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Raw:         body,
	}
	page.ComputeHash()
	page.TruncateRaw()

	// HTML bodies are decoded to UTF-8 for the parser. Servers in the
	// wild declare charsets in the header, in meta tags, or not at all;
	// charset.NewReader handles sniffing all three cases.
	if page.IsHTML() {
		page.Body = decodeHTML(body, resp.Header.Get("Content-Type"))
	}

	return page, nil
}

// decodeHTML converts body to UTF-8 based on the Content-Type header and
// in-document hints. Falls back to the raw bytes when decoding fails.
func decodeHTML(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// mediaType returns the media type portion of a Content-Type header,
// without parameters. Malformed headers degrade to a trimmed prefix.
func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		if i := strings.IndexByte(header, ';'); i >= 0 {
			return strings.TrimSpace(strings.ToLower(header[:i]))
		}
		return strings.TrimSpace(strings.ToLower(header))
	}
	return mt
}
