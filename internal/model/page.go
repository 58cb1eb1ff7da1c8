package model

import (
	"crypto/md5" //nolint:gosec // Content fingerprint for dedup, not a security boundary
	"encoding/hex"
	"strings"
)

// MaxPageSize is the maximum size of raw page content to keep in memory.
// Larger bodies are truncated to this size.
const MaxPageSize = 5 * 1024 * 1024 // 5MB

// Fingerprint returns the hex-encoded MD5 digest of data.
//
// Design decision: We use MD5 rather than SHA-256 because the digest is a
// content fingerprint for deduplication and filename prefixes, not a
// security mechanism. The 128-bit digest keeps filenames short and is
// cheap to compute on large image bodies.
func Fingerprint(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec // dedup fingerprint only
	return hex.EncodeToString(sum[:])
}

// Page represents one fetched web page.
// It holds the raw response data plus the fields extracted from it.
type Page struct {
	// URL is the full URL the page was fetched from.
	URL string `json:"url"`

	// Depth is the BFS depth at which the page was discovered.
	// The seed page is depth 0.
	Depth int `json:"depth"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers in canonical form.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the MIME type from the Content-Type header,
	// without parameters such as charset.
	ContentType string `json:"content_type"`

	// Title is the page title from the <title> tag. Empty for non-HTML.
	Title string `json:"title,omitempty"`

	// Raw contains the raw response body bytes, capped at MaxPageSize.
	Raw []byte `json:"-"`

	// Body is the response body decoded to UTF-8. For HTML pages this is
	// what the parser consumes; the original bytes stay in Raw.
	Body string `json:"-"`

	// Hash is the MD5 fingerprint of the raw content.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash calculates and sets the content fingerprint of the page.
// Call after setting Raw.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	p.Hash = Fingerprint(p.Raw)
}

// OK reports whether the response status is a success (2xx).
func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// IsHTML reports whether the content type indicates an HTML page.
func (p *Page) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}

// GetHeader returns the first value of the named header, or "".
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// TruncateRaw enforces the MaxPageSize cap on the raw body.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}

// Image represents one downloaded image.
type Image struct {
	// URL is the resolved URL the image was fetched from.
	URL string `json:"url"`

	// PageURL is the URL of the page that referenced the image.
	PageURL string `json:"page_url"`

	// ContentType is the MIME type reported by the server.
	ContentType string `json:"content_type"`

	// Data contains the raw image bytes.
	Data []byte `json:"-"`

	// Hash is the MD5 fingerprint of Data. Two image URLs with identical
	// bytes share a hash and only the first is persisted.
	Hash string `json:"hash"`

	// StoredPath is where the image was written, empty if it was a
	// duplicate or the download was rejected.
	StoredPath string `json:"stored_path,omitempty"`
}

// ComputeHash calculates and sets the content fingerprint of the image.
// Call after setting Data.
func (i *Image) ComputeHash() {
	if len(i.Data) == 0 {
		i.Hash = ""
		return
	}
	i.Hash = Fingerprint(i.Data)
}

// IsImage reports whether the content type begins with "image/".
func (i *Image) IsImage() bool {
	return strings.HasPrefix(i.ContentType, "image/")
}
