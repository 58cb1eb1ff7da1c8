package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts text, links, and image references from one HTML page.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles the malformed HTML common on the web
//  2. Script/style subtrees can be skipped structurally, which a regex
//     cannot do reliably
//  3. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative references and for the same-origin check.
	baseURL *url.URL

	// matchScheme also requires link schemes to match baseURL's scheme
	// in the same-origin check.
	matchScheme bool
}

// ParseResult contains everything extracted from one page in a single
// parsing pass.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Text is the visible page text: script/style subtrees stripped,
	// text nodes joined by newlines, blank lines collapsed.
	Text string

	// InternalLinks are same-origin anchor targets, resolved to absolute
	// URLs, in document order.
	InternalLinks []string

	// ExternalLinks are cross-origin anchor targets. They are never
	// crawled; callers may count or log them.
	ExternalLinks []string

	// Images are resolved image URLs (<img src> plus favicon links) in
	// document order. Duplicates within the page are preserved; dedup
	// happens downstream by content hash.
	Images []string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMatchScheme requires link schemes to match the page scheme in the
// same-origin check. Off by default: http and https pages on the same
// authority are considered one origin.
func WithMatchScheme(match bool) ParserOption {
	return func(p *Parser) {
		p.matchScheme = match
	}
}

// NewParser creates a parser for a page at baseURL.
func NewParser(baseURL string, opts ...ParserOption) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	p := &Parser{baseURL: u}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse parses HTML content and extracts title, text, links, and images.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		InternalLinks: make([]string, 0),
		ExternalLinks: make([]string, 0),
		Images:        make([]string, 0),
	}

	var lines []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			// Script and style subtrees contribute no visible text and
			// no crawlable references.
			if n.Data == "script" || n.Data == "style" {
				return
			}
			p.processElement(n, result)
		case html.TextNode:
			for _, line := range strings.Split(n.Data, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	result.Text = strings.Join(lines, "\n")
	return result, nil
}

// processElement handles a single HTML element node.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			if resolved := p.resolveURL(href); resolved != "" {
				p.classifyLink(resolved, result)
			}
		}

	case "img":
		if src := getAttr(n, "src"); src != "" {
			if resolved := p.resolveURL(src); resolved != "" {
				result.Images = append(result.Images, resolved)
			}
		}

	case "link":
		// Favicons are image content worth capturing alongside <img>.
		if href := getAttr(n, "href"); href != "" {
			if isIconRel(getAttr(n, "rel")) {
				if resolved := p.resolveURL(href); resolved != "" {
					result.Images = append(result.Images, resolved)
				}
			}
		}
	}
}

// isIconRel reports whether the link rel attribute names an icon.
// rel is a space-separated, case-insensitive token list, so
// `rel="ICON"` and `rel="icon shortcut"` both match.
func isIconRel(rel string) bool {
	for _, token := range strings.Fields(rel) {
		if strings.EqualFold(token, "icon") {
			return true
		}
	}
	return false
}

// resolveURL resolves href against the page URL and filters out
// non-fetchable references. Returns "" when the reference should be
// ignored.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// classifyLink appends link to the internal or external list.
// Same-origin means an identical network authority (host and port);
// scheme equality is additionally required only with matchScheme.
func (p *Parser) classifyLink(link string, result *ParseResult) {
	u, err := url.Parse(link)
	if err != nil {
		return
	}

	if p.sameOrigin(u) {
		result.InternalLinks = append(result.InternalLinks, link)
		return
	}
	result.ExternalLinks = append(result.ExternalLinks, link)
}

// sameOrigin reports whether u shares the page's origin.
func (p *Parser) sameOrigin(u *url.URL) bool {
	if !strings.EqualFold(u.Host, p.baseURL.Host) {
		return false
	}
	if p.matchScheme && !strings.EqualFold(u.Scheme, p.baseURL.Scheme) {
		return false
	}
	return true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
