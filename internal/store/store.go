package store

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/webcrawl/internal/model"
)

// DirPrefix is the run directory name prefix. The per-day suffix is
// appended in YYYYMMDD form.
const DirPrefix = "WebCrawlerData_"

// DefaultImageExt is used when an image URL path carries no recognized
// image extension.
const DefaultImageExt = ".jpg"

// headerSeparator divides the metadata header from the text body.
const headerSeparator = "=================================================="

// imageExts is the whitelist of extensions accepted from image URL paths.
// Anything else falls back to DefaultImageExt; the bytes are stored
// unchanged either way.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Store writes crawl artifacts under a timestamped run directory.
// All methods are safe for concurrent use: they only create new files
// whose names embed a URL hash and capture timestamp.
type Store struct {
	// root is the run directory, e.g. <base>/WebCrawlerData_20260830.
	root string

	// textDir and imageDir are the two artifact subdirectories.
	textDir  string
	imageDir string
}

// New creates the run directory for today under baseDir and returns a
// Store rooted there. Creation is idempotent: an existing directory from
// an earlier run the same day is reused.
//
// A failure here is fatal to the run; there is nowhere to persist to.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("store: base directory must not be empty")
	}

	root := filepath.Join(baseDir, DirPrefix+time.Now().Format("20060102"))
	s := &Store{
		root:     root,
		textDir:  filepath.Join(root, "texts"),
		imageDir: filepath.Join(root, "images"),
	}

	for _, dir := range []string{s.textDir, s.imageDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	return s, nil
}

// Root returns the run directory path.
func (s *Store) Root() string {
	return s.root
}

// SaveText writes the extracted text of pageURL captured at ts.
// The file carries a metadata header so the source URL survives next to
// the content; strip everything through the first blank line to recover
// the extractor output verbatim. Returns the written path.
func (s *Store) SaveText(pageURL string, ts time.Time, text string) (string, error) {
	name := fmt.Sprintf("%s_%d.txt", model.Fingerprint([]byte(pageURL)), ts.Unix())
	p := filepath.Join(s.textDir, name)

	var sb strings.Builder
	sb.WriteString("URL: " + pageURL + "\n")
	sb.WriteString("Captured: " + ts.Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(headerSeparator + "\n\n")
	sb.WriteString(text)

	if err := os.WriteFile(p, []byte(sb.String()), 0600); err != nil {
		return "", fmt.Errorf("failed to save text for %s: %w", pageURL, err)
	}
	return p, nil
}

// SaveImage writes raw image bytes fetched from imgURL captured at ts.
// The extension is derived from the URL path via ImageExt. Returns the
// written path.
func (s *Store) SaveImage(imgURL string, ts time.Time, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%d%s", model.Fingerprint([]byte(imgURL)), ts.Unix(), ImageExt(imgURL))
	p := filepath.Join(s.imageDir, name)

	if err := os.WriteFile(p, data, 0600); err != nil {
		return "", fmt.Errorf("failed to save image from %s: %w", imgURL, err)
	}
	return p, nil
}

// ImageExt returns the file extension to store an image from rawURL
// under. Extensions outside the known-image whitelist (and URLs with no
// extension at all) map to DefaultImageExt.
func ImageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultImageExt
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if !imageExts[ext] {
		return DefaultImageExt
	}
	return ext
}

// StripHeader removes the metadata header from a saved text file body,
// returning the extractor output. It is the inverse of the header
// SaveText writes; content without a header is returned unchanged.
func StripHeader(fileBody string) string {
	sep := headerSeparator + "\n\n"
	if i := strings.Index(fileBody, sep); i >= 0 {
		return fileBody[i+len(sep):]
	}
	return fileBody
}
