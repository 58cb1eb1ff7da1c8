package imagemeta

import (
	"errors"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// ErrNoMetadata is returned when the image carries no EXIF segment.
var ErrNoMetadata = errors.New("image contains no EXIF metadata")

// Metadata is the per-image EXIF summary recorded by the crawler.
// Only fields useful for cataloguing are kept; the raw EXIF blob is not
// retained.
type Metadata struct {
	// CameraMake is the EXIF Make tag, e.g. "Canon".
	CameraMake string `json:"camera_make,omitempty"`

	// CameraModel is the EXIF Model tag.
	CameraModel string `json:"camera_model,omitempty"`

	// Software is the processing software tag, when present.
	Software string `json:"software,omitempty"`

	// TakenAt is the DateTimeOriginal tag formatted as EXIF renders it
	// (e.g. "2026:08:30 12:00:00"). Empty when absent.
	TakenAt string `json:"taken_at,omitempty"`

	// HasGPS is true when the image carries GPS coordinate tags.
	// The coordinates themselves are deliberately not stored.
	HasGPS bool `json:"has_gps,omitempty"`
}

// Empty reports whether no field of interest was found.
func (m *Metadata) Empty() bool {
	return m.CameraMake == "" && m.CameraModel == "" && m.Software == "" &&
		m.TakenAt == "" && !m.HasGPS
}

// String renders the metadata as a compact single-line summary suitable
// for log output and the database column.
func (m *Metadata) String() string {
	parts := make([]string, 0, 4)
	if m.CameraMake != "" || m.CameraModel != "" {
		parts = append(parts, strings.TrimSpace(m.CameraMake+" "+m.CameraModel))
	}
	if m.Software != "" {
		parts = append(parts, "software="+m.Software)
	}
	if m.TakenAt != "" {
		parts = append(parts, "taken="+m.TakenAt)
	}
	if m.HasGPS {
		parts = append(parts, "gps")
	}
	return strings.Join(parts, ", ")
}

// Extract parses the EXIF segment of data and returns the summary.
// Returns ErrNoMetadata when the image has no EXIF segment; other parse
// failures are also reported as errors. Callers treat any error as
// "nothing to record".
func Extract(data []byte) (*Metadata, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil, ErrNoMetadata
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, err
	}

	meta := &Metadata{}
	for _, entry := range entries {
		switch entry.TagName {
		case "Make":
			meta.CameraMake = entry.Formatted
		case "Model":
			meta.CameraModel = entry.Formatted
		case "Software", "ProcessingSoftware":
			if meta.Software == "" {
				meta.Software = entry.Formatted
			}
		case "DateTimeOriginal":
			meta.TakenAt = entry.Formatted
		case "GPSLatitude", "GPSLongitude":
			meta.HasGPS = true
		}
	}

	if meta.Empty() {
		return nil, ErrNoMetadata
	}
	return meta, nil
}
