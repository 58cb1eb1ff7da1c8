// Package imagemeta extracts EXIF metadata from downloaded images.
//
// The crawler records a small metadata summary (camera, software,
// original timestamp, GPS presence) next to each persisted image in the
// crawl database. Images without EXIF data, or in formats that carry
// none, simply yield no metadata; extraction never fails a download.
package imagemeta
