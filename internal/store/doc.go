// Package store persists crawl artifacts on disk.
//
// Each run writes into a per-day directory under a configurable base:
//
//	<base>/WebCrawlerData_<YYYYMMDD>/
//	    texts/   <md5(url)>_<epoch>.txt
//	    images/  <md5(url)>_<epoch><ext>
//
// Text files begin with a small metadata header (source URL, capture
// time, separator) followed by the extracted text verbatim. Filenames
// embed the capture timestamp, so repeated runs never collide and files
// are never modified after being written.
package store
