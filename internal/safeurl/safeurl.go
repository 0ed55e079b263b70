// Package safeurl validates the URLs a user hands hedgepod as a feed
// or archive source before anything downstream ever dials them.
package safeurl

import "net/url"

// IsHTTPOrHTTPS reports whether u parses as an http or https URL. A feed
// source comes from free-form command input or an imported OPML file,
// so file://, ftp://, and similar schemes need rejecting here rather
// than surfacing as a confusing fetch error later.
func IsHTTPOrHTTPS(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
