package http

import (
	"fmt"
	"strings"
)

const schemeDelimiter = "://"

// SplitURL decomposes an absolute URL into host and path. Anything between
// the scheme delimiter and the first slash is the host, ports included.
func SplitURL(rawURL string) (host, path string, err error) {
	idx := strings.Index(rawURL, schemeDelimiter)
	if idx == -1 {
		return "", "", fmt.Errorf("%w: %q has no scheme", ErrMalformedURL, rawURL)
	}

	rest := rawURL[idx+len(schemeDelimiter):]
	slash := strings.IndexByte(rest, '/')
	if slash == -1 {
		return rest, "/", nil
	}
	return rest[:slash], rest[slash:], nil
}
