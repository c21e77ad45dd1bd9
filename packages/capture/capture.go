package capture

import (
	"strings"

	"github.com/tidwall/gjson"
)

const headTerminator = "\r\n\r\n"

// Body returns the text after the first blank line, or the whole response if
// there is none.
func Body(raw string) string {
	if _, body, found := strings.Cut(raw, headTerminator); found {
		return body
	}
	return raw
}

// StatusLine returns the first line of the response.
func StatusLine(raw string) string {
	line, _, _ := strings.Cut(raw, "\r\n")
	return line
}

type Extractor struct {
	body     string
	bodyJSON gjson.Result
	isJSON   bool
}

func NewExtractor(raw string) *Extractor {
	e := &Extractor{body: Body(raw)}
	if gjson.Valid(e.body) {
		e.isJSON = true
		e.bodyJSON = gjson.Parse(e.body)
	}
	return e
}

func (e *Extractor) IsJSON() bool {
	return e.isJSON
}

// Extract resolves a gjson path against the body. An empty path returns the
// whole body.
func (e *Extractor) Extract(path string) (string, bool) {
	if path == "" {
		return e.body, true
	}
	if !e.isJSON {
		return "", false
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return "", false
	}
	if result.IsObject() || result.IsArray() {
		return result.Raw, true
	}
	return result.String(), true
}

// ExtractAll resolves every path, skipping ones that do not match.
func ExtractAll(raw string, paths []string) map[string]string {
	extractor := NewExtractor(raw)
	results := make(map[string]string)

	for _, p := range paths {
		if value, ok := extractor.Extract(p); ok {
			results[p] = value
		}
	}

	return results
}
