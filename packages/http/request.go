package http

import (
	"strconv"
	"strings"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// ContentType classifies a POST body.
type ContentType int

const (
	FormURLEncoded ContentType = iota
	JSON
	XML
	Text
	// OctetStream is the class for anything unrecognized
	OctetStream
)

// MIME returns the Content-Type header value for the class.
func (c ContentType) MIME() string {
	switch c {
	case FormURLEncoded:
		return "application/x-www-form-urlencoded"
	case JSON:
		return "application/json"
	case XML:
		return "application/xml"
	case Text:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func (c ContentType) String() string {
	switch c {
	case FormURLEncoded:
		return "form"
	case JSON:
		return "json"
	case XML:
		return "xml"
	case Text:
		return "text"
	default:
		return "binary"
	}
}

// ParseContentType maps a short name to its class. Unknown names map to OctetStream.
func ParseContentType(name string) ContentType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "form", "form_urlencoded", "urlencoded", "application/x-www-form-urlencoded":
		return FormURLEncoded
	case "json", "application/json":
		return JSON
	case "xml", "application/xml":
		return XML
	case "text", "text/plain":
		return Text
	default:
		return OctetStream
	}
}

type Request struct {
	Method      string
	Host        string
	Path        string
	Headers     []Header
	ContentType ContentType
	Body        string
}

// NewRequest decomposes rawURL and snapshots headers. headers may be nil.
func NewRequest(method, rawURL string, headers *HeaderSet) (*Request, error) {
	host, path, err := SplitURL(rawURL)
	if err != nil {
		return nil, err
	}

	r := &Request{
		Method: method,
		Host:   host,
		Path:   path,
	}
	if headers != nil {
		r.Headers = headers.Snapshot()
	}
	return r, nil
}

func (r *Request) SetBody(ct ContentType, body string) *Request {
	r.ContentType = ct
	r.Body = body
	return r
}

// EncodedBody returns the body as it goes on the wire.
func (r *Request) EncodedBody() string {
	if r.ContentType == FormURLEncoded {
		return URLEncode(r.Body)
	}
	return r.Body
}

func (r *Request) hasBody() bool {
	return r.Method == MethodPost
}

// Bytes serializes the request. The Host header always follows the request
// line and the header block always ends with "Connection: close".
func (r *Request) Bytes() []byte {
	var sb strings.Builder

	sb.WriteString(r.Method)
	sb.WriteByte(' ')
	sb.WriteString(r.Path)
	sb.WriteString(" HTTP/1.1\r\n")

	writeHeader(&sb, "Host", r.Host)

	var body string
	if r.hasBody() {
		body = r.EncodedBody()
		writeHeader(&sb, "Content-Type", r.ContentType.MIME())
		writeHeader(&sb, "Content-Length", strconv.Itoa(len(body)))
	}

	for _, h := range r.Headers {
		writeHeader(&sb, h.Name, h.Value)
	}

	sb.WriteString("Connection: close\r\n\r\n")
	sb.WriteString(body)

	return []byte(sb.String())
}

func writeHeader(sb *strings.Builder, name, value string) {
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\r\n")
}

const upperHex = "0123456789ABCDEF"

// URLEncode percent-encodes every byte except ASCII letters, digits and "-_.~".
// Unlike url.QueryEscape, spaces become %20.
func URLEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&15])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
