package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_GetBytes(t *testing.T) {
	headers := NewHeaderSet()
	headers.Set("Authorization", "Bearer 123")
	headers.Set("User-Agent", "AsyncHttp/1.0")

	req, err := NewRequest(MethodGet, "http://www.example.com", headers)
	require.NoError(t, err)

	expected := "GET / HTTP/1.1\r\n" +
		"Host: www.example.com\r\n" +
		"Authorization: Bearer 123\r\n" +
		"User-Agent: AsyncHttp/1.0\r\n" +
		"Connection: close\r\n\r\n"
	assert.Equal(t, expected, string(req.Bytes()))
}

func TestRequest_PostJSONPassthrough(t *testing.T) {
	body := `{"name": "olli", "job": "pro coder"}`
	req, err := NewRequest(MethodPost, "http://postman-echo.com/post", nil)
	require.NoError(t, err)
	req.SetBody(JSON, body)

	expected := "POST /post HTTP/1.1\r\n" +
		"Host: postman-echo.com\r\n" +
		"Content-Type: application/json\r\n" +
		"Content-Length: 36\r\n" +
		"Connection: close\r\n\r\n" +
		body
	assert.Equal(t, expected, string(req.Bytes()))
}

func TestRequest_PostFormEncodesBody(t *testing.T) {
	req, err := NewRequest(MethodPost, "http://example.com/form", nil)
	require.NoError(t, err)
	req.SetBody(FormURLEncoded, "a b")

	raw := string(req.Bytes())
	assert.Contains(t, raw, "Content-Type: application/x-www-form-urlencoded\r\n")
	assert.Contains(t, raw, "Content-Length: 5\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\na%20b"))
}

func TestRequest_UnknownContentType(t *testing.T) {
	req, err := NewRequest(MethodPost, "http://example.com/", nil)
	require.NoError(t, err)
	req.SetBody(ContentType(42), "raw")

	assert.Contains(t, string(req.Bytes()), "Content-Type: application/octet-stream\r\n")
}

func TestRequest_HostOnceAndTerminator(t *testing.T) {
	headers := NewHeaderSet()
	headers.Set("X-A", "1")

	for _, method := range []string{MethodGet, MethodPost} {
		req, err := NewRequest(method, "http://api.local/v1/items", headers)
		require.NoError(t, err)
		req.SetBody(Text, "hi")

		raw := string(req.Bytes())
		head, _, found := strings.Cut(raw, "\r\n\r\n")
		require.True(t, found)
		assert.True(t, strings.HasSuffix(head, "Connection: close"))
		assert.Equal(t, 1, strings.Count(raw, "Host: "))
		assert.True(t, strings.HasPrefix(raw, method+" /v1/items HTTP/1.1\r\nHost: api.local\r\n"))
	}
}

func TestRequest_BytesIdempotent(t *testing.T) {
	headers := NewHeaderSet()
	headers.Set("X-A", "1")
	headers.Set("X-B", "2")

	req, err := NewRequest(MethodPost, "http://example.com/x", headers)
	require.NoError(t, err)
	req.SetBody(FormURLEncoded, "k=v&w=ü")

	assert.Equal(t, req.Bytes(), req.Bytes())
}

func TestRequest_GetIgnoresBody(t *testing.T) {
	req, err := NewRequest(MethodGet, "http://example.com/", nil)
	require.NoError(t, err)
	req.SetBody(JSON, `{"x":1}`)

	raw := string(req.Bytes())
	assert.NotContains(t, raw, "Content-Length")
	assert.True(t, strings.HasSuffix(raw, "Connection: close\r\n\r\n"))
}

func TestURLEncode(t *testing.T) {
	assert.Equal(t, "a%20b", URLEncode("a b"))
	assert.Equal(t, "AZaz09-_.~", URLEncode("AZaz09-_.~"))
	assert.Equal(t, "k%3Dv%26x%3Dy", URLEncode("k=v&x=y"))
	assert.Equal(t, "%C3%BC", URLEncode("ü"))
	assert.Equal(t, "%2F%0A%00", URLEncode("/\n\x00"))
	assert.Equal(t, "", URLEncode(""))
}

func TestContentType_MIME(t *testing.T) {
	assert.Equal(t, "application/x-www-form-urlencoded", FormURLEncoded.MIME())
	assert.Equal(t, "application/json", JSON.MIME())
	assert.Equal(t, "application/xml", XML.MIME())
	assert.Equal(t, "text/plain", Text.MIME())
	assert.Equal(t, "application/octet-stream", OctetStream.MIME())
}

func TestParseContentType(t *testing.T) {
	assert.Equal(t, FormURLEncoded, ParseContentType("form"))
	assert.Equal(t, JSON, ParseContentType(" JSON "))
	assert.Equal(t, XML, ParseContentType("application/xml"))
	assert.Equal(t, Text, ParseContentType("text"))
	assert.Equal(t, OctetStream, ParseContentType("yaml"))
}
