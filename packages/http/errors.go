package http

import "errors"

// Texts delivered to the completion callback when a request does not produce a response.
const (
	ResponseInvalidURL       = "Invalid URL"
	ResponseConnectionFailed = "Connection failed"
	ResponseNoData           = "No data"
	ResponseBusy             = "Request in progress"
	ResponseCancelled        = "Request cancelled"
)

var (
	ErrMalformedURL     = errors.New("malformed URL")
	ErrConnectionFailed = errors.New("connection failed")
	ErrNoData           = errors.New("no data received")
	// ErrTransportStall marks a NoData result during which receive attempts failed
	ErrTransportStall = errors.New("transport stalled")
	ErrBusy           = errors.New("request already in flight")
	ErrCancelled      = errors.New("request cancelled")
)

// SentinelFor returns the callback text for err, or "" for a nil error.
func SentinelFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedURL):
		return ResponseInvalidURL
	case errors.Is(err, ErrConnectionFailed):
		return ResponseConnectionFailed
	case errors.Is(err, ErrNoData):
		return ResponseNoData
	case errors.Is(err, ErrBusy):
		return ResponseBusy
	case errors.Is(err, ErrCancelled):
		return ResponseCancelled
	default:
		return err.Error()
	}
}
