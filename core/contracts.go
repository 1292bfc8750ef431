package core

import (
	"context"
	"net/textproto"
	"net/url"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// RequestDescriptor is the output of every resource verb: everything needed
// to perform one API round trip, before signing.
type RequestDescriptor struct {
	Method  string
	URL     string
	Form    url.Values
	Headers map[string]string
}

// TransportRequest is the signed, fully assembled request handed to a
// transport adapter.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration

	// MaxResponseBodyBytes caps the response body for this request; zero
	// falls back to the adapter's limit.
	MaxResponseBodyBytes int64
}

// TransportAdapter performs one HTTP round trip for an assembled request.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// TransportResponse is the raw outcome of a transport call. Header keys are
// flattened with canonical casing preserved from net/http.
type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Header returns the first value for key, matching case-insensitively.
func (r TransportResponse) Header(key string) string {
	if len(r.Headers) == 0 {
		return ""
	}
	if value, ok := r.Headers[key]; ok {
		return value
	}
	canonical := textproto.CanonicalMIMEHeaderKey(key)
	for name, value := range r.Headers {
		if textproto.CanonicalMIMEHeaderKey(name) == canonical {
			return value
		}
	}
	return ""
}

// SigningContextProvider is the capability every credential variant exposes
// once verified. Requesting a context from an unverified credential fails
// with a not-verified error.
type SigningContextProvider interface {
	SigningContext() (SigningContext, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
