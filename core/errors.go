package core

import (
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Stable text codes for every response class the Xero API can return.
const (
	ErrorBadRequest     = "XERO_BAD_REQUEST"
	ErrorUnauthorized   = "XERO_UNAUTHORIZED"
	ErrorForbidden      = "XERO_FORBIDDEN"
	ErrorNotFound       = "XERO_NOT_FOUND"
	ErrorInternal       = "XERO_INTERNAL_ERROR"
	ErrorNotImplemented = "XERO_NOT_IMPLEMENTED"
	ErrorRateLimited    = "XERO_RATE_LIMIT_EXCEEDED"
	ErrorNotAvailable   = "XERO_NOT_AVAILABLE"
	ErrorUnknown        = "XERO_UNKNOWN_RESPONSE"
	ErrorNotVerified    = "XERO_NOT_VERIFIED"
)

// ClassifyResponse maps an HTTP response to the shared error taxonomy.
// It returns nil for 200; every other status produces a go-errors envelope
// carrying the raw status code and body so callers can inspect the response.
//
// A 503 is ambiguous: rate-limit rejections carry a url-encoded body while
// outages carry nothing, so a parseable non-empty body is classified as a
// rate limit and the parsed payload is attached.
func ClassifyResponse(res TransportResponse) error {
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return responseError("xero: bad request", goerrors.CategoryBadInput, ErrorBadRequest, res, nil)
	case http.StatusUnauthorized:
		return responseError("xero: unauthorized", goerrors.CategoryAuth, ErrorUnauthorized, res, nil)
	case http.StatusForbidden:
		return responseError("xero: forbidden", goerrors.CategoryAuthz, ErrorForbidden, res, nil)
	case http.StatusNotFound:
		return responseError("xero: not found", goerrors.CategoryNotFound, ErrorNotFound, res, nil)
	case http.StatusInternalServerError:
		return responseError("xero: internal server error", goerrors.CategoryExternal, ErrorInternal, res, nil)
	case http.StatusNotImplemented:
		return responseError("xero: not implemented", goerrors.CategoryOperation, ErrorNotImplemented, res, nil)
	case http.StatusServiceUnavailable:
		payload, err := url.ParseQuery(strings.TrimSpace(string(res.Body)))
		if err == nil && len(payload) > 0 {
			return responseError("xero: rate limit exceeded", goerrors.CategoryRateLimit, ErrorRateLimited, res, map[string]any{
				"payload": payload,
			})
		}
		return responseError("xero: not available", goerrors.CategoryExternal, ErrorNotAvailable, res, nil)
	default:
		return responseError("xero: unknown response", goerrors.CategoryExternal, ErrorUnknown, res, nil)
	}
}

// NotVerifiedError reports a signing context requested from a credential that
// has not completed verification.
func NotVerifiedError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorNotVerified)
}

// TextCode extracts the stable text code from a classified error, or "" when
// the error does not carry one.
func TextCode(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	return richErr.TextCode
}

// RateLimitPayload returns the parsed 503 payload attached to a rate-limit
// error, or nil for any other error.
func RateLimitPayload(err error) url.Values {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ErrorRateLimited {
		return nil
	}
	payload, ok := richErr.Metadata["payload"].(url.Values)
	if !ok {
		return nil
	}
	return payload
}

// ResponseBody returns the raw body captured on a classified error.
func ResponseBody(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return "", false
	}
	body, ok := richErr.Metadata["body"].(string)
	return body, ok
}

func responseError(
	message string,
	category goerrors.Category,
	textCode string,
	res TransportResponse,
	extra map[string]any,
) error {
	metadata := map[string]any{
		"status_code": res.StatusCode,
		"body":        string(res.Body),
	}
	for key, value := range extra {
		metadata[key] = value
	}
	return goerrors.New(message, category).
		WithCode(res.StatusCode).
		WithTextCode(textCode).
		WithMetadata(metadata)
}
