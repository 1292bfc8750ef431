package core

import (
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestClassifyResponse_AssignsStableCodes(t *testing.T) {
	cases := []struct {
		status   int
		textCode string
		category goerrors.Category
	}{
		{http.StatusBadRequest, ErrorBadRequest, goerrors.CategoryBadInput},
		{http.StatusUnauthorized, ErrorUnauthorized, goerrors.CategoryAuth},
		{http.StatusForbidden, ErrorForbidden, goerrors.CategoryAuthz},
		{http.StatusNotFound, ErrorNotFound, goerrors.CategoryNotFound},
		{http.StatusInternalServerError, ErrorInternal, goerrors.CategoryExternal},
		{http.StatusNotImplemented, ErrorNotImplemented, goerrors.CategoryOperation},
		{http.StatusTeapot, ErrorUnknown, goerrors.CategoryExternal},
	}
	for _, tc := range cases {
		err := ClassifyResponse(TransportResponse{StatusCode: tc.status, Body: []byte("payload")})
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			t.Fatalf("status %d: expected go-errors envelope, got %T", tc.status, err)
		}
		if rich.TextCode != tc.textCode {
			t.Fatalf("status %d: expected text code %q, got %q", tc.status, tc.textCode, rich.TextCode)
		}
		if rich.Category != tc.category {
			t.Fatalf("status %d: expected category %q, got %q", tc.status, tc.category, rich.Category)
		}
		if rich.Code != tc.status {
			t.Fatalf("status %d: expected code carried, got %d", tc.status, rich.Code)
		}
		if body, ok := ResponseBody(err); !ok || body != "payload" {
			t.Fatalf("status %d: expected raw body carried, got %q", tc.status, body)
		}
	}
}

func TestClassifyResponse_OKIsNil(t *testing.T) {
	if err := ClassifyResponse(TransportResponse{StatusCode: http.StatusOK}); err != nil {
		t.Fatalf("expected nil for 200, got %v", err)
	}
}

func TestClassifyResponse_RateLimitCarriesParsedPayload(t *testing.T) {
	err := ClassifyResponse(TransportResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       []byte("oauth_problem=rate_limit_exceeded"),
	})
	if err == nil {
		t.Fatalf("expected rate limit error")
	}
	if TextCode(err) != ErrorRateLimited {
		t.Fatalf("expected %q, got %q", ErrorRateLimited, TextCode(err))
	}
	payload := RateLimitPayload(err)
	if payload.Get("oauth_problem") != "rate_limit_exceeded" {
		t.Fatalf("expected parsed payload, got %v", payload)
	}
}

func TestClassifyResponse_EmptyServiceUnavailableIsOffline(t *testing.T) {
	err := ClassifyResponse(TransportResponse{StatusCode: http.StatusServiceUnavailable})
	if TextCode(err) != ErrorNotAvailable {
		t.Fatalf("expected %q, got %q", ErrorNotAvailable, TextCode(err))
	}
	if RateLimitPayload(err) != nil {
		t.Fatalf("offline error must not carry a rate-limit payload")
	}
}

func TestNotVerifiedError(t *testing.T) {
	err := NotVerifiedError("credentials have not been verified")
	if TextCode(err) != ErrorNotVerified {
		t.Fatalf("expected %q, got %q", ErrorNotVerified, TextCode(err))
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryAuth {
		t.Fatalf("expected auth category, got %q", rich.Category)
	}
}
