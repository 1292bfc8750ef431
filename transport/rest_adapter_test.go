package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-xero/core"
)

func TestRESTAdapter_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "OAuth test" {
			t.Fatalf("expected authorization header forwarded, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Fatalf("expected default headers applied")
		}
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<Response/>"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.DefaultHeaders["User-Agent"] = "go-xero"

	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method:  http.MethodPost,
		URL:     server.URL + "/api.xro/2.0/Contacts",
		Headers: map[string]string{"Authorization": "OAuth test"},
		Body:    []byte("xml=%3CContact%2F%3E"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if string(res.Body) != "<Response/>" {
		t.Fatalf("unexpected body %q", res.Body)
	}
	if res.Header("content-type") != "text/xml" {
		t.Fatalf("expected case-insensitive header lookup, got %q", res.Header("content-type"))
	}
}

func TestRESTAdapter_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	_, err := adapter.Do(context.Background(), core.TransportRequest{
		URL:                  server.URL,
		MaxResponseBodyBytes: 1024,
	})
	if err == nil {
		t.Fatalf("expected body limit error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
}

func TestRESTAdapter_NilClientGuard(t *testing.T) {
	var adapter *RESTAdapter
	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: "https://api.xero.com"})
	if err == nil {
		t.Fatalf("expected dependency error")
	}
	if core.TextCode(err) != core.ErrorInternal {
		t.Fatalf("expected %q, got %q", core.ErrorInternal, core.TextCode(err))
	}
}

func TestNewCertificateClient_PlainWithoutCert(t *testing.T) {
	client := NewCertificateClient(nil)
	if client.Transport != nil {
		t.Fatalf("expected default transport without a certificate")
	}
}
