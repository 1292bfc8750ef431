package xero

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-xero/auth"
	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/transport"
)

func restoredPublicCredentials(t *testing.T, endpoints core.EndpointConfig) auth.Credentials {
	t.Helper()
	credentials, err := auth.NewPublic("consumer-key", "consumer-secret",
		auth.WithEndpoints(endpoints),
		auth.WithRestoredState(core.CredentialState{
			core.StateVerified:         true,
			core.StateOAuthToken:       "token",
			core.StateOAuthTokenSecret: "token-secret",
		}),
	)
	if err != nil {
		t.Fatalf("construct credentials: %v", err)
	}
	return credentials
}

func TestClient_CollectionRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api.xro/2.0/Contacts" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
			t.Fatalf("expected signed request")
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<Response>
			<Contacts>
				<Contact><Name>Acme</Name></Contact>
				<Contact><Name>Globex</Name></Contact>
			</Contacts>
		</Response>`))
	}))
	defer server.Close()

	endpoints := core.EndpointConfig{
		RequestTokenURL: server.URL + "/oauth/RequestToken",
		AuthorizeURL:    server.URL + "/oauth/Authorize",
		AccessTokenURL:  server.URL + "/oauth/AccessToken",
		APIURL:          server.URL + "/api.xro/2.0",
	}
	client, err := New(restoredPublicCredentials(t, endpoints),
		WithTransport(transport.NewRESTAdapter(server.Client())),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Contacts().All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	records, ok := result.Records.([]any)
	if !ok || len(records) != 2 {
		t.Fatalf("expected 2 records, got %T %v", result.Records, result.Records)
	}
}

func TestClient_ManagersAreCachedPerCollection(t *testing.T) {
	client, err := New(restoredPublicCredentials(t, core.DefaultConfig().Endpoints))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Contacts() != client.Contacts() {
		t.Fatalf("expected the same manager instance per collection")
	}
	if client.Contacts() == client.Invoices() {
		t.Fatalf("expected distinct managers per collection")
	}
}

func TestClient_PayrollCollectionsUsePayrollPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payroll.xro/1.0/Timesheets" {
			t.Fatalf("expected payroll prefix, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<Response><Timesheets/></Response>`))
	}))
	defer server.Close()

	endpoints := core.DefaultConfig().Endpoints
	endpoints.APIURL = server.URL + "/api.xro/2.0"
	client, err := New(restoredPublicCredentials(t, endpoints),
		WithTransport(transport.NewRESTAdapter(server.Client())),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Timesheets().All(context.Background()); err != nil {
		t.Fatalf("all: %v", err)
	}
}

type staticLoader struct {
	values map[string]any
}

func (l staticLoader) LoadRaw(context.Context) (map[string]any, error) {
	return l.values, nil
}

type failingProvider struct{}

func (failingProvider) Load(context.Context, core.Config) (core.Config, error) {
	return core.Config{}, errConfigLoad
}

var errConfigLoad = errors.New("config source unavailable")

func TestClient_ResolvesConfigurationInLayers(t *testing.T) {
	endpoints := core.DefaultConfig().Endpoints
	endpoints.APIURL = "https://partner-api.example.com/base"

	provider := core.NewCfgxConfigProvider(staticLoader{values: map[string]any{
		"payroll_api_url": "https://example.com/payroll-loaded",
	}})

	client, err := New(restoredPublicCredentials(t, endpoints),
		WithConfigProvider(provider),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if got := client.payrollURL(); got != "https://example.com/payroll-loaded" {
		t.Fatalf("expected loaded payroll url, got %q", got)
	}

	runtime := core.Config{PayrollAPIURL: "https://example.com/payroll-runtime"}
	client, err = New(restoredPublicCredentials(t, endpoints),
		WithConfigProvider(provider),
		WithConfig(runtime),
	)
	if err != nil {
		t.Fatalf("new client with runtime overrides: %v", err)
	}
	if got := client.payrollURL(); got != "https://example.com/payroll-runtime" {
		t.Fatalf("expected runtime payroll url to win, got %q", got)
	}

	if got := client.config.Endpoints.APIURL; got != core.DefaultConfig().Endpoints.APIURL {
		t.Fatalf("expected untouched fields to keep defaults, got %q", got)
	}
}

func TestClient_NewFailsWhenConfigLoadFails(t *testing.T) {
	_, err := New(restoredPublicCredentials(t, core.DefaultConfig().Endpoints),
		WithConfigProvider(failingProvider{}),
	)
	if !errors.Is(err, errConfigLoad) {
		t.Fatalf("expected config load error, got %v", err)
	}
}
