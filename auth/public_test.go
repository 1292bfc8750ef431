package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/transport"
)

func testEndpoints(serverURL string) core.EndpointConfig {
	return core.EndpointConfig{
		RequestTokenURL: serverURL + "/oauth/RequestToken",
		AuthorizeURL:    serverURL + "/oauth/Authorize",
		AccessTokenURL:  serverURL + "/oauth/AccessToken",
		APIURL:          serverURL + "/api.xro/2.0",
	}
}

func TestPublicCredentials_FullHandshake(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		authorization := r.Header.Get("Authorization")
		if !strings.HasPrefix(authorization, "OAuth ") {
			t.Fatalf("expected OAuth authorization header, got %q", authorization)
		}
		switch r.URL.Path {
		case "/oauth/RequestToken":
			if !strings.Contains(authorization, `oauth_signature_method="HMAC-SHA1"`) {
				t.Fatalf("public flow must sign with HMAC, got %q", authorization)
			}
			_, _ = w.Write([]byte("oauth_token=request-token&oauth_token_secret=request-secret"))
		case "/oauth/AccessToken":
			if !strings.Contains(authorization, `oauth_verifier="123456"`) {
				t.Fatalf("expected verifier in header, got %q", authorization)
			}
			if !strings.Contains(authorization, `oauth_token="request-token"`) {
				t.Fatalf("expected request token in header, got %q", authorization)
			}
			_, _ = w.Write([]byte("oauth_token=access-token&oauth_token_secret=access-secret"))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	credentials, err := NewPublic("consumer-key", "consumer-secret",
		WithEndpoints(testEndpoints(server.URL)),
		WithTransport(transport.NewRESTAdapter(server.Client())),
	)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if _, err := credentials.SigningContext(); core.TextCode(err) != core.ErrorNotVerified {
		t.Fatalf("expected not-verified error before the handshake, got %v", err)
	}
	if _, err := credentials.AuthorizationURL(); err == nil {
		t.Fatalf("expected error before a request token exists")
	}

	if err := credentials.Initiate(context.Background()); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	authorizeURL, err := credentials.AuthorizationURL()
	if err != nil {
		t.Fatalf("authorization url: %v", err)
	}
	if !strings.Contains(authorizeURL, "oauth_token=request-token") {
		t.Fatalf("expected request token in authorize url, got %q", authorizeURL)
	}

	if err := credentials.Verify(context.Background(), "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	signing, err := credentials.SigningContext()
	if err != nil {
		t.Fatalf("signing context after verify: %v", err)
	}
	if signing.Token != "access-token" || signing.TokenSecret != "access-secret" {
		t.Fatalf("expected access token pair, got %q/%q", signing.Token, signing.TokenSecret)
	}
	if signing.SignatureMethod != core.SignatureMethodHMACSHA1 {
		t.Fatalf("expected HMAC signing, got %q", signing.SignatureMethod)
	}

	state := credentials.State()
	if state[core.StateVerified] != true {
		t.Fatalf("expected verified state, got %v", state[core.StateVerified])
	}
	if state[core.StateOAuthToken] != "access-token" {
		t.Fatalf("expected token persisted, got %v", state[core.StateOAuthToken])
	}
	if _, ok := state[core.StateCallbackURI]; ok {
		t.Fatalf("empty fields must be omitted from state")
	}
}

func TestPublicCredentials_InitiateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("oauth_problem=rate_limit_exceeded"))
	}))
	defer server.Close()

	credentials, err := NewPublic("consumer-key", "consumer-secret",
		WithEndpoints(testEndpoints(server.URL)),
		WithTransport(transport.NewRESTAdapter(server.Client())),
	)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	err = credentials.Initiate(context.Background())
	if core.TextCode(err) != core.ErrorRateLimited {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
	if payload := core.RateLimitPayload(err); payload.Get("oauth_problem") != "rate_limit_exceeded" {
		t.Fatalf("expected parsed payload, got %v", payload)
	}
}

func TestPublicCredentials_RestoredVerifiedState(t *testing.T) {
	credentials, err := NewPublic("consumer-key", "consumer-secret",
		WithRestoredState(core.CredentialState{
			core.StateVerified:         true,
			core.StateOAuthToken:       "stored-token",
			core.StateOAuthTokenSecret: "stored-secret",
		}),
	)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	signing, err := credentials.SigningContext()
	if err != nil {
		t.Fatalf("expected restored credential to sign, got %v", err)
	}
	if signing.Token != "stored-token" {
		t.Fatalf("expected restored token, got %q", signing.Token)
	}
}

func TestPublicCredentials_RefreshUnsupported(t *testing.T) {
	credentials, err := NewPublic("consumer-key", "consumer-secret")
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if err := credentials.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh to fail for public credentials")
	}
}

func TestNewPublic_RequiresConsumerPair(t *testing.T) {
	if _, err := NewPublic("", "secret"); err == nil {
		t.Fatalf("expected error for missing consumer key")
	}
	if _, err := NewPublic("key", ""); err == nil {
		t.Fatalf("expected error for missing consumer secret")
	}
}
