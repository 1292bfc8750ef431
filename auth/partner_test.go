package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/transport"
)

func testRSAKeyPEM(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	encoded := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return string(encoded), key
}

func testClientCert(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "partner-app"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func fixedPartnerClock() time.Time {
	return time.Date(2015, time.March, 10, 14, 30, 0, 0, time.UTC)
}

func TestPartnerCredentials_VerifyComputesExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		if !strings.Contains(authorization, `oauth_signature_method="RSA-SHA1"`) {
			t.Fatalf("partner flow must sign with RSA, got %q", authorization)
		}
		switch r.URL.Path {
		case "/oauth/RequestToken":
			_, _ = w.Write([]byte("oauth_token=request-token&oauth_token_secret=request-secret"))
		case "/oauth/AccessToken":
			_, _ = w.Write([]byte("oauth_token=access-token&oauth_token_secret=access-secret" +
				"&oauth_session_handle=session-1&oauth_expires_in=1800&oauth_authorization_expires_in=86400"))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	keyPEM, _ := testRSAKeyPEM(t)
	credentials, err := NewPartner("consumer-key", "consumer-secret", keyPEM, testClientCert(t),
		WithEndpoints(testEndpoints(server.URL)),
		WithTransport(transport.NewRESTAdapter(server.Client())),
		WithClock(fixedPartnerClock),
	)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if err := credentials.Initiate(context.Background()); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := credentials.Verify(context.Background(), "654321"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	state := credentials.State()
	expiresAt, ok := state[core.StateExpiresAt].(time.Time)
	if !ok {
		t.Fatalf("expected expiry timestamp in state, got %T", state[core.StateExpiresAt])
	}
	if want := fixedPartnerClock().Add(1800 * time.Second); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}
	authExpiresAt, ok := state[core.StateAuthorizationExpiresAt].(time.Time)
	if !ok {
		t.Fatalf("expected authorization expiry in state, got %T", state[core.StateAuthorizationExpiresAt])
	}
	if want := fixedPartnerClock().Add(86400 * time.Second); !authExpiresAt.Equal(want) {
		t.Fatalf("expected authorization expiry %v, got %v", want, authExpiresAt)
	}
	if state[core.StateSessionHandle] != "session-1" {
		t.Fatalf("expected session handle persisted, got %v", state[core.StateSessionHandle])
	}

	signing, err := credentials.SigningContext()
	if err != nil {
		t.Fatalf("signing context: %v", err)
	}
	if !signing.RequiresClientCert() {
		t.Fatalf("partner signing context must carry the client certificate")
	}
	if signing.SignatureMethod != core.SignatureMethodRSASHA1 {
		t.Fatalf("expected RSA signing, got %q", signing.SignatureMethod)
	}
}

func TestPartnerCredentials_RefreshUsesSessionHandle(t *testing.T) {
	var sawHandle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/AccessToken" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		sawHandle = r.URL.Query().Get("oauth_session_handle")
		_, _ = w.Write([]byte("oauth_token=renewed-token&oauth_token_secret=renewed-secret" +
			"&oauth_session_handle=session-2&oauth_expires_in=1800&oauth_authorization_expires_in=86400"))
	}))
	defer server.Close()

	keyPEM, _ := testRSAKeyPEM(t)
	credentials, err := NewPartner("consumer-key", "consumer-secret", keyPEM, testClientCert(t),
		WithEndpoints(testEndpoints(server.URL)),
		WithTransport(transport.NewRESTAdapter(server.Client())),
		WithClock(fixedPartnerClock),
		WithRestoredState(core.CredentialState{
			core.StateVerified:         true,
			core.StateOAuthToken:       "stale-token",
			core.StateOAuthTokenSecret: "stale-secret",
			core.StateSessionHandle:    "session-1",
		}),
	)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if err := credentials.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if sawHandle != "session-1" {
		t.Fatalf("expected session handle on the wire, got %q", sawHandle)
	}
	signing, err := credentials.SigningContext()
	if err != nil {
		t.Fatalf("signing context: %v", err)
	}
	if signing.Token != "renewed-token" {
		t.Fatalf("expected renewed token, got %q", signing.Token)
	}
	if credentials.State()[core.StateSessionHandle] != "session-2" {
		t.Fatalf("expected rotated session handle, got %v", credentials.State()[core.StateSessionHandle])
	}
}

func TestPartnerCredentials_RefreshRequiresSessionHandle(t *testing.T) {
	keyPEM, _ := testRSAKeyPEM(t)
	credentials, err := NewPartner("consumer-key", "consumer-secret", keyPEM, testClientCert(t))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if err := credentials.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh to fail without a session handle")
	}
}

func TestPartnerCredentials_Expired(t *testing.T) {
	keyPEM, _ := testRSAKeyPEM(t)
	credentials, err := NewPartner("consumer-key", "consumer-secret", keyPEM, testClientCert(t),
		WithClock(fixedPartnerClock),
		WithRestoredState(core.CredentialState{
			core.StateVerified:  true,
			core.StateExpiresAt: fixedPartnerClock().Add(-time.Minute),
		}),
	)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if !credentials.Expired() {
		t.Fatalf("expected credential to report expired")
	}
}

func TestNewPartner_RequiresClientCert(t *testing.T) {
	keyPEM, _ := testRSAKeyPEM(t)
	if _, err := NewPartner("consumer-key", "consumer-secret", keyPEM, tls.Certificate{}); err == nil {
		t.Fatalf("expected error for missing client certificate")
	}
}
