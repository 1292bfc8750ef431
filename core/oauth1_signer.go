package core

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SignatureMethod string

const (
	SignatureMethodHMACSHA1 SignatureMethod = "HMAC-SHA1"
	SignatureMethodRSASHA1  SignatureMethod = "RSA-SHA1"
)

const oauthVersion = "1.0"

// SigningContext holds everything required to authorize one request: the
// consumer pair, the current token pair, the signature algorithm, and, for
// partner credentials, the client certificate the transport must present.
// The context signs; it never dials.
type SigningContext struct {
	ConsumerKey     string
	ConsumerSecret  string
	Token           string
	TokenSecret     string
	SignatureMethod SignatureMethod
	RSAKey          *rsa.PrivateKey
	ClientCert      *tls.Certificate
	CallbackURI     string
	Verifier        string

	// Nonce and Now exist for deterministic tests; production callers leave
	// them nil.
	Nonce func() string
	Now   func() time.Time
}

// RequiresClientCert reports whether the transport must present a client
// certificate for requests signed with this context.
func (c SigningContext) RequiresClientCert() bool {
	return c.ClientCert != nil
}

// AuthorizationHeader produces the OAuth Authorization header for a request.
// Query parameters embedded in rawURL and any form body parameters are folded
// into the signature base string per RFC 5849.
func (c SigningContext) AuthorizationHeader(method string, rawURL string, form url.Values) (string, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "", fmt.Errorf("core: request method is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("core: parse request url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("core: request url must be absolute")
	}
	if strings.TrimSpace(c.ConsumerKey) == "" {
		return "", fmt.Errorf("core: consumer key is required for signing")
	}

	oauthParams := c.protocolParams()
	signature, err := c.sign(signatureBaseString(method, parsed, oauthParams, form))
	if err != nil {
		return "", err
	}
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for key := range oauthParams {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", key, oauthPercentEncode(oauthParams[key])))
	}
	return "OAuth " + strings.Join(pairs, ", "), nil
}

func (c SigningContext) protocolParams() map[string]string {
	nonce := c.Nonce
	if nonce == nil {
		nonce = func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		}
	}
	now := c.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	method := c.SignatureMethod
	if method == "" {
		method = SignatureMethodHMACSHA1
	}

	params := map[string]string{
		"oauth_consumer_key":     c.ConsumerKey,
		"oauth_nonce":            nonce(),
		"oauth_signature_method": string(method),
		"oauth_timestamp":        strconv.FormatInt(now().Unix(), 10),
		"oauth_version":          oauthVersion,
	}
	if token := strings.TrimSpace(c.Token); token != "" {
		params["oauth_token"] = token
	}
	if callback := strings.TrimSpace(c.CallbackURI); callback != "" {
		params["oauth_callback"] = callback
	}
	if verifier := strings.TrimSpace(c.Verifier); verifier != "" {
		params["oauth_verifier"] = verifier
	}
	return params
}

func (c SigningContext) sign(baseString string) (string, error) {
	method := c.SignatureMethod
	if method == "" {
		method = SignatureMethodHMACSHA1
	}
	switch method {
	case SignatureMethodHMACSHA1:
		key := oauthPercentEncode(c.ConsumerSecret) + "&" + oauthPercentEncode(c.TokenSecret)
		mac := hmac.New(sha1.New, []byte(key))
		_, _ = mac.Write([]byte(baseString))
		return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
	case SignatureMethodRSASHA1:
		if c.RSAKey == nil {
			return "", fmt.Errorf("core: rsa key is required for %s signing", SignatureMethodRSASHA1)
		}
		digest := sha1.Sum([]byte(baseString))
		signed, err := rsa.SignPKCS1v15(rand.Reader, c.RSAKey, crypto.SHA1, digest[:])
		if err != nil {
			return "", fmt.Errorf("core: rsa sign request: %w", err)
		}
		return base64.StdEncoding.EncodeToString(signed), nil
	default:
		return "", fmt.Errorf("core: unsupported signature method %q", method)
	}
}

// signatureBaseString assembles METHOD&enc(baseURL)&enc(params) where params
// is the normalized union of protocol, query, and form parameters.
func signatureBaseString(method string, requestURL *url.URL, oauthParams map[string]string, form url.Values) string {
	type entry struct {
		key   string
		value string
	}
	entries := make([]entry, 0, len(oauthParams)+len(form))
	for key, value := range oauthParams {
		entries = append(entries, entry{key: oauthPercentEncode(key), value: oauthPercentEncode(value)})
	}
	for key, values := range requestURL.Query() {
		for _, value := range values {
			entries = append(entries, entry{key: oauthPercentEncode(key), value: oauthPercentEncode(value)})
		}
	}
	for key, values := range form {
		for _, value := range values {
			entries = append(entries, entry{key: oauthPercentEncode(key), value: oauthPercentEncode(value)})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key == entries[j].key {
			return entries[i].value < entries[j].value
		}
		return entries[i].key < entries[j].key
	})

	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, e.key+"="+e.value)
	}

	return strings.Join([]string{
		method,
		oauthPercentEncode(baseURI(requestURL)),
		oauthPercentEncode(strings.Join(pairs, "&")),
	}, "&")
}

func baseURI(requestURL *url.URL) string {
	scheme := strings.ToLower(requestURL.Scheme)
	host := strings.ToLower(requestURL.Host)
	if scheme == "http" {
		host = strings.TrimSuffix(host, ":80")
	}
	if scheme == "https" {
		host = strings.TrimSuffix(host, ":443")
	}
	path := requestURL.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

// oauthPercentEncode applies the RFC 5849 variant of percent encoding:
// unreserved characters only, space as %20, tilde untouched.
func oauthPercentEncode(value string) string {
	escaped := url.QueryEscape(value)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "*", "%2A")
	escaped = strings.ReplaceAll(escaped, "%7E", "~")
	return escaped
}

// ParseRSAPrivateKey reads a PEM-encoded RSA private key in either PKCS#1 or
// PKCS#8 form.
func ParseRSAPrivateKey(pemKey string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemKey)))
	if block == nil {
		return nil, fmt.Errorf("core: rsa key is not valid PEM")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("core: parse rsa key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("core: pem block does not contain an rsa key")
	}
	return key, nil
}
