package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-xero/core"
	"github.com/goliatone/go-xero/transport"
)

// exchangeToken performs one signed token-endpoint round trip and returns
// the url-encoded response pairs. Non-200 responses surface through the
// shared status classification, including the 503 rate-limit split.
func exchangeToken(
	ctx context.Context,
	adapter core.TransportAdapter,
	signing core.SigningContext,
	tokenURL string,
	form url.Values,
) (url.Values, error) {
	if adapter == nil {
		return nil, fmt.Errorf("auth: transport adapter is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	header, err := signing.AuthorizationHeader(http.MethodPost, tokenURL, form)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Authorization": header}
	var body []byte
	if len(form) > 0 {
		body = []byte(form.Encode())
		headers["Content-Type"] = "application/x-www-form-urlencoded"
	}

	res, err := adapter.Do(ctx, core.TransportRequest{
		Method:  http.MethodPost,
		URL:     tokenURL,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return nil, err
	}
	if err := core.ClassifyResponse(res); err != nil {
		return nil, err
	}

	values, err := url.ParseQuery(strings.TrimSpace(string(res.Body)))
	if err != nil {
		return nil, fmt.Errorf("auth: parse token response: %w", err)
	}
	return values, nil
}

func requireTokenPair(values url.Values) (string, string, error) {
	token := values.Get("oauth_token")
	secret := values.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return "", "", fmt.Errorf("auth: token response missing oauth_token or oauth_token_secret")
	}
	return token, secret, nil
}

func defaultAdapter(s settings) core.TransportAdapter {
	if s.adapter != nil {
		return s.adapter
	}
	return transport.NewRESTAdapter(nil)
}

// authorizeURL renders the user-consent URL for the current request token.
func authorizeURL(base string, token string, scope string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("auth: no request token; call Initiate first")
	}
	query := url.Values{"oauth_token": {token}}
	if scope != "" {
		query.Set("scope", scope)
	}
	return base + "?" + query.Encode(), nil
}
