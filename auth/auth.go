// Package auth obtains OAuth2 client credential tokens.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

type ClientCred struct {
	src oauth2.TokenSource
}

// NewClientCred returns a ClientCred caching tokens until they expire.
func NewClientCred(ctx context.Context, conf Conf) *ClientCred {
	cc := conf.toOauth2Config()
	return &ClientCred{src: cc.TokenSource(ctx)}
}

// GetToken returns a valid access token, requesting a new one when the
// cached token expired.
func (c *ClientCred) GetToken() (string, error) {
	tok, err := c.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return tok.AccessToken, nil
}

// SetAuthHeader sets the Authorization header of r.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	tok, err := c.src.Token()
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	tok.SetAuthHeader(r)
	return nil
}

// Transport wraps base so every request carries a bearer token. A nil base
// uses http.DefaultTransport.
func (c *ClientCred) Transport(base http.RoundTripper) http.RoundTripper {
	return &oauth2.Transport{Source: c.src, Base: base}
}
