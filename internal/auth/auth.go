package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// User is the opaque authenticated caller supplied by the identity provider.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Provider resolves a session token to the authenticated user.
type Provider interface {
	UserFromToken(ctx context.Context, token string) (*User, error)
}

// OAuthProvider resolves users against an OIDC-style userinfo endpoint,
// presenting the session token as a bearer credential.
type OAuthProvider struct {
	UserinfoURL string
	Timeout     time.Duration
}

// NewOAuthProvider returns a provider bound to a userinfo endpoint.
func NewOAuthProvider(userinfoURL string) *OAuthProvider {
	return &OAuthProvider{
		UserinfoURL: userinfoURL,
		Timeout:     3 * time.Second,
	}
}

// UserFromToken calls the userinfo endpoint with the token. An invalid or
// expired session surfaces as an error, never a crash.
func (p *OAuthProvider) UserFromToken(ctx context.Context, token string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(ctx, ts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request: status %d", resp.StatusCode)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone_number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("userinfo: missing subject")
	}

	return &User{
		ID:    claims.Sub,
		Name:  claims.Name,
		Email: claims.Email,
		Phone: claims.Phone,
	}, nil
}
