// Package identity adapts the external OAuth identity provider: the login
// redirect, the authorization-code exchange, token refresh, sign-out and
// local verification of the provider's access tokens.
//
// The provider speaks the GoTrue REST dialect (the auth service behind
// Supabase). Every request carries the project's anon key in the apikey
// header.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dcatracker/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// User is the identity asserted by the provider.
type User struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL string
}

// Session is the token pair issued after a code exchange or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Client calls the provider's REST endpoints.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// AuthorizeURL is where the browser goes to log in with provider. The
// provider redirects back to redirectTo with a ?code= parameter.
func (c *Client) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "s256")
	return c.baseURL + "/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code and its PKCE verifier for a session.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*Session, error) {
	body := map[string]string{"auth_code": code, "code_verifier": verifier}
	return c.token(ctx, "pkce", body)
}

// Refresh trades a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.token(ctx, "refresh_token", body)
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: identity logout: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()
	return checkStatus("logout", resp)
}

type providerUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Picture   string `json:"picture"`
	} `json:"user_metadata"`
}

func (p providerUser) toUser() User {
	u := User{ID: p.ID, Email: p.Email, FullName: p.UserMetadata.FullName, AvatarURL: p.UserMetadata.AvatarURL}
	if u.FullName == "" {
		u.FullName = p.UserMetadata.Name
	}
	if u.AvatarURL == "" {
		u.AvatarURL = p.UserMetadata.Picture
	}
	return u
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         providerUser `json:"user"`
}

func (c *Client) token(ctx context.Context, grant string, body map[string]string) (*Session, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/token?grant_type="+url.QueryEscape(grant), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: identity %s: %v", domain.ErrUpstreamFailure, grant, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(grant, resp); err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: identity %s: decode: %v", domain.ErrUpstreamFailure, grant, err)
	}
	if tr.AccessToken == "" || tr.User.ID == "" {
		return nil, fmt.Errorf("%w: identity %s: incomplete session", domain.ErrUpstreamFailure, grant)
	}

	s := &Session{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken, User: tr.User.toUser()}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return s, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}
	return req, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%w: identity %s: status %d: %s", domain.ErrUpstreamFailure, op, resp.StatusCode, strings.TrimSpace(string(msg)))
}
