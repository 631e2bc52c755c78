package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// TokenPair is the credential material issued by the identity service
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IdentityClient exchanges a username and password for tokens against the
// external identity service. This is the only outbound dependency in the
// whole server.
type IdentityClient interface {
	Login(ctx context.Context, username, password string) (*TokenPair, error)
}

// IdentityConfig holds settings for the HTTP identity client
type IdentityConfig struct {
	// BaseURL is the identity service's base URL (https)
	BaseURL string
	// InsecureSkipVerify disables certificate validation. Development only.
	InsecureSkipVerify bool
	// Timeout bounds a single login exchange
	Timeout time.Duration
}

// DefaultIdentityConfig returns default identity client settings
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		BaseURL: "https://localhost:62966",
		Timeout: 10 * time.Second,
	}
}

// HTTPIdentityClient is the HTTPS implementation of IdentityClient
type HTTPIdentityClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPIdentityClient creates an identity client for the given config
func NewHTTPIdentityClient(cfg IdentityConfig) *HTTPIdentityClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultIdentityConfig().Timeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPIdentityClient{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

var _ IdentityClient = (*HTTPIdentityClient)(nil)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login performs the token exchange against the identity service's /login
// endpoint. Any non-2xx status is a failure.
func (c *HTTPIdentityClient) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body, err := json.Marshal(loginRequest{Email: username, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("identity service rejected login: status %d", resp.StatusCode)
	}

	var tokens TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("decoding identity response: %w", err)
	}
	return &tokens, nil
}
