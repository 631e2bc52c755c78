package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdentityBackend mimics the identity service's login endpoint
func fakeIdentityBackend(t *testing.T) http.Handler {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Email != "alice@example.com" || req.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tokenType":    "Bearer",
			"accessToken":  "access-123",
			"expiresIn":    3600,
			"refreshToken": "refresh-456",
		})
	}).Methods(http.MethodPost)

	return router
}

func TestLoginExchangesTokens(t *testing.T) {
	server := httptest.NewServer(fakeIdentityBackend(t))
	defer server.Close()

	client := NewHTTPIdentityClient(IdentityConfig{BaseURL: server.URL})

	tokens, err := client.Login(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "access-123", tokens.AccessToken)
	assert.Equal(t, "refresh-456", tokens.RefreshToken)
}

func TestLoginRejectedCredentials(t *testing.T) {
	server := httptest.NewServer(fakeIdentityBackend(t))
	defer server.Close()

	client := NewHTTPIdentityClient(IdentityConfig{BaseURL: server.URL})

	_, err := client.Login(context.Background(), "alice@example.com", "wrong")
	assert.Error(t, err)
}

func TestLoginUnreachableService(t *testing.T) {
	client := NewHTTPIdentityClient(IdentityConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := client.Login(context.Background(), "alice@example.com", "hunter22")
	assert.Error(t, err)
}

func TestLoginSelfSignedCertificate(t *testing.T) {
	server := httptest.NewTLSServer(fakeIdentityBackend(t))
	defer server.Close()

	// Without skip-verify the self-signed certificate is rejected
	strict := NewHTTPIdentityClient(IdentityConfig{BaseURL: server.URL})
	_, err := strict.Login(context.Background(), "alice@example.com", "hunter22")
	require.Error(t, err)

	// With skip-verify the exchange goes through
	lax := NewHTTPIdentityClient(IdentityConfig{BaseURL: server.URL, InsecureSkipVerify: true})
	tokens, err := lax.Login(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "access-123", tokens.AccessToken)
}
