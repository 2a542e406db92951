package handlers_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/ebay-bridge/internal/api/handlers"
	"github.com/sellerdesk/ebay-bridge/internal/ebay"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// fakeExchanger is a scripted TokenExchanger.
type fakeExchanger struct {
	cred   *domain.Credential
	err    error
	gotReq ebay.GrantRequest
	called bool
}

func (f *fakeExchanger) Exchange(_ context.Context, req ebay.GrantRequest) (*domain.Credential, error) {
	f.called = true
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.cred, nil
}

// captureStore records Put calls and optionally fails them.
type captureStore struct {
	puts   map[string]*domain.Credential
	putErr error
}

func newCaptureStore() *captureStore {
	return &captureStore{puts: make(map[string]*domain.Credential)}
}

func (s *captureStore) Put(_ context.Context, key string, cred *domain.Credential) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts[key] = cred
	return nil
}

func (s *captureStore) Get(_ context.Context, _ string) (*domain.Credential, error) {
	return nil, errors.New("not implemented")
}

func (s *captureStore) Delete(_ context.Context, _ string) error { return nil }

func (s *captureStore) PruneExpired(_ context.Context) (int, error) { return 0, nil }

func (s *captureStore) Ping(_ context.Context) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func oauthTestCred() *domain.Credential {
	return &domain.Credential{
		TokenType:    domain.TokenOAuth2,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    7200,
		Scopes: []string{
			"https://api.ebay.com/oauth/api_scope",
			"https://api.ebay.com/oauth/api_scope/sell.inventory",
		},
	}
}

func TestTokenHandler_Exchange(t *testing.T) {
	t.Parallel()

	ex := &fakeExchanger{cred: oauthTestCred()}
	store := newCaptureStore()

	h := handlers.NewTokenHandler(ex, store, testLogger())

	_, api := humatest.New(t)
	handlers.RegisterTokenRoutes(api, h)

	resp := api.Post("/api/v1/auth/token", map[string]any{
		"grant_type":   "authorization_code",
		"code":         "auth-code-1",
		"redirect_uri": "https://example.com/cb",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, ebay.GrantAuthorizationCode, ex.gotReq.GrantType)
	assert.Equal(t, "auth-code-1", ex.gotReq.Code)

	body := resp.Body.String()
	assert.Contains(t, body, `"access_token":"access-1"`)
	assert.Contains(t, body, `"refresh_token":"refresh-1"`)
	assert.Contains(t, body, `"expires_in":7200`)
	assert.Contains(t, body, "api_scope/sell.inventory")

	// Courtesy persistence with a computed absolute expiry.
	require.Len(t, store.puts, 1)
	for _, stored := range store.puts {
		require.NotNil(t, stored.ExpiresAt)
		assert.Equal(t, "access-1", stored.AccessToken)
	}
}

func TestTokenHandler_ValidationAndUpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       map[string]any
		exErr      error
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "missing grant_type rejected before exchange",
			body:       map[string]any{"code": "c"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "client input error maps to 400",
			body: map[string]any{"grant_type": "authorization_code"},
			exErr: &ebay.UpstreamError{
				Kind: ebay.KindClientInput, ShortMessage: "code is required",
			},
			wantStatus: http.StatusBadRequest,
			wantCalled: true,
		},
		{
			name: "upstream 401 preserved",
			body: map[string]any{"grant_type": "refresh_token", "refresh_token": "r"},
			exErr: &ebay.UpstreamError{
				Kind: ebay.KindHTTP, HTTPStatus: http.StatusUnauthorized,
				ShortMessage: "invalid_client",
			},
			wantStatus: http.StatusUnauthorized,
			wantCalled: true,
		},
		{
			name: "missing identity maps to 500",
			body: map[string]any{"grant_type": "refresh_token", "refresh_token": "r"},
			exErr: &ebay.UpstreamError{
				Kind: ebay.KindConfigMissing, ShortMessage: "app credentials not configured",
			},
			wantStatus: http.StatusInternalServerError,
			wantCalled: true,
		},
		{
			name: "parse failure maps to 502",
			body: map[string]any{"grant_type": "refresh_token", "refresh_token": "r"},
			exErr: &ebay.UpstreamError{
				Kind: ebay.KindParse, ShortMessage: "token response missing access_token",
			},
			wantStatus: http.StatusBadGateway,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ex := &fakeExchanger{cred: oauthTestCred(), err: tt.exErr}
			h := handlers.NewTokenHandler(ex, newCaptureStore(), testLogger())

			_, api := humatest.New(t)
			handlers.RegisterTokenRoutes(api, h)

			resp := api.Post("/api/v1/auth/token", tt.body)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Equal(t, tt.wantCalled, ex.called)
		})
	}
}

func TestTokenHandler_PersistFailureNotSurfaced(t *testing.T) {
	t.Parallel()

	ex := &fakeExchanger{cred: oauthTestCred()}
	store := newCaptureStore()
	store.putErr = errors.New("database down")

	h := handlers.NewTokenHandler(ex, store, testLogger())

	_, api := humatest.New(t)
	handlers.RegisterTokenRoutes(api, h)

	resp := api.Post("/api/v1/auth/token", map[string]any{
		"grant_type":    "refresh_token",
		"refresh_token": "r",
	})
	assert.Equal(t, http.StatusOK, resp.Code,
		"persistence is a courtesy; the token is still returned")
}
