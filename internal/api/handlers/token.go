package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/sellerdesk/ebay-bridge/internal/credstore"
	"github.com/sellerdesk/ebay-bridge/internal/ebay"
	"github.com/sellerdesk/ebay-bridge/internal/metrics"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// TokenHandler handles OAuth2 token exchange requests.
type TokenHandler struct {
	exchanger ebay.TokenExchanger
	store     credstore.Store
	log       *slog.Logger
	nowFunc   func() time.Time
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(ex ebay.TokenExchanger, s credstore.Store, log *slog.Logger) *TokenHandler {
	return &TokenHandler{
		exchanger: ex,
		store:     s,
		log:       log,
		nowFunc:   time.Now,
	}
}

// TokenInput is the request body for the token exchange endpoint.
type TokenInput struct {
	Body struct {
		GrantType    string `json:"grant_type" minLength:"1" doc:"OAuth2 grant type" example:"authorization_code"`
		Code         string `json:"code,omitempty" doc:"Authorization code from the eBay consent redirect"`
		RedirectURI  string `json:"redirect_uri,omitempty" doc:"RuName or redirect URI registered with the application"`
		RefreshToken string `json:"refresh_token,omitempty" doc:"Refresh token from a prior exchange"`
	}
}

// TokenOutput mirrors the upstream token payload shape.
type TokenOutput struct {
	Body struct {
		AccessToken  string `json:"access_token" doc:"eBay user access token"`
		TokenType    string `json:"token_type" example:"User Access Token"`
		ExpiresIn    int    `json:"expires_in" doc:"Token lifetime in seconds" example:"7200"`
		RefreshToken string `json:"refresh_token,omitempty"`
		Scope        string `json:"scope,omitempty" doc:"Space-separated granted scopes"`
	}
}

// Exchange swaps an authorization code or refresh token for an eBay user
// access token. The credential is also persisted as a courtesy; persistence
// failures are logged, never surfaced.
func (h *TokenHandler) Exchange(ctx context.Context, input *TokenInput) (*TokenOutput, error) {
	cred, err := h.exchanger.Exchange(ctx, ebay.GrantRequest{
		GrantType:    input.Body.GrantType,
		Code:         input.Body.Code,
		RedirectURI:  input.Body.RedirectURI,
		RefreshToken: input.Body.RefreshToken,
	})
	if err != nil {
		metrics.ExchangesTotal.WithLabelValues("oauth2", "failure").Inc()
		return nil, upstreamError(err)
	}
	metrics.ExchangesTotal.WithLabelValues("oauth2", "success").Inc()

	h.persist(ctx, cred)

	out := &TokenOutput{}
	out.Body.AccessToken = cred.AccessToken
	out.Body.TokenType = "User Access Token"
	out.Body.ExpiresIn = cred.ExpiresIn
	out.Body.RefreshToken = cred.RefreshToken
	out.Body.Scope = strings.Join(cred.Scopes, " ")
	return out, nil
}

// persist stores the credential with an absolute expiry computed at
// persistence time. OAuth2 tokens carry no owner, so each gets a fresh key.
func (h *TokenHandler) persist(ctx context.Context, cred *domain.Credential) {
	if h.store == nil {
		return
	}

	stored := *cred
	if stored.ExpiresIn > 0 {
		expiresAt := h.nowFunc().Add(time.Duration(stored.ExpiresIn) * time.Second)
		stored.ExpiresAt = &expiresAt
	}

	key := stored.OwnerUsername
	if key == "" {
		key = uuid.NewString()
	}

	if err := h.store.Put(ctx, key, &stored); err != nil {
		h.log.Warn("persisting credential failed", "key", key, "error", err)
	}
}

// RegisterTokenRoutes registers the token exchange endpoint with the Huma API.
func RegisterTokenRoutes(api huma.API, h *TokenHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "exchange-token",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/token",
		Summary:     "Exchange an OAuth2 grant for a user token",
		Description: "Exchanges an authorization code or refresh token with eBay's OAuth2 token endpoint.",
		Tags:        []string{"auth"},
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusInternalServerError,
			http.StatusBadGateway,
		},
	}, h.Exchange)
}
