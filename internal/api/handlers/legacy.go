package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sellerdesk/ebay-bridge/internal/credstore"
	"github.com/sellerdesk/ebay-bridge/internal/ebay"
	"github.com/sellerdesk/ebay-bridge/internal/metrics"
)

// LegacyHandler handles Auth'n'Auth sign-in URL generation and the
// username/password FetchToken exchange.
type LegacyHandler struct {
	auth     ebay.LegacyAuthenticator
	identity ebay.AppIdentity
	store    credstore.Store
	log      *slog.Logger
}

// NewLegacyHandler creates a new LegacyHandler.
func NewLegacyHandler(
	auth ebay.LegacyAuthenticator,
	identity ebay.AppIdentity,
	s credstore.Store,
	log *slog.Logger,
) *LegacyHandler {
	return &LegacyHandler{
		auth:     auth,
		identity: identity,
		store:    s,
		log:      log,
	}
}

// SignInURLOutput is the response body for the sign-in URL endpoint.
type SignInURLOutput struct {
	Body struct {
		AuthURL string `json:"auth_url" doc:"eBay sign-in URL to open in a browser"`
		RuName  string `json:"ru_name"`
		AppID   string `json:"app_id"`
		Type    string `json:"type" example:"authauth"`
	}
}

// SignInURL returns the browser sign-in URL for the configured application.
func (h *LegacyHandler) SignInURL(_ context.Context, _ *struct{}) (*SignInURLOutput, error) {
	u, err := h.auth.BuildSignInURL()
	if err != nil {
		return nil, upstreamError(err)
	}

	out := &SignInURLOutput{}
	out.Body.AuthURL = u
	out.Body.RuName = h.identity.RuName
	out.Body.AppID = h.identity.AppID
	out.Body.Type = "authauth"
	return out, nil
}

// LegacyAuthInput is the request body for the legacy exchange endpoint.
type LegacyAuthInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" doc:"eBay account username"`
		Password string `json:"password" minLength:"1" doc:"eBay account password"`
	}
}

// LegacyAuthOutput is the response body for a successful legacy exchange.
type LegacyAuthOutput struct {
	Body struct {
		Success            bool       `json:"success" example:"true"`
		Token              string     `json:"token" doc:"eBay Auth'n'Auth token"`
		HardExpirationTime *time.Time `json:"hard_expiration_time,omitempty"`
		Type               string     `json:"type" example:"authauth"`
	}
}

// Authenticate exchanges an eBay username and password for an Auth'n'Auth
// token via the Trading FetchToken call. The credential is persisted keyed
// by the owning username; persistence failures are logged, never surfaced.
func (h *LegacyHandler) Authenticate(ctx context.Context, input *LegacyAuthInput) (*LegacyAuthOutput, error) {
	cred, err := h.auth.Exchange(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		metrics.ExchangesTotal.WithLabelValues("authnauth", "failure").Inc()
		return nil, upstreamError(err)
	}
	metrics.ExchangesTotal.WithLabelValues("authnauth", "success").Inc()

	if h.store != nil {
		if err := h.store.Put(ctx, cred.OwnerUsername, cred); err != nil {
			h.log.Warn("persisting credential failed",
				"key", cred.OwnerUsername, "error", err)
		}
	}

	out := &LegacyAuthOutput{}
	out.Body.Success = true
	out.Body.Token = cred.AccessToken
	out.Body.HardExpirationTime = cred.HardExpirationTime
	out.Body.Type = "authauth"
	return out, nil
}

// RegisterLegacyRoutes registers the Auth'n'Auth endpoints with the Huma API.
func RegisterLegacyRoutes(api huma.API, h *LegacyHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-signin-url",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/legacy",
		Summary:     "Get the eBay sign-in URL",
		Description: "Returns the browser URL where a seller grants this application access.",
		Tags:        []string{"auth"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.SignInURL)

	huma.Register(api, huma.Operation{
		OperationID: "legacy-authenticate",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/legacy",
		Summary:     "Exchange username and password for an Auth'n'Auth token",
		Description: "Performs the Trading API FetchToken flow against eBay.",
		Tags:        []string{"auth"},
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusInternalServerError,
			http.StatusBadGateway,
		},
	}, h.Authenticate)
}
