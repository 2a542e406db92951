package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sellerdesk/ebay-bridge/internal/ebay"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// ItemHandler handles item detail requests.
type ItemHandler struct {
	resolver ebay.ItemResolver
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(r ebay.ItemResolver) *ItemHandler {
	return &ItemHandler{resolver: r}
}

// ItemInput identifies the item and carries the caller's bearer token.
type ItemInput struct {
	ItemID        string `path:"itemId" minLength:"1" doc:"eBay item ID, legacy numeric or composite v1|...|0" example:"123456789012"`
	Authorization string `header:"Authorization" doc:"Bearer token for the eBay Browse API"`
}

// ItemOutput is the resolved item detail.
type ItemOutput struct {
	Body domain.ItemDetail
}

// GetItem resolves an item across the upstream strategy chain. Once the
// bearer token is present, the endpoint always answers 200: upstream
// failures degrade through the strategy tiers down to a synthetic record.
func (h *ItemHandler) GetItem(ctx context.Context, input *ItemInput) (*ItemOutput, error) {
	token, ok := bearerToken(input.Authorization)
	if !ok {
		return nil, huma.Error401Unauthorized("missing or malformed Authorization header; expected 'Bearer <token>'")
	}

	detail, err := h.resolver.Resolve(ctx, input.ItemID, token)
	if err != nil {
		// Only context cancellation reaches here.
		return nil, huma.Error503ServiceUnavailable("item resolution aborted: " + err.Error())
	}

	return &ItemOutput{Body: *detail}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

// RegisterItemRoutes registers the item detail endpoint with the Huma API.
func RegisterItemRoutes(api huma.API, h *ItemHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{itemId}",
		Summary:     "Get item details",
		Description: "Resolves item details via the Browse API, falling back to the Trading API and finally a synthetic record.",
		Tags:        []string{"items"},
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusServiceUnavailable,
		},
	}, h.GetItem)
}
