// Package ebay implements the eBay credential lifecycle and multi-strategy
// item-resolution engine: OAuth2 and legacy Auth'n'Auth token exchange, a
// tolerant Trading XML field extractor, and a three-tier item resolver,
// all abstracted behind interfaces for testability.
package ebay

import (
	"context"

	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// ItemFetcher is one upstream item-read strategy. Implementations map their
// wire format into the uniform ItemDetail shape and return an error to
// signal "this tier cannot serve the item".
type ItemFetcher interface {
	GetItem(ctx context.Context, itemID, bearerToken string) (*domain.ItemDetail, error)
}

// TokenExchanger is the caller-facing contract of the OAuth2 exchanger.
type TokenExchanger interface {
	Exchange(ctx context.Context, req GrantRequest) (*domain.Credential, error)
}

// LegacyAuthenticator is the caller-facing contract of the Auth'n'Auth
// exchanger.
type LegacyAuthenticator interface {
	Exchange(ctx context.Context, username, password string) (*domain.Credential, error)
	BuildSignInURL() (string, error)
}

// ItemResolver is the caller-facing contract of the resolver. Resolve only
// returns an error when ctx is canceled; every other failure degrades into
// the returned record.
type ItemResolver interface {
	Resolve(ctx context.Context, itemID, bearerToken string) (*domain.ItemDetail, error)
}
