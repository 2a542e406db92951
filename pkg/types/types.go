// Package domain defines the core business types for ebay-bridge.
package domain

import (
	"slices"
	"time"
)

// TokenType discriminates the two eBay credential models.
type TokenType string

// Token type constants.
const (
	TokenOAuth2    TokenType = "oauth2"
	TokenAuthNAuth TokenType = "authnauth"
)

// TradingScopes is the fixed scope set attached to Auth'n'Auth credentials.
// Legacy Trading tokens are not scope-limited the way OAuth2 tokens are, so
// every legacy credential carries the full set.
var TradingScopes = []string{
	"https://api.ebay.com/oauth/api_scope",
	"https://api.ebay.com/oauth/api_scope/sell.inventory",
	"https://api.ebay.com/oauth/api_scope/sell.account",
	"https://api.ebay.com/oauth/api_scope/sell.fulfillment",
}

// Credential is a tagged union over the two eBay authentication schemes.
// Exactly one variant is populated, selected by TokenType. AccessToken is
// always non-empty; an exchanger never returns a credential without one.
type Credential struct {
	TokenType   TokenType `json:"token_type"`
	AccessToken string    `json:"access_token"`
	Scopes      []string  `json:"scopes,omitempty"`

	// OAuth2 variant. ExpiresIn is the upstream's relative lifetime in
	// seconds; ExpiresAt is computed by the caller at persistence time.
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresIn    int        `json:"expires_in,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	// AuthNAuth variant.
	HardExpirationTime *time.Time `json:"hard_expiration_time,omitempty"`
	OwnerUsername      string     `json:"owner_username,omitempty"`
}

// IsOAuth2 reports whether the credential carries the OAuth2 variant.
func (c *Credential) IsOAuth2() bool {
	return c.TokenType == TokenOAuth2
}

// Expired reports whether the credential's expiry, if known, has passed.
// Credentials without a recorded expiry never report as expired.
func (c *Credential) Expired(now time.Time) bool {
	switch c.TokenType {
	case TokenOAuth2:
		return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
	case TokenAuthNAuth:
		return c.HardExpirationTime != nil && now.After(*c.HardExpirationTime)
	default:
		return false
	}
}

// HasScope reports whether the credential grants the given OAuth scope.
func (c *Credential) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ItemSource records which upstream strategy produced an ItemDetail.
type ItemSource string

// Item source constants, ordered from most to least authoritative.
const (
	SourceBrowseAPI  ItemSource = "BrowseAPI"
	SourceTradingAPI ItemSource = "TradingAPI-GetItem"
	SourceFallback   ItemSource = "Fallback"
)

// Price holds a monetary value as eBay reports it: an opaque decimal string
// plus an ISO currency code.
type Price struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Seller holds seller identity and feedback data.
type Seller struct {
	Username           string `json:"username"`
	FeedbackScore      int    `json:"feedback_score,omitempty"`
	FeedbackPercentage string `json:"feedback_percentage,omitempty"`
}

// ShippingOption holds a single shipping choice for an item.
type ShippingOption struct {
	ServiceCode string `json:"service_code,omitempty"`
	Cost        *Price `json:"cost,omitempty"`
}

// ItemDetail is the uniform result of item resolution, regardless of which
// upstream strategy answered. Title and Description are always non-empty;
// missing upstream data degrades to a sentinel string rather than null.
// Source truthfully records the producing strategy so callers can tell
// authoritative data from degraded data.
type ItemDetail struct {
	ItemID          string           `json:"item_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	LongDescription string           `json:"long_description,omitempty"`
	Subtitle        string           `json:"subtitle,omitempty"`
	Price           *Price           `json:"price,omitempty"`
	Condition       string           `json:"condition,omitempty"`
	Images          []string         `json:"images,omitempty"`
	Seller          *Seller          `json:"seller,omitempty"`
	ItemLocation    string           `json:"item_location,omitempty"`
	ShippingOptions []ShippingOption `json:"shipping_options,omitempty"`
	Source          ItemSource       `json:"source"`
	Note            string           `json:"note,omitempty"`
}
