package ebay

import "strings"

// Environment selects the eBay endpoint set. Production and sandbox
// credentials are not interchangeable, so the two sets are never mixed.
type Environment string

// Environment constants.
const (
	EnvProduction Environment = "production"
	EnvSandbox    Environment = "sandbox"
)

const (
	productionTokenURL   = "https://api.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	productionBrowseURL  = "https://api.ebay.com/buy/browse/v1/item"
	productionTradingURL = "https://api.ebay.com/ws/api.dll"
	productionSignInURL  = "https://signin.ebay.com/ws/eBayISAPI.dll"

	sandboxTokenURL   = "https://api.sandbox.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	sandboxBrowseURL  = "https://api.sandbox.ebay.com/buy/browse/v1/item"
	sandboxTradingURL = "https://api.sandbox.ebay.com/ws/api.dll"
	sandboxSignInURL  = "https://signin.sandbox.ebay.com/ws/eBayISAPI.dll"
)

// AppIdentity is the application-level identity issued by eBay's developer
// program. It is loaded from configuration at process start and read-only
// thereafter; both exchangers share the same value.
//
// Each flow requires a different subset of fields, so validation happens in
// the exchanger that needs them, not at load time. Absent identity fails
// closed with a config error; there is no built-in development fallback.
type AppIdentity struct {
	AppID       string
	CertID      string
	DevID       string
	RuName      string
	Environment Environment
}

// Endpoints is the environment-selected eBay endpoint set.
type Endpoints struct {
	TokenURL   string
	BrowseURL  string
	TradingURL string
	SignInURL  string
}

// Endpoints returns the endpoint set for the identity's environment.
// Anything other than an explicit sandbox selection resolves to production.
func (id AppIdentity) Endpoints() Endpoints {
	if id.Environment == EnvSandbox {
		return Endpoints{
			TokenURL:   sandboxTokenURL,
			BrowseURL:  sandboxBrowseURL,
			TradingURL: sandboxTradingURL,
			SignInURL:  sandboxSignInURL,
		}
	}
	return Endpoints{
		TokenURL:   productionTokenURL,
		BrowseURL:  productionBrowseURL,
		TradingURL: productionTradingURL,
		SignInURL:  productionSignInURL,
	}
}

// requireOAuth verifies the fields the OAuth2 flow needs. Whitespace-only
// values count as absent.
func (id AppIdentity) requireOAuth() error {
	if strings.TrimSpace(id.AppID) == "" || strings.TrimSpace(id.CertID) == "" {
		return errConfigMissing("eBay app_id and cert_id must be configured")
	}
	return nil
}

// requireTrading verifies the fields the legacy Trading flow needs.
func (id AppIdentity) requireTrading() error {
	if strings.TrimSpace(id.AppID) == "" ||
		strings.TrimSpace(id.DevID) == "" ||
		strings.TrimSpace(id.CertID) == "" {
		return errConfigMissing("eBay app_id, dev_id and cert_id must be configured")
	}
	return nil
}

// requireSignIn verifies the fields needed to render the interactive
// consent URL.
func (id AppIdentity) requireSignIn() error {
	if strings.TrimSpace(id.AppID) == "" || strings.TrimSpace(id.RuName) == "" {
		return errConfigMissing("eBay app_id and ru_name must be configured")
	}
	return nil
}
