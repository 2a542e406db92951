package ebay

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// Trading protocol constants sent with every legacy call.
const (
	tradingCompatLevel = "967"
	tradingSiteID      = "0"
)

// LegacyExchanger performs the Auth'n'Auth FetchToken flow: it exchanges a
// username/password pair for a long-lived Trading API token. The flow is
// XML end to end; the result is normalized into the same credential shape
// the OAuth2 exchanger produces.
type LegacyExchanger struct {
	identity   AppIdentity
	tradingURL string
	signInURL  string
	client     *http.Client
}

// LegacyOption configures the LegacyExchanger.
type LegacyOption func(*LegacyExchanger)

// WithTradingURL overrides the environment-derived Trading API endpoint.
func WithTradingURL(u string) LegacyOption {
	return func(e *LegacyExchanger) {
		e.tradingURL = u
	}
}

// WithSignInURL overrides the environment-derived interactive sign-in base.
func WithSignInURL(u string) LegacyOption {
	return func(e *LegacyExchanger) {
		e.signInURL = u
	}
}

// WithLegacyHTTPClient overrides the default HTTP client.
func WithLegacyHTTPClient(c *http.Client) LegacyOption {
	return func(e *LegacyExchanger) {
		e.client = c
	}
}

// NewLegacyExchanger creates an exchanger bound to the given application
// identity.
func NewLegacyExchanger(identity AppIdentity, opts ...LegacyOption) *LegacyExchanger {
	ep := identity.Endpoints()
	e := &LegacyExchanger{
		identity:   identity,
		tradingURL: ep.TradingURL,
		signInURL:  ep.SignInURL,
		client:     &http.Client{Timeout: defaultExchangeTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildSignInURL renders the interactive consent URL callers visit before
// invoking Exchange. RuName and AppID are percent-encoded; the rendering is
// deterministic for a fixed identity.
func (e *LegacyExchanger) BuildSignInURL() (string, error) {
	if err := e.identity.requireSignIn(); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"%s?SignIn&runame=%s&SessID=%s",
		e.signInURL,
		url.QueryEscape(e.identity.RuName),
		url.QueryEscape(e.identity.AppID),
	), nil
}

// Exchange performs a FetchToken call and returns the AuthNAuth credential
// variant with the fixed full Trading scope set and OwnerUsername recorded.
func (e *LegacyExchanger) Exchange(
	ctx context.Context,
	username, password string,
) (*domain.Credential, error) {
	if username == "" || password == "" {
		return nil, errClientInput("username and password are required")
	}
	if err := e.identity.requireTrading(); err != nil {
		return nil, err
	}

	reqBody := buildFetchTokenRequest(username, password, e.identity.RuName)

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.tradingURL,
		strings.NewReader(reqBody),
	)
	if err != nil {
		return nil, fmt.Errorf("creating FetchToken request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "text/xml")
	httpReq.Header.Set("X-EBAY-API-CALL-NAME", "FetchToken")
	httpReq.Header.Set("X-EBAY-API-APP-NAME", e.identity.AppID)
	httpReq.Header.Set("X-EBAY-API-DEV-NAME", e.identity.DevID)
	httpReq.Header.Set("X-EBAY-API-CERT-NAME", e.identity.CertID)
	httpReq.Header.Set("X-EBAY-API-COMPATIBILITY-LEVEL", tradingCompatLevel)
	httpReq.Header.Set("X-EBAY-API-SITEID", tradingSiteID)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing FetchToken request: %w", errHTTP(0, err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading FetchToken response: %w", errHTTP(0, err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errHTTP(resp.StatusCode, "Trading API returned "+resp.Status)
	}

	return parseFetchTokenResponse(string(body), username)
}

// parseFetchTokenResponse normalizes the FetchToken XML into a credential
// or an error per the acknowledgement status.
func parseFetchTokenResponse(xmlBody, username string) (*domain.Credential, error) {
	if !IsSuccessAck(xmlBody) {
		// Failure ack: prefer the long error message, then the short one,
		// then a generic string when neither node is present.
		msg, ok := ExtractField(xmlBody, "LongMessage")
		if !ok || msg == "" {
			msg, ok = ExtractField(xmlBody, "ShortMessage")
		}
		if !ok || msg == "" {
			msg = "Authentication failed"
		}
		return nil, errAuthRejected(UnescapeEntities(msg))
	}

	token, ok := ExtractField(xmlBody, "eBayAuthToken")
	if !ok || token == "" {
		// A success ack without a token node is an inconsistent upstream;
		// never hand back an empty-token credential.
		return nil, errParse("FetchToken success ack without eBayAuthToken")
	}

	cred := &domain.Credential{
		TokenType:     domain.TokenAuthNAuth,
		AccessToken:   token,
		Scopes:        domain.TradingScopes,
		OwnerUsername: username,
	}

	if raw, ok := ExtractField(xmlBody, "HardExpirationTime"); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			cred.HardExpirationTime = &ts
		}
	}

	return cred, nil
}

// buildFetchTokenRequest renders the FetchToken request body. Caller input
// is XML-escaped; the RuName-equivalent secret rides in SecretID.
func buildFetchTokenRequest(username, password, ruName string) string {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<FetchTokenRequest xmlns="urn:ebay:apis:eBLBaseComponents">`)
	b.WriteString("<RequesterCredentials><Username>")
	b.WriteString(xmlEscape(username))
	b.WriteString("</Username><Password>")
	b.WriteString(xmlEscape(password))
	b.WriteString("</Password></RequesterCredentials><SecretID>")
	b.WriteString(xmlEscape(ruName))
	b.WriteString("</SecretID></FetchTokenRequest>")
	return b.String()
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s)) //nolint:errcheck // bytes.Buffer cannot fail
	return b.String()
}
