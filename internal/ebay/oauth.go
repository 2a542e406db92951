package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// Grant type constants accepted by the OAuth2 exchanger.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

const defaultExchangeTimeout = 10 * time.Second

// GrantRequest describes a single OAuth2 token grant.
type GrantRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	RefreshToken string
}

// OAuthExchanger performs authorization-code and refresh-token grants
// against the environment-selected eBay OAuth2 token endpoint. It is
// stateless across calls; the returned credential is owned by the caller.
type OAuthExchanger struct {
	identity AppIdentity
	tokenURL string
	client   *http.Client
}

// OAuthOption configures the OAuthExchanger.
type OAuthOption func(*OAuthExchanger)

// WithTokenURL overrides the environment-derived token endpoint.
func WithTokenURL(u string) OAuthOption {
	return func(e *OAuthExchanger) {
		e.tokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) OAuthOption {
	return func(e *OAuthExchanger) {
		e.client = c
	}
}

// NewOAuthExchanger creates an exchanger bound to the given application
// identity.
func NewOAuthExchanger(identity AppIdentity, opts ...OAuthOption) *OAuthExchanger {
	e := &OAuthExchanger{
		identity: identity,
		tokenURL: identity.Endpoints().TokenURL,
		client:   &http.Client{Timeout: defaultExchangeTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type oauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Exchange performs the requested grant and returns the OAuth2 credential
// variant. The upstream token payload is passed through unmodified in field
// values; computing an absolute expiry from ExpiresIn is the caller's job
// at persistence time.
//
// Identity and input validation happen before any network call.
func (e *OAuthExchanger) Exchange(
	ctx context.Context,
	req GrantRequest,
) (*domain.Credential, error) {
	if err := e.identity.requireOAuth(); err != nil {
		return nil, err
	}

	form, err := grantForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	creds := base64.StdEncoding.EncodeToString(
		[]byte(strings.TrimSpace(e.identity.AppID) + ":" + strings.TrimSpace(e.identity.CertID)),
	)
	httpReq.Header.Set("Authorization", "Basic "+creds)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing token request: %w", errHTTP(0, err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", errHTTP(0, err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp oauthErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		short := errResp.ErrorDescription
		if short == "" {
			short = errResp.Error
		}
		if short == "" {
			short = http.StatusText(resp.StatusCode)
		}
		return nil, errHTTP(resp.StatusCode, short)
	}

	var tokenResp oauthTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, errParse("parsing token response: " + err.Error())
	}

	if tokenResp.AccessToken == "" {
		return nil, errParse("token response missing access_token")
	}

	return &domain.Credential{
		TokenType:    domain.TokenOAuth2,
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
		Scopes:       splitScopes(tokenResp.Scope),
	}, nil
}

// grantForm validates the grant inputs and builds the form body.
// Missing caller input is a client error, never a server fault.
func grantForm(req GrantRequest) (url.Values, error) {
	switch req.GrantType {
	case GrantAuthorizationCode:
		if req.Code == "" || req.RedirectURI == "" {
			return nil, errClientInput("authorization_code grant requires code and redirect_uri")
		}
		return url.Values{
			"grant_type":   {GrantAuthorizationCode},
			"code":         {req.Code},
			"redirect_uri": {req.RedirectURI},
		}, nil

	case GrantRefreshToken:
		if req.RefreshToken == "" {
			return nil, errClientInput("refresh_token grant requires refresh_token")
		}
		return url.Values{
			"grant_type":    {GrantRefreshToken},
			"refresh_token": {req.RefreshToken},
		}, nil

	default:
		return nil, errClientInput(fmt.Sprintf("unsupported grant_type %q", req.GrantType))
	}
}

func splitScopes(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Fields(scope)
}
