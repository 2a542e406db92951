package ebay

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// TradingClient reads single items through the legacy Trading API GetItem
// call, authenticated with a bearer token presented as the legacy auth
// token. It is the second resolution tier, used when the Browse API cannot
// serve the item.
type TradingClient struct {
	identity   AppIdentity
	tradingURL string
	client     *http.Client
}

// TradingOption configures the TradingClient.
type TradingOption func(*TradingClient)

// WithTradingItemURL overrides the environment-derived Trading API endpoint.
func WithTradingItemURL(u string) TradingOption {
	return func(c *TradingClient) {
		c.tradingURL = u
	}
}

// WithTradingHTTPClient overrides the default HTTP client.
func WithTradingHTTPClient(hc *http.Client) TradingOption {
	return func(c *TradingClient) {
		c.client = hc
	}
}

// NewTradingClient creates a Trading API item client for the identity's
// environment.
func NewTradingClient(identity AppIdentity, opts ...TradingOption) *TradingClient {
	c := &TradingClient{
		identity:   identity,
		tradingURL: identity.Endpoints().TradingURL,
		client:     &http.Client{Timeout: defaultResolveTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetItem issues a GetItem call and extracts the item fields from the XML
// response with the tolerant field extractor. An error block in the
// response is a failure even on HTTP 200.
func (c *TradingClient) GetItem(
	ctx context.Context,
	itemID, bearerToken string,
) (*domain.ItemDetail, error) {
	reqBody := buildGetItemRequest(itemID, bearerToken)

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.tradingURL,
		strings.NewReader(reqBody),
	)
	if err != nil {
		return nil, fmt.Errorf("creating GetItem request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "text/xml")
	httpReq.Header.Set("X-EBAY-API-CALL-NAME", "GetItem")
	httpReq.Header.Set("X-EBAY-API-APP-NAME", c.identity.AppID)
	httpReq.Header.Set("X-EBAY-API-DEV-NAME", c.identity.DevID)
	httpReq.Header.Set("X-EBAY-API-CERT-NAME", c.identity.CertID)
	httpReq.Header.Set("X-EBAY-API-COMPATIBILITY-LEVEL", tradingCompatLevel)
	httpReq.Header.Set("X-EBAY-API-SITEID", tradingSiteID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing GetItem request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GetItem response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errHTTP(resp.StatusCode, "Trading API returned "+resp.Status)
	}

	return parseGetItemResponse(itemID, string(body))
}

// parseGetItemResponse maps the GetItem XML into an ItemDetail. Title and
// description prefer the CDATA form; multi-line CDATA descriptions are
// preserved intact rather than truncated at the first line break.
// An Errors block covers anything from an unknown item to a revoked token,
// so it surfaces as a generic upstream failure rather than a credential
// rejection.
func parseGetItemResponse(itemID, xmlBody string) (*domain.ItemDetail, error) {
	if HasErrorBlock(xmlBody) {
		msg, ok := ExtractField(xmlBody, "LongMessage")
		if !ok || msg == "" {
			msg, _ = ExtractField(xmlBody, "ShortMessage")
		}
		if msg == "" {
			msg = "GetItem failed"
		}
		return nil, errHTTP(0, UnescapeEntities(msg))
	}

	title, ok := ExtractField(xmlBody, "Title")
	if !ok || title == "" {
		return nil, errParse("GetItem response missing Title")
	}

	desc, _ := ExtractField(xmlBody, "Description")
	if desc == "" {
		desc = descriptionSentinel
	}

	d := &domain.ItemDetail{
		ItemID:      itemID,
		Title:       UnescapeEntities(title),
		Description: desc,
		Source:      domain.SourceTradingAPI,
	}

	if sub, ok := ExtractField(xmlBody, "SubTitle"); ok {
		d.Subtitle = UnescapeEntities(sub)
	}
	if cond, ok := ExtractField(xmlBody, "ConditionDisplayName"); ok {
		d.Condition = cond
	}
	if loc, ok := ExtractField(xmlBody, "Location"); ok {
		d.ItemLocation = UnescapeEntities(loc)
	}
	if pic, ok := ExtractField(xmlBody, "PictureURL"); ok && pic != "" {
		d.Images = append(d.Images, pic)
	}

	return d, nil
}

// buildGetItemRequest renders the GetItem request body with the bearer
// token riding as the legacy requester credential.
func buildGetItemRequest(itemID, token string) string {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<GetItemRequest xmlns="urn:ebay:apis:eBLBaseComponents">`)
	b.WriteString("<RequesterCredentials><eBayAuthToken>")
	b.WriteString(xmlEscape(token))
	b.WriteString("</eBayAuthToken></RequesterCredentials><ItemID>")
	b.WriteString(xmlEscape(itemID))
	b.WriteString("</ItemID><DetailLevel>ReturnAll</DetailLevel>")
	b.WriteString("</GetItemRequest>")
	return b.String()
}
