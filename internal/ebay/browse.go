package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sellerdesk/ebay-bridge/internal/metrics"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

const (
	defaultMarketplace    = "EBAY_US"
	defaultResolveTimeout = 30 * time.Second

	// descriptionSentinel fills Description when an item carries no usable
	// description at all; callers always see a non-empty string.
	descriptionSentinel = "No detailed description available"
)

// BrowseClient reads single items from the eBay Browse API. The item is
// addressed by its marketplace-qualified composite reference derived from
// the plain item id.
type BrowseClient struct {
	browseURL   string
	marketplace string
	client      *http.Client
	limiter     *QuotaLimiter
}

// BrowseOption configures the BrowseClient.
type BrowseOption func(*BrowseClient)

// WithBrowseURL overrides the environment-derived Browse item endpoint.
func WithBrowseURL(u string) BrowseOption {
	return func(c *BrowseClient) {
		c.browseURL = u
	}
}

// WithMarketplace overrides the default marketplace.
func WithMarketplace(m string) BrowseOption {
	return func(c *BrowseClient) {
		c.marketplace = m
	}
}

// WithBrowseHTTPClient overrides the default HTTP client.
func WithBrowseHTTPClient(hc *http.Client) BrowseOption {
	return func(c *BrowseClient) {
		c.client = hc
	}
}

// WithBrowseQuota injects a quota limiter gating every GetItem call.
func WithBrowseQuota(q *QuotaLimiter) BrowseOption {
	return func(c *BrowseClient) {
		c.limiter = q
	}
}

// NewBrowseClient creates a Browse API item client for the identity's
// environment.
func NewBrowseClient(identity AppIdentity, opts ...BrowseOption) *BrowseClient {
	c := &BrowseClient{
		browseURL:   identity.Endpoints().BrowseURL,
		marketplace: defaultMarketplace,
		client:      &http.Client{Timeout: defaultResolveTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompositeItemID returns the RESTful item reference the Browse API expects
// for a legacy numeric item id.
func CompositeItemID(itemID string) string {
	if strings.HasPrefix(itemID, "v1|") {
		return itemID
	}
	return "v1|" + itemID + "|0"
}

// GetItem fetches one item with the caller's bearer token and maps the JSON
// payload into the uniform item-detail shape.
func (c *BrowseClient) GetItem(
	ctx context.Context,
	itemID, bearerToken string,
) (*domain.ItemDetail, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.EbayDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("quota: %w", err)
		}
		metrics.EbayAPICallsTotal.Inc()
	}

	u := c.browseURL + "/" + url.PathEscape(CompositeItemID(itemID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating item request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+bearerToken)
	httpReq.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing item request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading item response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp browseErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		short := ""
		if len(errResp.Errors) > 0 {
			short = errResp.Errors[0].Message
		}
		if short == "" {
			short = http.StatusText(resp.StatusCode)
		}
		return nil, errHTTP(resp.StatusCode, short)
	}

	var item browseItemResponse
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, errParse("parsing item response: " + err.Error())
	}

	return mapBrowseItem(itemID, &item), nil
}

// mapBrowseItem shapes the Browse payload into an ItemDetail. Description
// preference: full HTML description, then shortDescription, then sentinel.
func mapBrowseItem(itemID string, item *browseItemResponse) *domain.ItemDetail {
	desc := item.Description
	if desc == "" {
		desc = item.ShortDescription
	}
	if desc == "" {
		desc = descriptionSentinel
	}

	title := item.Title
	if title == "" {
		title = "eBay Item " + itemID
	}

	d := &domain.ItemDetail{
		ItemID:      itemID,
		Title:       title,
		Description: desc,
		Subtitle:    item.Subtitle,
		Condition:   item.Condition,
		Source:      domain.SourceBrowseAPI,
	}

	if item.Description != "" {
		d.LongDescription = item.Description
	}

	if item.Price != nil {
		d.Price = &domain.Price{Value: item.Price.Value, Currency: item.Price.Currency}
	}

	if item.Image != nil && item.Image.ImageURL != "" {
		d.Images = append(d.Images, item.Image.ImageURL)
	}
	for _, img := range item.AdditionalImages {
		if img.ImageURL != "" {
			d.Images = append(d.Images, img.ImageURL)
		}
	}

	if item.Seller != nil {
		d.Seller = &domain.Seller{
			Username:           item.Seller.Username,
			FeedbackScore:      item.Seller.FeedbackScore,
			FeedbackPercentage: item.Seller.FeedbackPercentage,
		}
	}

	if item.ItemLocation != nil {
		d.ItemLocation = joinLocation(
			item.ItemLocation.City,
			item.ItemLocation.StateOrProvince,
			item.ItemLocation.Country,
		)
	}

	for _, s := range item.ShippingOptions {
		opt := domain.ShippingOption{ServiceCode: s.ShippingServiceCode}
		if s.ShippingCost != nil {
			opt.Cost = &domain.Price{Value: s.ShippingCost.Value, Currency: s.ShippingCost.Currency}
		}
		d.ShippingOptions = append(d.ShippingOptions, opt)
	}

	return d
}

func joinLocation(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
