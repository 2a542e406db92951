package ebay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/ebay-bridge/internal/ebay"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

func TestCompositeItemID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "v1|123456|0", ebay.CompositeItemID("123456"))
	assert.Equal(t, "v1|123456|0", ebay.CompositeItemID("v1|123456|0"),
		"already-composite ids pass through")
}

func TestBrowseClient_GetItem(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "EBAY_US", r.Header.Get("X-EBAY-C-MARKETPLACE-ID"))
		assert.Contains(t, r.URL.Path, "v1|123456|0")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"itemId": "v1|123456|0",
			"title": "T",
			"description": "D",
			"shortDescription": "short",
			"subtitle": "sub",
			"condition": "Used",
			"price": {"value": "45.99", "currency": "USD"},
			"image": {"imageUrl": "https://img/1"},
			"additionalImages": [{"imageUrl": "https://img/2"}],
			"seller": {"username": "s1", "feedbackScore": 500, "feedbackPercentage": "99.8"},
			"itemLocation": {"city": "Austin", "stateOrProvince": "TX", "country": "US"},
			"shippingOptions": [{"shippingServiceCode": "USPSGround", "shippingCost": {"value": "5.00", "currency": "USD"}}]
		}`))
	}))
	defer srv.Close()

	c := ebay.NewBrowseClient(testIdentity(), ebay.WithBrowseURL(srv.URL))

	d, err := c.GetItem(context.Background(), "123456", "tok-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceBrowseAPI, d.Source)
	assert.Equal(t, "123456", d.ItemID)
	assert.Equal(t, "T", d.Title)
	assert.Equal(t, "D", d.Description, "full description preferred")
	assert.Equal(t, "D", d.LongDescription)
	assert.Equal(t, "sub", d.Subtitle)
	assert.Equal(t, "Used", d.Condition)
	require.NotNil(t, d.Price)
	assert.Equal(t, "45.99", d.Price.Value)
	assert.Equal(t, []string{"https://img/1", "https://img/2"}, d.Images)
	require.NotNil(t, d.Seller)
	assert.Equal(t, "s1", d.Seller.Username)
	assert.Equal(t, "Austin, TX, US", d.ItemLocation)
	require.Len(t, d.ShippingOptions, 1)
	assert.Equal(t, "USPSGround", d.ShippingOptions[0].ServiceCode)
}

func TestBrowseClient_DescriptionPreference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantDesc string
	}{
		{
			name:     "short description when full absent",
			body:     `{"title":"T","shortDescription":"short only"}`,
			wantDesc: "short only",
		},
		{
			name:     "sentinel when both absent",
			body:     `{"title":"T"}`,
			wantDesc: "No detailed description available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := ebay.NewBrowseClient(testIdentity(), ebay.WithBrowseURL(srv.URL))

			d, err := c.GetItem(context.Background(), "1", "tok")
			require.NoError(t, err)
			assert.Equal(t, tt.wantDesc, d.Description)
			assert.NotEmpty(t, d.Title)
		})
	}
}

func TestBrowseClient_UpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"errorId":11001,"message":"Item not found"}]}`))
	}))
	defer srv.Close()

	c := ebay.NewBrowseClient(testIdentity(), ebay.WithBrowseURL(srv.URL))

	_, err := c.GetItem(context.Background(), "999", "tok")
	require.Error(t, err)

	ue, ok := ebay.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, ebay.KindHTTP, ue.Kind)
	assert.Equal(t, http.StatusNotFound, ue.HTTPStatus)
	assert.Equal(t, "Item not found", ue.ShortMessage)
}

func TestBrowseClient_QuotaExhausted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"title":"T"}`))
	}))
	defer srv.Close()

	q := ebay.NewQuotaLimiter(100, 10, 1)
	c := ebay.NewBrowseClient(
		testIdentity(),
		ebay.WithBrowseURL(srv.URL),
		ebay.WithBrowseQuota(q),
	)

	_, err := c.GetItem(context.Background(), "1", "tok")
	require.NoError(t, err)

	_, err = c.GetItem(context.Background(), "2", "tok")
	require.ErrorIs(t, err, ebay.ErrDailyLimitReached)
}
