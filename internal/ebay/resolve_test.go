package ebay_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/ebay-bridge/internal/ebay"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// fakeFetcher is a scripted ItemFetcher tier.
type fakeFetcher struct {
	detail *domain.ItemDetail
	err    error
	calls  atomic.Int32
}

func (f *fakeFetcher) GetItem(
	_ context.Context,
	_, _ string,
) (*domain.ItemDetail, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestResolver_BrowseSuccessShortCircuits(t *testing.T) {
	t.Parallel()

	browse := &fakeFetcher{detail: &domain.ItemDetail{
		ItemID:      "123",
		Title:       "T",
		Description: "D",
		Source:      domain.SourceBrowseAPI,
	}}
	trading := &fakeFetcher{err: errors.New("should not be called")}

	r := ebay.NewResolver(browse, trading, discardLogger())

	d, err := r.Resolve(context.Background(), "123", "tok")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceBrowseAPI, d.Source)
	assert.Equal(t, "T", d.Title)
	assert.Equal(t, "D", d.Description)
	assert.Equal(t, int32(1), browse.calls.Load())
	assert.Equal(t, int32(0), trading.calls.Load(), "trading tier never invoked")
}

func TestResolver_FallsThroughToTrading(t *testing.T) {
	t.Parallel()

	browse := &fakeFetcher{err: errors.New("404 from browse")}
	trading := &fakeFetcher{detail: &domain.ItemDetail{
		ItemID:      "123",
		Title:       "Widget & Co",
		Description: "full description",
		Source:      domain.SourceTradingAPI,
	}}

	r := ebay.NewResolver(browse, trading, discardLogger())

	d, err := r.Resolve(context.Background(), "123", "tok")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceTradingAPI, d.Source)
	assert.Equal(t, "Widget & Co", d.Title)
	assert.Equal(t, int32(1), browse.calls.Load())
	assert.Equal(t, int32(1), trading.calls.Load())
}

func TestResolver_FallbackWhenAllTiersFail(t *testing.T) {
	t.Parallel()

	browse := &fakeFetcher{err: errors.New("connection refused")}
	trading := &fakeFetcher{err: errors.New("error block in response")}

	r := ebay.NewResolver(browse, trading, discardLogger())

	d, err := r.Resolve(context.Background(), "999", "tok")
	require.NoError(t, err, "resolution never fails")

	assert.Equal(t, domain.SourceFallback, d.Source)
	assert.Equal(t, "999", d.ItemID)
	assert.Equal(t, "eBay Item 999", d.Title)
	assert.Contains(t, d.Description, "999")
	assert.NotEmpty(t, d.Note)
}

func TestResolver_Idempotent(t *testing.T) {
	t.Parallel()

	browse := &fakeFetcher{err: errors.New("down")}
	trading := &fakeFetcher{err: errors.New("down")}

	r := ebay.NewResolver(browse, trading, discardLogger())

	d1, err := r.Resolve(context.Background(), "42", "tok")
	require.NoError(t, err)
	d2, err := r.Resolve(context.Background(), "42", "tok")
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "unchanged upstream state yields identical records")
}

func TestResolver_CancellationDoesNotFabricateFallback(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	browse := &fakeFetcher{err: errors.New("down")}
	trading := &fakeFetcher{err: errors.New("down")}

	r := ebay.NewResolver(browse, trading, discardLogger())

	_, err := r.Resolve(ctx, "1", "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), browse.calls.Load())
}

// End-to-end over stub HTTP upstreams: browse 404, trading answers with a
// CDATA title that needs entity unescaping.
func TestResolver_BrowseThenTradingOverHTTP(t *testing.T) {
	t.Parallel()

	browseSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer browseSrv.Close()

	tradingSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<GetItemResponse><Ack>Success</Ack><Item>` +
			`<Title><![CDATA[Widget & Co]]></Title>` +
			`<Description>plain description</Description>` +
			`</Item></GetItemResponse>`))
	}))
	defer tradingSrv.Close()

	browse := ebay.NewBrowseClient(testIdentity(), ebay.WithBrowseURL(browseSrv.URL))
	trading := ebay.NewTradingClient(testIdentity(), ebay.WithTradingItemURL(tradingSrv.URL))

	r := ebay.NewResolver(browse, trading, discardLogger())

	d, err := r.Resolve(context.Background(), "123", "tok")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceTradingAPI, d.Source)
	assert.Equal(t, "Widget & Co", d.Title)
	assert.Equal(t, "plain description", d.Description)
}
