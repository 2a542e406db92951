package ebay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sellerdesk/ebay-bridge/internal/metrics"
	domain "github.com/sellerdesk/ebay-bridge/pkg/types"
)

// fallbackNote is attached to synthesized records so callers know the data
// is degraded and a full-access token may be needed.
const fallbackNote = "Item details could not be retrieved from eBay; " +
	"full API access may be required."

// strategy pairs an upstream tier with its name for logging and metrics.
type strategy struct {
	name  string
	fetch ItemFetcher
}

// Resolver resolves a single logical item-detail request across upstream
// strategies in strict order, cheapest known-good source first. It never
// fails: when every tier is unusable it synthesizes a fallback record.
// Strategy errors are logged and swallowed, never propagated; the single
// exception is context cancellation, which aborts with the context error
// rather than fabricating a result.
type Resolver struct {
	strategies []strategy
	log        *slog.Logger
}

// NewResolver creates a resolver trying browse first, then trading, then
// the synthetic fallback.
func NewResolver(browse, trading ItemFetcher, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		strategies: []strategy{
			{name: "browse", fetch: browse},
			{name: "trading", fetch: trading},
		},
		log: log,
	}
}

// Resolve runs the strategy chain sequentially and returns the first
// successful record, or the synthetic fallback when all tiers fail.
// Repeated calls against unchanged upstream state return identical records.
func (r *Resolver) Resolve(
	ctx context.Context,
	itemID, bearerToken string,
) (*domain.ItemDetail, error) {
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("item resolution canceled: %w", err)
		}

		detail, err := s.fetch.GetItem(ctx, itemID, bearerToken)
		if err != nil {
			// Caller abandonment is not a tier failure; stop instead of
			// letting a canceled attempt degrade into the fallback record.
			if ctx.Err() != nil {
				return nil, fmt.Errorf("item resolution canceled: %w", ctx.Err())
			}

			metrics.ResolveStrategyFailures.WithLabelValues(s.name).Inc()
			r.log.Debug("item strategy failed",
				"strategy", s.name,
				"item_id", itemID,
				"error", err,
			)
			continue
		}

		metrics.ResolutionsTotal.WithLabelValues(string(detail.Source)).Inc()
		return detail, nil
	}

	detail := fallbackItem(itemID)
	metrics.ResolutionsTotal.WithLabelValues(string(detail.Source)).Inc()
	r.log.Info("item resolution fell back to synthetic record", "item_id", itemID)
	return detail, nil
}

// fallbackItem synthesizes the last-resort record. This path always
// succeeds and terminates the resolution.
func fallbackItem(itemID string) *domain.ItemDetail {
	return &domain.ItemDetail{
		ItemID:      itemID,
		Title:       "eBay Item " + itemID,
		Description: "No description is available for item " + itemID + ".",
		Source:      domain.SourceFallback,
		Note:        fallbackNote,
	}
}
