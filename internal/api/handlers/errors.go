package handlers

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/sellerdesk/ebay-bridge/internal/ebay"
)

// upstreamError converts an exchange or resolution failure into the huma
// error carrying the status the API surface reports. Upstream HTTP statuses
// are preserved rather than collapsed into a generic 502.
func upstreamError(err error) error {
	status := ebay.StatusFor(err)

	msg := err.Error()
	if ue, ok := ebay.AsUpstream(err); ok {
		msg = ue.ShortMessage
		if ue.LongMessage != "" {
			msg = ue.LongMessage
		}
	}

	return huma.NewError(status, msg)
}
