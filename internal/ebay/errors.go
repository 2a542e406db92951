package ebay

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies upstream and caller failures for the exchange and
// resolution engines.
type ErrorKind string

// Error kind constants.
const (
	// KindConfigMissing means required application identity is absent.
	// Fatal to the specific call, surfaced as a server fault.
	KindConfigMissing ErrorKind = "config_missing"

	// KindClientInput means the caller omitted a required field. Never
	// retried.
	KindClientInput ErrorKind = "client_input"

	// KindHTTP means the upstream returned a non-2xx status or the
	// transport failed. The upstream status is preserved when there is one.
	KindHTTP ErrorKind = "http_error"

	// KindParse means the upstream response shape was unexpected despite a
	// success status. Treated as a server-side inconsistency.
	KindParse ErrorKind = "parse_error"

	// KindAuthRejected means the upstream explicitly rejected the
	// presented credentials.
	KindAuthRejected ErrorKind = "auth_rejected"
)

// UpstreamError is the uniform error shape surfaced by the exchangers.
// It is never persisted; each call produces a fresh value.
type UpstreamError struct {
	Kind         ErrorKind
	HTTPStatus   int // upstream status for KindHTTP, zero otherwise
	ShortMessage string
	LongMessage  string
}

func (e *UpstreamError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.HTTPStatus, e.ShortMessage)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.ShortMessage)
}

func errConfigMissing(msg string) *UpstreamError {
	return &UpstreamError{Kind: KindConfigMissing, ShortMessage: msg}
}

func errClientInput(msg string) *UpstreamError {
	return &UpstreamError{Kind: KindClientInput, ShortMessage: msg}
}

func errHTTP(status int, short string) *UpstreamError {
	return &UpstreamError{Kind: KindHTTP, HTTPStatus: status, ShortMessage: short}
}

func errParse(msg string) *UpstreamError {
	return &UpstreamError{Kind: KindParse, ShortMessage: msg}
}

func errAuthRejected(short string) *UpstreamError {
	return &UpstreamError{Kind: KindAuthRejected, ShortMessage: short}
}

// AsUpstream unwraps err into an *UpstreamError if one is in the chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// StatusFor maps an error to the HTTP status the API surface reports:
// ConfigMissing 500, ClientInput 400, AuthRejected 401, ParseError 502,
// HttpError the preserved upstream status (502 when the transport failed
// before any status was received). Unknown errors map to 500.
func StatusFor(err error) int {
	ue, ok := AsUpstream(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch ue.Kind {
	case KindConfigMissing:
		return http.StatusInternalServerError
	case KindClientInput:
		return http.StatusBadRequest
	case KindAuthRejected:
		return http.StatusUnauthorized
	case KindParse:
		return http.StatusBadGateway
	case KindHTTP:
		if ue.HTTPStatus != 0 {
			return ue.HTTPStatus
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
