package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cryptofeed/internal/httpx"
)

var (
	// ErrConfiguration signals a missing credential or endpoint detected at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidInput signals an unsupported coin, currency or provider name from the caller.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownCurrency signals a currency code outside the supported set.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrUnknownCoin signals a coin outside the supported set.
	ErrUnknownCoin = errors.New("unknown coin")
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindInvalidInput
	KindUpstreamUnavailable
	KindUpstreamRejected
	KindRateLimited
	KindMalformedResponse
	KindStaleData
	KindAggregateFailure
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindConfiguration:       "configuration_error",
	KindInvalidInput:        "invalid_input",
	KindUpstreamUnavailable: "upstream_unavailable",
	KindUpstreamRejected:    "upstream_rejected",
	KindRateLimited:         "rate_limited",
	KindMalformedResponse:   "malformed_response",
	KindStaleData:           "stale_data",
	KindAggregateFailure:    "aggregate_failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and logs.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", b)
}

// ProviderError is a failure of one provider call.
type ProviderError struct {
	Provider ID
	Kind     Kind
	Err      error
}

// NewError wraps err as a failure of provider p.
func NewError(p ID, kind Kind, err error) *ProviderError {
	return &ProviderError{Provider: p, Kind: kind, Err: err}
}

// Errorf is NewError with a formatted message.
func Errorf(p ID, kind Kind, format string, args ...any) *ProviderError {
	return NewError(p, kind, fmt.Errorf(format, args...))
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AggregateError is returned when every provider of a fan-out failed.
type AggregateError struct {
	Errors []*ProviderError
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, pe := range e.Errors {
		parts = append(parts, pe.Error())
	}
	return fmt.Sprintf("all %d providers failed: %s", len(e.Errors), strings.Join(parts, "; "))
}

func (e *AggregateError) Unwrap() []error {
	out := make([]error, 0, len(e.Errors))
	for _, pe := range e.Errors {
		out = append(out, pe)
	}
	return out
}

// KindOf classifies err. Context errors count as upstream unavailability.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var agg *AggregateError
	if errors.As(err, &agg) {
		return KindAggregateFailure
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, context.DeadlineExceeded):
		return KindUpstreamUnavailable
	}
	return KindUnknown
}

// KindForStatus maps a non-2xx upstream status to a failure kind.
func KindForStatus(code int) Kind {
	if code == http.StatusTooManyRequests {
		return KindRateLimited
	}
	return KindUpstreamRejected
}

// FromHTTP classifies an error returned by httpx.ReadBody.
func FromHTTP(p ID, err error) *ProviderError {
	var se *httpx.StatusError
	if errors.As(err, &se) {
		return NewError(p, KindForStatus(se.Code), err)
	}
	return NewError(p, KindUpstreamUnavailable, err)
}
