// Package aggregate fans a request out to every configured provider and
// assembles the per-provider results.
//
// Prices are queried from all providers concurrently and merged as result
// sets: values from different providers are never combined. Gas is served by
// one oracle chosen by name. Each provider call is bounded by its own timeout
// and a slow provider cannot delay its siblings.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cryptofeed/internal/provider"
)

const (
	// DefaultCallTimeout bounds a single provider call.
	DefaultCallTimeout = 5 * time.Second
	// DefaultGasOracle is used when the caller names no oracle.
	DefaultGasOracle = provider.Etherscan
)

// Capability labels metrics and logs.
type Capability string

const (
	CapabilityPrice Capability = "price"
	CapabilityGas   Capability = "gas"
)

// OutcomeSuccess is the outcome reported for a successful call. Failures
// report the failure kind name.
const OutcomeSuccess = "success"

// Recorder receives per-call observations.
type Recorder interface {
	ObserveCall(p provider.ID, c Capability, outcome string, d time.Duration)
	ObserveAggregateFailure(c Capability)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCall(provider.ID, Capability, string, time.Duration) {}
func (nopRecorder) ObserveAggregateFailure(Capability)                         {}

// Config lists the providers in registration order.
type Config struct {
	PriceProviders []provider.PriceProvider
	GasOracles     []provider.GasOracle
	// DefaultGasOracle defaults to DefaultGasOracle.
	DefaultGasOracle provider.ID
	// CallTimeout defaults to DefaultCallTimeout.
	CallTimeout time.Duration
}

// ProviderQuotes is the successful result of one price provider.
type ProviderQuotes struct {
	Provider provider.ID
	Quotes   []provider.Quote
}

// PriceSet holds the successes and failures of one fan-out, both in
// registration order.
type PriceSet struct {
	Successes []ProviderQuotes
	Failures  []*provider.ProviderError
}

// Flatten returns every quote, provider by provider.
func (s PriceSet) Flatten() []provider.Quote {
	var out []provider.Quote
	for _, pq := range s.Successes {
		out = append(out, pq.Quotes...)
	}
	return out
}

// FailedProviders returns the ids of the failed providers.
func (s PriceSet) FailedProviders() []provider.ID {
	out := make([]provider.ID, 0, len(s.Failures))
	for _, f := range s.Failures {
		out = append(out, f.Provider)
	}
	return out
}

type Aggregator struct {
	prices     []provider.PriceProvider
	gas        []provider.GasOracle
	gasByID    map[provider.ID]provider.GasOracle
	defaultGas provider.ID
	timeout    time.Duration
	log        logrus.FieldLogger
	rec        Recorder
}

type Option func(*Aggregator)

func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(a *Aggregator) {
		if rec != nil {
			a.rec = rec
		}
	}
}

// New validates cfg. At least one price provider is required and ids must be
// unique per capability. When oracles are registered the default must be one
// of them.
func New(cfg Config, opts ...Option) (*Aggregator, error) {
	if len(cfg.PriceProviders) == 0 {
		return nil, fmt.Errorf("%w: no price provider configured", provider.ErrConfiguration)
	}
	seen := make(map[provider.ID]struct{}, len(cfg.PriceProviders))
	for i, p := range cfg.PriceProviders {
		if p == nil {
			return nil, fmt.Errorf("%w: price provider %d is nil", provider.ErrConfiguration, i)
		}
		if _, dup := seen[p.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate price provider %q", provider.ErrConfiguration, p.ID())
		}
		seen[p.ID()] = struct{}{}
	}

	gasByID := make(map[provider.ID]provider.GasOracle, len(cfg.GasOracles))
	for i, o := range cfg.GasOracles {
		if o == nil {
			return nil, fmt.Errorf("%w: gas oracle %d is nil", provider.ErrConfiguration, i)
		}
		if _, dup := gasByID[o.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate gas oracle %q", provider.ErrConfiguration, o.ID())
		}
		gasByID[o.ID()] = o
	}

	def := provider.GasOracleID(string(cfg.DefaultGasOracle))
	if def == "" {
		def = DefaultGasOracle
	}
	if _, ok := gasByID[def]; len(gasByID) > 0 && !ok {
		return nil, fmt.Errorf("%w: default gas oracle %q is not configured", provider.ErrConfiguration, def)
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	a := &Aggregator{
		prices:     append([]provider.PriceProvider(nil), cfg.PriceProviders...),
		gas:        append([]provider.GasOracle(nil), cfg.GasOracles...),
		gasByID:    gasByID,
		defaultGas: def,
		timeout:    timeout,
		log:        logrus.StandardLogger(),
		rec:        nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// PriceProviders returns the price provider ids in registration order.
func (a *Aggregator) PriceProviders() []provider.ID {
	out := make([]provider.ID, 0, len(a.prices))
	for _, p := range a.prices {
		out = append(out, p.ID())
	}
	return out
}

// GasOracles returns the gas oracle ids in registration order.
func (a *Aggregator) GasOracles() []provider.ID {
	out := make([]provider.ID, 0, len(a.gas))
	for _, o := range a.gas {
		out = append(out, o.ID())
	}
	return out
}

// DefaultGasOracle is the oracle used when GasPrice gets an empty name.
func (a *Aggregator) DefaultGasOracle() provider.ID { return a.defaultGas }

type priceLeg struct {
	quotes []provider.Quote
	err    *provider.ProviderError
}

// Quotes queries every price provider for coin in currencies.
//
// Invalid input fails before any upstream call. Otherwise the call waits for
// every provider to answer or time out. With at least one success the set is
// returned with a nil error; when every provider failed the error is an
// *provider.AggregateError listing all of them. If ctx ends first, ctx.Err()
// is returned and no partial set is built.
func (a *Aggregator) Quotes(ctx context.Context, coin provider.Coin, currencies []provider.Currency) (PriceSet, error) {
	currencies, err := provider.ValidateRequest(coin, currencies)
	if err != nil {
		return PriceSet{}, err
	}

	legs := make([]priceLeg, len(a.prices))
	var wg sync.WaitGroup
	for i, p := range a.prices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			legs[i] = a.quoteLeg(ctx, p, coin, currencies)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return PriceSet{}, err
	}

	var set PriceSet
	for i, leg := range legs {
		if leg.err != nil {
			set.Failures = append(set.Failures, leg.err)
			continue
		}
		set.Successes = append(set.Successes, ProviderQuotes{Provider: a.prices[i].ID(), Quotes: leg.quotes})
	}
	if len(set.Successes) == 0 {
		a.rec.ObserveAggregateFailure(CapabilityPrice)
		return PriceSet{}, &provider.AggregateError{Errors: set.Failures}
	}
	return set, nil
}

func (a *Aggregator) quoteLeg(ctx context.Context, p provider.PriceProvider, coin provider.Coin, currencies []provider.Currency) priceLeg {
	id := p.ID()
	start := time.Now()
	quotes, err := callWithTimeout(ctx, a.timeout, func(ctx context.Context) ([]provider.Quote, error) {
		return p.GetQuotes(ctx, coin, currencies)
	})
	var pe *provider.ProviderError
	if err != nil {
		pe = asProviderError(id, err)
	} else if verr := checkQuotes(id, coin, currencies, quotes); verr != nil {
		pe = provider.NewError(id, provider.KindMalformedResponse, verr)
	}
	a.observe(id, CapabilityPrice, pe, time.Since(start))
	if pe != nil {
		return priceLeg{err: pe}
	}
	return priceLeg{quotes: quotes}
}

// GasPrice asks one oracle for an estimate. An empty name selects the
// default oracle; an unknown name is invalid input and calls nothing.
func (a *Aggregator) GasPrice(ctx context.Context, name string) (provider.GasEstimate, error) {
	id := provider.GasOracleID(name)
	if id == "" {
		id = a.defaultGas
	}
	oracle, ok := a.gasByID[id]
	if !ok {
		return provider.GasEstimate{}, fmt.Errorf("%w: unknown gas provider %q, available: %s",
			provider.ErrInvalidInput, name, joinIDs(a.GasOracles()))
	}

	start := time.Now()
	est, err := callWithTimeout(ctx, a.timeout, oracle.GetGasPrice)
	if cerr := ctx.Err(); cerr != nil {
		return provider.GasEstimate{}, cerr
	}
	var pe *provider.ProviderError
	if err != nil {
		pe = asProviderError(id, err)
	} else if verr := est.Validate(); verr != nil {
		pe = provider.NewError(id, provider.KindMalformedResponse, verr)
	}
	a.observe(id, CapabilityGas, pe, time.Since(start))
	if pe != nil {
		return provider.GasEstimate{}, pe
	}
	est.Provider = id
	return est, nil
}

func (a *Aggregator) observe(id provider.ID, c Capability, pe *provider.ProviderError, d time.Duration) {
	if pe == nil {
		a.rec.ObserveCall(id, c, OutcomeSuccess, d)
		a.log.WithFields(logrus.Fields{
			"provider":   id,
			"capability": c,
			"duration":   d,
		}).Debug("provider call succeeded")
		return
	}
	a.rec.ObserveCall(id, c, pe.Kind.String(), d)
	a.log.WithFields(logrus.Fields{
		"provider":   id,
		"capability": c,
		"kind":       pe.Kind,
		"duration":   d,
	}).WithError(pe.Err).Warn("provider call failed")
}

// callWithTimeout runs fn under its own deadline. The result of a call that
// overruns is dropped, so fn ignoring its context cannot hold the caller.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-cctx.Done():
		var zero T
		if errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("no response within %s: %w", timeout, cctx.Err())
		}
		return zero, cctx.Err()
	}
}

// asProviderError attributes err to id, keeping the kind when one is known.
func asProviderError(id provider.ID, err error) *provider.ProviderError {
	var pe *provider.ProviderError
	if errors.As(err, &pe) && pe.Provider == id {
		return pe
	}
	kind := provider.KindOf(err)
	if kind == provider.KindUnknown || kind == provider.KindAggregateFailure {
		kind = provider.KindUpstreamUnavailable
	}
	return provider.NewError(id, kind, err)
}

// checkQuotes enforces one quote per currency in request order.
func checkQuotes(id provider.ID, coin provider.Coin, currencies []provider.Currency, quotes []provider.Quote) error {
	if len(quotes) != len(currencies) {
		return fmt.Errorf("got %d quotes for %d currencies", len(quotes), len(currencies))
	}
	for i, q := range quotes {
		switch {
		case q.Currency != currencies[i]:
			return fmt.Errorf("quote %d is in %s, want %s", i, q.Currency, currencies[i])
		case q.Coin != coin:
			return fmt.Errorf("quote %d is for %s, want %s", i, q.Coin, coin)
		case q.Provider != id:
			return fmt.Errorf("quote %d is attributed to %q", i, q.Provider)
		case !q.Price.IsPositive():
			return fmt.Errorf("quote %d has non-positive price %s", i, q.Price)
		}
	}
	return nil
}

func joinIDs(ids []provider.ID) string {
	if len(ids) == 0 {
		return "none"
	}
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = string(id)
	}
	return strings.Join(s, ", ")
}
