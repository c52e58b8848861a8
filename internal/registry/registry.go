// Package registry builds the enabled providers from configuration.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"cryptofeed/internal/aggregate"
	"cryptofeed/internal/config"
	"cryptofeed/internal/httpx"
	"cryptofeed/internal/provider"
	"cryptofeed/internal/provider/coingecko"
	"cryptofeed/internal/provider/coinmarketcap"
	"cryptofeed/internal/provider/etherscan"
	"cryptofeed/internal/provider/ethrpc"
)

// Registry owns the provider instances for the life of the process.
type Registry struct {
	prices      []provider.PriceProvider
	gas         []provider.GasOracle
	defaultGas  provider.ID
	callTimeout time.Duration
	closers     []func()
}

type options struct {
	httpClient httpx.Doer
	log        logrus.FieldLogger
}

type Option func(*options)

// WithHTTPClient replaces the shared upstream HTTP client.
func WithHTTPClient(d httpx.Doer) Option {
	return func(o *options) { o.httpClient = d }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// Build validates cfg and constructs every enabled provider, price providers
// first, each list in a fixed order.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = httpx.New(cfg.Server.ProviderTimeout())
	}

	r := &Registry{
		defaultGas:  provider.GasOracleID(cfg.Gas.DefaultProvider),
		callTimeout: cfg.Server.ProviderTimeout(),
	}

	if cfg.CoinMarketCap.Enabled() {
		cmc, err := coinmarketcap.New(cfg.CoinMarketCap.APIKey,
			coinmarketcap.WithBaseURL(cfg.CoinMarketCap.BaseURL),
			coinmarketcap.WithHTTPClient(o.httpClient),
		)
		if err != nil {
			return nil, err
		}
		r.prices = append(r.prices, cmc)
	}
	if cfg.CoinGecko.Enabled() {
		r.prices = append(r.prices, coingecko.New(
			coingecko.WithBaseURL(cfg.CoinGecko.BaseURL),
			coingecko.WithHTTPClient(o.httpClient),
			coingecko.WithAPIKey(cfg.CoinGecko.APIKey),
		))
	}

	if cfg.Etherscan.Enabled() {
		es, err := etherscan.New(cfg.Etherscan.APIKey,
			etherscan.WithBaseURL(cfg.Etherscan.BaseURL),
			etherscan.WithHTTPClient(o.httpClient),
			etherscan.WithChainID(cfg.Etherscan.ChainID),
			etherscan.WithLogger(o.log),
		)
		if err != nil {
			return nil, err
		}
		r.gas = append(r.gas, es)
	}
	if cfg.EthereumRPC.Enabled() {
		node, err := ethrpc.Dial(ctx, cfg.EthereumRPC.URL, ethrpc.WithMaxBlockAge(cfg.EthereumRPC.MaxBlockAge()))
		if err != nil {
			r.Close()
			return nil, err
		}
		r.closers = append(r.closers, node.Close)
		r.gas = append(r.gas, node)
	}

	o.log.WithFields(logrus.Fields{
		"price_providers": len(r.prices),
		"gas_oracles":     len(r.gas),
		"default_gas":     r.defaultGas,
	}).Info("providers registered")
	return r, nil
}

// Aggregator wires the registered providers into an aggregator.
func (r *Registry) Aggregator(opts ...aggregate.Option) (*aggregate.Aggregator, error) {
	a, err := aggregate.New(aggregate.Config{
		PriceProviders:   r.prices,
		GasOracles:       r.gas,
		DefaultGasOracle: r.defaultGas,
		CallTimeout:      r.callTimeout,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("building aggregator: %w", err)
	}
	return a, nil
}

// PriceProviders returns the registered price providers in order.
func (r *Registry) PriceProviders() []provider.PriceProvider { return r.prices }

// GasOracles returns the registered gas oracles in order.
func (r *Registry) GasOracles() []provider.GasOracle { return r.gas }

// Close releases provider connections.
func (r *Registry) Close() {
	for _, c := range r.closers {
		c()
	}
	r.closers = nil
}
