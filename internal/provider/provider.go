package provider

import (
	"context"
	"strings"
)

// ID identifies a provider in results, logs and query parameters.
type ID string

const (
	CoinMarketCap ID = "coinmarketcap"
	CoinGecko     ID = "coingecko"
	Etherscan     ID = "etherscan"
	RPC           ID = "rpc"
)

// PriceProvider is implemented by every price source.
// GetQuotes returns exactly one Quote per requested currency, in request order.
//
//go:generate mockgen -package=providermock -destination=providermock/providermock.go -source=provider.go PriceProvider,GasOracle
type PriceProvider interface {
	ID() ID
	GetQuotes(ctx context.Context, coin Coin, currencies []Currency) ([]Quote, error)
}

// GasOracle is implemented by every gas price source.
// The returned estimate is in gwei and satisfies low <= average <= high.
type GasOracle interface {
	ID() ID
	GetGasPrice(ctx context.Context) (GasEstimate, error)
}

// gasAliases maps legacy oracle names onto current ids.
var gasAliases = map[string]ID{
	"alloy": RPC,
}

// GasOracleID normalizes a caller-supplied oracle name. It does not check
// that an oracle with that id is registered.
func GasOracleID(name string) ID {
	n := strings.ToLower(strings.TrimSpace(name))
	if id, ok := gasAliases[n]; ok {
		return id
	}
	return ID(n)
}
