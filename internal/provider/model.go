package provider

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Coin is a supported cryptocurrency.
type Coin string

const ETH Coin = "ETH"

// Coins lists every supported coin.
func Coins() []Coin { return []Coin{ETH} }

// CoinMarketCapID returns the numeric id CoinMarketCap uses for the coin.
func (c Coin) CoinMarketCapID() int {
	switch c {
	case ETH:
		return 1027
	}
	return 0
}

// CoinGeckoID returns the slug CoinGecko uses for the coin.
func (c Coin) CoinGeckoID() string {
	switch c {
	case ETH:
		return "ethereum"
	}
	return ""
}

func (c Coin) String() string { return string(c) }

// Currency is a fiat quote currency.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	CHF Currency = "CHF"
	CNY Currency = "CNY"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
)

var currencySymbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	CHF: "CHF",
	CNY: "¥",
	GBP: "£",
	JPY: "¥",
	CAD: "C$",
	AUD: "A$",
}

// Currencies lists every supported currency in a stable order.
func Currencies() []Currency {
	return []Currency{USD, EUR, CHF, CNY, GBP, JPY, CAD, AUD}
}

// Symbol returns the display symbol, e.g. "$" for USD.
func (c Currency) Symbol() string { return currencySymbols[c] }

func (c Currency) String() string { return string(c) }

// UnmarshalJSON accepts only codes from the supported set.
func (c *Currency) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	cur, err := ParseCurrency(s)
	if err != nil {
		return err
	}
	*c = cur
	return nil
}

// QuotePerAmount is the price scaled to a requested amount of coin.
type QuotePerAmount struct {
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"2"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"string" example:"8329.64"`
}

// Quote is the normalized price of one coin in one currency from one provider.
type Quote struct {
	Coin           Coin            `json:"coin" enums:"ETH"`
	Currency       Currency        `json:"currency" enums:"USD,EUR,CHF,CNY,GBP,JPY,CAD,AUD"`
	Price          decimal.Decimal `json:"price" swaggertype:"string" example:"4164.82"`
	Provider       ID              `json:"provider" enums:"coinmarketcap,coingecko"`
	QuotePerAmount QuotePerAmount  `json:"quote_per_amount"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewQuote builds a quote for an amount of one coin.
func NewQuote(p ID, coin Coin, cur Currency, price decimal.Decimal, ts time.Time) Quote {
	return Quote{
		Coin:     coin,
		Currency: cur,
		Price:    price,
		Provider: p,
		QuotePerAmount: QuotePerAmount{
			Amount:     decimal.NewFromInt(1),
			TotalPrice: price,
		},
		Timestamp: ts.UTC(),
	}
}

// WithAmount returns a copy of q priced for amount units of the coin.
func (q Quote) WithAmount(amount decimal.Decimal) Quote {
	q.QuotePerAmount = QuotePerAmount{
		Amount:     amount,
		TotalPrice: q.Price.Mul(amount),
	}
	return q
}

// GasEstimate is a low/average/high gas price triple in gwei.
type GasEstimate struct {
	Low       decimal.Decimal `json:"low" swaggertype:"string" example:"0.42"`
	Average   decimal.Decimal `json:"average" swaggertype:"string" example:"0.51"`
	High      decimal.Decimal `json:"high" swaggertype:"string" example:"1.9"`
	Timestamp time.Time       `json:"timestamp"`
	Provider  ID              `json:"-"`
}

// Validate checks the estimate is non-negative and monotonic.
func (g GasEstimate) Validate() error {
	if g.Low.IsNegative() {
		return fmt.Errorf("negative low gas price %s", g.Low)
	}
	if g.Average.LessThan(g.Low) || g.High.LessThan(g.Average) {
		return fmt.Errorf("gas prices not ordered: low=%s average=%s high=%s", g.Low, g.Average, g.High)
	}
	return nil
}
