package provider

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// GasUnit is the denomination an upstream reports gas prices in.
type GasUnit int

const (
	Wei GasUnit = iota
	Gwei
	Ether
)

func (u GasUnit) String() string {
	switch u {
	case Wei:
		return "wei"
	case Gwei:
		return "gwei"
	case Ether:
		return "ether"
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// exponent relative to gwei
func (u GasUnit) exp() (int32, bool) {
	switch u {
	case Wei:
		return -9, true
	case Gwei:
		return 0, true
	case Ether:
		return 9, true
	}
	return 0, false
}

// ToGwei converts v from unit u into gwei.
func ToGwei(v decimal.Decimal, u GasUnit) (decimal.Decimal, error) {
	exp, ok := u.exp()
	if !ok {
		return decimal.Zero, fmt.Errorf("unsupported gas unit %s", u)
	}
	return v.Shift(exp), nil
}

// WeiToGwei converts an integer wei amount into gwei without rounding.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -9)
}

// ParseGwei parses a decimal string denominated in u and returns gwei.
func ParseGwei(s string, u GasUnit) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing gas price %q: %w", s, err)
	}
	return ToGwei(v, u)
}

// ParseCurrency maps a code in any case onto the supported set.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := currencySymbols[c]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// ParseCurrencies parses a list of codes, dropping duplicates and keeping first-seen order.
func ParseCurrencies(codes []string) ([]Currency, error) {
	out := make([]Currency, 0, len(codes))
	seen := make(map[Currency]struct{}, len(codes))
	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		c, err := ParseCurrency(code)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// ParseCoin maps a ticker in any case onto the supported set.
func ParseCoin(s string) (Coin, error) {
	c := Coin(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Coins() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownCoin, s)
}

// ValidateRequest checks a quote request before any upstream call.
// It returns the currencies deduplicated in request order.
func ValidateRequest(coin Coin, currencies []Currency) ([]Currency, error) {
	if _, err := ParseCoin(string(coin)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if len(currencies) == 0 {
		return nil, fmt.Errorf("%w: no currencies requested", ErrInvalidInput)
	}
	out := make([]Currency, 0, len(currencies))
	seen := make(map[Currency]struct{}, len(currencies))
	for _, c := range currencies {
		if _, ok := currencySymbols[c]; !ok {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidInput, ErrUnknownCurrency, string(c))
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// ClampGas raises average and high so the triple is monotonic.
// It reports whether any value changed.
func ClampGas(low, average, high decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal, bool) {
	clamped := false
	if average.LessThan(low) {
		average = low
		clamped = true
	}
	if high.LessThan(average) {
		high = average
		clamped = true
	}
	return low, average, high, clamped
}
