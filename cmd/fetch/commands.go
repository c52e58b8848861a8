package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"cryptofeed/internal/aggregate"
	"cryptofeed/internal/provider"
)

type engine interface {
	Quotes(ctx context.Context, coin provider.Coin, currencies []provider.Currency) (aggregate.PriceSet, error)
	GasPrice(ctx context.Context, name string) (provider.GasEstimate, error)
}

type buildFunc func(ctx context.Context, cfgPath string) (engine, func(), error)

type failure struct {
	Provider provider.ID   `json:"provider"`
	Kind     provider.Kind `json:"kind"`
	Message  string        `json:"message"`
}

type pricesOutput struct {
	Quotes   []provider.Quote `json:"quotes"`
	Failures []failure        `json:"failures,omitempty"`
}

type gasOutput struct {
	GasPrice provider.GasEstimate `json:"gas_price"`
	Provider provider.ID          `json:"provider"`
}

// app holds the engine built for one invocation.
type app struct {
	build   buildFunc
	svc     engine
	closeFn func()
}

func (a *app) engine() engine { return a.svc }

// Close releases provider connections.
func (a *app) Close() {
	if a.closeFn != nil {
		a.closeFn()
		a.closeFn = nil
	}
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "fetch",
		Short:         "Query crypto price and gas providers once",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a.svc, a.closeFn, err = a.build(cmd.Context(), configFile)
			return err
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	root.AddCommand(pricesCmd(a.engine), gasCmd(a.engine))
	return root
}

func pricesCmd(svc func() engine) *cobra.Command {
	var coin, currency, amount string

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Fetch quotes from every price provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(strings.TrimSpace(amount))
			if err != nil || !amt.IsPositive() {
				return fmt.Errorf("%w: amount must be a positive decimal", provider.ErrInvalidInput)
			}
			c, err := provider.ParseCoin(coin)
			if err != nil {
				return fmt.Errorf("%w: %w", provider.ErrInvalidInput, err)
			}
			currencies, err := provider.ParseCurrencies(strings.Split(currency, ","))
			if err != nil {
				return fmt.Errorf("%w: %w", provider.ErrInvalidInput, err)
			}

			set, err := svc().Quotes(cmd.Context(), c, currencies)
			if err != nil {
				return err
			}
			out := pricesOutput{Quotes: set.Flatten()}
			for i := range out.Quotes {
				out.Quotes[i] = out.Quotes[i].WithAmount(amt)
			}
			for _, f := range set.Failures {
				out.Failures = append(out.Failures, failure{Provider: f.Provider, Kind: f.Kind, Message: f.Err.Error()})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&coin, "coin", string(provider.ETH), "coin ticker")
	cmd.Flags().StringVar(&currency, "currency", string(provider.USD), "comma-separated currency codes")
	cmd.Flags().StringVar(&amount, "amount", "1", "amount of coin to price")
	return cmd
}

func gasCmd(svc func() engine) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "gas",
		Short: "Fetch a gas price estimate in gwei",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			est, err := svc().GasPrice(cmd.Context(), name)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), gasOutput{GasPrice: est, Provider: est.Provider})
		},
	}
	cmd.Flags().StringVar(&name, "provider", "", "gas oracle (etherscan, rpc); empty selects the default")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
