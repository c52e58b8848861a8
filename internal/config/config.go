package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"cryptofeed/internal/provider"
)

type Server struct {
	Host               string   `yaml:"host" env:"HOST" env-default:"127.0.0.1"`
	Port               string   `yaml:"port" env:"PORT" env-default:"3000"`
	RequestTimeoutSec  int      `yaml:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC" env-default:"15"`
	ProviderTimeoutSec int      `yaml:"provider_timeout_sec" env:"PROVIDER_TIMEOUT_SEC" env-default:"5"`
	CORSOrigins        []string `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

func (s Server) Addr() string { return net.JoinHostPort(s.Host, s.Port) }

func (s Server) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSec) * time.Second
}

func (s Server) ProviderTimeout() time.Duration {
	return time.Duration(s.ProviderTimeoutSec) * time.Second
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Providers are on unless disabled; a zero value must not turn one off
// when a YAML file omits the key.
type CoinMarketCap struct {
	Disabled bool   `yaml:"disabled" env:"COINMARKETCAP_DISABLED"`
	APIKey   string `yaml:"api_key" env:"COINMARKETCAP_API_KEY"`
	BaseURL  string `yaml:"base_url" env:"COINMARKETCAP_BASE_URL"`
}

func (c CoinMarketCap) Enabled() bool { return !c.Disabled }

type CoinGecko struct {
	Disabled bool `yaml:"disabled" env:"COINGECKO_DISABLED"`
	// APIKey is optional; without it the public rate limit applies.
	APIKey  string `yaml:"api_key" env:"COINGECKO_API_KEY"`
	BaseURL string `yaml:"base_url" env:"COINGECKO_BASE_URL"`
}

func (c CoinGecko) Enabled() bool { return !c.Disabled }

type Etherscan struct {
	Disabled bool   `yaml:"disabled" env:"ETHERSCAN_DISABLED"`
	APIKey   string `yaml:"api_key" env:"ETHERSCAN_API_KEY"`
	BaseURL  string `yaml:"base_url" env:"ETHERSCAN_BASE_URL"`
	ChainID  int    `yaml:"chain_id" env:"ETHERSCAN_CHAIN_ID" env-default:"1"`
}

func (e Etherscan) Enabled() bool { return !e.Disabled }

type EthereumRPC struct {
	Disabled       bool   `yaml:"disabled" env:"ETHEREUM_RPC_DISABLED"`
	URL            string `yaml:"url" env:"ETHEREUM_RPC_URL"`
	MaxBlockAgeSec int    `yaml:"max_block_age_sec" env:"ETHEREUM_RPC_MAX_BLOCK_AGE_SEC" env-default:"120"`
}

func (e EthereumRPC) Enabled() bool { return !e.Disabled }

func (e EthereumRPC) MaxBlockAge() time.Duration {
	return time.Duration(e.MaxBlockAgeSec) * time.Second
}

type Gas struct {
	DefaultProvider string `yaml:"default_provider" env:"GAS_DEFAULT_PROVIDER" env-default:"etherscan"`
}

type Config struct {
	Server        Server        `yaml:"server"`
	Log           Log           `yaml:"log"`
	CoinMarketCap CoinMarketCap `yaml:"coinmarketcap"`
	CoinGecko     CoinGecko     `yaml:"coingecko"`
	Etherscan     Etherscan     `yaml:"etherscan"`
	EthereumRPC   EthereumRPC   `yaml:"ethereum_rpc"`
	Gas           Gas           `yaml:"gas"`
}

// Load reads the YAML file at path, if any, then applies environment
// variables and defaults. It does not validate.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once, wrapped in provider.ErrConfiguration.
func (c Config) Validate() error {
	var problems []error
	if c.Server.RequestTimeoutSec <= 0 {
		problems = append(problems, errors.New("REQUEST_TIMEOUT_SEC must be positive"))
	}
	if c.Server.ProviderTimeoutSec <= 0 {
		problems = append(problems, errors.New("PROVIDER_TIMEOUT_SEC must be positive"))
	}

	if c.CoinMarketCap.Enabled() && strings.TrimSpace(c.CoinMarketCap.APIKey) == "" {
		problems = append(problems, errors.New("coinmarketcap is enabled but COINMARKETCAP_API_KEY is not set"))
	}
	if !c.CoinMarketCap.Enabled() && !c.CoinGecko.Enabled() {
		problems = append(problems, errors.New("no price provider is enabled"))
	}
	if c.Etherscan.Enabled() && strings.TrimSpace(c.Etherscan.APIKey) == "" {
		problems = append(problems, errors.New("etherscan is enabled but ETHERSCAN_API_KEY is not set"))
	}
	if c.EthereumRPC.Enabled() && strings.TrimSpace(c.EthereumRPC.URL) == "" {
		problems = append(problems, errors.New("ethereum rpc is enabled but ETHEREUM_RPC_URL is not set"))
	}

	if c.Etherscan.Enabled() || c.EthereumRPC.Enabled() {
		switch def := provider.GasOracleID(c.Gas.DefaultProvider); def {
		case "", provider.Etherscan:
			if !c.Etherscan.Enabled() {
				problems = append(problems, errors.New("default gas provider etherscan is not enabled"))
			}
		case provider.RPC:
			if !c.EthereumRPC.Enabled() {
				problems = append(problems, errors.New("default gas provider rpc is not enabled"))
			}
		default:
			problems = append(problems, fmt.Errorf("unknown default gas provider %q", c.Gas.DefaultProvider))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", provider.ErrConfiguration, errors.Join(problems...))
}
