package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Wallet modes accepted in WALLET_MODE.
const (
	WalletModeRPC  = "rpc"
	WalletModeKey  = "key"
	WalletModeNone = "none"
)

type Config struct {
	HTTPAddr            string
	RPCURL              string
	WalletMode          string
	WalletPrivateKey    string
	ABISource           string
	AccountPollInterval time.Duration
	ReceiptPollInterval time.Duration
	DatabaseURL         string
	LogLevel            string
}

// Load reads .env files and then the process environment. Without envFiles a
// missing ./.env is ignored; files named by the caller must exist.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("RPC_URL", "http://127.0.0.1:8545")
	v.SetDefault("WALLET_MODE", WalletModeRPC)
	v.SetDefault("ABI_SOURCE", "./erc20_abi.json")
	v.SetDefault("ACCOUNT_POLL_INTERVAL", "2s")
	v.SetDefault("RECEIPT_POLL_INTERVAL", "1s")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		RPCURL:              v.GetString("RPC_URL"),
		WalletMode:          strings.ToLower(v.GetString("WALLET_MODE")),
		WalletPrivateKey:    v.GetString("WALLET_PRIVATE_KEY"),
		ABISource:           v.GetString("ABI_SOURCE"),
		AccountPollInterval: v.GetDuration("ACCOUNT_POLL_INTERVAL"),
		ReceiptPollInterval: v.GetDuration("RECEIPT_POLL_INTERVAL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		LogLevel:            v.GetString("LOG_LEVEL"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.WalletMode {
	case WalletModeRPC, WalletModeNone:
	case WalletModeKey:
		if c.WalletPrivateKey == "" {
			return fmt.Errorf("WALLET_PRIVATE_KEY is required when WALLET_MODE=%s", WalletModeKey)
		}
	default:
		return fmt.Errorf("unknown WALLET_MODE %q", c.WalletMode)
	}
	if c.AccountPollInterval <= 0 {
		return fmt.Errorf("ACCOUNT_POLL_INTERVAL must be positive")
	}
	if c.ReceiptPollInterval <= 0 {
		return fmt.Errorf("RECEIPT_POLL_INTERVAL must be positive")
	}
	return nil
}
