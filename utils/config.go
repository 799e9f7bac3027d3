package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config keys shared by the config file, flags and environment
const (
	KeyRpc            = "rpc"
	KeyNetwork        = "network"
	KeyPrivateKey     = "privateKey"
	KeyGasPriceGwei   = "gasPriceGwei"
	KeySaveTxHashes   = "saveTxHashes"
	KeyTxHashFile     = "txHashFile"
	KeyConfirmTimeout = "confirmTimeout"
	KeyStopOnError    = "stopOnError"
)

const (
	DefaultNetwork    = "rinkeby"
	DefaultTxHashFile = "./txhashes.log"

	// GweiDecimals converts gasPriceGwei to wei
	GweiDecimals = 9
)

type TransferConfig struct {
	Rpc            string        `mapstructure:"rpc"`
	Network        string        `mapstructure:"network"`
	PrivateKey     string        `mapstructure:"privateKey"`
	GasPriceGwei   float64       `mapstructure:"gasPriceGwei"` // 0 lets the node suggest a price
	SaveTxHashes   bool          `mapstructure:"saveTxHashes"`
	TxHashFile     string        `mapstructure:"txHashFile"`
	ConfirmTimeout time.Duration `mapstructure:"confirmTimeout"` // 0 waits indefinitely
	StopOnError    bool          `mapstructure:"stopOnError"`
}

// NewViper returns a viper instance with defaults and the signer key bound to
// PrivateKeyEnv. Values from a .env file in the working directory are loaded
// into the environment first; variables already set take precedence.
func NewViper() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyNetwork, DefaultNetwork)
	v.SetDefault(KeyTxHashFile, DefaultTxHashFile)
	v.SetDefault(KeyGasPriceGwei, 0)
	v.SetDefault(KeyConfirmTimeout, time.Duration(0))
	if err := v.BindEnv(KeyPrivateKey, PrivateKeyEnv); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadConfig reads the optional config file and decodes all settings.
// Precedence is flag, environment, config file, default.
func LoadConfig(v *viper.Viper, configPath string) (TransferConfig, error) {
	var cfg TransferConfig
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := ParseGasPriceToBigInt(cfg.GasPriceGwei, GweiDecimals); err != nil {
		return cfg, fmt.Errorf("invalid gasPriceGwei: %w", err)
	}
	if cfg.ConfirmTimeout < 0 {
		return cfg, fmt.Errorf("confirmTimeout must not be negative")
	}
	return cfg, nil
}
