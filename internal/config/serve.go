package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServeConfig holds settings for the serve command.
type ServeConfig struct {
	Input           string
	Pool            PoolSettings
	RPCURL          string
	Addr            string
	ShutdownTimeout time.Duration
	LogLevel        string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("addr", ":8080")
		v.SetDefault("shutdown-timeout", 5*time.Second)
	})
	if err != nil {
		return ServeConfig{}, err
	}

	pool, err := loadPool(v)
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Input:           v.GetString("in"),
		Pool:            pool,
		RPCURL:          v.GetString("rpc"),
		Addr:            v.GetString("addr"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
	}
	if cfg.Addr == "" {
		return ServeConfig{}, fmt.Errorf("addr is required")
	}
	return cfg, nil
}
