package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "AMM"

// PoolSettings identifies the replayed pair. Symbols and decimals are optional
// and are looked up over RPC when an RPC URL is configured.
type PoolSettings struct {
	Assets   []string
	Symbols  []string
	Decimals []uint8
}

// Config holds settings for the run command.
type Config struct {
	Input             string
	Out               string
	Errors            string
	Checkpoint        string
	CheckpointEnabled bool
	BatchSize         uint64
	MaxRetries        int
	RetryBackoff      time.Duration
	RunID             string
	Pool              PoolSettings
	RPCURL            string
	PGDSN             string
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("batch-size", uint64(500))
		v.SetDefault("out", "./data/events.jsonl")
		v.SetDefault("errors", "./data/errors.jsonl")
		v.SetDefault("checkpoint", "./data/checkpoint.json")
		v.SetDefault("checkpoint-enabled", true)
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
	})
	if err != nil {
		return Config{}, err
	}

	pool, err := loadPool(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Input:             v.GetString("in"),
		Out:               v.GetString("out"),
		Errors:            v.GetString("errors"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		BatchSize:         v.GetUint64("batch-size"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		RunID:             v.GetString("run-id"),
		Pool:              pool,
		RPCURL:            v.GetString("rpc"),
		PGDSN:             v.GetString("pg-dsn"),
		LogLevel:          v.GetString("log-level"),
	}
	if cfg.Input == "" {
		return Config{}, fmt.Errorf("in is required")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(v *viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadPool(v *viper.Viper) (PoolSettings, error) {
	pool := PoolSettings{
		Assets:  getStringSlice(v, "assets"),
		Symbols: getStringSlice(v, "symbols"),
	}
	if len(pool.Assets) != 2 {
		return PoolSettings{}, fmt.Errorf("assets must name exactly two tokens, got %d", len(pool.Assets))
	}
	if len(pool.Symbols) != 0 && len(pool.Symbols) != 2 {
		return PoolSettings{}, fmt.Errorf("symbols must be empty or two values, got %d", len(pool.Symbols))
	}

	decimals := getStringSlice(v, "decimals")
	if len(decimals) != 0 && len(decimals) != 2 {
		return PoolSettings{}, fmt.Errorf("decimals must be empty or two values, got %d", len(decimals))
	}
	for _, item := range decimals {
		d, err := strconv.ParseUint(item, 10, 8)
		if err != nil {
			return PoolSettings{}, fmt.Errorf("decimals %q: %w", item, err)
		}
		pool.Decimals = append(pool.Decimals, uint8(d))
	}
	return pool, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
