package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/base/validator"
	"github.com/x-xyz/nftmarket/domain"
)

const DefaultPath = "infra/configs/config.yaml"

type Config struct {
	Debug       bool              `mapstructure:"debug"`
	EnvName     string            `mapstructure:"env_name"`
	AppName     string            `mapstructure:"app_name"`
	PodName     string            `mapstructure:"podname"`
	DatadogHost string            `mapstructure:"datadog_host"`
	Server      ServerConfig      `mapstructure:"server"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	RedisCache  RedisConfig       `mapstructure:"redis_cache"`
	Chain       ChainConfig       `mapstructure:"chain"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Signer      SignerConfig      `mapstructure:"signer"`
	Discord     DiscordConfig     `mapstructure:"discord"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type MongoConfig struct {
	URI                string  `mapstructure:"uri"`
	AuthDBName         string  `mapstructure:"authDBName"`
	DBName             string  `mapstructure:"dbName"`
	EnableSSL          bool    `mapstructure:"enableSSL"`
	SetSafe            bool    `mapstructure:"setSafe"`
	PoolSizeMultiplier float64 `mapstructure:"poolSizeMultiplier"`
}

type RedisConfig struct {
	URI            string  `mapstructure:"uri"`
	Password       string  `mapstructure:"password"`
	PoolMultiplier float64 `mapstructure:"poolMultiplier"`
	Retry          bool    `mapstructure:"retry"`
}

type ChainConfig struct {
	RpcURL    string `mapstructure:"rpcUrl"`
	ChainId   int64  `mapstructure:"chainId"`
	EnsRpcURL string `mapstructure:"ensRpcUrl"`
	// MaxConcurrentCalls bounds in flight rpc requests
	MaxConcurrentCalls int `mapstructure:"maxConcurrentCalls"`
}

type MarketplaceConfig struct {
	Address          string        `mapstructure:"address"`
	RefreshInterval  time.Duration `mapstructure:"refreshInterval"`
	FetchTimeout     time.Duration `mapstructure:"fetchTimeout"`
	TxTimeout        time.Duration `mapstructure:"txTimeout"`
	// TxPendingTimeout bounds the background wait of a tx unmined after TxTimeout
	TxPendingTimeout time.Duration `mapstructure:"txPendingTimeout"`
	// TxLockTTL enables the redis tx lock, it must cover both waits
	TxLockTTL        time.Duration `mapstructure:"txLockTtl"`
}

type SignerConfig struct {
	// PrivateKey is optional, trade endpoints answer 503 without it
	PrivateKey string `mapstructure:"privateKey"`
}

type DiscordConfig struct {
	BotKey    string `mapstructure:"botKey"`
	ChannelId string `mapstructure:"channelId"`
}

type CacheConfig struct {
	StatsTTL time.Duration `mapstructure:"statsTtl"`
	EnsTTL   time.Duration `mapstructure:"ensTtl"`
}

var defaults = map[string]interface{}{
	"debug":                        false,
	"env_name":                     "local",
	"app_name":                     "nftmarket-api",
	"podname":                      "",
	"datadog_host":                 "",
	"server.address":               ":9090",
	"server.shutdownTimeout":       "10s",
	"mongo.uri":                    "mongodb://localhost:27017",
	"mongo.authDBName":             "admin",
	"mongo.dbName":                 "nftmarket",
	"mongo.enableSSL":              false,
	"mongo.setSafe":                false,
	"mongo.poolSizeMultiplier":     8,
	"redis_cache.uri":              "localhost:6379",
	"redis_cache.password":         "",
	"redis_cache.poolMultiplier":   8,
	"redis_cache.retry":            true,
	"chain.rpcUrl":                 "http://localhost:8545",
	"chain.chainId":                1,
	"chain.ensRpcUrl":              "",
	"chain.maxConcurrentCalls":     16,
	"marketplace.address":          "",
	"marketplace.refreshInterval":  "1m",
	"marketplace.fetchTimeout":     "15s",
	"marketplace.txTimeout":        "3m",
	"marketplace.txPendingTimeout": "10m",
	"marketplace.txLockTtl":        "15m",
	"signer.privateKey":            "",
	"discord.botKey":               "",
	"discord.channelId":            "",
	"cache.statsTtl":               "30s",
	"cache.ensTtl":                 "168h",
}

// ParseFlags reads --config from args, args excludes the program name
func ParseFlags(args []string) (string, error) {
	fs := pflag.NewFlagSet("nftmarket", pflag.ContinueOnError)
	path := fs.StringP("config", "c", DefaultPath, "path of the yaml config file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

// Load reads the yaml file at path, environment variables override file
// values, e.g. MARKETPLACE_ADDRESS for marketplace.address. An empty path
// uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, xerrors.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, xerrors.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !validator.IsValidAddress(c.Marketplace.Address) {
		return xerrors.Errorf("marketplace.address %q: %w", c.Marketplace.Address, domain.ErrInvalidAddress)
	}
	if c.Marketplace.RefreshInterval <= 0 || c.Marketplace.FetchTimeout <= 0 {
		return xerrors.Errorf("marketplace intervals must be positive: %w", domain.ErrBadParamInput)
	}
	if ttl := c.Marketplace.TxLockTTL; ttl > 0 && ttl < c.Marketplace.TxTimeout+c.Marketplace.TxPendingTimeout {
		return xerrors.Errorf("marketplace.txLockTtl %v shorter than txTimeout + txPendingTimeout: %w", ttl, domain.ErrBadParamInput)
	}
	if c.Chain.RpcURL == "" {
		return xerrors.Errorf("chain.rpcUrl is required: %w", domain.ErrBadParamInput)
	}
	return nil
}

// MarketplaceAddress returns the configured contract address in lower case
func (c *Config) MarketplaceAddress() domain.Address {
	return domain.Address(c.Marketplace.Address).ToLower()
}
