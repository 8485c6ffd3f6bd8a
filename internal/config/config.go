// Package config loads service configuration from the environment, with a
// .env file as optional overlay.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"solana-flex-card/internal/domain"
)

// Defaults mirror the token this service was built for. Everything is
// overridable through the environment.
const (
	DefaultRPCEndpoint        = "https://api.mainnet-beta.solana.com"
	DefaultWSEndpoint         = "wss://api.mainnet-beta.solana.com"
	DefaultDexScreenerBaseURL = "https://api.dexscreener.com/latest/dex/tokens"
	DefaultTokenMint          = "HgBRWfYxEfvPhtqkaeymCQtHCrKE46qQ43pKe8HCpump"
	DefaultTokenTicker        = "$BERT"
	DefaultTokenName          = "Bertram The Pomeranian"
	DefaultTokenDecimals      = 6
	DefaultCardWidth          = 800
	DefaultCardHeight         = 480
	DefaultCooldown           = 15 * time.Second
	DefaultListenAddr         = ":8080"
	DefaultMetricsAddr        = ":9090"
	DefaultRefreshSpec        = "@every 5m"
	DefaultTagline            = "www.bert.global  |  /flex your bag"
	DefaultScanPageLimit      = 1000
	DefaultScanMaxPages       = 3
)

// Config is the full runtime configuration.
type Config struct {
	// Endpoints
	RPCEndpoint        string
	WSEndpoint         string
	DexScreenerBaseURL string

	// Token
	TokenMint     string
	TokenTicker   string
	TokenName     string
	TokenDecimals int

	// Card
	CardWidth  int
	CardHeight int
	Tagline    string

	// Behavior
	Cooldown      time.Duration
	ScanPageLimit int
	ScanMaxPages  int
	RefreshSpec   string
	WatchHolders  bool

	// Tiers
	Thresholds domain.TierThresholds

	// Server
	ListenAddr  string
	MetricsAddr string
	LogLevel    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first without overriding already-set variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		RPCEndpoint:        envStr("SOLANA_RPC_URL", DefaultRPCEndpoint),
		WSEndpoint:         envStr("SOLANA_WS_URL", DefaultWSEndpoint),
		DexScreenerBaseURL: envStr("DEXSCREENER_BASE_URL", DefaultDexScreenerBaseURL),
		TokenMint:          envStr("TOKEN_MINT", DefaultTokenMint),
		TokenTicker:        envStr("TOKEN_TICKER", DefaultTokenTicker),
		TokenName:          envStr("TOKEN_NAME", DefaultTokenName),
		Tagline:            envStr("CARD_TAGLINE", DefaultTagline),
		RefreshSpec:        envStr("SNAPSHOT_REFRESH_SPEC", DefaultRefreshSpec),
		ListenAddr:         envStr("LISTEN_ADDR", DefaultListenAddr),
		MetricsAddr:        envStr("METRICS_ADDR", DefaultMetricsAddr),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		Thresholds:         domain.DefaultTierThresholds(),
	}

	var err error
	if cfg.TokenDecimals, err = envInt("TOKEN_DECIMALS", DefaultTokenDecimals); err != nil {
		return Config{}, err
	}
	if cfg.CardWidth, err = envInt("CARD_WIDTH", DefaultCardWidth); err != nil {
		return Config{}, err
	}
	if cfg.CardHeight, err = envInt("CARD_HEIGHT", DefaultCardHeight); err != nil {
		return Config{}, err
	}
	if cfg.ScanPageLimit, err = envInt("SCAN_PAGE_LIMIT", DefaultScanPageLimit); err != nil {
		return Config{}, err
	}
	if cfg.ScanMaxPages, err = envInt("SCAN_MAX_PAGES", DefaultScanMaxPages); err != nil {
		return Config{}, err
	}
	if cfg.Cooldown, err = envDuration("CARD_COOLDOWN", DefaultCooldown); err != nil {
		return Config{}, err
	}
	if cfg.WatchHolders, err = envBool("WATCH_HOLDERS", false); err != nil {
		return Config{}, err
	}

	if cfg.Thresholds.Whale, err = envDecimal("TIER_WHALE_MIN", cfg.Thresholds.Whale); err != nil {
		return Config{}, err
	}
	if cfg.Thresholds.Shark, err = envDecimal("TIER_SHARK_MIN", cfg.Thresholds.Shark); err != nil {
		return Config{}, err
	}
	if cfg.Thresholds.Dolphin, err = envDecimal("TIER_DOLPHIN_MIN", cfg.Thresholds.Dolphin); err != nil {
		return Config{}, err
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.TokenMint == "" {
		return fmt.Errorf("config: TOKEN_MINT must not be empty")
	}
	if c.TokenDecimals < 0 || c.TokenDecimals > 18 {
		return fmt.Errorf("config: TOKEN_DECIMALS out of range: %d", c.TokenDecimals)
	}
	if c.CardWidth <= 0 || c.CardHeight <= 0 {
		return fmt.Errorf("config: invalid card dimensions %dx%d", c.CardWidth, c.CardHeight)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("config: negative cooldown %s", c.Cooldown)
	}
	if c.ScanPageLimit < 1 || c.ScanPageLimit > 1000 {
		return fmt.Errorf("config: SCAN_PAGE_LIMIT out of range: %d", c.ScanPageLimit)
	}
	if c.ScanMaxPages < 1 {
		return fmt.Errorf("config: SCAN_MAX_PAGES must be positive: %d", c.ScanMaxPages)
	}
	return nil
}

// MarketEndpoint returns the DexScreener URL for the configured mint.
func (c Config) MarketEndpoint() string {
	return c.DexScreenerBaseURL + "/" + c.TokenMint
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func envDecimal(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
