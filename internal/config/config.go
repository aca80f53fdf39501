package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort       string
	BaseURL        string
	RedirectMarker string
	CacheTTL       time.Duration
	SweepInterval  time.Duration
	RequestTimeout time.Duration
	MaxRedirects   int
	FetchAttempts  int
	FetchBackoff   time.Duration
	RateLimit      float64
	RateBurst      int
	BloomExpected  uint
	BloomFPRate    float64
	LogLevel       string
	LogFile        string
}

var defaults = map[string]any{
	"HTTP_PORT":            "8080",
	"BASE_URL":             "https://catalog.example",
	"REDIRECT_MARKER":      "/redirect/",
	"CACHE_TTL":            time.Hour,
	"CACHE_SWEEP_INTERVAL": 2 * time.Minute,
	"REQUEST_TIMEOUT":      30 * time.Second,
	"MAX_REDIRECTS":        10,
	"FETCH_ATTEMPTS":       3,
	"FETCH_BACKOFF":        time.Second,
	"RATE_LIMIT":           2.0,
	"RATE_BURST":           4,
	"BLOOM_EXPECTED":       100_000,
	"BLOOM_FP_RATE":        0.001,
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
}

// Load reads .env, an optional config.yaml in the working directory and
// the environment. Invalid files fall back to defaults.
func Load() *Config {
	cfg, err := LoadFile("")
	if err != nil {
		cfg, _ = LoadFile("-")
	}
	return cfg
}

// LoadFile is Load with an explicit config file. An empty path looks for
// config.yaml in the working directory; "-" skips config files entirely.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch path {
	case "-":
	case "":
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	default:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return &Config{
		HTTPPort:       v.GetString("HTTP_PORT"),
		BaseURL:        strings.TrimSuffix(v.GetString("BASE_URL"), "/"),
		RedirectMarker: v.GetString("REDIRECT_MARKER"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		SweepInterval:  v.GetDuration("CACHE_SWEEP_INTERVAL"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		MaxRedirects:   v.GetInt("MAX_REDIRECTS"),
		FetchAttempts:  v.GetInt("FETCH_ATTEMPTS"),
		FetchBackoff:   v.GetDuration("FETCH_BACKOFF"),
		RateLimit:      v.GetFloat64("RATE_LIMIT"),
		RateBurst:      v.GetInt("RATE_BURST"),
		BloomExpected:  v.GetUint("BLOOM_EXPECTED"),
		BloomFPRate:    v.GetFloat64("BLOOM_FP_RATE"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
	}, nil
}
