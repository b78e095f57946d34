package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrInvalidBaseURL   = errors.New("error getting CF_BASE_URL: variable not specified or is not an absolute URL")
	ErrEmptyNtfyTopic   = errors.New("error getting CF_NTFY_TOPIC: variable not specified or contains an empty string")
	ErrEmptyProductIDs  = errors.New("error getting CF_PRODUCT_IDS: variable not specified or contains no ids")
	ErrInvalidProductID = errors.New("error parsing CF_PRODUCT_IDS: ids must be positive integers")
)

type Config struct {
	Env           string        // Env is the current environment: local, development, production.
	BaseURL       *url.URL      // BaseURL is the storefront root.
	ProductIDs    []int64       // ProductIDs are the tracked product ids.
	PollInterval  time.Duration // PollInterval separates two successful checks.
	RetryInterval time.Duration // RetryInterval follows a failed check.
	StoragePath   string        // StoragePath is the SQLite file holding Telegram subscriptions.
	Shop          Shop
	Ntfy          Ntfy
	Tg            Telegram
}

type Shop struct {
	Country     string
	Currency    string
	UserAgent   string
	MaxPages    int
	HTTPTimeout time.Duration
}

type Ntfy struct {
	URL   string
	Topic string
	Token string
}

type Telegram struct {
	Token   string        // Token is an unique telgram bot token. Empty disables the bot.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

// Enabled reports whether a bot token was configured.
func (t Telegram) Enabled() bool {
	return t.Token != ""
}

// MustLoad loads the configuration from environment variables (and an optional .env file)
// and returns a Config struct. It panics on missing or invalid required values.
func MustLoad() *Config {
	// Values already present in the environment win over the .env file.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CF")
	v.AutomaticEnv()

	// optional args
	v.SetDefault("ENV", "production")
	v.SetDefault("NTFY_URL", "https://ntfy.sh")
	v.SetDefault("POLL_INTERVAL", "50s")
	v.SetDefault("RETRY_INTERVAL", "20s")
	v.SetDefault("COUNTRY", "GB")
	v.SetDefault("CURRENCY", "GBP")
	v.SetDefault("MAX_PAGES", 5)
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("TELEGRAM_TIMEOUT", "15s")
	v.SetDefault("STORAGE_PATH", "./storage/subscriptions.db")

	baseURL, err := url.Parse(v.GetString("BASE_URL"))
	if err != nil || !baseURL.IsAbs() || baseURL.Host == "" {
		panic(ErrInvalidBaseURL)
	}

	if v.GetString("NTFY_TOPIC") == "" {
		panic(ErrEmptyNtfyTopic)
	}

	productIDs, err := parseProductIDs(v.GetString("PRODUCT_IDS"))
	if err != nil {
		panic(err)
	}

	return &Config{
		Env:           v.GetString("ENV"),
		BaseURL:       baseURL,
		ProductIDs:    productIDs,
		PollInterval:  v.GetDuration("POLL_INTERVAL"),
		RetryInterval: v.GetDuration("RETRY_INTERVAL"),
		StoragePath:   v.GetString("STORAGE_PATH"),
		Shop: Shop{
			Country:     v.GetString("COUNTRY"),
			Currency:    v.GetString("CURRENCY"),
			UserAgent:   v.GetString("USER_AGENT"),
			MaxPages:    v.GetInt("MAX_PAGES"),
			HTTPTimeout: v.GetDuration("HTTP_TIMEOUT"),
		},
		Ntfy: Ntfy{
			URL:   v.GetString("NTFY_URL"),
			Topic: v.GetString("NTFY_TOPIC"),
			Token: v.GetString("NTFY_TOKEN"),
		},
		Tg: Telegram{
			Token:   v.GetString("TELEGRAM_TOKEN"),
			Timeout: v.GetDuration("TELEGRAM_TIMEOUT"),
		},
	}
}

// parseProductIDs accepts ids separated by commas and/or whitespace. Duplicates are dropped.
func parseProductIDs(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, ErrEmptyProductIDs
	}

	seen := make(map[int64]struct{}, len(fields))
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProductID, f)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}
