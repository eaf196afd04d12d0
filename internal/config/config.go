package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env          string
	Addr         string
	PublicURL    *url.URL
	DBDSN        string
	CookieSecret string
	SessionTTL   time.Duration
	LogLevel     string

	AdminBootstrapEmail    string
	AdminBootstrapName     string
	AdminBootstrapPassword string

	SMTP           SMTP
	ContactToEmail string

	// Contact-form throttle: at most ContactRateMax sends per submitter
	// within ContactRateWindow.
	ContactRateWindow time.Duration
	ContactRateMax    int

	GoogleClientID string
	AppleServiceID string

	MeetingSDKKey    string
	MeetingSDKSecret string
}

type SMTP struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSMode   string
	FromName  string
	FromEmail string
}

func (s SMTP) Configured() bool { return s.Host != "" && s.FromEmail != "" }

// Load reads an optional .env file from the working directory before
// reading the environment. Variables already set in the environment win.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := loadDotEnvFile(".env", os.Setenv, os.Getenv); err != nil {
			return Config{}, fmt.Errorf(".env: %w", err)
		}
	}
	return LoadFromEnv(os.Getenv)
}

func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if len(v) >= 2 {
			if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
				v = v[1 : len(v)-1]
			}
		}
		if getenv(k) != "" {
			continue
		}
		if err := setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:          getenv("APP_ENV"),
		Addr:         getenv("APP_ADDR"),
		DBDSN:        getenv("APP_DB_DSN"),
		LogLevel:     getenv("APP_LOG_LEVEL"),
		CookieSecret: getenv("APP_COOKIE_SECRET"),

		ContactToEmail: strings.TrimSpace(strings.ToLower(getenv("APP_CONTACT_TO_EMAIL"))),

		GoogleClientID: getenv("APP_GOOGLE_CLIENT_ID"),
		AppleServiceID: getenv("APP_APPLE_SERVICE_ID"),

		MeetingSDKKey:    getenv("APP_MEETING_SDK_KEY"),
		MeetingSDKSecret: getenv("APP_MEETING_SDK_SECRET"),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	ttlRaw := getenv("APP_SESSION_TTL")
	if ttlRaw == "" {
		cfg.SessionTTL = 7 * 24 * time.Hour
	} else {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_SESSION_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("APP_SESSION_TTL: must be > 0")
		}
		cfg.SessionTTL = ttl
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	var err error
	cfg.ContactRateWindow, err = durationOr(getenv, "APP_CONTACT_RATE_WINDOW", time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.ContactRateMax, err = intOr(getenv, "APP_CONTACT_RATE_MAX", 3)
	if err != nil {
		return Config{}, err
	}
	if cfg.ContactRateMax <= 0 {
		return Config{}, errors.New("APP_CONTACT_RATE_MAX: must be > 0")
	}

	cfg.SMTP, err = loadSMTP(getenv)
	if err != nil {
		return Config{}, err
	}

	cfg.AdminBootstrapEmail = strings.TrimSpace(strings.ToLower(getenv("APP_ADMIN_BOOTSTRAP_EMAIL")))
	cfg.AdminBootstrapName = strings.TrimSpace(getenv("APP_ADMIN_BOOTSTRAP_NAME"))
	cfg.AdminBootstrapPassword = getenv("APP_ADMIN_BOOTSTRAP_PASSWORD")

	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapEmail == "" {
		return Config{}, errors.New("APP_ADMIN_BOOTSTRAP_EMAIL: required when APP_ADMIN_BOOTSTRAP_PASSWORD is set")
	}
	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapName == "" {
		cfg.AdminBootstrapName = "Admin"
	}

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.CookieSecret) < 32 {
			return Config{}, errors.New("APP_COOKIE_SECRET: must be at least 32 bytes in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) CookieSecure() bool {
	if c.PublicURL != nil {
		return c.PublicURL.Scheme == "https"
	}
	return c.IsProd()
}

func loadSMTP(getenv func(string) string) (SMTP, error) {
	s := SMTP{
		Host:      getenv("APP_SMTP_HOST"),
		Username:  getenv("APP_SMTP_USERNAME"),
		Password:  getenv("APP_SMTP_PASSWORD"),
		TLSMode:   getenv("APP_SMTP_TLS_MODE"),
		FromName:  strings.TrimSpace(getenv("APP_SMTP_FROM_NAME")),
		FromEmail: strings.TrimSpace(strings.ToLower(getenv("APP_SMTP_FROM_EMAIL"))),
	}

	port, err := intOr(getenv, "APP_SMTP_PORT", 587)
	if err != nil {
		return SMTP{}, err
	}
	if port <= 0 || port > 65535 {
		return SMTP{}, errors.New("APP_SMTP_PORT: must be a valid port")
	}
	s.Port = port

	switch s.TLSMode {
	case "", "starttls", "tls", "none":
	default:
		return SMTP{}, errors.New("APP_SMTP_TLS_MODE: must be one of starttls, tls, none")
	}

	return s, nil
}

func durationOr(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be > 0", key)
	}
	return d, nil
}

func intOr(getenv func(string) string, key string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
