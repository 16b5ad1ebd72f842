// Package config loads the service settings from the environment.
//
// Settings are read once at startup and passed explicitly to the packages
// that need them. A .env file in the working directory is honoured, but
// variables already present in the environment always take precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. Lookups are case sensitive.
const (
	EnvAppName         = "APP_NAME"
	EnvAppVersion      = "APP_VERSION"
	EnvDebug           = "DEBUG"
	EnvHost            = "HOST"
	EnvPort            = "PORT"
	EnvAPIPrefix       = "API_V1_STR"
	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvRateLimit       = "RATE_LIMIT"
	EnvRateLimitBurst  = "RATE_LIMIT_BURST"
	EnvCORSOrigins     = "CORS_ORIGINS"
	EnvDocsUI          = "DOCS_UI"
)

// DefaultEnvFile is read when present unless WithEnvFile overrides it.
const DefaultEnvFile = ".env"

// Settings is the process-wide configuration.
type Settings struct {
	AppName    string `json:"appName" yaml:"appName"`
	AppVersion string `json:"appVersion" yaml:"appVersion"`
	Debug      bool   `json:"debug" yaml:"debug"`

	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`

	// APIPrefix is where the dish API is mounted. Empty means the root.
	APIPrefix string `json:"apiPrefix" yaml:"apiPrefix"`

	RequestTimeout  time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`

	// RateLimit is requests per second; zero disables limiting.
	RateLimit      float64 `json:"rateLimit" yaml:"rateLimit"`
	RateLimitBurst int     `json:"rateLimitBurst" yaml:"rateLimitBurst"`

	CORSOrigins []string `json:"corsOrigins" yaml:"corsOrigins"`
	DocsUI      string   `json:"docsUI" yaml:"docsUI"`
}

// Default returns the settings used when no variable is set.
func Default() Settings {
	return Settings{
		AppName:         "Mi FastAPI App",
		AppVersion:      "1.0.0",
		Debug:           true,
		Host:            "0.0.0.0",
		Port:            8000,
		APIPrefix:       "/api/v1",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"*"},
		DocsUI:          "stoplight",
	}
}

// Option adjusts how Load resolves settings.
type Option func(*loader)

type loader struct {
	envFile  string
	required bool
	lookup   func(string) (string, bool)
}

// WithEnvFile reads path instead of DefaultEnvFile. Unlike the default file,
// an explicitly named file must exist.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		if path != "" {
			l.envFile = path
			l.required = true
		}
	}
}

// WithoutEnvFile skips dotenv loading entirely.
func WithoutEnvFile() Option {
	return func(l *loader) {
		l.envFile = ""
		l.required = false
	}
}

// WithLookup replaces os.LookupEnv. Intended for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// Load builds Settings from defaults, the optional env file and the process
// environment. Any malformed value is reported as an error naming the
// variable.
func Load(opts ...Option) (*Settings, error) {
	l := &loader{
		envFile: DefaultEnvFile,
		lookup:  os.LookupEnv,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	if l.envFile != "" {
		// godotenv.Load never overrides variables that are already set.
		if err := godotenv.Load(l.envFile); err != nil {
			if l.required || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: load env file %q: %w", l.envFile, err)
			}
		}
	}

	s := Default()
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	s.AppName = l.str(EnvAppName, s.AppName)
	s.AppVersion = l.str(EnvAppVersion, s.AppVersion)
	s.Host = l.str(EnvHost, s.Host)
	s.APIPrefix = NormalizePrefix(l.str(EnvAPIPrefix, s.APIPrefix))
	s.DocsUI = strings.ToLower(l.str(EnvDocsUI, s.DocsUI))

	var err error
	s.Debug, err = l.boolean(EnvDebug, s.Debug)
	collect(err)
	s.Port, err = l.integer(EnvPort, s.Port)
	collect(err)
	s.RequestTimeout, err = l.duration(EnvRequestTimeout, s.RequestTimeout)
	collect(err)
	s.ShutdownTimeout, err = l.duration(EnvShutdownTimeout, s.ShutdownTimeout)
	collect(err)
	s.RateLimit, err = l.float(EnvRateLimit, s.RateLimit)
	collect(err)
	s.RateLimitBurst, err = l.integer(EnvRateLimitBurst, s.RateLimitBurst)
	collect(err)

	if raw, ok := l.lookup(EnvCORSOrigins); ok {
		s.CORSOrigins = splitList(raw)
	}

	collect(s.Validate())

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &s, nil
}

// Validate checks cross-field constraints.
func (s Settings) Validate() error {
	var errs []error
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: %s must be between 0 and 65535, got %d", EnvPort, s.Port))
	}
	if s.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: %s must not be negative", EnvRequestTimeout))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: %s must not be negative", EnvShutdownTimeout))
	}
	if s.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("config: %s must not be negative", EnvRateLimit))
	}
	if s.RateLimitBurst < 0 {
		errs = append(errs, fmt.Errorf("config: %s must not be negative", EnvRateLimitBurst))
	}
	return errors.Join(errs...)
}

// Address returns the listen address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Mode reports "debug" or "production".
func (s Settings) Mode() string {
	if s.Debug {
		return "debug"
	}
	return "production"
}

// NormalizePrefix turns user input such as "api/v1/" into "/api/v1".
// Both "" and "/" collapse to "".
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func (l *loader) str(key, def string) string {
	if v, ok := l.lookup(key); ok {
		return v
	}
	return def
}

func (l *loader) boolean(key string, def bool) (bool, error) {
	raw, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	v, err := ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func (l *loader) integer(key string, def int) (int, error) {
	raw, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def, fmt.Errorf("config: %s: invalid integer %q", key, raw)
	}
	return v, nil
}

func (l *loader) float(key string, def float64) (float64, error) {
	raw, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def, fmt.Errorf("config: %s: invalid number %q", key, raw)
	}
	return v, nil
}

// duration accepts Go duration strings ("15s") or a bare number of seconds.
func (l *loader) duration(key string, def time.Duration) (time.Duration, error) {
	raw, ok := l.lookup(key)
	if !ok {
		return def, nil
	}
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("config: %s: invalid duration %q", key, raw)
	}
	return v, nil
}

// ParseBool accepts the spellings commonly used in env files in addition to
// the ones strconv.ParseBool understands.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
