package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-print"
	"github.com/joho/godotenv"
)

const (
	TransportHeader = "header"
	TransportCookie = "cookie"
)

// MinProductionSecretLength is the shortest JWT_SECRET accepted outside development
const MinProductionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env       string `env:"APP_ENV" envDefault:"development" json:"env"`
	Host      string `env:"HOST" json:"host"`
	Port      int    `env:"PORT" envDefault:"3000" json:"port"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" json:"log_level"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" json:"log_format"`

	JWTSecret       string            `env:"JWT_SECRET,required" json:"-"`
	JWTExpiration   time.Duration     `env:"JWT_EXPIRATION" envDefault:"1h" json:"jwt_expiration"`
	JWTIssuer       string            `env:"JWT_ISSUER" json:"jwt_issuer,omitempty"`
	JWTAudience     []string          `env:"JWT_AUDIENCE" envSeparator:"," json:"jwt_audience,omitempty"`
	JWTKeyID        string            `env:"JWT_KEY_ID" json:"jwt_key_id,omitempty"`
	JWTPreviousKeys map[string]string `env:"JWT_PREVIOUS_KEYS" envSeparator:"," envKeyValSeparator:":" json:"-"`

	// TokenTransport selects how the access token travels: header or cookie.
	TokenTransport   string        `env:"AUTH_TOKEN_TRANSPORT" envDefault:"header" json:"token_transport"`
	CookieName       string        `env:"AUTH_COOKIE_NAME" envDefault:"access_token" json:"cookie_name"`
	CookieMaxAge     time.Duration `env:"AUTH_COOKIE_MAX_AGE" envDefault:"360s" json:"cookie_max_age"`
	CookieSameSite   string        `env:"AUTH_COOKIE_SAME_SITE" envDefault:"Lax" json:"cookie_same_site"`
	CookieSecure     bool          `env:"AUTH_COOKIE_SECURE" envDefault:"true" json:"cookie_secure"`
	DeterministicIDs bool          `env:"AUTH_DETERMINISTIC_IDS" json:"deterministic_ids"`
	SigninRateLimit  int           `env:"SIGNIN_RATE_LIMIT" envDefault:"0" json:"signin_rate_limit"`

	BlogStore string   `env:"BLOG_STORE" envDefault:"memory" json:"blog_store"`
	DB        DBConfig `envPrefix:"DB_" json:"db"`
}

// DBConfig holds database connection parameters
type DBConfig struct {
	Driver       string `env:"DRIVER" envDefault:"sqlite" json:"driver"`
	DSN          string `env:"DSN" json:"-"`
	Host         string `env:"HOST" envDefault:"localhost" json:"host"`
	Port         int    `env:"PORT" json:"port,omitempty"`
	User         string `env:"USER" json:"user,omitempty"`
	Password     string `env:"PW" json:"-"`
	Name         string `env:"NAME" envDefault:"boards" json:"name"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"10" json:"max_open_conns"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" envDefault:"true" json:"auto_migrate"`
	Debug        bool   `env:"DEBUG" json:"debug"`
}

type loadOptions struct {
	files   []string
	environ map[string]string
}

// LoadOption customizes Load
type LoadOption func(*loadOptions)

// WithDotEnv loads the given files before parsing. Missing files are ignored.
func WithDotEnv(files ...string) LoadOption {
	return func(o *loadOptions) {
		o.files = append(o.files, files...)
	}
}

// WithEnvironment parses from the given map instead of the process env
func WithEnvironment(environ map[string]string) LoadOption {
	return func(o *loadOptions) {
		o.environ = environ
	}
}

// Load parses environment variables and returns a validated Config.
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	for _, file := range o.files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := &Config{}
	envOpts := env.Options{}
	if o.environ != nil {
		envOpts.Environment = o.environ
	}

	if err := env.ParseWithOptions(cfg, envOpts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values env tags cannot express
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if !c.IsDevelopment() && len(c.JWTSecret) < MinProductionSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes long outside development", MinProductionSecretLength))
	}

	if c.JWTExpiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION must be a positive duration"))
	}

	if !slices.Contains([]string{TransportHeader, TransportCookie}, c.TokenTransport) {
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_TRANSPORT must be %q or %q, got %q", TransportHeader, TransportCookie, c.TokenTransport))
	}

	if c.TokenTransport == TransportCookie && strings.TrimSpace(c.CookieName) == "" {
		errs = append(errs, errors.New("AUTH_COOKIE_NAME is required for cookie transport"))
	}

	if !slices.Contains([]string{"Strict", "Lax", "None"}, c.CookieSameSite) {
		errs = append(errs, fmt.Errorf("AUTH_COOKIE_SAME_SITE must be Strict, Lax or None, got %q", c.CookieSameSite))
	}

	if !slices.Contains([]string{"sqlite", "postgres", "mysql"}, c.DB.Driver) {
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DB.Driver))
	}

	if !slices.Contains([]string{"memory", "database"}, c.BlogStore) {
		errs = append(errs, fmt.Errorf("BLOG_STORE must be memory or database, got %q", c.BlogStore))
	}

	for kid, secret := range c.JWTPreviousKeys {
		if kid == "" || secret == "" {
			errs = append(errs, errors.New("JWT_PREVIOUS_KEYS entries must look like kid:secret"))
			break
		}
	}

	return errors.Join(errs...)
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Dump renders the config without secrets, for startup debugging
func (c Config) Dump() string {
	return print.MaybePrettyJSON(c)
}

func (c Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c Config) GetSigningMethod() string {
	return "HS256"
}

func (c Config) GetContextKey() string {
	return "user"
}

func (c Config) GetTokenExpiration() time.Duration {
	return c.JWTExpiration
}

// GetTokenLookup returns the single extraction source for the configured transport
func (c Config) GetTokenLookup() string {
	if c.TokenTransport == TransportCookie {
		return "cookie:" + c.CookieName
	}
	return "header:Authorization"
}

func (c Config) GetAuthScheme() string {
	return "Bearer"
}

func (c Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c Config) GetAudience() []string {
	return c.JWTAudience
}

func (c Config) GetTokenTransport() string {
	return c.TokenTransport
}

func (c Config) GetCookieName() string {
	return c.CookieName
}

func (c Config) GetCookieMaxAge() time.Duration {
	return c.CookieMaxAge
}

func (c Config) GetCookieSameSite() string {
	return c.CookieSameSite
}

func (c Config) GetCookieSecure() bool {
	return c.CookieSecure
}
