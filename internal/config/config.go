package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	AuthMode       string   `mapstructure:"AUTH_MODE"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL    string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER or JWT_SECRET.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise, the mode is inferred:
//   - ENV=development → "development" (no auth, all requests get admin)
//   - AUTH_ISSUER set → "external" (Keycloak, Auth0, etc.)
//   - Otherwise       → "hmac" (shared-secret tokens issued by the chat backend)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	if c.AuthIssuer != "" {
		return "external"
	}
	return "hmac"
}

// Validate checks that the configuration is safe to run. In non-development
// modes real JWT authentication must be configured: either an external
// issuer or a shared HMAC secret.
func (c *Config) Validate() error {
	switch mode := c.ResolvedAuthMode(); mode {
	case "development":
	case "external":
		if c.AuthIssuer == "" {
			return fmt.Errorf(
				"AUTH_ISSUER must be set when AUTH_MODE is \"external\" (current ENV=%q). "+
					"Refusing to start without authentication configuration", c.Env)
		}
	case "hmac":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is \"hmac\"")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be \"development\", \"hmac\", or \"external\", got %q", mode)
	}
	return nil
}
