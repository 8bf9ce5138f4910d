package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the service configuration, read from the environment.
type Config struct {
	ListenAddr    string        `env:"MS_LISTEN_ADDR" env-default:":8080"`
	DBPath        string        `env:"MS_DB_PATH" env-default:"/data/mediastudio.db"`
	BaseURL       string        `env:"MS_BASE_URL" env-default:"http://localhost:8080"`
	JWTSecret     string        `env:"MS_JWT_SECRET" env-default:"dev-secret-change-me"`
	SessionTTL    time.Duration `env:"MS_SESSION_TTL" env-default:"168h"`
	SecureCookies bool          `env:"MS_SECURE_COOKIES" env-default:"false"`

	// CDN upload-auth key pair.
	CDNPublicKey   string        `env:"MS_CDN_PUBLIC_KEY" env-default:""`
	CDNPrivateKey  string        `env:"MS_CDN_PRIVATE_KEY" env-default:""`
	UploadTokenTTL time.Duration `env:"MS_UPLOAD_TOKEN_TTL" env-default:"30m"`

	// Billing provider.
	StripeSecretKey     string `env:"MS_STRIPE_SECRET_KEY" env-default:""`
	StripeWebhookSecret string `env:"MS_STRIPE_WEBHOOK_SECRET" env-default:""`
	StripePriceID       string `env:"MS_STRIPE_PRICE_ID" env-default:""`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}
