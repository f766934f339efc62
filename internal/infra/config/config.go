// internal/infra/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all environment-driven settings for the service.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// GCP / Firestore
	ProjectID       string `env:"GCP_PROJECT_ID" envDefault:"savora-development"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Firebase Auth (falls back to ProjectID when unset)
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`

	// Postgres back office (order records). Empty disables recording.
	PostgresDSN string `env:"POSTGRES_DSN"`

	// Remote endpoints
	DeliveryAPIBaseURL string `env:"DELIVERY_API_BASE_URL"`
	OrderAPIBaseURL    string `env:"ORDER_API_BASE_URL"`
	OrderAPIToken      string `env:"ORDER_API_TOKEN"`

	// Checkout tuning
	ResolveTimeout time.Duration `env:"DELIVERY_RESOLVE_TIMEOUT" envDefault:"5s"`

	// Cart persistence debounce window
	PersistDebounce time.Duration `env:"CART_PERSIST_DEBOUNCE" envDefault:"500ms"`

	// Mail. The API key may come directly from the env or from Secret Manager
	// (SENDGRID_SECRET_NAME wins when both are set).
	SendGridAPIKey     string `env:"SENDGRID_API_KEY"`
	SendGridSecretName string `env:"SENDGRID_SECRET_NAME"`
	MailFrom           string `env:"MAIL_FROM" envDefault:"orders@savora.app"`

	// GCS receipt archive. Empty disables archiving.
	ReceiptBucket string `env:"RECEIPT_BUCKET"`

	// CORS
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.FirebaseProjectID == "" {
		cfg.FirebaseProjectID = cfg.ProjectID
	}
	return cfg, nil
}
