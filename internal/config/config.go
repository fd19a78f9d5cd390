package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// PlanTier is the recurrence type a merchant picks when subscribing.
type PlanTier int

const (
	PlanMonthly   PlanTier = 1
	PlanQuarterly PlanTier = 2
	PlanAnnual    PlanTier = 3
)

// Valid reports whether t is one of the known recurrence types.
func (t PlanTier) Valid() bool {
	return t >= PlanMonthly && t <= PlanAnnual
}

func (t PlanTier) String() string {
	switch t {
	case PlanMonthly:
		return "monthly"
	case PlanQuarterly:
		return "quarterly"
	case PlanAnnual:
		return "annual"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// SecretRefPrefix marks config values that must be resolved through Secret Manager.
const SecretRefPrefix = "secretmanager://"

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	// Stripe
	StripeSecretKeyTest     string `envconfig:"STRIPE_SECRET_KEY_TEST"`
	StripeSecretKeyLive     string `envconfig:"STRIPE_SECRET_KEY_LIVE"`
	StripeLiveMode          bool   `envconfig:"STRIPE_LIVE_MODE" default:"false"`
	StripePriceMonthly      string `envconfig:"STRIPE_PRICE_MONTHLY" required:"true"`
	StripePriceQuarterly    string `envconfig:"STRIPE_PRICE_QUARTERLY" required:"true"`
	StripePriceAnnual       string `envconfig:"STRIPE_PRICE_ANNUAL" required:"true"`
	StripeMonthlyTrialDays  int64  `envconfig:"STRIPE_MONTHLY_TRIAL_DAYS" default:"7"`
	StripeWebhookSecret     string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	StripeWebhookEventTTLHr int    `envconfig:"STRIPE_WEBHOOK_EVENT_TTL_HOURS" default:"72"`

	PublicSiteURL string `envconfig:"PUBLIC_SITE_URL" required:"true"`

	// WhatsApp session API
	WhatsAppAPIBaseURL string `envconfig:"WHATSAPP_API_BASE_URL"`
	WhatsAppAPIKey     string `envconfig:"WHATSAPP_API_KEY"`

	// Identity provider (Firebase Auth)
	FirebaseProjectID          string `envconfig:"FIREBASE_PROJECT_ID" required:"true"`
	IdentityJWKSURL            string `envconfig:"IDENTITY_JWKS_URL" default:"https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"`
	IdentityKeysTTLSec         int    `envconfig:"IDENTITY_KEYS_TTL_SEC" default:"3600"`
	IdentityUnknownKIDLimitSec int    `envconfig:"IDENTITY_UNKNOWN_KID_LIMIT_SEC" default:"300"`

	// Redis (webhook dedupe and per-account locks). Empty address keeps both in-process.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Google Cloud
	GCPProjectID             string `envconfig:"GCP_PROJECT_ID"`
	GoogleCredentialsFile    string `envconfig:"GOOGLE_CREDENTIALS_FILE"`
	PubSubEmulatorHost       string `envconfig:"PUBSUB_EMULATOR_HOST"`
	PubSubAccountEventsTopic string `envconfig:"PUBSUB_ACCOUNT_EVENTS_TOPIC" default:"account-events"`

	// Banner storage (any S3-compatible service)
	S3URL           string `envconfig:"S3_URL"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Region        string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey     string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string `envconfig:"S3_SECRET_KEY"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StripeSecretKey returns the live key when live mode is on, the test key otherwise.
func (c *Config) StripeSecretKey() string {
	if c.StripeLiveMode {
		return c.StripeSecretKeyLive
	}
	return c.StripeSecretKeyTest
}

// PriceFor maps a plan tier to its configured Stripe price identifier.
func (c *Config) PriceFor(tier PlanTier) (string, bool) {
	var price string
	switch tier {
	case PlanMonthly:
		price = c.StripePriceMonthly
	case PlanQuarterly:
		price = c.StripePriceQuarterly
	case PlanAnnual:
		price = c.StripePriceAnnual
	}
	return price, price != ""
}

// TrialDaysFor returns the promotional trial for a tier. Only the monthly tier has one.
func (c *Config) TrialDaysFor(tier PlanTier) int64 {
	if tier == PlanMonthly {
		return c.StripeMonthlyTrialDays
	}
	return 0
}

// BannerStorageEnabled reports whether the S3 settings needed for banner uploads are present.
func (c *Config) BannerStorageEnabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// SecretFields returns pointers to every field that may hold a Secret Manager reference.
func (c *Config) SecretFields() map[string]*string {
	return map[string]*string{
		"STRIPE_SECRET_KEY_TEST": &c.StripeSecretKeyTest,
		"STRIPE_SECRET_KEY_LIVE": &c.StripeSecretKeyLive,
		"STRIPE_WEBHOOK_SECRET":  &c.StripeWebhookSecret,
		"WHATSAPP_API_KEY":       &c.WhatsAppAPIKey,
		"S3_SECRET_KEY":          &c.S3SecretKey,
		"REDIS_PASSWORD":         &c.RedisPassword,
	}
}

// IsSecretRef reports whether v points at Secret Manager instead of holding the value.
func IsSecretRef(v string) bool {
	return strings.HasPrefix(v, SecretRefPrefix)
}
