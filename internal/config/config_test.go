package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost:5432/catalogo")
	t.Setenv("STRIPE_PRICE_MONTHLY", "price_m")
	t.Setenv("STRIPE_PRICE_QUARTERLY", "price_q")
	t.Setenv("STRIPE_PRICE_ANNUAL", "price_a")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("PUBLIC_SITE_URL", "https://catalogomaker.com.br")
	t.Setenv("FIREBASE_PROJECT_ID", "catalogo-maker")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(7), cfg.StripeMonthlyTrialDays)
	assert.Equal(t, 3600, cfg.IdentityKeysTTLSec)
	assert.Equal(t, 300, cfg.IdentityUnknownKIDLimitSec)
	assert.False(t, cfg.StripeLiveMode)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	require.NoError(t, os.Unsetenv("STRIPE_WEBHOOK_SECRET"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_WEBHOOK_SECRET")
}

func TestStripeSecretKeyByMode(t *testing.T) {
	cfg := &Config{StripeSecretKeyTest: "sk_test_1", StripeSecretKeyLive: "sk_live_1"}
	assert.Equal(t, "sk_test_1", cfg.StripeSecretKey())
	cfg.StripeLiveMode = true
	assert.Equal(t, "sk_live_1", cfg.StripeSecretKey())
}

func TestPriceForAndTrial(t *testing.T) {
	cfg := &Config{
		StripePriceMonthly:     "price_m",
		StripePriceQuarterly:   "price_q",
		StripePriceAnnual:      "price_a",
		StripeMonthlyTrialDays: 14,
	}

	price, ok := cfg.PriceFor(PlanQuarterly)
	require.True(t, ok)
	assert.Equal(t, "price_q", price)

	_, ok = cfg.PriceFor(PlanTier(9))
	assert.False(t, ok)

	assert.Equal(t, int64(14), cfg.TrialDaysFor(PlanMonthly))
	assert.Zero(t, cfg.TrialDaysFor(PlanAnnual))
}

func TestPlanTierValid(t *testing.T) {
	assert.True(t, PlanMonthly.Valid())
	assert.True(t, PlanAnnual.Valid())
	assert.False(t, PlanTier(0).Valid())
	assert.False(t, PlanTier(4).Valid())
	assert.Equal(t, "quarterly", PlanQuarterly.String())
}

func TestIsSecretRef(t *testing.T) {
	assert.True(t, IsSecretRef("secretmanager://stripe-live-key"))
	assert.False(t, IsSecretRef("sk_live_123"))
}
