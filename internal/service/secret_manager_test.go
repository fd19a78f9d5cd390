package service

import (
	"context"
	"errors"
	"testing"

	"github.com/catalogomaker/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretVersionName(t *testing.T) {
	assert.Equal(t, "projects/p1/secrets/stripe-key/versions/latest", secretVersionName("p1", "secretmanager://stripe-key"))
	assert.Equal(t, "projects/other/secrets/k/versions/latest", secretVersionName("p1", "secretmanager://projects/other/secrets/k"))
	assert.Equal(t, "projects/other/secrets/k/versions/3", secretVersionName("p1", "secretmanager://projects/other/secrets/k/versions/3"))
}

func TestResolveReplacesOnlyReferences(t *testing.T) {
	var asked []string
	r := &SecretResolver{projectID: "p1", access: func(_ context.Context, name string) (string, error) {
		asked = append(asked, name)
		return "whsec_resolved\n", nil
	}}
	cfg := &config.Config{
		StripeWebhookSecret: "secretmanager://webhook-secret",
		StripeSecretKeyTest: "sk_test_plain",
	}

	require.NoError(t, r.Resolve(context.Background(), cfg))
	assert.Equal(t, "whsec_resolved", cfg.StripeWebhookSecret)
	assert.Equal(t, "sk_test_plain", cfg.StripeSecretKeyTest)
	assert.Equal(t, []string{"projects/p1/secrets/webhook-secret/versions/latest"}, asked)
}

func TestResolvePropagatesAccessError(t *testing.T) {
	r := &SecretResolver{projectID: "p1", access: func(context.Context, string) (string, error) {
		return "", errors.New("permission denied")
	}}
	cfg := &config.Config{WhatsAppAPIKey: "secretmanager://wa"}
	err := r.Resolve(context.Background(), cfg)
	assert.ErrorContains(t, err, "WHATSAPP_API_KEY")
}
