package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/catalogomaker/backend/internal/config"
	"github.com/catalogomaker/backend/internal/model"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// BillingGateway is the billing provider as seen by the rest of the service.
type BillingGateway interface {
	// CreateOrReusePaymentLink returns an active link for {account, tier}, creating one only when none exists.
	CreateOrReusePaymentLink(ctx context.Context, accountID string, tier config.PlanTier) (url string, reused bool, err error)
	// CancelSubscription cancels immediately. A subscription the provider no longer knows counts as canceled.
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// VerifyWebhook checks the signature and decodes the payload into a BillingEvent.
	VerifyWebhook(payload []byte, signature string) (model.BillingEvent, error)
}

const (
	metadataUserID         = "user_id"
	metadataRecurrenceType = "recurrence_type"
)

// StripeGateway implements BillingGateway on top of a Stripe API client.
type StripeGateway struct {
	sc            *client.API
	cfg           *config.Config
	webhookSecret string
	logger        zerolog.Logger
}

// NewStripeGateway builds a gateway with its own client; backends is nil outside tests.
func NewStripeGateway(cfg *config.Config, backends *stripe.Backends, logger zerolog.Logger) *StripeGateway {
	lg := logger.With().Str("service", "StripeGateway").Logger()
	return &StripeGateway{
		sc:            client.New(cfg.StripeSecretKey(), backends),
		cfg:           cfg,
		webhookSecret: cfg.StripeWebhookSecret,
		logger:        lg,
	}
}

func (g *StripeGateway) CreateOrReusePaymentLink(ctx context.Context, accountID string, tier config.PlanTier) (string, bool, error) {
	if !tier.Valid() {
		return "", false, validationErrorf("unknown recurrence type %d", int(tier))
	}
	price, ok := g.cfg.PriceFor(tier)
	if !ok {
		return "", false, fmt.Errorf("no price configured for %s plan", tier)
	}
	recurrence := strconv.Itoa(int(tier))

	existing, err := g.findActiveLink(ctx, accountID, recurrence)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", accountID).Msg("Failed to list Stripe payment links")
		return "", false, upstream("list payment links", err)
	}
	if existing != "" {
		return existing, true, nil
	}

	metadata := map[string]string{
		metadataUserID:         accountID,
		metadataRecurrenceType: recurrence,
	}
	subData := &stripe.PaymentLinkSubscriptionDataParams{Metadata: metadata}
	if days := g.cfg.TrialDaysFor(tier); days > 0 {
		subData.TrialPeriodDays = stripe.Int64(days)
	}
	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		Metadata:         metadata,
		SubscriptionData: subData,
		AfterCompletion: &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String(string(stripe.PaymentLinkAfterCompletionTypeRedirect)),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{
				URL: stripe.String(g.cfg.PublicSiteURL + "/dashboard?checkout=success"),
			},
		},
	}
	params.Context = ctx

	link, err := g.sc.PaymentLinks.New(params)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", accountID).Str("plan", tier.String()).Msg("Failed to create Stripe payment link")
		return "", false, upstream("create payment link", err)
	}
	g.logger.Info().Str("user_id", accountID).Str("plan", tier.String()).Str("payment_link_id", link.ID).Msg("Payment link created")
	return link.URL, false, nil
}

func (g *StripeGateway) findActiveLink(ctx context.Context, accountID, recurrence string) (string, error) {
	params := &stripe.PaymentLinkListParams{Active: stripe.Bool(true)}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	i := g.sc.PaymentLinks.List(params)
	for i.Next() {
		pl := i.PaymentLink()
		if !pl.Active {
			continue
		}
		if pl.Metadata[metadataUserID] == accountID && pl.Metadata[metadataRecurrenceType] == recurrence {
			return pl.URL, nil
		}
	}
	if err := i.Err(); err != nil {
		return "", err
	}
	return "", nil
}

func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	_, err := g.sc.Subscriptions.Cancel(subscriptionID, params)
	if err == nil {
		g.logger.Info().Str("subscription_id", subscriptionID).Msg("Subscription canceled")
		return nil
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
		g.logger.Warn().Str("subscription_id", subscriptionID).Msg("Subscription already gone at Stripe, treating as canceled")
		return nil
	}
	g.logger.Error().Err(err).Str("subscription_id", subscriptionID).Msg("Failed to cancel Stripe subscription")
	return upstream("cancel subscription", err)
}

func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (model.BillingEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("Webhook signature verification failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return decodeBillingEvent(event), nil
}

type checkoutSessionPayload struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	Subscription  json.RawMessage   `json:"subscription"`
	Metadata      map[string]string `json:"metadata"`
}

type subscriptionPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// decodeBillingEvent maps a verified Stripe event onto the closed BillingEvent set.
// Known types with unusable payloads become OtherEvent with a reason.
func decodeBillingEvent(event stripe.Event) model.BillingEvent {
	eventType := string(event.Type)
	other := func(reason string) model.BillingEvent {
		return model.OtherEvent{ID: event.ID, Type: eventType, Reason: reason}
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return other("event has no data object")
	}

	switch eventType {
	case model.EventTypeCheckoutCompleted:
		var p checkoutSessionPayload
		if err := json.Unmarshal(event.Data.Raw, &p); err != nil {
			return other("malformed checkout session: " + err.Error())
		}
		return model.CheckoutCompleted{
			ID:             event.ID,
			SessionID:      p.ID,
			AccountID:      p.Metadata[metadataUserID],
			SubscriptionID: expandableID(p.Subscription),
			PaymentStatus:  p.PaymentStatus,
		}
	case model.EventTypeSubscriptionDeleted:
		var p subscriptionPayload
		if err := json.Unmarshal(event.Data.Raw, &p); err != nil {
			return other("malformed subscription: " + err.Error())
		}
		if p.ID == "" {
			return other("subscription has no id")
		}
		return model.SubscriptionDeleted{ID: event.ID, SubscriptionID: p.ID, Status: p.Status}
	default:
		return other("unhandled event type")
	}
}

// expandableID reads a Stripe field that is either an id string or an expanded object.
func expandableID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}
