package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catalogomaker/backend/internal/idempotency"
	"github.com/catalogomaker/backend/internal/metrics"
	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/repository"

	"github.com/rs/zerolog"
)

// Outcome of applying one billing event.
type Outcome int

const (
	Ignored Outcome = iota
	Applied
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "ignored"
}

// AccountEventPublisher announces account lifecycle changes.
type AccountEventPublisher interface {
	PublishAccountEvent(ctx context.Context, ev model.AccountEvent) error
}

// PremiumStore is the slice of the account store the reconciler writes to.
type PremiumStore interface {
	GrantPremium(ctx context.Context, id, subscriptionID string) (bool, error)
	RevokePremiumBySubscription(ctx context.Context, subscriptionID string) ([]string, error)
}

// Reconciler is the only writer of an account's premium flag and subscription pointer.
type Reconciler struct {
	accounts PremiumStore
	locker   idempotency.Locker
	events   AccountEventPublisher
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewReconciler(accounts PremiumStore, locker idempotency.Locker, events AccountEventPublisher, m *metrics.Metrics, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		accounts: accounts,
		locker:   locker,
		events:   events,
		metrics:  m,
		logger:   logger.With().Str("service", "Reconciler").Logger(),
		now:      time.Now,
	}
}

// Apply moves account state according to ev. Events that do not describe a
// paid checkout or a canceled subscription are Ignored without error.
// Re-applying an event leaves state unchanged.
func (r *Reconciler) Apply(ctx context.Context, ev model.BillingEvent) (Outcome, error) {
	var (
		outcome Outcome
		err     error
	)
	switch e := ev.(type) {
	case model.CheckoutCompleted:
		outcome, err = r.applyCheckoutCompleted(ctx, e)
	case model.SubscriptionDeleted:
		outcome, err = r.applySubscriptionDeleted(ctx, e)
	case model.OtherEvent:
		r.logger.Debug().Str("event_id", e.ID).Str("event_type", e.Type).Str("reason", e.Reason).Msg("Ignoring billing event")
		outcome = Ignored
	default:
		outcome = Ignored
	}

	label := outcome.String()
	if err != nil {
		label = "error"
	}
	if ev != nil {
		r.metrics.ObserveBillingEvent(ev.EventType(), label)
	}
	return outcome, err
}

func (r *Reconciler) applyCheckoutCompleted(ctx context.Context, e model.CheckoutCompleted) (Outcome, error) {
	log := r.logger.With().Str("event_id", e.ID).Str("user_id", e.AccountID).Str("subscription_id", e.SubscriptionID).Logger()
	if e.PaymentStatus != model.PaymentStatusPaid {
		log.Info().Str("payment_status", e.PaymentStatus).Msg("Checkout not paid, ignoring")
		return Ignored, nil
	}
	if e.AccountID == "" {
		log.Warn().Msg("Checkout has no user_id metadata, ignoring")
		return Ignored, nil
	}
	if e.SubscriptionID == "" {
		log.Warn().Msg("Checkout has no subscription, ignoring")
		return Ignored, nil
	}

	unlock, err := r.locker.Lock(ctx, "account:"+e.AccountID)
	if err != nil {
		return Ignored, fmt.Errorf("lock account %s: %w", e.AccountID, err)
	}
	defer unlock()

	changed, err := r.accounts.GrantPremium(ctx, e.AccountID, e.SubscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			log.Warn().Msg("Checkout for unknown account, ignoring")
			return Ignored, nil
		}
		log.Error().Err(err).Msg("Failed to grant premium")
		return Ignored, fmt.Errorf("grant premium to %s: %w", e.AccountID, err)
	}
	if !changed {
		log.Info().Msg("Account already premium on this subscription")
		return Applied, nil
	}

	log.Info().Msg("Premium granted")
	r.publish(ctx, model.AccountEvent{
		Type:           model.AccountEventPremiumGranted,
		AccountID:      e.AccountID,
		SubscriptionID: e.SubscriptionID,
	})
	return Applied, nil
}

func (r *Reconciler) applySubscriptionDeleted(ctx context.Context, e model.SubscriptionDeleted) (Outcome, error) {
	log := r.logger.With().Str("event_id", e.ID).Str("subscription_id", e.SubscriptionID).Logger()
	if e.Status != model.SubscriptionStatusCanceled {
		log.Info().Str("status", e.Status).Msg("Deleted subscription not canceled, ignoring")
		return Ignored, nil
	}

	unlock, err := r.locker.Lock(ctx, "subscription:"+e.SubscriptionID)
	if err != nil {
		return Ignored, fmt.Errorf("lock subscription %s: %w", e.SubscriptionID, err)
	}
	defer unlock()

	revoked, err := r.accounts.RevokePremiumBySubscription(ctx, e.SubscriptionID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to revoke premium")
		return Ignored, fmt.Errorf("revoke premium for %s: %w", e.SubscriptionID, err)
	}
	if len(revoked) == 0 {
		log.Info().Msg("No premium account on this subscription")
	}
	for _, id := range revoked {
		log.Info().Str("user_id", id).Msg("Premium revoked")
		r.publish(ctx, model.AccountEvent{
			Type:           model.AccountEventPremiumRevoked,
			AccountID:      id,
			SubscriptionID: e.SubscriptionID,
		})
	}
	return Applied, nil
}

// publish is best-effort: the state change is already committed.
func (r *Reconciler) publish(ctx context.Context, ev model.AccountEvent) {
	ev.OccurredAt = r.now().UTC()
	if err := r.events.PublishAccountEvent(ctx, ev); err != nil {
		r.metrics.PublishFailed()
		r.logger.Error().Err(err).Str("user_id", ev.AccountID).Str("type", string(ev.Type)).Msg("Failed to publish account event")
	}
}
