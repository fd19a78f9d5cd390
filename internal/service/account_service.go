package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/repository"

	"github.com/rs/zerolog"
)

// AccountService provisions and removes merchant accounts.
type AccountService interface {
	// Create is create-or-fetch: an existing id returns the stored record and created=false.
	Create(ctx context.Context, uid, email, username string) (acc *model.Account, created bool, err error)
	Get(ctx context.Context, uid string) (*model.Account, error)
	// Delete cancels the active subscription, then removes the account and its catalogs.
	Delete(ctx context.Context, uid string) error
}

type accountService struct {
	repo    repository.AccountRepository
	billing BillingGateway
	events  AccountEventPublisher
	logger  zerolog.Logger
}

func NewAccountService(repo repository.AccountRepository, billing BillingGateway, events AccountEventPublisher, logger zerolog.Logger) AccountService {
	return &accountService{
		repo:    repo,
		billing: billing,
		events:  events,
		logger:  logger.With().Str("service", "AccountService").Logger(),
	}
}

func (s *accountService) Create(ctx context.Context, uid, email, username string) (*model.Account, bool, error) {
	uid, email, username = strings.TrimSpace(uid), strings.TrimSpace(email), strings.TrimSpace(username)
	if uid == "" || email == "" || username == "" {
		return nil, false, validationErrorf("uid, email and username are required")
	}
	acc, created, err := s.repo.CreateOrGet(ctx, &model.Account{ID: uid, Email: email, Username: username})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Failed to create account")
		return nil, false, err
	}
	if created {
		s.logger.Info().Str("user_id", uid).Msg("Account created")
	}
	return acc, created, nil
}

func (s *accountService) Get(ctx context.Context, uid string) (*model.Account, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, validationErrorf("uid is required")
	}
	acc, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("account %s: %w", uid, ErrNotFound)
	}
	return acc, nil
}

func (s *accountService) Delete(ctx context.Context, uid string) error {
	acc, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	log := s.logger.With().Str("user_id", uid).Logger()

	// Cancel first: if it fails nothing local has changed. If the row delete
	// fails afterwards, the subscription.deleted webhook revokes premium and
	// the delete can be retried. The pointer outlives premium, so a free
	// account's last subscription is cancelled too.
	if sub := acc.LastSubscriptionID; sub != nil && *sub != "" {
		if err := s.billing.CancelSubscription(ctx, *sub); err != nil {
			log.Error().Err(err).Str("subscription_id", *sub).Bool("premium", acc.Premium).Msg("Failed to cancel subscription, account kept")
			return err
		}
	}

	deleted, err := s.repo.Delete(ctx, uid)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete account after subscription cancel")
		return fmt.Errorf("delete account %s: %w", uid, err)
	}
	if !deleted {
		return fmt.Errorf("account %s: %w", uid, ErrNotFound)
	}

	log.Info().Msg("Account deleted")
	if err := s.events.PublishAccountEvent(ctx, model.AccountEvent{
		Type:       model.AccountEventDeleted,
		AccountID:  uid,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to publish account_deleted event")
	}
	return nil
}
