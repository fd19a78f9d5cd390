package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalogomaker/backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAccountNotFound is returned by writes that target a missing account.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository persists merchant accounts.
type AccountRepository interface {
	// CreateOrGet inserts the account unless the id exists, in which case the stored record is returned untouched.
	CreateOrGet(ctx context.Context, a *model.Account) (*model.Account, bool, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	Delete(ctx context.Context, id string) (bool, error)
	// GrantPremium sets premium=true and last_subscription_id in one statement. Reports whether anything changed.
	GrantPremium(ctx context.Context, id, subscriptionID string) (bool, error)
	// RevokePremiumBySubscription clears premium on every account pointing at subscriptionID and returns their ids.
	RevokePremiumBySubscription(ctx context.Context, subscriptionID string) ([]string, error)
}

type accountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) AccountRepository {
	return &accountRepo{pool: pool}
}

const accountColumns = `id, email, username, premium, last_subscription_id, created_at, updated_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Email, &a.Username, &a.Premium, &a.LastSubscriptionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) CreateOrGet(ctx context.Context, a *model.Account) (*model.Account, bool, error) {
	const q = `
		INSERT INTO accounts (id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + accountColumns
	created, err := scanAccount(r.pool.QueryRow(ctx, q, a.ID, a.Email, a.Username))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert account %s: %w", a.ID, err)
	}

	existing, err := r.GetByID(ctx, a.ID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// deleted between the insert and the read
		return nil, false, fmt.Errorf("account %s vanished during create: %w", a.ID, ErrAccountNotFound)
	}
	return existing, false, nil
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch account %s: %w", id, err)
	}
	return a, nil
}

func (r *accountRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete account %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *accountRepo) GrantPremium(ctx context.Context, id, subscriptionID string) (bool, error) {
	const q = `
		UPDATE accounts
		SET premium = TRUE,
			last_subscription_id = $2,
			updated_at = NOW()
		WHERE id = $1
		  AND (premium IS DISTINCT FROM TRUE OR last_subscription_id IS DISTINCT FROM $2)
	`
	tag, err := r.pool.Exec(ctx, q, id, subscriptionID)
	if err != nil {
		return false, fmt.Errorf("grant premium to %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account %s: %w", id, err)
	}
	if !exists {
		return false, ErrAccountNotFound
	}
	return false, nil
}

func (r *accountRepo) RevokePremiumBySubscription(ctx context.Context, subscriptionID string) ([]string, error) {
	const q = `
		UPDATE accounts
		SET premium = FALSE,
			updated_at = NOW()
		WHERE last_subscription_id = $1
		  AND premium
		RETURNING id
	`
	rows, err := r.pool.Query(ctx, q, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("revoke premium for subscription %s: %w", subscriptionID, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect revoked accounts for subscription %s: %w", subscriptionID, err)
	}
	return ids, nil
}
