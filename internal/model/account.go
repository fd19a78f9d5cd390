package model

import "time"

// Account is a registered merchant and its billing status.
// Premium and LastSubscriptionID are only written by the subscription reconciler.
type Account struct {
	ID                 string    `db:"id" json:"uid"`
	Email              string    `db:"email" json:"email"`
	Username           string    `db:"username" json:"username"`
	Premium            bool      `db:"premium" json:"premium"`
	LastSubscriptionID *string   `db:"last_subscription_id" json:"last_subscription_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// AccountEventType names a lifecycle change published for downstream consumers.
type AccountEventType string

const (
	AccountEventPremiumGranted AccountEventType = "premium_granted"
	AccountEventPremiumRevoked AccountEventType = "premium_revoked"
	AccountEventDeleted        AccountEventType = "account_deleted"
)

// AccountEvent is the payload published on the account events topic.
type AccountEvent struct {
	Type           AccountEventType `json:"type"`
	AccountID      string           `json:"account_id"`
	SubscriptionID string           `json:"subscription_id,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}
