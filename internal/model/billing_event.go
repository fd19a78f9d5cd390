package model

// Billing gateway event types the reconciler understands.
const (
	EventTypeCheckoutCompleted   = "checkout.session.completed"
	EventTypeSubscriptionDeleted = "customer.subscription.deleted"

	PaymentStatusPaid          = "paid"
	SubscriptionStatusCanceled = "canceled"
)

// BillingEvent is a verified notification from the billing gateway.
// It is a closed set: CheckoutCompleted, SubscriptionDeleted or OtherEvent.
type BillingEvent interface {
	EventID() string
	EventType() string
	isBillingEvent()
}

// CheckoutCompleted is decoded from "checkout.session.completed".
type CheckoutCompleted struct {
	ID             string
	SessionID      string
	AccountID      string // metadata.user_id
	SubscriptionID string
	PaymentStatus  string
}

func (e CheckoutCompleted) EventID() string   { return e.ID }
func (e CheckoutCompleted) EventType() string { return EventTypeCheckoutCompleted }
func (CheckoutCompleted) isBillingEvent()     {}

// SubscriptionDeleted is decoded from "customer.subscription.deleted".
type SubscriptionDeleted struct {
	ID             string
	SubscriptionID string
	Status         string
}

func (e SubscriptionDeleted) EventID() string   { return e.ID }
func (e SubscriptionDeleted) EventType() string { return EventTypeSubscriptionDeleted }
func (SubscriptionDeleted) isBillingEvent()     {}

// OtherEvent is any event the reconciler does not act on, including known
// types whose payload could not be decoded.
type OtherEvent struct {
	ID     string
	Type   string
	Reason string
}

func (e OtherEvent) EventID() string   { return e.ID }
func (e OtherEvent) EventType() string { return e.Type }
func (OtherEvent) isBillingEvent()     {}
