package dto

// AccountCreateRequest is used for incoming create requests
type AccountCreateRequest struct {
	UID      string `json:"uid" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

type AccountDeleteRequest struct {
	UID string `json:"uid" validate:"required"`
}

// AccountResponse is returned in API responses
type AccountResponse struct {
	UID                string  `json:"uid"`
	Email              string  `json:"email"`
	Username           string  `json:"username"`
	Premium            bool    `json:"premium"`
	LastSubscriptionID *string `json:"last_subscription_id,omitempty"`
}

type PaymentLinkRequest struct {
	UID            string `json:"uid" validate:"required"`
	RecurrenceType int    `json:"recurrenceType" validate:"required,oneof=1 2 3"`
}

type PaymentLinkResponse struct {
	PaymentLink string `json:"payment_link"`
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Status   string `json:"status"`
}
