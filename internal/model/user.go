package model

import "time"

// User is an account row. Password holds the bcrypt hash and never leaves
// the service.
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Password             string    `json:"-"`
	Name                 string    `json:"name"`
	Plan                 string    `json:"plan"`
	StripeCustomerID     *string   `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID *string   `json:"stripeSubscriptionId,omitempty"`
	UploadLimit          int       `json:"uploadLimit"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Subscription mirrors the billing provider's view of a user's subscription.
// Rows are written from webhook events only.
type Subscription struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	StripeSubscriptionID string    `json:"stripeSubscriptionId"`
	StripeCustomerID     string    `json:"stripeCustomerId"`
	StripePriceID        string    `json:"stripePriceId"`
	Status               string    `json:"status"`
	CurrentPeriodStart   time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd     time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd    bool      `json:"cancelAtPeriodEnd"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
