// Package billing talks to Stripe: checkout session creation on the way
// out, signed webhook events on the way in.
package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/price"
	"github.com/stripe/stripe-go/v76/product"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/leca/mediastudio/internal/database"
	"github.com/leca/mediastudio/internal/model"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
// The event must be rejected whole; no partial state change is permitted.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Service reconciles billing provider events with user records.
type Service struct {
	DB            database.Database
	WebhookSecret string
	SuccessURL    string
	CancelURL     string

	mu      sync.Mutex
	priceID string
}

// New configures the Stripe client and returns a billing service.
// priceID may be empty; a product and monthly price for the Pro plan are
// then created lazily on first checkout.
func New(db database.Database, apiKey, webhookSecret, priceID, baseURL string) *Service {
	stripe.Key = apiKey
	return &Service{
		DB:            db,
		WebhookSecret: webhookSecret,
		SuccessURL:    baseURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     baseURL + "/",
		priceID:       priceID,
	}
}

// CreateCheckoutSession starts a subscription checkout for the user and
// returns the session id. The user id rides along as metadata so the
// completion webhook can find the account.
func (s *Service) CreateCheckoutSession(userID, email string) (string, error) {
	priceID, err := s.ensurePrice()
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		CustomerEmail:      stripe.String(email),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.SuccessURL),
		CancelURL:  stripe.String(s.CancelURL),
	}
	params.AddMetadata("userId", userID)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.ID, nil
}

// ensurePrice returns the configured price id, creating the Pro product and
// a monthly price on first use when none is configured.
func (s *Service) ensurePrice() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.priceID != "" {
		return s.priceID, nil
	}

	prod, err := product.New(&stripe.ProductParams{
		Name:        stripe.String("Pro Plan"),
		Description: stripe.String("Higher upload limits and premium features"),
	})
	if err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}

	pr, err := price.New(&stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(Pro.Price),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create price: %w", err)
	}

	s.priceID = pr.ID
	return s.priceID, nil
}

// checkoutSession and subscriptionObject are the slices of the webhook
// payload this service reads. In webhook deliveries customer and
// subscription arrive as plain ids.
type checkoutSession struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	ID string `json:"id"`
}

// HandleEvent verifies the webhook signature and applies the event.
// checkout.session.completed activates the Pro plan; customer.subscription.deleted
// reverts the matching user to Free. Every other event kind is acknowledged
// without any state change so the provider does not retry-storm us.
func (s *Service) HandleEvent(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return s.applyCheckoutCompleted(sess)

	case "customer.subscription.deleted":
		var sub subscriptionObject
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.applySubscriptionDeleted(sub.ID)
	}

	// Unknown event kind: acknowledged, not an error.
	return nil
}

func (s *Service) applyCheckoutCompleted(sess checkoutSession) error {
	userID := sess.Metadata["userId"]
	if userID == "" || sess.Customer == "" {
		// Not a session we initiated; acknowledge without change.
		return nil
	}

	if err := s.DB.ActivateSubscription(userID, sess.Customer, sess.Subscription, Pro.Name, Pro.UploadLimit); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	if sess.Subscription != "" {
		now := time.Now().UTC()
		sub := &model.Subscription{
			ID:                   uuid.New().String(),
			UserID:               userID,
			StripeSubscriptionID: sess.Subscription,
			StripeCustomerID:     sess.Customer,
			StripePriceID:        s.priceID,
			Status:               "active",
			CurrentPeriodStart:   now,
			CurrentPeriodEnd:     now.AddDate(0, 1, 0),
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.DB.UpsertSubscription(sub); err != nil {
			return fmt.Errorf("record subscription: %w", err)
		}
	}
	return nil
}

func (s *Service) applySubscriptionDeleted(subscriptionID string) error {
	if subscriptionID == "" {
		return nil
	}
	if _, err := s.DB.CancelSubscription(subscriptionID, Free.Name, Free.UploadLimit); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	if err := s.DB.UpdateSubscriptionStatus(subscriptionID, "canceled"); err != nil {
		return fmt.Errorf("mark subscription canceled: %w", err)
	}
	return nil
}
