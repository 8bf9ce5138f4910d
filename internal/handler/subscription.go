package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/leca/mediastudio/internal/api"
	"github.com/leca/mediastudio/internal/billing"
	"github.com/leca/mediastudio/internal/database"
)

// maxWebhookBody caps webhook payload reads.
const maxWebhookBody = 64 << 10

// SubscriptionInfo handles GET /api/subscription.
func (h *Handler) SubscriptionInfo(w http.ResponseWriter, r *http.Request) {
	claims := api.Session(r.Context())

	user, err := h.DB.GetUser(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "User not found")
			return
		}
		api.Internal(w, "failed to load user")
		return
	}
	count, err := h.DB.CountMedia(user.ID)
	if err != nil {
		api.Internal(w, "failed to count uploads")
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"plan":        user.Plan,
			"uploadLimit": user.UploadLimit,
		},
		"uploadCount": count,
	})
}

// CreateCheckout handles POST /api/stripe/checkout.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	claims := api.Session(r.Context())

	sessionID, err := h.Billing.CreateCheckoutSession(claims.UserID, claims.Email)
	if err != nil {
		api.Upstream(w, "Failed to create checkout session")
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"sessionId": sessionID})
}

// StripeWebhook handles POST /api/stripe/webhook. The event is applied only
// after its signature verifies; a bad signature is a hard rejection with no
// state change, while unhandled event kinds are acknowledged so the
// provider does not keep retrying them.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		api.BadRequest(w, "failed to read body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		api.Fail(w, http.StatusBadRequest, api.CodeUnauthorized, "No signature")
		return
	}

	if err := h.Billing.HandleEvent(payload, signature); err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			api.Fail(w, http.StatusBadRequest, api.CodeUnauthorized, "Invalid signature")
			return
		}
		api.Internal(w, "Webhook error")
		return
	}

	api.Success(w, http.StatusOK, map[string]bool{"received": true})
}
