package database

import (
	"errors"

	"github.com/leca/mediastudio/internal/model"
)

// Sentinel errors the handler layer maps onto error kinds.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrQuotaExceeded = errors.New("upload quota exceeded")
)

// Database defines the persistence interface for all domain objects.
type Database interface {
	// Users
	CreateUser(u *model.User) error
	GetUser(id string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)

	// ActivateSubscription moves a user to a paid plan and records the
	// billing provider identifiers.
	ActivateSubscription(userID, customerID, subscriptionID, plan string, uploadLimit int) error

	// CancelSubscription reverts the user whose stored subscription id
	// matches, clearing the id. It returns the number of affected users.
	CancelSubscription(subscriptionID, plan string, uploadLimit int) (int64, error)

	// Media
	//
	// CreateMedia inserts only while the owner's media count is below
	// uploadLimit; the count check and the insert are a single statement,
	// so concurrent creates cannot both slip past the quota. Returns
	// ErrQuotaExceeded when the gate is closed.
	CreateMedia(m *model.Media, uploadLimit int) error
	GetMedia(id string) (*model.Media, error)
	ListMedia(userID string, kind model.MediaType, page, pageSize int) ([]*model.Media, int, error)
	UpdateMediaTransforms(id string, cfg *model.TransformationConfig, transformedURL string) error
	CountMedia(userID string) (int, error)

	// Subscriptions
	UpsertSubscription(s *model.Subscription) error
	UpdateSubscriptionStatus(stripeSubscriptionID, status string) error

	Close() error
}
