package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leca/mediastudio/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Database backed by SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) an SQLite database at dsn and runs migrations.
// For in-memory use pass "file::memory:?cache=shared".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	} else if !strings.Contains(dsn, "_journal_mode") {
		dsn += "&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateUser(u *model.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, email, password, name, plan, stripe_customer_id, stripe_subscription_id, upload_limit, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Password, u.Name, u.Plan,
		nullString(u.StripeCustomerID), nullString(u.StripeSubscriptionID),
		u.UploadLimit, formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetUser(id string) (*model.User, error) {
	return scanUser(s.db.QueryRow(userSelect+` WHERE id = ?`, id))
}

func (s *SQLiteDB) GetUserByEmail(email string) (*model.User, error) {
	return scanUser(s.db.QueryRow(userSelect+` WHERE email = ?`, email))
}

func (s *SQLiteDB) ActivateSubscription(userID, customerID, subscriptionID, plan string, uploadLimit int) error {
	res, err := s.db.Exec(`
		UPDATE users
		SET plan = ?, stripe_customer_id = ?, stripe_subscription_id = ?, upload_limit = ?, updated_at = ?
		WHERE id = ?`,
		plan, customerID, subscriptionID, uploadLimit, formatTime(time.Now().UTC()), userID,
	)
	if err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteDB) CancelSubscription(subscriptionID, plan string, uploadLimit int) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE users
		SET plan = ?, stripe_subscription_id = NULL, upload_limit = ?, updated_at = ?
		WHERE stripe_subscription_id = ?`,
		plan, uploadLimit, formatTime(time.Now().UTC()), subscriptionID,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel subscription: %w", err)
	}
	return res.RowsAffected()
}

const userSelect = `
	SELECT id, email, password, name, plan, stripe_customer_id, stripe_subscription_id, upload_limit, created_at, updated_at
	FROM users`

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var customerID, subscriptionID sql.NullString
	var created, updated string
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Plan,
		&customerID, &subscriptionID, &u.UploadLimit, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if customerID.Valid {
		u.StripeCustomerID = &customerID.String
	}
	if subscriptionID.Valid {
		u.StripeSubscriptionID = &subscriptionID.String
	}
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return u, nil
}

// ---------------------------------------------------------------------------
// Media
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateMedia(m *model.Media, uploadLimit int) error {
	transforms, err := marshalTransforms(m.Transforms)
	if err != nil {
		return err
	}

	// The quota check and the insert are one statement: the row is written
	// only while the owner's current media count is below the limit.
	res, err := s.db.Exec(`
		INSERT INTO media (id, user_id, file_name, original_url, media_type, transforms, transformed_url, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM media WHERE user_id = ?) < ?`,
		m.ID, m.UserID, m.FileName, m.OriginalURL, string(m.MediaType),
		transforms, m.TransformedURL, formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
		m.UserID, uploadLimit,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	if n == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

func (s *SQLiteDB) GetMedia(id string) (*model.Media, error) {
	row := s.db.QueryRow(mediaSelect+` WHERE id = ?`, id)
	m, err := scanMedia(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *SQLiteDB) ListMedia(userID string, kind model.MediaType, page, pageSize int) ([]*model.Media, int, error) {
	where := `WHERE user_id = ?`
	args := []interface{}{userID}
	if kind != "" {
		where += ` AND media_type = ?`
		args = append(args, string(kind))
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM media `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.Query(
		mediaSelect+` `+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, pageSize, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []*model.Media
	for rows.Next() {
		m, err := scanMedia(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (s *SQLiteDB) UpdateMediaTransforms(id string, cfg *model.TransformationConfig, transformedURL string) error {
	transforms, err := marshalTransforms(cfg)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE media SET transforms = ?, transformed_url = ?, updated_at = ?
		WHERE id = ?`,
		transforms, transformedURL, formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteDB) CountMedia(userID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM media WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

const mediaSelect = `
	SELECT id, user_id, file_name, original_url, media_type, transforms, transformed_url, created_at, updated_at
	FROM media`

func scanMedia(scan func(...interface{}) error) (*model.Media, error) {
	m := &model.Media{}
	var mediaType string
	var transforms sql.NullString
	var created, updated string
	err := scan(&m.ID, &m.UserID, &m.FileName, &m.OriginalURL, &mediaType,
		&transforms, &m.TransformedURL, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan media: %w", err)
	}
	m.MediaType = model.MediaType(mediaType)
	if transforms.Valid && transforms.String != "" {
		cfg := &model.TransformationConfig{}
		if err := json.Unmarshal([]byte(transforms.String), cfg); err != nil {
			return nil, fmt.Errorf("unmarshal transforms: %w", err)
		}
		m.Transforms = cfg
	}
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	return m, nil
}

func marshalTransforms(cfg *model.TransformationConfig) (interface{}, error) {
	if cfg == nil {
		return nil, nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal transforms: %w", err)
	}
	return string(data), nil
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

func (s *SQLiteDB) UpsertSubscription(sub *model.Subscription) error {
	_, err := s.db.Exec(`
		INSERT INTO subscriptions (id, user_id, stripe_subscription_id, stripe_customer_id, stripe_price_id, status, current_period_start, current_period_end, cancel_at_period_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (stripe_subscription_id) DO UPDATE SET
			status = excluded.status,
			stripe_price_id = excluded.stripe_price_id,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			cancel_at_period_end = excluded.cancel_at_period_end,
			updated_at = excluded.updated_at`,
		sub.ID, sub.UserID, sub.StripeSubscriptionID, sub.StripeCustomerID,
		sub.StripePriceID, sub.Status,
		formatTime(sub.CurrentPeriodStart), formatTime(sub.CurrentPeriodEnd),
		boolToInt(sub.CancelAtPeriodEnd),
		formatTime(sub.CreatedAt), formatTime(sub.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *SQLiteDB) UpdateSubscriptionStatus(stripeSubscriptionID, status string) error {
	_, err := s.db.Exec(`
		UPDATE subscriptions SET status = ?, updated_at = ?
		WHERE stripe_subscription_id = ?`,
		status, formatTime(time.Now().UTC()), stripeSubscriptionID,
	)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// timeLayout is fixed-width so the TEXT column sorts chronologically;
// RFC3339Nano trims trailing fraction zeros, which breaks string ordering
// for rows created in the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToUpper(err.Error()), "UNIQUE")
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
