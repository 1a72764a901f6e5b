package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRepository stores premium subscriptions.
type SubscriptionRepository struct {
	db postgres.DBTX
	tx *postgres.Transactor
}

func NewSubscriptionRepository(db postgres.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, tx: postgres.NewTransactor(db)}
}

// LatestActive returns the most recently created row with status active.
// Expiry is not checked here.
func (r *SubscriptionRepository) LatestActive(ctx context.Context, userID string) (*entities.Subscription, error) {
	query := `
		SELECT id, user_id, provider_subscription_id, provider_customer_id,
		       plan, status, started_at, expires_at, created_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		s      entities.Subscription
		plan   string
		status string
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.ProviderSubscriptionID,
		&s.ProviderCustomerID,
		&plan,
		&status,
		&s.StartedAt,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	s.Plan = entities.Plan(plan)
	s.Status = entities.SubscriptionStatus(status)

	return &s, nil
}

// Replace expires every active row of the user and inserts sub in one transaction,
// so at most one active row exists per user.
func (r *SubscriptionRepository) Replace(ctx context.Context, sub *entities.Subscription) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE subscriptions SET status = 'expired' WHERE user_id = $1 AND status = 'active'`,
			sub.UserID,
		)
		if err != nil {
			return fmt.Errorf("expire previous subscriptions: %w", err)
		}

		query := `
			INSERT INTO subscriptions (
				id, user_id, provider_subscription_id, provider_customer_id,
				plan, status, started_at, expires_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err = tx.Exec(ctx, query,
			sub.ID,
			sub.UserID,
			sub.ProviderSubscriptionID,
			sub.ProviderCustomerID,
			string(sub.Plan),
			string(sub.Status),
			sub.StartedAt,
			sub.ExpiresAt,
			sub.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}

		return nil
	})
}

// Cancel marks the user's subscription with the given provider id as canceled.
func (r *SubscriptionRepository) Cancel(ctx context.Context, userID, providerSubID string) error {
	query := `
		UPDATE subscriptions SET status = 'canceled'
		WHERE user_id = $1 AND provider_subscription_id = $2 AND status = 'active'
	`

	tag, err := r.db.Exec(ctx, query, userID, providerSubID)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// UserIDByProviderSubscription finds the owner of a provider subscription id.
func (r *SubscriptionRepository) UserIDByProviderSubscription(ctx context.Context, providerSubID string) (string, error) {
	query := `
		SELECT user_id
		FROM subscriptions
		WHERE provider_subscription_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var userID string
	if err := r.db.QueryRow(ctx, query, providerSubID).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSubscriptionNotFound
		}
		return "", fmt.Errorf("find subscription owner: %w", err)
	}

	return userID, nil
}
