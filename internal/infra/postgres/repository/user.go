package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository provides access to user data in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database handle.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a user if it does not exist and reports whether a row was created.
// An existing user keeps its tier and creation time.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) (bool, error) {
	query := `
		INSERT INTO users (id, tier, created_at, last_activity_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			last_activity_at = GREATEST(users.last_activity_at, EXCLUDED.last_activity_at)
		RETURNING (xmax = 0) AS created
	`

	var created bool
	err := r.db.QueryRow(ctx, query, user.ID, string(user.Tier), user.CreatedAt, user.LastActivityAt).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	query := `
		SELECT id, tier, created_at, last_activity_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// List returns every registered user ordered by registration time.
func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	query := `
		SELECT id, tier, created_at, last_activity_at
		FROM users
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateTier sets the difficulty tier of a user.
func (r *UserRepository) UpdateTier(ctx context.Context, userID string, tier entities.Tier) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET tier = $2 WHERE id = $1`, userID, string(tier))
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var (
		user entities.User
		tier string
	)
	if err := row.Scan(&user.ID, &tier, &user.CreatedAt, &user.LastActivityAt); err != nil {
		return nil, err
	}
	user.Tier = entities.Tier(tier)

	return &user, nil
}
