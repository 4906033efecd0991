package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `COALESCE(userid, ''), name, email, password_hash, created_at`

func (r *userRepository) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE userid = $1`
	return scanUser(r.pool.QueryRow(ctx, query, userID))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (userid, name, email, password_hash, created_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
	RETURNING created_at
	`

	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		nullString(user.UserID),
		user.Name,
		user.Email,
		user.PasswordHash,
		nullTime(user.CreatedAt),
	).Scan(&createdAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return err
	}

	user.CreatedAt = createdAt
	return nil
}

func (r *userRepository) SetUserID(ctx context.Context, email, userID string) error {
	const query = `UPDATE users SET userid = $2 WHERE email = $1 AND userid IS NULL`
	tag, err := r.pool.Exec(ctx, query, email, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.UserID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
