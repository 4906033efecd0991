package repository

import (
	"context"

	"github.com/fastygo/storecore/domain"
)

// UserRepository reads and provisions storefront customers.
type UserRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	// SetUserID backfills the external key on a legacy row identified by email.
	SetUserID(ctx context.Context, email, userID string) error
}
