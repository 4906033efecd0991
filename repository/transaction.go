package repository

import (
	"context"

	"github.com/fastygo/storecore/domain"
)

// TransactionRepository is the append-only purchase history.
type TransactionRepository interface {
	Append(ctx context.Context, tx *domain.Transaction) error
	All(ctx context.Context) ([]domain.Transaction, error)
	ByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}
