package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/repository"
)

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository returns the Postgres-backed purchase history.
func NewTransactionRepository(pool *pgxpool.Pool) repository.TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.UserID == "" || len(tx.Products) == 0 {
		return domain.ErrInvalidPayload
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}

	const query = `
	INSERT INTO user_purchases (id, user_id, product_ids, purchased_at)
	VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, tx.ID, tx.UserID, toInt64s(tx.Products), tx.Timestamp)
	return err
}

func (r *transactionRepository) All(ctx context.Context) ([]domain.Transaction, error) {
	const query = `
	SELECT id::text, user_id, product_ids, purchased_at
	FROM user_purchases
	ORDER BY purchased_at, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (r *transactionRepository) ByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	const query = `
	SELECT id::text, user_id, product_ids, purchased_at
	FROM user_purchases
	WHERE user_id = $1
	ORDER BY purchased_at, id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			tx  domain.Transaction
			ids []int64
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &ids, &tx.Timestamp); err != nil {
			return nil, err
		}
		tx.Products = toProductIDs(ids)
		tx.Timestamp = tx.Timestamp.UTC()
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
