package purchase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/metrics"
	"github.com/fastygo/storecore/repository"
)

type UseCase struct {
	users   repository.UserRepository
	history repository.TransactionRepository
	logger  *zap.Logger
	now     func() time.Time
}

func New(users repository.UserRepository, history repository.TransactionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		history: history,
		logger:  logger.Named("purchase"),
		now:     time.Now,
	}
}

// Record appends one transaction holding every product of the purchase.
// The user check and the write are not atomic; purchases are advisory
// history. Write failures are returned as is, never retried.
func (uc *UseCase) Record(ctx context.Context, userID string, ref domain.ProductRef) (*domain.Transaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || len(ref) == 0 {
		return nil, domain.Invalid("user and product are required")
	}

	if _, err := uc.users.GetByUserID(ctx, userID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		return nil, domain.StoreFailure("load user", err)
	}

	tx := &domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Products:  append([]domain.ProductID(nil), ref...),
		Timestamp: uc.now().UTC(),
	}
	if err := uc.history.Append(ctx, tx); err != nil {
		return nil, domain.StoreFailure("record purchase", err)
	}

	metrics.PurchasesRecorded.Inc()
	uc.logger.Info("purchase recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("user", userID),
		zap.String("product", tx.Product()))
	return tx, nil
}
