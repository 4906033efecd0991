package recommend

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/repository"
	"github.com/fastygo/storecore/usecase"
)

type UseCase struct {
	catalog usecase.CatalogReader
	users   repository.UserRepository
	history repository.TransactionRepository
	engines usecase.EngineInvoker
	logger  *zap.Logger
}

func New(
	catalog usecase.CatalogReader,
	users repository.UserRepository,
	history repository.TransactionRepository,
	engines usecase.EngineInvoker,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		catalog: catalog,
		users:   users,
		history: history,
		engines: engines,
		logger:  logger.Named("recommend"),
	}
}

type payload struct {
	Products     []usecase.ProductProjection `json:"products"`
	Transactions []usecase.UserTransaction   `json:"transactions"`
}

// Recommend ranks catalog products for a known user. The engine sees the
// whole purchase history and does its own attribution.
func (uc *UseCase) Recommend(ctx context.Context, userID string) ([]domain.Product, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.Invalid("userId is required")
	}
	if _, err := uc.users.GetByUserID(ctx, userID); err != nil {
		return nil, usecase.StoreError("load user", err)
	}

	var (
		snap    *domain.Snapshot
		history []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap = uc.catalog.Get(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = uc.history.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, usecase.StoreError("load purchase history", err)
	}

	body, err := engine.Marshal(payload{
		Products:     usecase.ProjectProducts(snap),
		Transactions: usecase.AttributedTransactions(history),
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "encode engine payload", err)
	}

	doc, err := uc.engines.Invoke(ctx, usecase.EngineRecommend, []string{userID}, body)
	if err != nil {
		usecase.Degraded(uc.logger, "recommendations", usecase.ClassRecommendation, err)
		return []domain.Product{}, nil
	}

	ids, _, err := doc.IDs("recommendations")
	if err != nil {
		usecase.Degraded(uc.logger, "recommendations", usecase.ClassRecommendation, err)
		return []domain.Product{}, nil
	}
	return snap.Resolve(ids), nil
}
