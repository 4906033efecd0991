package favorites

import (
	"context"
	"strings"

	"go.uber.org/zap"

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
		logger:  logger.Named("favorites"),
	}
}

type payload struct {
	Products     []usecase.ProductProjection `json:"products"`
	Transactions []usecase.UserTransaction   `json:"transactions"`
}

// Favorites returns the user's favorite categories as ranked by the
// fav_category engine from the user's own purchases.
func (uc *UseCase) Favorites(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.Invalid("userId is required")
	}
	if _, err := uc.users.GetByUserID(ctx, userID); err != nil {
		return nil, usecase.StoreError("load user", err)
	}

	mine, err := uc.history.ByUser(ctx, userID)
	if err != nil {
		return nil, usecase.StoreError("load purchase history", err)
	}
	snap := uc.catalog.Get(ctx)

	body, err := engine.Marshal(payload{
		Products:     usecase.ProjectProducts(snap),
		Transactions: usecase.AttributedTransactions(mine),
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "encode engine payload", err)
	}

	doc, err := uc.engines.Invoke(ctx, usecase.EngineFavorites, []string{userID}, body)
	if err != nil {
		usecase.Degraded(uc.logger, "favorite-categories", usecase.ClassRecommendation, err)
		return []string{}, nil
	}
	categories, present, err := doc.Strings("favorite_categories")
	if err != nil || !present {
		if err != nil {
			usecase.Degraded(uc.logger, "favorite-categories", usecase.ClassRecommendation, err)
		}
		return []string{}, nil
	}
	return categories, nil
}
