package together

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/repository"
	"github.com/fastygo/storecore/usecase"
)

// ErrMissingRecommendations is returned when the engine output lacks the
// recommendations field. Unlike the recommend engine, an absent field here
// is a failure.
var ErrMissingRecommendations = errors.New("bought_together output has no recommendations")

type UseCase struct {
	catalog usecase.CatalogReader
	history repository.TransactionRepository
	engines usecase.EngineInvoker
	logger  *zap.Logger
}

func New(catalog usecase.CatalogReader, history repository.TransactionRepository, engines usecase.EngineInvoker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		catalog: catalog,
		history: history,
		engines: engines,
		logger:  logger.Named("together"),
	}
}

type payload struct {
	Products  []domain.Product     `json:"products"`
	Purchases []domain.Transaction `json:"purchases"`
}

// BoughtTogether returns products frequently purchased with productID, in
// catalog order. Engine failures are returned as *engine.Error so callers
// can apply their degrade policy.
func (uc *UseCase) BoughtTogether(ctx context.Context, productID string) ([]domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.Invalid("productId is required")
	}
	id, ok := domain.ParseProductID(productID)
	if !ok {
		return nil, domain.Invalid("productId must be an integer")
	}

	snap := uc.catalog.Get(ctx)
	if snap.Len() > 0 {
		if _, found := snap.Get(id); !found {
			return nil, domain.ErrProductNotFound
		}
	}

	history, err := uc.history.All(ctx)
	if err != nil {
		return nil, usecase.StoreError("load purchase history", err)
	}

	body, err := engine.Marshal(payload{Products: snap.Products, Purchases: history})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "encode engine payload", err)
	}

	doc, err := uc.engines.Invoke(ctx, usecase.EngineBoughtTogether, []string{id.String()}, body)
	if err != nil {
		return nil, err
	}
	ids, present, err := doc.IDs("recommendations")
	if err != nil {
		return nil, &engine.Error{Engine: usecase.EngineBoughtTogether, Kind: engine.KindParse, Err: err}
	}
	if !present {
		return nil, &engine.Error{Engine: usecase.EngineBoughtTogether, Kind: engine.KindParse, Err: ErrMissingRecommendations}
	}
	return snap.Filter(ids), nil
}
