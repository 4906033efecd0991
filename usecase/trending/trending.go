package trending

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/repository"
	"github.com/fastygo/storecore/usecase"
)

// AllTags selects the global ranking, same as an empty tag.
const AllTags = "all"

// Result is a trending ranking. Tag is empty for the global ranking. Error
// carries a message the engine reported next to partial results.
type Result struct {
	Tag      string
	Products []domain.Product
	Error    string
}

// Global reports whether the result is the global ranking.
func (r Result) Global() bool {
	return r.Tag == ""
}

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
		logger:  logger.Named("trending"),
	}
}

type purchase struct {
	ProductIDs string `json:"productIds"`
}

type payload struct {
	Products     []usecase.ProductProjection `json:"products"`
	Transactions []purchase                  `json:"transactions"`
}

// Trending ranks products by popularity, globally or within one tag. It
// never fails: engine failures yield an empty result of the right shape
// and an unreadable history is treated as no history.
func (uc *UseCase) Trending(ctx context.Context, tag string) Result {
	tag = strings.TrimSpace(tag)
	if tag == AllTags {
		tag = ""
	}
	result := Result{Tag: tag, Products: []domain.Product{}}

	snap := uc.catalog.Get(ctx)
	history, err := uc.history.All(ctx)
	if err != nil {
		uc.logger.Warn("purchase history unavailable, ranking without it", zap.Error(err))
		history = nil
	}

	purchases := make([]purchase, 0, len(history))
	for _, tx := range history {
		purchases = append(purchases, purchase{ProductIDs: tx.Product()})
	}
	body, err := engine.Marshal(payload{
		Products:     usecase.ProjectProducts(snap),
		Transactions: purchases,
	})
	if err != nil {
		usecase.Degraded(uc.logger, "trending", usecase.ClassRecommendation, err)
		return result
	}

	doc, err := uc.engines.Invoke(ctx, usecase.EngineTrending, []string{tag}, body)
	if err != nil {
		usecase.Degraded(uc.logger, "trending", usecase.ClassRecommendation, err)
		return result
	}

	field := "tag_trending"
	if result.Global() {
		field = "global_trending"
	}
	if !result.Global() {
		result.Error, _ = doc.String("error")
	}
	ids, _, err := doc.IDs(field)
	if err != nil {
		usecase.Degraded(uc.logger, "trending", usecase.ClassRecommendation, err)
		return result
	}
	result.Products = snap.Resolve(ids)
	return result
}
