package search

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/usecase"
)

type UseCase struct {
	catalog usecase.CatalogReader
	engines usecase.EngineInvoker
	logger  *zap.Logger
}

func New(catalog usecase.CatalogReader, engines usecase.EngineInvoker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		catalog: catalog,
		engines: engines,
		logger:  logger.Named("search"),
	}
}

// Search asks the search engine for matches and falls back to a local
// substring scan only when the engine itself fails. A healthy engine
// returning nothing is an empty result.
func (uc *UseCase) Search(ctx context.Context, term string) ([]domain.Product, error) {
	if strings.TrimSpace(term) == "" {
		return nil, domain.Invalid("search term is required")
	}

	snap := uc.catalog.Get(ctx)
	body, err := engine.Marshal(snap.Products)
	if err != nil {
		return uc.fallback(snap, term, err), nil
	}

	doc, err := uc.engines.Invoke(ctx, usecase.EngineSearch, []string{term}, body)
	if err != nil {
		return uc.fallback(snap, term, err), nil
	}
	ids, _, err := doc.IDs("recommendations")
	if err != nil {
		return uc.fallback(snap, term, err), nil
	}
	return snap.Resolve(ids), nil
}

func (uc *UseCase) fallback(snap *domain.Snapshot, term string, cause error) []domain.Product {
	usecase.Degraded(uc.logger, "search", usecase.ClassSearch, cause)
	return Match(snap, term)
}

// Match is the local search: a case-insensitive substring test of term
// against title, description, brand, category, rating and discount.
func Match(snap *domain.Snapshot, term string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Product, 0)
	if snap == nil || needle == "" {
		return out
	}
	for _, p := range snap.Products {
		if matches(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p domain.Product, needle string) bool {
	fields := [...]string{
		p.Title,
		p.Description,
		p.Brand,
		p.Category,
		formatNumber(p.Rating),
		formatNumber(p.DiscountPercentage),
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
