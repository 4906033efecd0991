package usecase

import (
	"time"

	"github.com/fastygo/storecore/domain"
)

// ProductProjection is the reduced product record sent to the recommend,
// trending and favorite-category engines.
type ProductProjection struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Tags        []string `json:"tags"`
}

// UserTransaction is a purchase with user attribution.
type UserTransaction struct {
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectProducts projects every product of the snapshot in catalog order.
func ProjectProducts(snap *domain.Snapshot) []ProductProjection {
	out := make([]ProductProjection, 0, snap.Len())
	for _, p := range snap.Products {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, ProductProjection{
			ID:          p.ID.String(),
			Name:        p.Title,
			Description: p.Description,
			Price:       p.Price,
			Rating:      p.Rating,
			Tags:        tags,
		})
	}
	return out
}

// AttributedTransactions converts purchases to the engine's attributed form.
func AttributedTransactions(txs []domain.Transaction) []UserTransaction {
	out := make([]UserTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, UserTransaction{
			UserID:    tx.UserID,
			ProductID: tx.Product(),
			Timestamp: tx.Timestamp,
		})
	}
	return out
}
