package transport

import (
	"encoding/json"

	"github.com/fastygo/storecore/domain"
)

// Envelope wraps error responses and the health report. Successful
// storefront calls return their payload unwrapped.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

type PurchaseResponse struct {
	Message     string              `json:"message"`
	Transaction *domain.Transaction `json:"transaction"`
}

type AccountResponse struct {
	Message string       `json:"message,omitempty"`
	Created bool         `json:"created,omitempty"`
	User    *domain.User `json:"user"`
}

type FavoritesResponse struct {
	FavoriteCategories []string `json:"favorite_categories"`
}

// TrendingByTag renders a per-tag ranking as {"<tag>": [...], "error": "..."}.
func TrendingByTag(tag string, products []domain.ProductView, engineError string) map[string]interface{} {
	out := map[string]interface{}{tag: products}
	if engineError != "" {
		out["error"] = engineError
	}
	return out
}
