package domain

import (
	"strconv"
	"strings"
	"time"
)

// ProductID is the canonical product identifier. Engines that speak in
// string ids use its decimal form.
type ProductID int64

func (id ProductID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseProductID accepts only the canonical decimal form, so "07" or "+7"
// do not resolve to 7.
func ParseProductID(s string) (ProductID, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	id := ProductID(n)
	if id.String() != s {
		return 0, false
	}
	return id, true
}

// ParseProductIDList parses a comma separated id list, ignoring blanks.
func ParseProductIDList(s string) ([]ProductID, error) {
	var ids []ProductID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, ok := ParseProductID(part)
		if !ok {
			return nil, Invalid("invalid product id " + strconv.Quote(part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JoinProductIDs renders ids as the comma separated form stored on purchases.
func JoinProductIDs(ids []ProductID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// Product is one normalized catalog entry. JSON names follow the upstream
// provider so the record can be handed to engines unprojected.
type Product struct {
	ID                 ProductID `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Price              float64   `json:"price"`
	Thumbnail          string    `json:"thumbnail"`
	Images             []string  `json:"images"`
	Brand              string    `json:"brand"`
	Category           string    `json:"category"`
	Rating             float64   `json:"rating"`
	Stock              int       `json:"stock"`
	DiscountPercentage float64   `json:"discountPercentage"`
	Tags               []string  `json:"tags"`
}

// ProductView is the storefront projection of a Product.
type ProductView struct {
	Key                ProductID `json:"key"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Price              float64   `json:"price"`
	Image              string    `json:"image"`
	Images             []string  `json:"images"`
	Brand              string    `json:"brand"`
	Category           string    `json:"category"`
	Rating             float64   `json:"rating"`
	Stock              int       `json:"stock"`
	DiscountPercentage float64   `json:"discountPercentage"`
}

func (p Product) View() ProductView {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductView{
		Key:                p.ID,
		Name:               p.Title,
		Description:        p.Description,
		Price:              p.Price,
		Image:              p.Thumbnail,
		Images:             images,
		Brand:              p.Brand,
		Category:           p.Category,
		Rating:             p.Rating,
		Stock:              p.Stock,
		DiscountPercentage: p.DiscountPercentage,
	}
}

// Views projects a product list, always returning a non-nil slice.
func Views(products []Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, p.View())
	}
	return out
}

// Snapshot is an immutable copy of the catalog. It is replaced as a whole on
// refresh and never patched.
type Snapshot struct {
	Products  []Product     `json:"products"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`

	index map[ProductID]int
}

// NewSnapshot builds a snapshot, dropping products whose id was already seen.
func NewSnapshot(products []Product, fetchedAt time.Time, ttl time.Duration) *Snapshot {
	s := &Snapshot{
		Products:  make([]Product, 0, len(products)),
		FetchedAt: fetchedAt,
		TTL:       ttl,
		index:     make(map[ProductID]int, len(products)),
	}
	for _, p := range products {
		if _, dup := s.index[p.ID]; dup {
			continue
		}
		s.index[p.ID] = len(s.Products)
		s.Products = append(s.Products, p)
	}
	return s
}

// EmptySnapshot is served when no catalog could ever be loaded.
func EmptySnapshot(ttl time.Duration) *Snapshot {
	return NewSnapshot(nil, time.Time{}, ttl)
}

// Fresh reports whether now - FetchedAt < TTL.
func (s *Snapshot) Fresh(now time.Time) bool {
	if s == nil || s.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(s.FetchedAt) < s.TTL
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Products)
}

// Get resolves a canonical id.
func (s *Snapshot) Get(id ProductID) (Product, bool) {
	if s == nil {
		return Product{}, false
	}
	if s.index == nil {
		for _, p := range s.Products {
			if p.ID == id {
				return p, true
			}
		}
		return Product{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return Product{}, false
	}
	return s.Products[i], true
}

// Resolve maps ids to products in the order given, silently dropping ids
// absent from the snapshot.
func (s *Snapshot) Resolve(ids []ProductID) []Product {
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// Filter returns products in catalog order whose id is in the set.
func (s *Snapshot) Filter(ids []ProductID) []Product {
	want := make(map[ProductID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]Product, 0, len(ids))
	if s == nil {
		return out
	}
	for _, p := range s.Products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// IDs lists the canonical ids in catalog order.
func (s *Snapshot) IDs() []ProductID {
	if s == nil {
		return []ProductID{}
	}
	ids := make([]ProductID, len(s.Products))
	for i, p := range s.Products {
		ids[i] = p.ID
	}
	return ids
}

func (s *Snapshot) reindex() {
	s.index = make(map[ProductID]int, len(s.Products))
	for i, p := range s.Products {
		if _, dup := s.index[p.ID]; !dup {
			s.index[p.ID] = i
		}
	}
}

// Reindex rebuilds the lookup table of a snapshot decoded from storage. Call
// it before the snapshot is shared.
func (s *Snapshot) Reindex() {
	if s != nil {
		s.reindex()
	}
}
