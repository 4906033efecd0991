package catalog

import (
	"regexp"
	"strings"

	"github.com/fastygo/storecore/domain"
)

const (
	defaultBrand = "Unknown"
	defaultTag   = "uncategorized"
)

// RawProduct is a record as returned by the upstream catalog provider. Any
// field may be absent.
type RawProduct struct {
	ID                 *int64   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Tags               []string `json:"tags"`
}

var whitespace = regexp.MustCompile(`\s+`)

// FromRaw maps an upstream record onto a Product. Records without an id
// cannot be addressed by any engine and are rejected.
func FromRaw(raw RawProduct) (domain.Product, bool) {
	if raw.ID == nil {
		return domain.Product{}, false
	}
	return Normalize(domain.Product{
		ID:                 domain.ProductID(*raw.ID),
		Title:              raw.Title,
		Description:        raw.Description,
		Price:              raw.Price,
		Thumbnail:          raw.Thumbnail,
		Images:             raw.Images,
		Brand:              raw.Brand,
		Category:           raw.Category,
		Rating:             raw.Rating,
		Stock:              raw.Stock,
		DiscountPercentage: raw.DiscountPercentage,
		Tags:               raw.Tags,
	}), true
}

// Normalize applies catalog defaults. It is idempotent:
// Normalize(Normalize(p)) equals Normalize(p).
func Normalize(p domain.Product) domain.Product {
	out := p
	out.Images = secondaryImages(p.Thumbnail, p.Images)
	if strings.TrimSpace(out.Brand) == "" {
		out.Brand = defaultBrand
	}
	if out.Rating < 0 {
		out.Rating = 0
	}
	if out.Rating > 5 {
		out.Rating = 5
	}
	if out.Stock < 0 {
		out.Stock = 0
	}
	out.Tags = normalizeTags(p.Tags, p.Category)
	return out
}

// Tag lowercases a label and joins whitespace runs with a hyphen.
func Tag(label string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "-")
}

func secondaryImages(primary string, images []string) []string {
	out := make([]string, 0, len(images))
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		if img == "" || img == primary {
			continue
		}
		if _, dup := seen[img]; dup {
			continue
		}
		seen[img] = struct{}{}
		out = append(out, img)
	}
	return out
}

func normalizeTags(tags []string, category string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tag := Tag(t)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > 0 {
		return out
	}
	if tag := Tag(category); tag != "" {
		return []string{tag}
	}
	return []string{defaultTag}
}
