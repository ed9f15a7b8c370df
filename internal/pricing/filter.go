package pricing

import "github.com/colexalia/colexalia-backend/internal/domain"

// Matches reports whether p satisfies every set filter.
// Price bounds need a known loose price.
func Matches(p domain.Product, f domain.SearchFilters) bool {
	if f.Platform != "" && p.Platform != f.Platform {
		return false
	}
	if f.Genre != "" && p.Genre != f.Genre {
		return false
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		if p.PriceLoose == nil {
			return false
		}
		if f.PriceMin != nil && *p.PriceLoose < *f.PriceMin {
			return false
		}
		if f.PriceMax != nil && *p.PriceLoose > *f.PriceMax {
			return false
		}
	}
	return true
}

func filterProducts(products []domain.Product, f domain.SearchFilters) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}
