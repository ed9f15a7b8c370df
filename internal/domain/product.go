package domain

// Product is a priced catalog entry returned by the price lookup client.
// It is never persisted and never mutated after construction.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Platform    string   `json:"platform"`
	ImageURL    string   `json:"image_url"`
	PriceLoose  *float64 `json:"price_loose"`
	PriceCIB    *float64 `json:"price_cib"`
	PriceNew    *float64 `json:"price_new"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	UPC         string   `json:"upc,omitempty"`
	ASIN        string   `json:"asin,omitempty"`
}

// PriceFor returns the price matching a condition, or nil when unknown.
func (p Product) PriceFor(c Condition) *float64 {
	switch c {
	case ConditionLoose:
		return p.PriceLoose
	case ConditionCIB:
		return p.PriceCIB
	case ConditionNew:
		return p.PriceNew
	}
	return nil
}

// SearchFilters narrows a product search. Zero values mean "unset".
// Price bounds compare against the loose price.
type SearchFilters struct {
	Platform string   `json:"platform,omitempty"`
	Genre    string   `json:"genre,omitempty"`
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
}

// PricePoint is one monthly sample of a price history
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Loose float64 `json:"loose"`
	CIB   float64 `json:"cib"`
	New   float64 `json:"new"`
}

// Condition of a physical copy
type Condition string

const (
	ConditionLoose Condition = "loose"
	ConditionCIB   Condition = "cib"
	ConditionNew   Condition = "new"
)

// Valid reports whether c is one of loose, cib, new
func (c Condition) Valid() bool {
	switch c {
	case ConditionLoose, ConditionCIB, ConditionNew:
		return true
	}
	return false
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
