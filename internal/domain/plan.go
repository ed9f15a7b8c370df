package domain

// Plan is a premium subscription offer. Plans are display-only; no payment flow exists.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Period      string   `json:"period"`
	Features    []string `json:"features"`
	Recommended bool     `json:"recommended,omitempty"`
}

// PremiumPlans returns the plan catalog
func PremiumPlans() []Plan {
	base := []string{
		"Full price history",
		"Price alerts for your wishlist",
		"No ads",
		"Advanced collection statistics",
	}
	yearly := append(append([]string{}, base...), "Price API access", "2 months free")

	return []Plan{
		{ID: "monthly", Name: "Monthly Plan", Price: 3.99, Currency: "EUR", Period: "month", Features: base},
		{ID: "yearly", Name: "Yearly Plan", Price: 39.99, Currency: "EUR", Period: "year", Features: yearly, Recommended: true},
	}
}
