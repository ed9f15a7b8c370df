package pricing

import (
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"github.com/colexalia/colexalia-backend/internal/domain"
)

var (
	simPlatforms = []string{"Nintendo Switch", "PlayStation 5", "Xbox Series X", "PlayStation 4", "Nintendo 3DS"}
	simGenres    = []string{"RPG", "Action", "Adventure", "Sports", "Racing"}
)

const (
	minSimResults = 5
	maxSimResults = 20
)

// generator produces synthetic product and history data. *rand.Rand is not safe for
// concurrent use, so every draw goes through mu.
type generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func newGenerator(rnd *rand.Rand, now func() time.Time) *generator {
	return &generator{rnd: rnd, now: now}
}

func (g *generator) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

func (g *generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// prices draws three correlated prices: cib ~ 1.4x loose, new ~ 1.3x cib, plus noise.
func (g *generator) prices(base, spread float64) (loose, cib, newPrice float64) {
	loose = round2(base + g.float()*spread)
	cib = round2(loose*1.4 + g.float()*10)
	newPrice = round2(cib*1.3 + g.float()*15)
	return loose, cib, newPrice
}

func (g *generator) releaseDate() string {
	return fmt.Sprintf("202%d-%02d-01", g.intN(4), g.intN(12)+1)
}

// searchCandidates generates between 5 and 20 unfiltered products for query.
func (g *generator) searchCandidates(query string) []domain.Product {
	n := minSimResults + g.intN(maxSimResults-minSimResults+1)
	stamp := g.now().UnixMilli()

	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		loose, cib, newPrice := g.prices(15, 45)
		out = append(out, domain.Product{
			ID:          fmt.Sprintf("sim-%d-%d", i, stamp),
			Name:        fmt.Sprintf("%s Game %d", query, i+1),
			Platform:    simPlatforms[g.intN(len(simPlatforms))],
			Genre:       simGenres[g.intN(len(simGenres))],
			ImageURL:    "https://via.placeholder.com/300x300.png?text=" + url.QueryEscape(fmt.Sprintf("%s %d", query, i+1)),
			PriceLoose:  domain.Float(loose),
			PriceCIB:    domain.Float(cib),
			PriceNew:    domain.Float(newPrice),
			ReleaseDate: g.releaseDate(),
		})
	}
	return out
}

// detail fabricates a product record for any id.
func (g *generator) detail(id string) *domain.Product {
	loose, cib, newPrice := g.prices(15, 45)
	return &domain.Product{
		ID:          id,
		Name:        "Game Details for ID: " + prefix(id, 8),
		Platform:    simPlatforms[g.intN(len(simPlatforms))],
		Genre:       simGenres[g.intN(len(simGenres))],
		ImageURL:    "https://via.placeholder.com/500x500.png?text=" + url.QueryEscape("Game "+prefix(id, 6)),
		PriceLoose:  domain.Float(loose),
		PriceCIB:    domain.Float(cib),
		PriceNew:    domain.Float(newPrice),
		ReleaseDate: g.releaseDate(),
		UPC:         fmt.Sprintf("123456789%d", g.intN(1000)),
		ASIN:        fmt.Sprintf("B0%d", g.intN(10000000)),
	}
}

// history returns one point per calendar month, oldest first, ending at the current month.
// The day of month is clamped so that every step is exactly one month.
func (g *generator) history(months int) []domain.PricePoint {
	if months <= 0 {
		months = DefaultHistoryMonths
	}
	now := g.now().UTC()
	year, month, day := now.Date()

	points := make([]domain.PricePoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		first := time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1).Day()
		date := first.AddDate(0, 0, min(day, last)-1)

		loose, cib, newPrice := g.prices(20, 30)
		points = append(points, domain.PricePoint{
			Date:  date.Format("2006-01-02"),
			Loose: loose,
			CIB:   cib,
			New:   newPrice,
		})
	}
	return points
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
