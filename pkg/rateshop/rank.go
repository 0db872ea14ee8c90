package rateshop

import (
	"sort"
)

// SortKey selects the ranking order for shop results.
type SortKey string

const (
	// SortByPrice orders successful results by ascending total price.
	SortByPrice SortKey = "price"
	// SortByTransit orders successful results by ascending transit days.
	SortByTransit SortKey = "transit"
)

// DefaultRecommendMaxTransit is the transit-day ceiling for the
// recommended-rate selection.
const DefaultRecommendMaxTransit = 4

// Sort orders results in place by the given key, ascending. Failure results
// sort after all successes; relative order of equal entries is preserved.
func Sort(results []Result, key SortKey) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.OK() != b.OK() {
			return a.OK()
		}
		if !a.OK() {
			return false
		}
		switch key {
		case SortByTransit:
			return a.Rate.TransitDays < b.Rate.TransitDays
		default:
			return a.Rate.TotalPrice.Amount < b.Rate.TotalPrice.Amount
		}
	})
}

// Recommend flags at most one result as recommended: the lowest-priced
// successful rate with transit days at or below maxTransit. If no successful
// rate meets the ceiling, nothing is flagged. Existing flags are cleared.
func Recommend(results []Result, maxTransit int) {
	best := -1
	for i := range results {
		results[i].Recommended = false
		if !results[i].OK() || results[i].Rate.TransitDays > maxTransit {
			continue
		}
		if best < 0 || results[i].Rate.TotalPrice.Amount < results[best].Rate.TotalPrice.Amount {
			best = i
		}
	}
	if best >= 0 {
		results[best].Recommended = true
	}
}
