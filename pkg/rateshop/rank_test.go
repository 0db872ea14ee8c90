package rateshop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightflow/gateway/pkg/rateshop"
)

func rateResult(carrier string, price float64, transit int) rateshop.Result {
	return rateshop.Result{
		Carrier: carrier,
		Rate: &rateshop.Rate{
			CarrierCode: carrier,
			TransitDays: transit,
			TotalPrice:  rateshop.Money{Amount: price, Currency: "USD"},
		},
	}
}

func failedResult(carrier, msg string) rateshop.Result {
	return rateshop.Result{Carrier: carrier, Err: msg}
}

func TestSort_ByPrice(t *testing.T) {
	results := []rateshop.Result{
		rateResult("TAI", 485.50, 3),
		rateResult("EXLA", 512.00, 4),
		rateResult("ECHO", 445.75, 5),
	}

	rateshop.Sort(results, rateshop.SortByPrice)

	assert.Equal(t, "ECHO", results[0].Carrier)
	assert.Equal(t, "TAI", results[1].Carrier)
	assert.Equal(t, "EXLA", results[2].Carrier)
}

func TestSort_ByTransit(t *testing.T) {
	results := []rateshop.Result{
		rateResult("TAI", 485.50, 3),
		rateResult("EXLA", 512.00, 4),
		rateResult("ECHO", 445.75, 5),
	}

	rateshop.Sort(results, rateshop.SortByTransit)

	assert.Equal(t, "TAI", results[0].Carrier)
	assert.Equal(t, "EXLA", results[1].Carrier)
	assert.Equal(t, "ECHO", results[2].Carrier)
}

func TestSort_FailuresAfterSuccesses(t *testing.T) {
	results := []rateshop.Result{
		failedResult("CHR", "timeout"),
		rateResult("TAI", 485.50, 3),
		failedResult("TQL", "no rates"),
		rateResult("ECHO", 445.75, 5),
	}

	rateshop.Sort(results, rateshop.SortByPrice)

	assert.True(t, results[0].OK())
	assert.True(t, results[1].OK())
	assert.False(t, results[2].OK())
	assert.False(t, results[3].OK())
	// Failures keep their relative order.
	assert.Equal(t, "CHR", results[2].Carrier)
	assert.Equal(t, "TQL", results[3].Carrier)
}

func TestRecommend_LowestPriceWithinTransitCeiling(t *testing.T) {
	results := []rateshop.Result{
		rateResult("TAI", 500, 5),
		rateResult("EXLA", 450, 4),
		rateResult("ECHO", 600, 3),
	}

	rateshop.Recommend(results, 4)

	var flagged []string
	for _, res := range results {
		if res.Recommended {
			flagged = append(flagged, res.Carrier)
		}
	}
	require.Len(t, flagged, 1)
	assert.Equal(t, "EXLA", flagged[0])
}

func TestRecommend_NoneWithinCeiling(t *testing.T) {
	results := []rateshop.Result{
		rateResult("TAI", 500, 5),
		rateResult("EXLA", 450, 6),
	}

	rateshop.Recommend(results, 4)

	for _, res := range results {
		assert.False(t, res.Recommended)
	}
}

func TestRecommend_IgnoresFailures(t *testing.T) {
	results := []rateshop.Result{
		failedResult("TAI", "timeout"),
		rateResult("EXLA", 450, 4),
	}

	rateshop.Recommend(results, 4)

	assert.False(t, results[0].Recommended)
	assert.True(t, results[1].Recommended)
}

func TestRecommend_ClearsPreviousFlags(t *testing.T) {
	results := []rateshop.Result{
		rateResult("TAI", 500, 3),
		rateResult("EXLA", 450, 4),
	}
	results[0].Recommended = true

	rateshop.Recommend(results, 4)

	assert.False(t, results[0].Recommended)
	assert.True(t, results[1].Recommended)
}

func TestRecommend_EmptyResults(t *testing.T) {
	rateshop.Recommend(nil, 4)
	rateshop.Recommend([]rateshop.Result{}, 4)
}
