package invoices

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestThreeWayMatch(t *testing.T) {
	cases := []struct {
		name     string
		ordered  string
		received string
		billed   string
		want     enums.MatchResult
		variance string
	}{
		{"exact agreement", "25000.00", "25000.00", "25000.00", enums.MatchResultMatched, "0"},
		{"rounding drift within tolerance", "25000.00", "25000.01", "25000.00", enums.MatchResultMatched, "0"},
		{"overbilled against order", "25000.00", "25000.00", "26000.00", enums.MatchResultMismatched, "1000.00"},
		{"billed before goods arrive", "25000.00", "10000.00", "25000.00", enums.MatchResultMismatched, "15000.00"},
		{"short delivery and overbilling", "25000.00", "20000.00", "27500.00", enums.MatchResultMismatched, "7500.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := ThreeWayMatch(d(tc.ordered), d(tc.received), d(tc.billed))
			assert.Equal(t, tc.want, outcome.Result)
			assert.True(t, outcome.Variance.Equal(d(tc.variance)),
				"variance %s, want %s", outcome.Variance, tc.variance)
			assert.NotEmpty(t, outcome.Notes)
		})
	}
}

func TestReceivedValuePricesDeliveries(t *testing.T) {
	items := []models.PurchaseOrderItem{
		{ReceivedQty: d("60"), UnitPrice: d("250")},
		{ReceivedQty: d("200"), UnitPrice: d("185.50")},
	}
	// 60×250 + 200×185.50 = 15000 + 37100
	assert.True(t, receivedValue(items).Equal(d("52100.00")))
}
