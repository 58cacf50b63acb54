package invoices

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// matchTolerance absorbs rounding drift between ordered, received and billed
// amounts. Anything beyond a centavo is a real discrepancy.
var matchTolerance = decimal.RequireFromString("0.01")

// MatchOutcome is the result of reconciling an invoice against its purchase
// order and the deliveries booked so far.
type MatchOutcome struct {
	Result   enums.MatchResult
	Variance decimal.Decimal
	Notes    string
}

// ThreeWayMatch reconciles the billed amount against the ordered amount and
// the value of goods actually received. The invoice matches only when it
// agrees with both within tolerance; the variance reported is the larger of
// the two gaps.
func ThreeWayMatch(orderedAmount, receivedAmount, invoiceAmount decimal.Decimal) MatchOutcome {
	orderGap := invoiceAmount.Sub(orderedAmount).Abs()
	receivedGap := invoiceAmount.Sub(receivedAmount).Abs()

	variance := orderGap
	if receivedGap.GreaterThan(variance) {
		variance = receivedGap
	}

	if orderGap.LessThanOrEqual(matchTolerance) && receivedGap.LessThanOrEqual(matchTolerance) {
		return MatchOutcome{
			Result:   enums.MatchResultMatched,
			Variance: decimal.Zero,
			Notes:    "invoice agrees with order and receipts",
		}
	}

	notes := fmt.Sprintf(
		"billed %s against ordered %s and received %s",
		invoiceAmount.StringFixed(2), orderedAmount.StringFixed(2), receivedAmount.StringFixed(2),
	)
	return MatchOutcome{
		Result:   enums.MatchResultMismatched,
		Variance: variance.Round(2),
		Notes:    notes,
	}
}

// receivedValue prices the delivered quantities at the order's unit prices.
func receivedValue(items []models.PurchaseOrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.ReceivedQty.Mul(item.UnitPrice))
	}
	return total.Round(2)
}
