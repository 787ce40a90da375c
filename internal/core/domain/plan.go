package domain

// Strategy is the deterministic denomination ordering used when building a
// payment or change plan.
type Strategy string

const (
	// StrategyLargestFirst walks the ladder descending, spending big bills first.
	StrategyLargestFirst Strategy = "LARGEST_FIRST"
	// StrategySmallestFirst walks the ladder ascending, clearing out small change.
	StrategySmallestFirst Strategy = "SMALLEST_FIRST"
)

// Strategies lists every planning strategy in evaluation order.
func Strategies() []Strategy {
	return []Strategy{StrategyLargestFirst, StrategySmallestFirst}
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyLargestFirst || s == StrategySmallestFirst
}

// PaymentPlan is the transient output of the planner for one strategy: which
// denominations to hand over and the change due back. Never persisted.
type PaymentPlan struct {
	Strategy  Strategy        `json:"strategy"`
	Used      map[int64]int64 `json:"used"` // denomination (minor units) -> quantity handed over
	TotalPaid int64           `json:"total_paid"`
	Change    int64           `json:"change"`
}

// ChangePlan is the register-side breakdown of change for a successful plan.
// Quantities are unconstrained by the traveler's wallet.
type ChangePlan struct {
	Strategy  Strategy        `json:"strategy"`
	Breakdown map[int64]int64 `json:"breakdown"`
	Total     int64           `json:"total"`
}
