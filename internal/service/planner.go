package service

import (
	"errors"
	"fmt"

	"travel-wallet-backend/internal/core/domain"
)

// ErrInfeasible marks a strategy-specific planning outcome: the greedy walk
// could not zero out the remaining price with the denominations on hand.
// It is expected data for the caller, not a failure of the overall request.
var ErrInfeasible = errors.New("strategy infeasible for available denominations")

// ErrNonPositivePrice rejects plans for zero or negative amounts.
var ErrNonPositivePrice = errors.New("price must be greater than zero")

// InfeasibleError carries the uncovered remainder for one strategy.
type InfeasibleError struct {
	Strategy  domain.Strategy
	Shortfall int64 // minor units that could not be covered
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s: short %d minor units", e.Strategy, e.Shortfall)
}

func (e *InfeasibleError) Is(target error) bool {
	return target == ErrInfeasible
}

// Planner computes greedy payment and change breakdowns over a currency's
// denomination ladder. It is a pure component: no I/O, no state, identical
// inputs always produce identical plans.
type Planner struct{}

// NewPlanner creates a Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan computes which denominations to hand over for a price, constrained by
// the wallet snapshot. All amounts are minor units; price must already be
// rounded to the currency's precision.
//
// The walk is greedy and single-pass per strategy, deliberately not globally
// optimal: once a denomination is committed there is no backtracking, so a
// wallet of {5:1, 2:3} cannot pay 6 under LargestFirst even though 2+2+2
// would work. Exact coverage always wins when the walk can reach it; only
// when it cannot is a second walk attempted that may overpay with a single
// opening bill covering the whole price, the rest coming back as change
// (paying 7.30 with one 10 bill when no exact combination exists).
func (p *Planner) Plan(price int64, snapshot map[int64]int64, cur *domain.CurrencyProfile, strategy domain.Strategy) (*domain.PaymentPlan, error) {
	if price <= 0 {
		return nil, ErrNonPositivePrice
	}

	ladder := ladderFor(cur, strategy)
	used, remaining := greedyWalk(price, snapshot, ladder, false)
	if remaining > 0 {
		coverUsed, coverRemaining := greedyWalk(price, snapshot, ladder, true)
		if coverRemaining > 0 {
			// The cover walk cannot fail unless the exact walk already
			// failed for the same reason, so the exact shortfall stands.
			return nil, &InfeasibleError{Strategy: strategy, Shortfall: remaining}
		}
		used = coverUsed
	}

	var totalPaid int64
	for denom, count := range used {
		totalPaid += denom * count
	}

	return &domain.PaymentPlan{
		Strategy:  strategy,
		Used:      used,
		TotalPaid: totalPaid,
		Change:    totalPaid - price,
	}, nil
}

// greedyWalk runs one pass over the ladder taking exact multiples of each
// denomination. With allowCover set, the opening move may instead hand over
// one bill larger than the whole remaining price.
func greedyWalk(price int64, snapshot map[int64]int64, ladder []int64, allowCover bool) (map[int64]int64, int64) {
	remaining := price
	used := make(map[int64]int64)

	for _, denom := range ladder {
		if remaining <= 0 {
			break
		}
		available := snapshot[denom]
		if available <= 0 {
			continue
		}
		count := remaining / denom
		if count == 0 && allowCover && len(used) == 0 {
			count = 1
		}
		if count > available {
			count = available
		}
		if count > 0 {
			used[denom] = count
			remaining -= denom * count
		}
	}
	return used, remaining
}

// RecommendChange breaks an amount of change into denominations, assuming the
// register has unlimited quantities. An amount of zero or less yields an
// empty plan. The only way this can fail is an amount the ladder cannot
// represent, e.g. a remainder below the smallest coin.
func (p *Planner) RecommendChange(amount int64, cur *domain.CurrencyProfile, strategy domain.Strategy) (*domain.ChangePlan, error) {
	breakdown := make(map[int64]int64)
	if amount <= 0 {
		return &domain.ChangePlan{Strategy: strategy, Breakdown: breakdown, Total: 0}, nil
	}

	remaining := amount
	for _, denom := range ladderFor(cur, strategy) {
		if remaining <= 0 {
			break
		}
		count := remaining / denom
		if count > 0 {
			breakdown[denom] = count
			remaining -= denom * count
		}
	}

	if remaining > 0 {
		return nil, &InfeasibleError{Strategy: strategy, Shortfall: remaining}
	}

	return &domain.ChangePlan{Strategy: strategy, Breakdown: breakdown, Total: amount}, nil
}

func ladderFor(cur *domain.CurrencyProfile, strategy domain.Strategy) []int64 {
	if strategy == domain.StrategySmallestFirst {
		return cur.LadderAscending()
	}
	return cur.LadderDescending()
}
