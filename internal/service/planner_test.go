package service

import (
	"testing"

	"travel-wallet-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usdProfile(t *testing.T) *domain.CurrencyProfile {
	t.Helper()
	usd, ok := domain.DefaultCurrencyTable().Lookup("USD")
	require.True(t, ok)
	return usd
}

func krwProfile(t *testing.T) *domain.CurrencyProfile {
	t.Helper()
	krw, ok := domain.DefaultCurrencyTable().Lookup("KRW")
	require.True(t, ok)
	return krw
}

// One $10, one $5, three $1, two quarters. Price $7.30: largest-first hands
// over the single $10 and takes $2.70 back.
func TestPlanner_Plan_LargestFirst_SingleBillCover(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{1000: 1, 500: 1, 100: 3, 25: 2}

	plan, err := p.Plan(730, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int64{1000: 1}, plan.Used)
	assert.Equal(t, int64(1000), plan.TotalPaid)
	assert.Equal(t, int64(270), plan.Change)
}

// An exact combination always beats overpaying: with one $5 and three $1
// against $3.00, largest-first must skip the bill that would cover the whole
// price and compose $3.00 out of the ones, matching smallest-first to the cent.
func TestPlanner_Plan_ExactCoverageBeatsSingleBillCover(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{500: 1, 100: 3}

	largest, err := p.Plan(300, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{100: 3}, largest.Used)
	assert.Equal(t, int64(300), largest.TotalPaid)
	assert.Zero(t, largest.Change)

	smallest, err := p.Plan(300, snapshot, usdProfile(t), domain.StrategySmallestFirst)
	require.NoError(t, err)
	assert.Equal(t, largest.TotalPaid, smallest.TotalPaid,
		"strategies may differ in composition but never in paid total when both succeed")
}

func TestPlanner_Plan_ExactComposition(t *testing.T) {
	p := NewPlanner()
	// One $5, two $1, two quarters against $7.25.
	snapshot := map[int64]int64{500: 1, 100: 2, 25: 2}

	plan, err := p.Plan(725, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int64{500: 1, 100: 2, 25: 1}, plan.Used)
	assert.Equal(t, int64(725), plan.TotalPaid)
	assert.Zero(t, plan.Change)
}

// Greedy with no backtracking: {5:1, 2:3} cannot pay 6 largest-first even
// though 2+2+2 works, because the $5 is committed first and nothing fills
// the remaining 1.
func TestPlanner_Plan_GreedyDoesNotBacktrack(t *testing.T) {
	p := NewPlanner()
	ladder := &domain.CurrencyProfile{
		Code:          "USD",
		DecimalPlaces: 2,
		Denominations: []int64{500, 200},
	}
	snapshot := map[int64]int64{500: 1, 200: 3}

	_, err := p.Plan(600, snapshot, ladder, domain.StrategyLargestFirst)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInfeasible)

	var infErr *InfeasibleError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, int64(100), infErr.Shortfall)
}

func TestPlanner_Plan_OnesOnly(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{100: 5}

	for _, strategy := range domain.Strategies() {
		plan, err := p.Plan(300, snapshot, usdProfile(t), strategy)
		require.NoError(t, err, strategy)
		assert.Equal(t, map[int64]int64{100: 3}, plan.Used, strategy)
		assert.Zero(t, plan.Change, strategy)
	}
}

// Five $1 bills cannot cover $7.30 under any strategy. The orchestrator
// rejects this earlier on total balance, but the planner must still report
// the shortfall when asked directly.
func TestPlanner_Plan_InfeasibleBothStrategies(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{100: 5}

	for _, strategy := range domain.Strategies() {
		_, err := p.Plan(730, snapshot, usdProfile(t), strategy)
		assert.ErrorIs(t, err, ErrInfeasible, strategy)
	}
}

// The cover rule only applies as the opening move. Smallest-first commits
// the quarters and ones before reaching the bills, so the same wallet that
// covers $7.30 largest-first is infeasible smallest-first.
func TestPlanner_Plan_CoverRuleOnlyOpensThePlan(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{1000: 1, 500: 1, 100: 3, 25: 2}

	_, err := p.Plan(730, snapshot, usdProfile(t), domain.StrategySmallestFirst)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestPlanner_Plan_EqualPaidTotalsWhenBothFeasible(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{500: 2, 100: 10, 25: 8}

	largest, err := p.Plan(700, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)
	smallest, err := p.Plan(700, snapshot, usdProfile(t), domain.StrategySmallestFirst)
	require.NoError(t, err)

	assert.Equal(t, largest.TotalPaid, smallest.TotalPaid,
		"strategies may differ in composition but never in paid total when both succeed")
	assert.NotEqual(t, largest.Used, smallest.Used)
}

func TestPlanner_Plan_ChangeIdentityHolds(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{2000: 1, 1000: 2, 25: 3}

	plan, err := p.Plan(1950, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)

	var paid int64
	for denom, count := range plan.Used {
		paid += denom * count
	}
	assert.Equal(t, paid, plan.TotalPaid)
	assert.Equal(t, paid-1950, plan.Change)
	assert.GreaterOrEqual(t, plan.Change, int64(0))
}

func TestPlanner_Plan_RejectsNonPositivePrice(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{100: 5}

	_, err := p.Plan(0, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	assert.ErrorIs(t, err, ErrNonPositivePrice)

	_, err = p.Plan(-100, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	assert.ErrorIs(t, err, ErrNonPositivePrice)
}

func TestPlanner_Plan_Deterministic(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{1000: 1, 500: 1, 100: 3, 25: 2}

	first, err := p.Plan(730, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.Plan(730, snapshot, usdProfile(t), domain.StrategyLargestFirst)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPlanner_Plan_DoesNotMutateSnapshot(t *testing.T) {
	p := NewPlanner()
	snapshot := map[int64]int64{1000: 1, 100: 3}

	_, err := p.Plan(730, snapshot, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int64{1000: 1, 100: 3}, snapshot)
}

// Change on $2.70 from the register: two $1, two quarters, two dimes.
func TestPlanner_RecommendChange_LargestFirst(t *testing.T) {
	p := NewPlanner()

	change, err := p.RecommendChange(270, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int64{100: 2, 25: 2, 10: 2}, change.Breakdown)
	assert.Equal(t, int64(270), change.Total)

	var sum int64
	for denom, count := range change.Breakdown {
		sum += denom * count
	}
	assert.Equal(t, int64(270), sum)
}

func TestPlanner_RecommendChange_ZeroAmount(t *testing.T) {
	p := NewPlanner()

	change, err := p.RecommendChange(0, usdProfile(t), domain.StrategyLargestFirst)
	require.NoError(t, err)
	assert.Empty(t, change.Breakdown)
	assert.Zero(t, change.Total)
}

// KRW's smallest coin is 10, so change of 5 won cannot be represented.
func TestPlanner_RecommendChange_BelowSmallestCoin(t *testing.T) {
	p := NewPlanner()

	_, err := p.RecommendChange(5, krwProfile(t), domain.StrategyLargestFirst)
	assert.ErrorIs(t, err, ErrInfeasible)
}
