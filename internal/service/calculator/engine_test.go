package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
)

func defaultContext() CycleContext {
	s := model.DefaultSettings()
	return CycleContext{CurrentCycle: s.CurrentCycle, Weights: s.Weights}
}

func dealer(tier string, cycles model.CycleTotals) model.Dealer {
	return model.Dealer{Code: "77", Name: "Ana", SectorID: "900", OfficialTier: tier, Cycles: cycles}
}

// TestCompute_SingleSaleScenario one Bronze dealer with a single R$ 500 sale
func TestCompute_SingleSaleScenario(t *testing.T) {
	t.Parallel()

	for _, official := range []string{"", "Bronze"} {
		m := Compute(dealer(official, model.CycleTotals{"01/2026": 500}), defaultContext())

		assert.Equal(t, 500.0, m.LifetimeTotal)
		assert.Equal(t, 500.0, m.CurrentCycleTotal)
		assert.Equal(t, model.TierBronze, m.Tier)
		require.NotNil(t, m.NextTier)
		assert.Equal(t, model.TierPrata, *m.NextTier)
		assert.Equal(t, 100.0, m.PercentToMaintain)
		assert.Equal(t, 0.0, m.AmountToMaintain)
		require.NotNil(t, m.PercentToAdvance)
		assert.Equal(t, 16.7, *m.PercentToAdvance)
		assert.Equal(t, 2500.0, *m.AmountToAdvance)
		assert.Equal(t, 240.0, m.WeightedCycleGoal)
		assert.Equal(t, 100.0, m.PercentOfCycleGoal)
		assert.Equal(t, model.StatusAccomplished, m.Status)
		assert.False(t, m.NearPromotion)
		assert.False(t, m.AtRisk)
	}
}

func TestCompute_TierBoundary(t *testing.T) {
	t.Parallel()

	m := Compute(dealer("", model.CycleTotals{"01/2026": 2999.99}), defaultContext())
	assert.Equal(t, model.TierBronze, m.Tier)

	m = Compute(dealer("Prata", model.CycleTotals{"01/2026": 2999.99}), defaultContext())
	assert.Equal(t, model.TierPrata, m.Tier)
	assert.Equal(t, 0.01, m.AmountToMaintain)
	assert.Equal(t, model.StatusAlmostThere, m.Status, "99.99% must not count as maintained")
	assert.Less(t, percentOf(2999.99, 3000), 100.0)

	m = Compute(dealer("", model.CycleTotals{"01/2026": 3000}), defaultContext())
	assert.Equal(t, model.TierPrata, m.Tier)
}

func TestCompute_WeightZeroGuard(t *testing.T) {
	t.Parallel()

	ctx := CycleContext{CurrentCycle: "01/2026", Weights: model.CycleWeights{"01/2026": 0}}
	for _, total := range []float64{0, 100, 50000} {
		m := Compute(dealer("", model.CycleTotals{"01/2026": total}), ctx)
		assert.Equal(t, 0.0, m.WeightedCycleGoal)
		assert.Equal(t, 0.0, m.PercentOfCycleGoal)
	}
}

func TestCompute_MissingWeightDefaultsToTen(t *testing.T) {
	t.Parallel()

	ctx := CycleContext{CurrentCycle: "10/2026", Weights: model.CycleWeights{"01/2026": 8}}
	m := Compute(dealer("Bronze", model.CycleTotals{"10/2026": 150}), ctx)
	assert.Equal(t, 300.0, m.WeightedCycleGoal)
	assert.Equal(t, 50.0, m.PercentOfCycleGoal)
}

func TestCompute_NoSalesIsCritical(t *testing.T) {
	t.Parallel()

	m := Compute(dealer("Prata", nil), defaultContext())
	assert.Equal(t, 0.0, m.LifetimeTotal)
	assert.Equal(t, 0.0, m.CurrentCycleTotal)
	assert.Equal(t, 0.0, m.PercentToMaintain)
	assert.Equal(t, 3000.0, m.AmountToMaintain)
	assert.Equal(t, 0.0, *m.PercentToAdvance)
	assert.Equal(t, 0.0, m.PercentOfCycleGoal)
	assert.Equal(t, model.StatusCritical, m.Status)
	assert.True(t, m.AtRisk)
	assert.NotNil(t, m.Cycles)
}

func TestCompute_TopTier(t *testing.T) {
	t.Parallel()

	m := Compute(dealer("Diamante", model.CycleTotals{"01/2026": 200000}), defaultContext())
	assert.Equal(t, model.TierDiamante, m.Tier)
	assert.Nil(t, m.NextTier)
	assert.Nil(t, m.AdvanceThreshold)
	assert.Nil(t, m.AmountToAdvance)
	assert.Nil(t, m.PercentToAdvance)
	assert.Equal(t, 10400.0, m.WeightedCycleGoal)
	assert.False(t, m.NearPromotion)
	assert.Equal(t, model.StatusAccomplished, m.Status)
}

func TestCompute_NearPromotionAndRisk(t *testing.T) {
	t.Parallel()

	near := Compute(dealer("Prata", model.CycleTotals{"01/2026": 7200}), defaultContext())
	assert.True(t, near.NearPromotion)
	assert.Equal(t, model.StatusReadyToRise, near.Status)

	risk := Compute(dealer("Prata", model.CycleTotals{"01/2026": 1400}), defaultContext())
	assert.True(t, risk.AtRisk)
	assert.Equal(t, 46.7, risk.PercentToMaintain)
	assert.Equal(t, model.StatusWarmingUp, risk.Status)
}

func TestResolveTier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.TierOuro, ResolveTier(" OURO ", 0).Name)
	assert.Equal(t, model.TierPlatina, ResolveTier("Ametista", 25000).Name)
	assert.Equal(t, model.TierBronze, ResolveTier("", 10).Name)
}

func TestStatus_Ordering(t *testing.T) {
	t.Parallel()

	f := func(v float64) *float64 { return &v }
	tests := []struct {
		maintain float64
		advance  *float64
		want     model.StatusLabel
	}{
		{0, nil, model.StatusCritical},
		{29.9, f(100), model.StatusCritical},
		{30, nil, model.StatusWarmingUp},
		{49.99, nil, model.StatusWarmingUp},
		{50, nil, model.StatusOnTrack},
		{80, nil, model.StatusAlmostThere},
		{80, f(95), model.StatusAlmostThere},
		{99.99, nil, model.StatusAlmostThere},
		{100, f(80), model.StatusReadyToRise},
		{100, f(79.9), model.StatusAccomplished},
		{100, nil, model.StatusAccomplished},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.maintain, tt.advance), "maintain=%v", tt.maintain)
	}
}

func TestCompute_RoundsOnlyAtOutput(t *testing.T) {
	t.Parallel()

	cycles := model.CycleTotals{"01/2026": 0.004, "02/2026": 0.004, "03/2026": 0.004}
	m := Compute(dealer("", cycles), defaultContext())
	// each cycle rounds to 0.00 on its own; the sum must not
	assert.Equal(t, 0.01, m.LifetimeTotal)
}

func TestCompute_Idempotent(t *testing.T) {
	t.Parallel()

	d := dealer("Ouro", model.CycleTotals{"01/2026": 1234.567, "02/2026": 8000.01})
	assert.Equal(t, Compute(d, defaultContext()), Compute(d, defaultContext()))
}

func TestRounding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.01, RoundMoney(1.005))
	assert.Equal(t, 16.7, RoundPercent(16.666666))
	assert.Equal(t, 0.0, RoundMoney(0))
}
