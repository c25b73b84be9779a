package calculator

import (
	"math"
	"strings"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
)

// Dashboard thresholds, in percent
const (
	AtRiskPercent        = 50.0
	NearPromotionPercent = 80.0
)

// CycleContext the cycle settings every dealer is measured against
type CycleContext struct {
	CurrentCycle string
	Weights      model.CycleWeights
}

// CurrentWeight weight of the current cycle, model.DefaultCycleWeight when unset.
func (c CycleContext) CurrentWeight() int {
	return c.Weights.Weight(c.CurrentCycle)
}

// Compute derives a dealer's progress metrics. Everything is computed on raw
// sums; money and percentages are rounded only in the returned struct.
func Compute(d model.Dealer, ctx CycleContext) model.DealerMetrics {
	if d.Cycles == nil {
		d.Cycles = model.CycleTotals{}
	}

	lifetime := d.Cycles.Sum()
	current := d.Cycles[ctx.CurrentCycle]
	tier := ResolveTier(d.OfficialTier, lifetime)

	amountToMaintain := math.Max(0, tier.MinToMaintain-lifetime)
	percentToMaintain := 100.0
	if tier.MinToMaintain > 0 {
		percentToMaintain = percentOf(lifetime, tier.MinToMaintain)
	}

	m := model.DealerMetrics{
		Dealer:            d,
		LifetimeTotal:     RoundMoney(lifetime),
		CurrentCycleTotal: RoundMoney(current),
		Tier:              tier.Name,
		MinToMaintain:     tier.MinToMaintain,
		AmountToMaintain:  RoundMoney(amountToMaintain),
		PercentToMaintain: RoundPercent(percentToMaintain),
	}

	var percentToAdvance *float64
	if tier.HasAdvance() {
		next := tier.Next
		threshold := tier.AdvanceThreshold
		amount := RoundMoney(math.Max(0, threshold-lifetime))
		raw := percentOf(lifetime, threshold)
		rounded := RoundPercent(raw)

		m.NextTier = &next
		m.AdvanceThreshold = &threshold
		m.AmountToAdvance = &amount
		m.PercentToAdvance = &rounded
		percentToAdvance = &raw
	}

	goal := WeightedGoal(tier, ctx.CurrentWeight())
	m.WeightedCycleGoal = RoundMoney(goal)
	if goal > 0 {
		m.PercentOfCycleGoal = RoundPercent(percentOf(current, goal))
	}

	m.Status = Status(percentToMaintain, percentToAdvance)
	m.NearPromotion = percentToAdvance != nil && *percentToAdvance >= NearPromotionPercent
	m.AtRisk = percentToMaintain < AtRiskPercent
	return m
}

// ComputeAll runs Compute over dealers, keeping their order.
func ComputeAll(dealers []model.Dealer, ctx CycleContext) []model.DealerMetrics {
	out := make([]model.DealerMetrics, len(dealers))
	for i, d := range dealers {
		out[i] = Compute(d, ctx)
	}
	return out
}

// ResolveTier uses the official tier when it names a known one (ignoring case),
// otherwise the tier whose range holds the lifetime total.
func ResolveTier(official string, lifetime float64) model.Tier {
	official = strings.TrimSpace(official)
	if official != "" {
		for _, t := range model.Tiers {
			if strings.EqualFold(t.Name, official) {
				return t
			}
		}
	}
	return model.TierForTotal(lifetime)
}

// WeightedGoal is the share of the tier target expected in the current cycle:
// the advance threshold (or the floor for the top tier) times weight/100.
func WeightedGoal(tier model.Tier, weight int) float64 {
	if weight <= 0 {
		return 0
	}
	base := tier.MinToMaintain
	if tier.HasAdvance() {
		base = tier.AdvanceThreshold
	}
	return base * float64(weight) / 100
}

// Status picks the first matching label. The maintain percentage gates first;
// the advance percentage only matters once the floor is fully met.
func Status(percentToMaintain float64, percentToAdvance *float64) model.StatusLabel {
	switch {
	case percentToMaintain < 30:
		return model.StatusCritical
	case percentToMaintain < 50:
		return model.StatusWarmingUp
	case percentToMaintain < 80:
		return model.StatusOnTrack
	case percentToMaintain < 100:
		return model.StatusAlmostThere
	case percentToAdvance != nil && *percentToAdvance >= NearPromotionPercent:
		return model.StatusReadyToRise
	default:
		return model.StatusAccomplished
	}
}

// percentOf returns value/target*100 clamped to [0, 100]; target must be > 0.
func percentOf(value, target float64) float64 {
	p := value / target * 100
	switch {
	case p > 100:
		return 100
	case p < 0 || math.IsNaN(p):
		return 0
	}
	return p
}
