package model

import "math"

// Tier one segment of the progression ladder.
// MaxToMaintain is exclusive; the top tier has no advance threshold.
type Tier struct {
	Name             string
	MinToMaintain    float64
	MaxToMaintain    float64
	AdvanceThreshold float64
	Next             string
}

// HasAdvance reports whether a higher tier exists.
func (t Tier) HasAdvance() bool {
	return t.Next != ""
}

// Contains reports whether total falls in [MinToMaintain, MaxToMaintain).
func (t Tier) Contains(total float64) bool {
	return total >= t.MinToMaintain && total < t.MaxToMaintain
}

// Tier names
const (
	TierBronze    = "Bronze"
	TierPrata     = "Prata"
	TierOuro      = "Ouro"
	TierPlatina   = "Platina"
	TierRubi      = "Rubi"
	TierEsmeralda = "Esmeralda"
	TierDiamante  = "Diamante"
)

// Tiers lowest first. Each MinToMaintain equals the previous AdvanceThreshold.
var Tiers = []Tier{
	{Name: TierBronze, MinToMaintain: 0, MaxToMaintain: 3000, AdvanceThreshold: 3000, Next: TierPrata},
	{Name: TierPrata, MinToMaintain: 3000, MaxToMaintain: 9000, AdvanceThreshold: 9000, Next: TierOuro},
	{Name: TierOuro, MinToMaintain: 9000, MaxToMaintain: 20000, AdvanceThreshold: 20000, Next: TierPlatina},
	{Name: TierPlatina, MinToMaintain: 20000, MaxToMaintain: 50000, AdvanceThreshold: 50000, Next: TierRubi},
	{Name: TierRubi, MinToMaintain: 50000, MaxToMaintain: 80000, AdvanceThreshold: 80000, Next: TierEsmeralda},
	{Name: TierEsmeralda, MinToMaintain: 80000, MaxToMaintain: 130000, AdvanceThreshold: 130000, Next: TierDiamante},
	{Name: TierDiamante, MinToMaintain: 130000, MaxToMaintain: math.Inf(1)},
}

// LowestTier is the default official tier for registry rows without one.
func LowestTier() Tier {
	return Tiers[0]
}

// TierByName looks a tier up by its exact name.
func TierByName(name string) (Tier, bool) {
	for _, t := range Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// TierForTotal returns the tier whose range contains total.
// Negative totals land in the lowest tier.
func TierForTotal(total float64) Tier {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if total >= Tiers[i].MinToMaintain {
			return Tiers[i]
		}
	}
	return Tiers[0]
}

// TierNames lists tier names lowest first.
func TierNames() []string {
	names := make([]string, len(Tiers))
	for i, t := range Tiers {
		names[i] = t.Name
	}
	return names
}
