package calculator

import (
	"fmt"
	"sort"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/util"
)

// RankSize dealers shown in the cycle ranking
const RankSize = 10

// KPIs aggregates dealer metrics into the dashboard header numbers.
// The volume sums the already rounded lifetime totals.
func KPIs(metrics []model.DealerMetrics) model.SectorKPIs {
	k := model.SectorKPIs{
		DealerCount: len(metrics),
		TierCounts:  make(map[string]int),
	}
	total := 0.0
	for _, m := range metrics {
		total += m.LifetimeTotal
		if m.NearPromotion {
			k.NearPromotion++
		}
		if m.AtRisk {
			k.AtRisk++
		}
		k.TierCounts[m.Tier]++
	}
	k.TotalVolume = RoundMoney(total)
	return k
}

// Rank orders dealers by current-cycle sales, keeps the top RankSize and
// builds the motivational lines shown above the ranking.
func Rank(metrics []model.DealerMetrics) model.SectorRank {
	ranked := make([]model.DealerMetrics, len(metrics))
	copy(ranked, metrics)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CurrentCycleTotal != ranked[j].CurrentCycleTotal {
			return ranked[i].CurrentCycleTotal > ranked[j].CurrentCycleTotal
		}
		return ranked[i].Code < ranked[j].Code
	})
	if len(ranked) > RankSize {
		ranked = ranked[:RankSize]
	}

	kpis := KPIs(metrics)
	boosters := []string{}
	if kpis.NearPromotion > 0 {
		boosters = append(boosters, fmt.Sprintf("🎯 %d revendedores na reta final do LEVEL UP!", kpis.NearPromotion))
	}
	if kpis.AtRisk > 0 {
		boosters = append(boosters, fmt.Sprintf("⚠️ %d revendedores precisam de BOOST urgente!", kpis.AtRisk))
	}
	if len(ranked) > 0 && ranked[0].CurrentCycleTotal > 0 {
		boosters = append(boosters, fmt.Sprintf("🔥 %s lidera o ciclo com %s!", ranked[0].Name, util.FormatBRL(ranked[0].CurrentCycleTotal)))
	}

	return model.SectorRank{Ranking: ranked, MissionBoosters: boosters}
}

// Cycles totals the sector for every configured cycle, in cycle order.
func Cycles(dealers []model.Dealer, weights model.CycleWeights) []model.CycleSummary {
	ids := weights.Cycles()
	out := make([]model.CycleSummary, 0, len(ids))
	for _, id := range ids {
		total := 0.0
		for _, d := range dealers {
			total += d.Cycles[id]
		}
		out = append(out, model.CycleSummary{
			Cycle:  id,
			Total:  RoundMoney(total),
			Weight: weights[id],
		})
	}
	return out
}
