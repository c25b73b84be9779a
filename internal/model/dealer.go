package model

import "sort"

// CycleTotals billing cycle id ("01/2026") -> money sold in that cycle
type CycleTotals map[string]float64

// Sum adds every cycle in id order so repeated calls give identical floats.
func (c CycleTotals) Sum() float64 {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 0.0
	for _, k := range keys {
		total += c[k]
	}
	return total
}

// Clone returns an independent copy; nil stays an empty map.
func (c CycleTotals) Clone() CycleTotals {
	out := make(CycleTotals, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// RegistryEntry one row of the reseller registry (cadastro)
type RegistryEntry struct {
	Code         string `json:"codigo"`
	Name         string `json:"nome"`
	SectorID     string `json:"setorId"`
	SectorName   string `json:"setorNome,omitempty"`
	OfficialTier string `json:"segmentoOficial"`
}

// SalesAggregate summed sales of one dealer in one sector
type SalesAggregate struct {
	Code     string      `json:"codigo"`
	Name     string      `json:"nome"`
	SectorID string      `json:"setorId"`
	Cycles   CycleTotals `json:"ciclos"`
}

// Dealer registry identity joined with its cycle totals
type Dealer struct {
	Code         string      `json:"codigo"`
	Name         string      `json:"nome"`
	SectorID     string      `json:"setorId"`
	OfficialTier string      `json:"segmentoOficial,omitempty"`
	Cycles       CycleTotals `json:"ciclos"`
}

// DealerMetrics derived per request, never stored
type DealerMetrics struct {
	Dealer

	LifetimeTotal      float64     `json:"totalGeral"`
	CurrentCycleTotal  float64     `json:"totalCicloAtual"`
	Tier               string      `json:"segmento"`
	NextTier           *string     `json:"segmentoProximo"`
	MinToMaintain      float64     `json:"metaManter"`
	AdvanceThreshold   *float64    `json:"metaSubir"`
	AmountToMaintain   float64     `json:"faltaManter"`
	AmountToAdvance    *float64    `json:"faltaSubir"`
	PercentToMaintain  float64     `json:"percentManter"`
	PercentToAdvance   *float64    `json:"percentSubir"`
	WeightedCycleGoal  float64     `json:"metaCicloPonderada"`
	PercentOfCycleGoal float64     `json:"percentCiclo"`
	Status             StatusLabel `json:"impulso"`
	NearPromotion      bool        `json:"nearLevelUp"`
	AtRisk             bool        `json:"atRisk"`
}

// StatusLabel motivational status shown on each dealer card
type StatusLabel string

const (
	StatusCritical     StatusLabel = "CRÍTICO - PRECISA ACELERAR"
	StatusWarmingUp    StatusLabel = "AQUECENDO"
	StatusOnTrack      StatusLabel = "NO CAMINHO"
	StatusAlmostThere  StatusLabel = "QUASE LÁ"
	StatusReadyToRise  StatusLabel = "PRONTO PARA SUBIR"
	StatusAccomplished StatusLabel = "MISSÃO CUMPRIDA"
)
