package model

// Sector a supervisor's commercial structure
type Sector struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// SectorKPIs aggregate numbers shown on top of the dashboard
type SectorKPIs struct {
	TotalVolume   float64        `json:"totalSetor"`
	DealerCount   int            `json:"qtdRevendedores"`
	NearPromotion int            `json:"nearLevelUp"`
	AtRisk        int            `json:"atRisk"`
	TierCounts    map[string]int `json:"segmentosCount"`
}

// SectorDashboard full dashboard document for one sector
type SectorDashboard struct {
	Sector       Sector          `json:"setor"`
	CurrentCycle string          `json:"cicloAtual"`
	KPIs         SectorKPIs      `json:"kpis"`
	Dealers      []DealerMetrics `json:"dealers"`
	Demo         bool            `json:"demo,omitempty"`
}

// SectorRank top dealers of the current cycle plus short motivational lines
type SectorRank struct {
	Ranking         []DealerMetrics `json:"ranking"`
	MissionBoosters []string        `json:"missionBoosters"`
}

// CycleSummary sector total for one configured cycle
type CycleSummary struct {
	Cycle  string  `json:"ciclo"`
	Total  float64 `json:"total"`
	Weight int     `json:"representatividade"`
}
