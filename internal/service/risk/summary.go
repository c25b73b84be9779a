package risk

import (
	"errors"
	"sort"
	"strings"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/calculator"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/dealers"
)

// TopSize most critical dealers listed in an alert
const TopSize = 5

// DefaultBaseURL public dashboard address used in alert links
const DefaultBaseURL = "https://supervisiondash.onrender.com"

// Dealer one at-risk dealer line of an alert
type Dealer struct {
	Code              string  `json:"codigo"`
	Name              string  `json:"nome"`
	Tier              string  `json:"segmento"`
	PercentToMaintain float64 `json:"percentManter"`
	AmountToMaintain  float64 `json:"faltaManter"`
	LifetimeTotal     float64 `json:"totalGeral"`
}

// Summary at-risk overview of one sector
type Summary struct {
	SectorID     string   `json:"setorId"`
	SectorName   *string  `json:"setorNome"`
	RiskCount    int      `json:"riskCount"`
	TotalDealers int      `json:"totalDealers"`
	Threshold    float64  `json:"threshold"`
	DashboardURL string   `json:"dashboardUrl"`
	Top          []Dealer `json:"top5"`
	Error        string   `json:"error,omitempty"`
}

// Service builds risk summaries from live dealer metrics. Demo data is
// never reported as risk.
type Service struct {
	dealers *dealers.Service
	baseURL string
}

// NewService creates a risk service. An empty baseURL uses DefaultBaseURL.
func NewService(d *dealers.Service, baseURL string) *Service {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Service{dealers: d, baseURL: baseURL}
}

// DashboardURL link to a sector's dashboard.
func (s *Service) DashboardURL(sectorID string) string {
	return s.baseURL + "/dashboard/" + sectorID
}

// Summary lists the dealers whose percentToMaintain is below threshold,
// most critical first. A threshold <= 0 uses the default.
func (s *Service) Summary(sectorID string, threshold float64) Summary {
	if threshold <= 0 {
		threshold = model.DefaultRiskThreshold
	}
	out := Summary{
		SectorID:     sectorID,
		Threshold:    threshold,
		DashboardURL: s.DashboardURL(sectorID),
		Top:          []Dealer{},
	}

	sector, err := s.dealers.Validate(sectorID)
	if err != nil {
		if errors.Is(err, dealers.ErrBlockedSector) {
			out.Error = "Código de gerência não é um setor"
		} else {
			out.Error = "Setor não encontrado"
		}
		return out
	}
	out.SectorName = &sector.Name

	list, err := s.dealers.RealDealers(sector.ID)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	return Build(out, calculator.ComputeAll(list, s.dealers.Context()))
}

// Build fills the counts and the top list of a summary from metrics.
func Build(out Summary, metrics []model.DealerMetrics) Summary {
	var atRisk []model.DealerMetrics
	for _, m := range metrics {
		if m.PercentToMaintain < out.Threshold {
			atRisk = append(atRisk, m)
		}
	}
	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].PercentToMaintain < atRisk[j].PercentToMaintain
	})

	out.TotalDealers = len(metrics)
	out.RiskCount = len(atRisk)
	out.Top = make([]Dealer, 0, TopSize)
	for i, m := range atRisk {
		if i == TopSize {
			break
		}
		out.Top = append(out.Top, Dealer{
			Code:              m.Code,
			Name:              m.Name,
			Tier:              m.Tier,
			PercentToMaintain: m.PercentToMaintain,
			AmountToMaintain:  m.AmountToMaintain,
			LifetimeTotal:     m.LifetimeTotal,
		})
	}
	return out
}
