package dealers

import (
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/parser"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/calculator"
)

var (
	ErrSectorNotFound = errors.New("sector not found")
	ErrBlockedSector  = errors.New("management code is not a sector")
	ErrDealerNotFound = errors.New("dealer not found")
	ErrNoData         = errors.New("no registry or sales data available")
)

var logger = log.New("dealers")

// SectorLister lists the sectors known to the registry.
type SectorLister interface {
	Sectors() []model.Sector
}

// SettingsProvider exposes the runtime settings the metrics depend on.
type SettingsProvider interface {
	Get() *model.Settings
}

// Options tunes a Service.
type Options struct {
	// Demo generates placeholder dealers when no sales exist; nil disables it.
	Demo            Generator
	BlockedCodes    []string
	FallbackSectors []model.Sector
}

// Service joins registry and sales data and computes dealer metrics.
type Service struct {
	source   Source
	sectors  SectorLister
	settings SettingsProvider
	demo     Generator
	blocked  map[string]struct{}
	fallback []model.Sector
}

// NewService wires the dealer service. Zero Options fields take the defaults,
// except Demo which stays disabled.
func NewService(source Source, sectors SectorLister, settings SettingsProvider, opts Options) *Service {
	blockedCodes := opts.BlockedCodes
	if blockedCodes == nil {
		blockedCodes = DefaultBlockedCodes
	}
	blocked := make(map[string]struct{}, len(blockedCodes))
	for _, c := range blockedCodes {
		blocked[parser.NormalizeIdentifier(c)] = struct{}{}
	}
	fallback := opts.FallbackSectors
	if fallback == nil {
		fallback = FallbackSectors
	}
	return &Service{
		source:   source,
		sectors:  sectors,
		settings: settings,
		demo:     opts.Demo,
		blocked:  blocked,
		fallback: fallback,
	}
}

// Sectors returns the registry sectors, or the built-in list when the
// registry has none.
func (s *Service) Sectors() []model.Sector {
	var list []model.Sector
	if s.sectors != nil {
		list = s.sectors.Sectors()
	}
	if len(list) == 0 {
		list = s.fallback
	}
	out := make([]model.Sector, len(list))
	copy(out, list)
	return out
}

// IsBlocked reports whether the id is a management code.
func (s *Service) IsBlocked(sectorID string) bool {
	_, ok := s.blocked[parser.NormalizeIdentifier(sectorID)]
	return ok
}

// Validate resolves a user supplied sector id against the sector list.
func (s *Service) Validate(raw string) (model.Sector, error) {
	id := parser.NormalizeIdentifier(raw)
	if id == "" {
		return model.Sector{}, ErrSectorNotFound
	}
	if s.IsBlocked(id) {
		return model.Sector{}, fmt.Errorf("%s: %w", id, ErrBlockedSector)
	}
	for _, sec := range s.Sectors() {
		if sec.ID == id {
			return sec, nil
		}
	}
	return model.Sector{}, fmt.Errorf("%s: %w", id, ErrSectorNotFound)
}

// Context returns the cycle context built from the current settings.
func (s *Service) Context() calculator.CycleContext {
	st := s.settings.Get()
	return calculator.CycleContext{CurrentCycle: st.CurrentCycle, Weights: st.Weights}
}

// Dealers returns the joined dealers of a sector. demo is true when the
// dealers were generated.
func (s *Service) Dealers(sectorID string) (dealers []model.Dealer, demo bool, err error) {
	return s.dealers(parser.NormalizeIdentifier(sectorID), s.demo)
}

// RealDealers is Dealers without the demo fallback.
func (s *Service) RealDealers(sectorID string) ([]model.Dealer, error) {
	d, _, err := s.dealers(parser.NormalizeIdentifier(sectorID), nil)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	return d, err
}

func (s *Service) dealers(sectorID string, demo Generator) ([]model.Dealer, bool, error) {
	registry := s.source.Registry()
	sales := s.source.Sales()

	var sectorRegistry []model.RegistryEntry
	for _, e := range registry {
		if e.SectorID == sectorID {
			sectorRegistry = append(sectorRegistry, e)
		}
	}
	salesByCode := make(map[string]model.SalesAggregate)
	var sectorSales []model.SalesAggregate
	for _, a := range sales {
		if a.SectorID == sectorID {
			salesByCode[a.Code] = a
			sectorSales = append(sectorSales, a)
		}
	}

	// without any registry, sales alone describe the sector
	if len(registry) == 0 {
		if len(sales) == 0 {
			if demo == nil {
				return nil, false, fmt.Errorf("sector %s: %w", sectorID, ErrNoData)
			}
			logger.Infof("no sales data loaded, serving demo dealers for sector %s", sectorID)
			return demo.Dealers(sectorID, s.settings.Get().Weights.Cycles()), true, nil
		}
		out := make([]model.Dealer, 0, len(sectorSales))
		for _, a := range sectorSales {
			out = append(out, model.Dealer{
				Code:     a.Code,
				Name:     a.Name,
				SectorID: a.SectorID,
				Cycles:   a.Cycles.Clone(),
			})
		}
		return out, false, nil
	}

	out := make([]model.Dealer, 0, len(sectorRegistry))
	for _, e := range sectorRegistry {
		d := model.Dealer{
			Code:         e.Code,
			Name:         e.Name,
			SectorID:     e.SectorID,
			OfficialTier: e.OfficialTier,
			Cycles:       model.CycleTotals{},
		}
		if a, ok := salesByCode[e.Code]; ok {
			d.Cycles = a.Cycles.Clone()
		}
		out = append(out, d)
	}
	return out, false, nil
}

// Metrics computes metrics for every dealer of a sector, without validating
// the sector id.
func (s *Service) Metrics(sectorID string) ([]model.DealerMetrics, bool, error) {
	dealers, demo, err := s.Dealers(sectorID)
	if err != nil {
		return nil, false, err
	}
	return calculator.ComputeAll(dealers, s.Context()), demo, nil
}

// Dashboard builds the full dashboard document for a sector.
func (s *Service) Dashboard(rawSectorID string) (*model.SectorDashboard, error) {
	sector, err := s.Validate(rawSectorID)
	if err != nil {
		return nil, err
	}
	metrics, demo, err := s.Metrics(sector.ID)
	if err != nil {
		return nil, err
	}
	return &model.SectorDashboard{
		Sector:       sector,
		CurrentCycle: s.settings.Get().CurrentCycle,
		KPIs:         calculator.KPIs(metrics),
		Dealers:      metrics,
		Demo:         demo,
	}, nil
}

// Dealer returns the metrics of one dealer.
func (s *Service) Dealer(sectorID, code string) (*model.DealerMetrics, error) {
	sector, err := s.Validate(sectorID)
	if err != nil {
		return nil, err
	}
	metrics, _, err := s.Metrics(sector.ID)
	if err != nil {
		return nil, err
	}
	code = parser.NormalizeIdentifier(code)
	for i := range metrics {
		if metrics[i].Code == code {
			return &metrics[i], nil
		}
	}
	return nil, fmt.Errorf("dealer %s in sector %s: %w", code, sectorID, ErrDealerNotFound)
}

// Rank returns the current-cycle ranking of a sector.
func (s *Service) Rank(sectorID string) (model.SectorRank, error) {
	sector, err := s.Validate(sectorID)
	if err != nil {
		return model.SectorRank{}, err
	}
	metrics, _, err := s.Metrics(sector.ID)
	if err != nil {
		return model.SectorRank{}, err
	}
	return calculator.Rank(metrics), nil
}

// Cycles returns the per-cycle totals of a sector.
func (s *Service) Cycles(sectorID string) ([]model.CycleSummary, error) {
	sector, err := s.Validate(sectorID)
	if err != nil {
		return nil, err
	}
	dealers, _, err := s.Dealers(sector.ID)
	if err != nil {
		return nil, err
	}
	return calculator.Cycles(dealers, s.settings.Get().Weights), nil
}
