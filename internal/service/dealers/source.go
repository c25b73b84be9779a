package dealers

import (
	"hash/fnv"
	"math/rand"
	"strconv"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/cadastro"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/calculator"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/vendas"
)

// Source supplies registry entries and sales aggregates for the join.
type Source interface {
	Registry() []model.RegistryEntry
	Sales() []model.SalesAggregate
}

// LoaderSource reads both sides from the cached file loaders.
type LoaderSource struct {
	Cadastro *cadastro.Loader
	Vendas   *vendas.Loader
}

// Registry implements Source.
func (s LoaderSource) Registry() []model.RegistryEntry {
	return s.Cadastro.Entries()
}

// Sales implements Source.
func (s LoaderSource) Sales() []model.SalesAggregate {
	return s.Vendas.All()
}

// StaticSource fixed in-memory data, mostly for tests and the CLI.
type StaticSource struct {
	Entries    []model.RegistryEntry
	Aggregates []model.SalesAggregate
}

// Registry implements Source.
func (s StaticSource) Registry() []model.RegistryEntry { return s.Entries }

// Sales implements Source.
func (s StaticSource) Sales() []model.SalesAggregate { return s.Aggregates }

// Generator produces placeholder dealers for a sector with no real data.
type Generator interface {
	Dealers(sectorID string, cycles []string) []model.Dealer
}

var demoFirstNames = []string{
	"Maria", "Ana", "Paula", "Sandra", "Rita", "Lucia", "Carmen", "Rosa", "Julia", "Vera",
	"Sonia", "Leia", "Marta", "Clara", "Denise", "Elisa", "Fatima", "Gloria", "Helena", "Ivone",
}

// DemoGenerator builds 12 to 19 plausible dealers per sector. The sector id
// seeds the generator, so a sector always gets the same demo data.
type DemoGenerator struct{}

// Dealers implements Generator.
func (DemoGenerator) Dealers(sectorID string, cycles []string) []model.Dealer {
	h := fnv.New64a()
	h.Write([]byte(sectorID))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	count := 12 + r.Intn(8)
	out := make([]model.Dealer, 0, count)
	for i := 1; i <= count; i++ {
		base := 1000 + r.Float64()*150000
		totals := make(model.CycleTotals, len(cycles))
		for _, c := range cycles {
			variation := 0.5 + r.Float64()
			totals[c] = calculator.RoundMoney(base * variation / 9)
		}
		out = append(out, model.Dealer{
			Code:     strconv.Itoa(10000 + i),
			Name:     demoFirstNames[i%len(demoFirstNames)] + " Silva " + strconv.Itoa(i),
			SectorID: sectorID,
			Cycles:   totals,
		})
	}
	return out
}
