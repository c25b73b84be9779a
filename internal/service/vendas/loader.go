package vendas

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/parser"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/filecache"
)

// DefaultFileNames sales export candidates, checked in order
var DefaultFileNames = []string{"vendas_bd.xlsx", "vendas_bd.xls", "vendas_bd.csv"}

const saleType = "venda"

var logger = log.New("vendas")

// SectorNamer resolves free-text sector names to sector ids.
type SectorNamer interface {
	SectorNameIndex() map[string]string
}

// SkipCounts rows left out of the totals, by reason
type SkipCounts struct {
	NotSale       int `json:"notSale"`
	NoSector      int `json:"noSector"`
	NoCodeOrCycle int `json:"noCodeOrCycle"`
}

// Total rows skipped for any reason.
func (s SkipCounts) Total() int {
	return s.NotSale + s.NoSector + s.NoCodeOrCycle
}

// Snapshot aggregated sales from one read of the export
type Snapshot struct {
	Aggregates []model.SalesAggregate
	Rows       int
	Skipped    SkipCounts

	// sectorNames index the aggregates were resolved with
	sectorNames map[string]string
}

// Loader reads the sales export and caches the aggregates by file mtime.
type Loader struct {
	dataDir   string
	fileNames []string
	fixedPath string
	sectors   SectorNamer
	slot      filecache.Slot[*Snapshot]
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileNames replaces the candidate file names.
func WithFileNames(names ...string) Option {
	return func(l *Loader) {
		if len(names) > 0 {
			l.fileNames = names
		}
	}
}

// WithPath pins the export to one file and skips candidate resolution.
func WithPath(path string) Option {
	return func(l *Loader) { l.fixedPath = path }
}

// NewLoader creates a sales loader. sectors may be nil, in which case only
// the leading-number fallback resolves sector ids.
func NewLoader(dataDir string, sectors SectorNamer, opts ...Option) *Loader {
	l := &Loader{dataDir: dataDir, fileNames: DefaultFileNames, sectors: sectors}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the first existing candidate, or the first candidate.
func (l *Loader) Path() string {
	if l.fixedPath != "" {
		return l.fixedPath
	}
	for _, name := range l.fileNames {
		p := filepath.Join(l.dataDir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(l.dataDir, l.fileNames[0])
}

// UploadPath is where an uploaded export with the given extension is stored.
func (l *Loader) UploadPath(ext string) string {
	if l.fixedPath != "" {
		return l.fixedPath
	}
	for _, name := range l.fileNames {
		if strings.EqualFold(filepath.Ext(name), ext) {
			return filepath.Join(l.dataDir, name)
		}
	}
	return filepath.Join(l.dataDir, l.fileNames[0])
}

// Candidates lists every path the loader may read, in priority order.
func (l *Loader) Candidates() []string {
	if l.fixedPath != "" {
		return []string{l.fixedPath}
	}
	out := make([]string, len(l.fileNames))
	for i, name := range l.fileNames {
		out[i] = filepath.Join(l.dataDir, name)
	}
	return out
}

// Load returns the current snapshot; missing or unreadable files give an empty one.
func (l *Loader) Load() *Snapshot {
	names := l.sectorNames()
	if cached, ok := l.slot.Peek(); ok && cached != nil && !maps.Equal(cached.sectorNames, names) {
		logger.Infof("registry sector names changed, re-reading sales")
		l.slot.Invalidate()
	}

	path := l.Path()
	snap, hit, err := l.slot.Get(path, func(p string) (*Snapshot, error) {
		return l.read(p, names)
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("sales file not found: %s", path)
		} else {
			logger.Errorf("read sales %s: %v", path, err)
		}
		return &Snapshot{}
	}
	if !hit {
		logger.Infof("sales loaded: %d rows, %d dealers, skipped %d (not sale %d, no sector %d, no code/cycle %d)",
			snap.Rows, len(snap.Aggregates), snap.Skipped.Total(),
			snap.Skipped.NotSale, snap.Skipped.NoSector, snap.Skipped.NoCodeOrCycle)
	}
	return snap
}

// All returns every aggregate sorted by sector then code.
func (l *Loader) All() []model.SalesAggregate {
	return l.Load().Aggregates
}

// BySector returns the aggregates of one sector.
func (l *Loader) BySector(sectorID string) []model.SalesAggregate {
	var out []model.SalesAggregate
	for _, a := range l.Load().Aggregates {
		if a.SectorID == sectorID {
			out = append(out, a)
		}
	}
	return out
}

// Invalidate forces the next call to re-read the file.
func (l *Loader) Invalidate() {
	l.slot.Invalidate()
}

func (l *Loader) sectorNames() map[string]string {
	if l.sectors == nil {
		return nil
	}
	return l.sectors.SectorNameIndex()
}

func (l *Loader) read(path string, names map[string]string) (*Snapshot, error) {
	logger.Infof("loading sales from %s", filepath.Base(path))
	rows, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	snap := Aggregate(rows, names)
	snap.sectorNames = maps.Clone(names)
	return snap, nil
}

type groupKey struct {
	sectorID string
	code     string
}

type group struct {
	name   string
	cycles map[string]decimal.Decimal
}

// Aggregate keeps "Venda" rows and sums their amounts per sector, dealer and cycle.
// sectorNames maps trimmed registry sector names to ids.
func Aggregate(rows []parser.Row, sectorNames map[string]string) *Snapshot {
	snap := &Snapshot{Rows: len(rows)}
	groups := make(map[groupKey]*group)

	for _, row := range rows {
		if !strings.EqualFold(parser.Lookup(row, parser.RecordTypeKeys), saleType) {
			snap.Skipped.NotSale++
			continue
		}

		sectorID, ok := ResolveSector(parser.Lookup(row, parser.SalesSectorKeys), sectorNames)
		if !ok {
			snap.Skipped.NoSector++
			continue
		}

		code := parser.NormalizeIdentifier(parser.Lookup(row, parser.DealerCodeKeys))
		cycle := parser.Lookup(row, parser.CycleKeys)
		if code == "" || cycle == "" {
			snap.Skipped.NoCodeOrCycle++
			continue
		}

		key := groupKey{sectorID: sectorID, code: code}
		g, ok := groups[key]
		if !ok {
			g = &group{cycles: make(map[string]decimal.Decimal)}
			groups[key] = g
		}
		if g.name == "" {
			g.name = parser.Lookup(row, parser.DealerNameKeys)
		}
		amount := parser.ParseCurrencyDecimal(parser.Lookup(row, parser.AmountKeys))
		g.cycles[cycle] = g.cycles[cycle].Add(amount)
	}

	snap.Aggregates = make([]model.SalesAggregate, 0, len(groups))
	for key, g := range groups {
		cycles := make(model.CycleTotals, len(g.cycles))
		for c, v := range g.cycles {
			cycles[c] = v.InexactFloat64()
		}
		snap.Aggregates = append(snap.Aggregates, model.SalesAggregate{
			Code:     key.code,
			Name:     g.name,
			SectorID: key.sectorID,
			Cycles:   cycles,
		})
	}
	sort.Slice(snap.Aggregates, func(i, j int) bool {
		a, b := snap.Aggregates[i], snap.Aggregates[j]
		if a.SectorID != b.SectorID {
			return a.SectorID < b.SectorID
		}
		return a.Code < b.Code
	})
	return snap
}

// ResolveSector maps a sales "Setor" cell to a sector id: exact registry name
// first, then the number the cell starts with, thousands separators dropped.
func ResolveSector(raw string, sectorNames map[string]string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if id, ok := sectorNames[raw]; ok {
		return id, true
	}
	return parser.ExtractLeadingInteger(parser.NormalizeIdentifier(raw))
}
