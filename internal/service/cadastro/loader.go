package cadastro

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/parser"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/filecache"
)

// DefaultFileNames registry file candidates, checked in order
var DefaultFileNames = []string{"Segmentos_bd.xlsx", "Segmentos_bd.xls", "Segmentos_bd.csv"}

const placeholderName = "Sem Nome"

var logger = log.New("cadastro")

// Snapshot everything derived from one read of the registry file
type Snapshot struct {
	Entries []model.RegistryEntry
	// Sectors unique sector ids in file order, first name seen wins
	Sectors []model.Sector
	// SectorNames trimmed sector name -> sector id
	SectorNames map[string]string
	Dropped     int
}

// Loader reads the reseller registry and caches it by file mtime.
type Loader struct {
	dataDir   string
	fileNames []string
	fixedPath string
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

// WithPath pins the registry to one file and skips candidate resolution.
func WithPath(path string) Option {
	return func(l *Loader) { l.fixedPath = path }
}

// NewLoader creates a registry loader rooted at dataDir.
func NewLoader(dataDir string, opts ...Option) *Loader {
	l := &Loader{dataDir: dataDir, fileNames: DefaultFileNames}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the file the next load will read: the first existing
// candidate, or the first candidate when none exists.
func (l *Loader) Path() string {
	if l.fixedPath != "" {
		return l.fixedPath
	}
	return resolvePath(l.dataDir, l.fileNames)
}

// UploadPath is where an uploaded registry with the given extension is stored.
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

// Load returns the current snapshot. A missing or unreadable file yields an
// empty snapshot; the error is only logged.
func (l *Loader) Load() *Snapshot {
	path := l.Path()
	snap, hit, err := l.slot.Get(path, readSnapshot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("registry file not found: %s", path)
		} else {
			logger.Errorf("read registry %s: %v", path, err)
		}
		return &Snapshot{SectorNames: map[string]string{}}
	}
	if !hit {
		logger.Infof("registry loaded: %d entries, %d sectors, %d rows dropped",
			len(snap.Entries), len(snap.Sectors), snap.Dropped)
	}
	return snap
}

// Entries returns every registry entry. Callers must not modify the slice.
func (l *Loader) Entries() []model.RegistryEntry {
	return l.Load().Entries
}

// BySector returns the entries of one sector in file order.
func (l *Loader) BySector(sectorID string) []model.RegistryEntry {
	var out []model.RegistryEntry
	for _, e := range l.Load().Entries {
		if e.SectorID == sectorID {
			out = append(out, e)
		}
	}
	return out
}

// Sectors returns the unique sectors named by the registry.
func (l *Loader) Sectors() []model.Sector {
	return l.Load().Sectors
}

// SectorNameIndex maps a trimmed sector name to its id.
func (l *Loader) SectorNameIndex() map[string]string {
	return l.Load().SectorNames
}

// Invalidate forces the next call to re-read the file.
func (l *Loader) Invalidate() {
	l.slot.Invalidate()
}

func resolvePath(dir string, names []string) string {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, names[0])
}

func readSnapshot(path string) (*Snapshot, error) {
	logger.Infof("loading registry from %s", filepath.Base(path))
	rows, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(rows), nil
}

// BuildSnapshot maps parsed rows to registry entries and the sector list.
// Rows without a dealer code or sector id are dropped and counted.
func BuildSnapshot(rows []parser.Row) *Snapshot {
	snap := &Snapshot{
		Entries:     make([]model.RegistryEntry, 0, len(rows)),
		SectorNames: make(map[string]string),
	}
	seenSector := make(map[string]struct{})

	for _, row := range rows {
		sectorID := parser.NormalizeIdentifier(parser.Lookup(row, parser.RegistrySectorKeys))
		sectorName := parser.Lookup(row, parser.SectorNameKeys)

		if sectorID != "" {
			if _, ok := seenSector[sectorID]; !ok {
				seenSector[sectorID] = struct{}{}
				name := sectorName
				if name == "" {
					name = "Setor " + sectorID
				}
				snap.Sectors = append(snap.Sectors, model.Sector{ID: sectorID, Name: name})
			}
			if sectorName != "" {
				if _, ok := snap.SectorNames[sectorName]; !ok {
					snap.SectorNames[sectorName] = sectorID
				}
			}
		}

		code := parser.NormalizeIdentifier(parser.Lookup(row, parser.DealerCodeKeys))
		if code == "" || sectorID == "" {
			snap.Dropped++
			continue
		}

		name := parser.Lookup(row, parser.DealerNameKeys)
		if name == "" {
			name = placeholderName
		}
		tier := parser.Lookup(row, parser.OfficialTierKeys)
		if tier == "" {
			tier = model.LowestTier().Name
		}

		snap.Entries = append(snap.Entries, model.RegistryEntry{
			Code:         code,
			Name:         name,
			SectorID:     sectorID,
			SectorName:   sectorName,
			OfficialTier: tier,
		})
	}
	return snap
}
