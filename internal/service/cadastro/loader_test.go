package cadastro

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
)

const registryCSV = "CodigoRevendedor;Nome;CodigoEstruturaComercial;EstruturaComercial;Papel\n" +
	"77;Ana;900;PRATA 1 / Penedo /;\n" +
	"1.234;;900;PRATA 1 / Penedo /;Ouro\n" +
	"55;Bia;14.246;OURO / Penedo /;Rubi\n" +
	";Sem codigo;900;;\n" +
	"88;Sem setor;;;\n"

func writeRegistry(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestLoader_MissingFileIsEmpty(t *testing.T) {
	l := NewLoader(t.TempDir())
	assert.Empty(t, l.Entries())
	assert.Empty(t, l.Sectors())
	assert.NotNil(t, l.SectorNameIndex())
	assert.Equal(t, "Segmentos_bd.xlsx", filepath.Base(l.Path()))
}

func TestLoader_MapsRowsAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeRegistry(t, dir, "Segmentos_bd.csv", registryCSV, time.Now())

	l := NewLoader(dir)
	snap := l.Load()

	require.Len(t, snap.Entries, 3)
	assert.Equal(t, 2, snap.Dropped)

	assert.Equal(t, model.RegistryEntry{
		Code: "77", Name: "Ana", SectorID: "900", SectorName: "PRATA 1 / Penedo /", OfficialTier: "Bronze",
	}, snap.Entries[0])
	assert.Equal(t, "1234", snap.Entries[1].Code)
	assert.Equal(t, "Sem Nome", snap.Entries[1].Name)
	assert.Equal(t, "Ouro", snap.Entries[1].OfficialTier)
	assert.Equal(t, "14246", snap.Entries[2].SectorID)

	assert.Len(t, l.BySector("900"), 2)
	assert.Empty(t, l.BySector("1"))
}

func TestLoader_SectorsAndNameIndex(t *testing.T) {
	dir := t.TempDir()
	writeRegistry(t, dir, "Segmentos_bd.csv", registryCSV+"99;Cris;777;;\n", time.Now())

	l := NewLoader(dir)
	assert.Equal(t, []model.Sector{
		{ID: "900", Name: "PRATA 1 / Penedo /"},
		{ID: "14246", Name: "OURO / Penedo /"},
		{ID: "777", Name: "Setor 777"},
	}, l.Sectors())
	assert.Equal(t, map[string]string{
		"PRATA 1 / Penedo /": "900",
		"OURO / Penedo /":    "14246",
	}, l.SectorNameIndex())
}

func TestLoader_CachesByMtimeAndInvalidates(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	writeRegistry(t, dir, "Segmentos_bd.csv", registryCSV, mtime)

	l := NewLoader(dir)
	require.Len(t, l.Entries(), 3)

	// rewritten with the same mtime: still served from cache
	writeRegistry(t, dir, "Segmentos_bd.csv", "CodigoRevendedor;Setor\n1;2\n", mtime)
	assert.Len(t, l.Entries(), 3)

	l.Invalidate()
	assert.Len(t, l.Entries(), 1)

	writeRegistry(t, dir, "Segmentos_bd.csv", "CodigoRevendedor;Setor\n1;2\n3;2\n", mtime.Add(time.Hour))
	assert.Len(t, l.Entries(), 2)
}

func TestLoader_PrefersWorkbookOverCSV(t *testing.T) {
	dir := t.TempDir()
	writeRegistry(t, dir, "Segmentos_bd.csv", registryCSV, time.Now())

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Codigo", "SetorId", "Segmento"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"10", "500", "Platina"}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "Segmentos_bd.xlsx")))
	require.NoError(t, f.Close())

	l := NewLoader(dir)
	assert.Equal(t, filepath.Join(dir, "Segmentos_bd.xlsx"), l.Path())
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Platina", entries[0].OfficialTier)
	assert.Equal(t, "500", entries[0].SectorID)
}

func TestLoader_UnparseableFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeRegistry(t, dir, "Segmentos_bd.csv", "CodigoRevendedor;Setor\n", time.Now())

	l := NewLoader(dir)
	assert.Empty(t, l.Entries())
}

func TestLoader_WithPathAndUploadPath(t *testing.T) {
	dir := t.TempDir()
	fixed := writeRegistry(t, dir, "cadastro.txt", registryCSV, time.Now())

	assert.Len(t, NewLoader(dir, WithPath(fixed)).Entries(), 3)

	l := NewLoader(dir)
	assert.Equal(t, filepath.Join(dir, "Segmentos_bd.csv"), l.UploadPath(".CSV"))
	assert.Equal(t, filepath.Join(dir, "Segmentos_bd.xls"), l.UploadPath(".xls"))
	assert.Equal(t, filepath.Join(dir, "Segmentos_bd.xlsx"), l.UploadPath(".ods"))
	assert.Len(t, l.Candidates(), 3)
}
