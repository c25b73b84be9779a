package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/eduardocaduuu/SupervisionDash/internal/parser"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/cadastro"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/vendas"
	"github.com/eduardocaduuu/SupervisionDash/internal/store"
)

// Upload kinds
const (
	UploadRegistry = "cadastro"
	UploadSales    = "vendas"
)

type uploadTarget interface {
	UploadPath(ext string) string
	Candidates() []string
	Invalidate()
}

func (h *Handler) uploadTarget(kind string) (uploadTarget, bool) {
	switch kind {
	case UploadRegistry:
		return h.Registry, true
	case UploadSales:
		return h.Sales, true
	}
	return nil, false
}

func extensionFor(kind parser.FileKind) string {
	switch kind {
	case parser.KindXLSX:
		return ".xlsx"
	case parser.KindXLS:
		return ".xls"
	}
	return ".csv"
}

// validateUpload checks that rows carry the columns the loader needs and
// returns the number of usable records.
func (h *Handler) validateUpload(kind string, rows []parser.Row) (int, error) {
	switch kind {
	case UploadRegistry:
		snap := cadastro.BuildSnapshot(rows)
		if len(snap.Entries) == 0 {
			return 0, errors.New("nenhum revendedor com código e setor encontrado")
		}
		return len(snap.Entries), nil
	default:
		snap := vendas.Aggregate(rows, h.Registry.SectorNameIndex())
		if snap.Skipped.NotSale == snap.Rows {
			return 0, errors.New("nenhuma linha do tipo Venda encontrada")
		}
		return snap.Rows - snap.Skipped.Total(), nil
	}
}

// Upload POST /api/admin/upload/:kind with a multipart "file" field.
// The file is parsed before it replaces the current one.
func (h *Handler) Upload(c *gin.Context) {
	kind := strings.ToLower(c.Param("kind"))
	target, ok := h.uploadTarget(kind)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tipo de arquivo desconhecido: use cadastro ou vendas"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "arquivo maior que " + humanize.Bytes(uint64(h.MaxUploadBytes))})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenhum arquivo enviado"})
		return
	}
	data, err := readUploaded(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falha ao ler o arquivo"})
		return
	}

	ctx := c.Request.Context()
	mt := mimetype.Detect(data)
	fileKind := parser.DetectKind(data, fh.Filename)
	dest := target.UploadPath(extensionFor(fileKind))
	importID := h.startImport(ctx, kind, fh.Filename, dest, mt.String(), int64(len(data)))

	rows, err := parser.ParseBytes(data, fileKind)
	var count int
	if err == nil {
		count, err = h.validateUpload(kind, rows)
	}
	if err != nil {
		logger.Warnf("%s upload %s rejected: %v", kind, fh.Filename, err)
		h.finishImport(ctx, importID, 0, store.ImportFailed, err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Arquivo inválido: " + err.Error()})
		return
	}

	if err := h.replaceDataFile(target, dest, data); err != nil {
		logger.Errorf("%s upload %s: %v", kind, fh.Filename, err)
		h.finishImport(ctx, importID, 0, store.ImportFailed, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao salvar o arquivo"})
		return
	}

	target.Invalidate()
	if kind == UploadRegistry {
		// sales resolve sector names through the registry
		h.Sales.Invalidate()
	}
	h.finishImport(ctx, importID, count, store.ImportCompleted, "")

	size := humanize.Bytes(uint64(len(data)))
	logger.Infof("%s upload %s stored as %s (%s, %s, %d records)", kind, fh.Filename, filepath.Base(dest), size, mt.String(), count)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"importId":    importID,
		"kind":        kind,
		"arquivo":     filepath.Base(dest),
		"tamanho":     size,
		"contentType": mt.String(),
		"registros":   count,
	})
}

func readUploaded(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// replaceDataFile backs up and replaces dest, then moves aside the other
// candidates so the loader cannot keep reading a stale file.
func (h *Handler) replaceDataFile(target uploadTarget, dest string, data []byte) error {
	stamp := time.Now().Format("20060102-150405")
	if err := h.backup(dest, stamp, false); err != nil {
		return err
	}
	if err := writeFileAtomic(dest, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(dest), err)
	}
	for _, p := range target.Candidates() {
		if p == dest {
			continue
		}
		if err := h.backup(p, stamp, true); err != nil {
			return err
		}
	}
	return nil
}

// backup copies (or moves, when remove is set) path into the backup dir.
// Without a backup dir a moved file is deleted.
func (h *Handler) backup(path, stamp string, remove bool) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if h.BackupDir == "" {
		if remove {
			return os.Remove(path)
		}
		return nil
	}
	if err := os.MkdirAll(h.BackupDir, 0755); err != nil {
		return err
	}
	dst := filepath.Join(h.BackupDir, stamp+"_"+filepath.Base(path))
	if remove {
		return os.Rename(path, dst)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (h *Handler) startImport(ctx context.Context, kind, filename, path, contentType string, size int64) string {
	if h.Store == nil {
		return ""
	}
	id, err := h.Store.CreateImportLog(ctx, kind, filename, path, contentType, size)
	if err != nil {
		logger.Errorf("import log: %v", err)
		return ""
	}
	return id
}

func (h *Handler) finishImport(ctx context.Context, id string, rows int, status, message string) {
	if h.Store == nil || id == "" {
		return
	}
	if err := h.Store.FinishImportLog(ctx, id, rows, status, message); err != nil {
		logger.Errorf("import log: %v", err)
	}
}

// ListImports GET /api/admin/imports?limit=
func (h *Handler) ListImports(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	logs, err := h.Store.RecentImports(c.Request.Context(), queryLimit(c))
	if err != nil {
		logger.Errorf("list imports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load import history"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
