package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduardocaduuu/SupervisionDash/internal/parser"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/dealers"
)

const blockedSectorMessage = "Código inválido. Informe o código do setor (ex: 19698). Códigos de gerência (13706, 13707) não são permitidos."

// Health GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "OK",
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"cicloAtual": h.Settings.Get().CurrentCycle,
		"uptime":     time.Since(h.started).Seconds(),
	})
}

// ListSectors GET /api/setores
func (h *Handler) ListSectors(c *gin.Context) {
	c.JSON(http.StatusOK, h.Dealers.Sectors())
}

// PublicConfig GET /api/config
func (h *Handler) PublicConfig(c *gin.Context) {
	s := h.Settings.Get()
	c.JSON(http.StatusOK, gin.H{
		"cicloAtual":         s.CurrentCycle,
		"representatividade": s.Weights,
		"mensagemRecompensa": s.RewardMessage,
	})
}

// ValidateSector GET /api/validar-setor/:setorId
func (h *Handler) ValidateSector(c *gin.Context) {
	sector, err := h.Dealers.Validate(c.Param("setorId"))
	switch {
	case errors.Is(err, dealers.ErrBlockedSector):
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": blockedSectorMessage})
	case err != nil:
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Setor não encontrado. Verifique o código informado."})
	default:
		c.JSON(http.StatusOK, gin.H{"valid": true, "setor": sector})
	}
}

// Dashboard GET /api/dashboard?setorId=
func (h *Handler) Dashboard(c *gin.Context) {
	raw := c.Query("setorId")
	if strings.TrimSpace(raw) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "setorId é obrigatório"})
		return
	}
	dash, err := h.Dealers.Dashboard(raw)
	if err != nil {
		h.writeDealerError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// LegacySector GET /api/setor/:setorId redirects to the dashboard.
func (h *Handler) LegacySector(c *gin.Context) {
	id := parser.NormalizeIdentifier(c.Param("setorId"))
	c.Redirect(http.StatusFound, "/api/dashboard?setorId="+url.QueryEscape(id))
}

// Dealer GET /api/revendedor?setorId=&codigoRevendedor=
func (h *Handler) Dealer(c *gin.Context) {
	sectorID := parser.NormalizeIdentifier(c.Query("setorId"))
	code := parser.NormalizeIdentifier(c.Query("codigoRevendedor"))
	if sectorID == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "setorId e codigoRevendedor são obrigatórios"})
		return
	}
	m, err := h.Dealers.Dealer(sectorID, code)
	if err != nil {
		h.writeDealerError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Rank GET /api/setor/:setorId/rank
func (h *Handler) Rank(c *gin.Context) {
	r, err := h.Dealers.Rank(parser.NormalizeIdentifier(c.Param("setorId")))
	if err != nil {
		h.writeDealerError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Cycles GET /api/setor/:setorId/ciclos
func (h *Handler) Cycles(c *gin.Context) {
	cycles, err := h.Dealers.Cycles(parser.NormalizeIdentifier(c.Param("setorId")))
	if err != nil {
		h.writeDealerError(c, err)
		return
	}
	c.JSON(http.StatusOK, cycles)
}

// GetRewardMessage GET /api/mensagem-recompensa
func (h *Handler) GetRewardMessage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mensagem": h.Settings.Get().RewardMessage})
}

func (h *Handler) writeDealerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dealers.ErrBlockedSector):
		c.JSON(http.StatusBadRequest, gin.H{"error": blockedSectorMessage})
	case errors.Is(err, dealers.ErrSectorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Setor não encontrado"})
	case errors.Is(err, dealers.ErrDealerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Revendedor não encontrado"})
	case errors.Is(err, dealers.ErrNoData):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Nenhum dado de vendas disponível"})
	default:
		logger.Errorf("dealer request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno"})
	}
}
