package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduardocaduuu/SupervisionDash/internal/alerts"
	"github.com/eduardocaduuu/SupervisionDash/internal/parser"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/settings"
)

// SlackProbe checks the Slack credentials.
type SlackProbe interface {
	TestConnection(ctx context.Context) (*alerts.BotInfo, error)
}

type configRequest struct {
	CurrentCycle string         `json:"cicloAtual"`
	Weights      map[string]int `json:"representatividade"`
}

type cycleRequest struct {
	Cycle string `json:"ciclo" binding:"required"`
}

type weightsRequest struct {
	Weights map[string]int `json:"representatividade" binding:"required"`
}

type rewardRequest struct {
	Title string `json:"titulo"`
	Text  string `json:"texto"`
}

type sectorRequest struct {
	SectorID string `json:"setorId"`
}

// AdminConfig GET /api/admin/config
func (h *Handler) AdminConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Settings.Get())
}

// UpdateConfig PUT /api/admin/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}
	s, err := h.Settings.Replace(req.CurrentCycle, req.Weights)
	if err != nil {
		h.writeSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "config": s})
}

// SetCycle POST /api/admin/ciclo
func (h *Handler) SetCycle(c *gin.Context) {
	var req cycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ciclo é obrigatório"})
		return
	}
	s, err := h.Settings.SetCycle(req.Cycle)
	if err != nil {
		h.writeSettingsError(c, err)
		return
	}
	logger.Infof("current cycle set to %s", s.CurrentCycle)
	c.JSON(http.StatusOK, gin.H{"success": true, "cicloAtual": s.CurrentCycle})
}

// MergeWeights POST /api/admin/representatividade
func (h *Handler) MergeWeights(c *gin.Context) {
	var req weightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}
	s, err := h.Settings.MergeWeights(req.Weights)
	if err != nil {
		h.writeSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "representatividade": s.Weights})
}

// SetRewardMessage POST /api/admin/mensagem-recompensa
func (h *Handler) SetRewardMessage(c *gin.Context) {
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}
	msg, err := h.Settings.SetRewardMessage(req.Title, req.Text)
	if err != nil {
		h.writeSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mensagem": msg})
}

// ClearRewardMessage DELETE /api/admin/mensagem-recompensa
func (h *Handler) ClearRewardMessage(c *gin.Context) {
	if err := h.Settings.ClearRewardMessage(); err != nil {
		h.writeSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateSlack PUT /api/admin/slack
func (h *Handler) UpdateSlack(c *gin.Context) {
	var patch settings.SlackPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}
	if patch.SupervisorsBySector != nil {
		normalized := make(map[string]string, len(patch.SupervisorsBySector))
		for k, v := range patch.SupervisorsBySector {
			normalized[parser.NormalizeIdentifier(k)] = v
		}
		patch.SupervisorsBySector = normalized
	}
	s, err := h.Settings.UpdateSlack(patch)
	if err != nil {
		h.writeSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "slack": s.Slack})
}

// SlackStatus GET /api/admin/slack/status
func (h *Handler) SlackStatus(c *gin.Context) {
	out := gin.H{
		"configured": h.Alerts != nil && h.SlackProbe != nil,
		"slack":      h.Settings.Get().Slack,
	}
	if h.SlackProbe != nil {
		info, err := h.SlackProbe.TestConnection(c.Request.Context())
		if err != nil {
			out["error"] = err.Error()
		} else {
			out["bot"] = info
		}
	}
	c.JSON(http.StatusOK, out)
}

// SlackTest POST /api/admin/slack/test
func (h *Handler) SlackTest(c *gin.Context) {
	if h.Alerts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": alerts.ErrNoToken.Error()})
		return
	}
	var req sectorRequest
	_ = c.ShouldBindJSON(&req)
	id := parser.NormalizeIdentifier(req.SectorID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "setorId é obrigatório"})
		return
	}
	res := h.Alerts.SendTest(c.Request.Context(), id)
	status := http.StatusOK
	if !res.OK {
		status = http.StatusBadGateway
	}
	c.JSON(status, res)
}

// SlackTrigger POST /api/admin/slack/trigger
func (h *Handler) SlackTrigger(c *gin.Context) {
	if h.Alerts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": alerts.ErrNoToken.Error()})
		return
	}
	var req sectorRequest
	_ = c.ShouldBindJSON(&req)
	report, err := h.Alerts.Trigger(c.Request.Context(), parser.NormalizeIdentifier(req.SectorID))
	if errors.Is(err, alerts.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// RiskSummary GET /api/admin/slack/risk/:setorId
func (h *Handler) RiskSummary(c *gin.Context) {
	id := parser.NormalizeIdentifier(c.Param("setorId"))
	c.JSON(http.StatusOK, h.Risk.Summary(id, h.Settings.Get().Slack.RiskThresholdPercent))
}

// ListAlerts GET /api/admin/alerts?limit=
func (h *Handler) ListAlerts(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	logs, err := h.Store.RecentAlerts(c.Request.Context(), queryLimit(c))
	if err != nil {
		logger.Errorf("list alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load alert history"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 || n > 500 {
		return 0
	}
	return n
}

func (h *Handler) writeSettingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, settings.ErrInvalidWeight),
		errors.Is(err, settings.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos", "detail": err.Error()})
	case errors.Is(err, settings.ErrInvalidCycle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "ciclo é obrigatório"})
	case errors.Is(err, settings.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "texto é obrigatório"})
	default:
		logger.Errorf("settings update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
	}
}
