package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labstack/gommon/log"

	"github.com/eduardocaduuu/SupervisionDash/internal/alerts"
	"github.com/eduardocaduuu/SupervisionDash/internal/config"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/cadastro"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/dealers"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/risk"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/settings"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/vendas"
	"github.com/eduardocaduuu/SupervisionDash/internal/store"
)

var logger = log.New("api")

// Deps services the handlers work on. Store and Alerts may be nil.
type Deps struct {
	Dealers  *dealers.Service
	Settings *settings.Manager
	Registry *cadastro.Loader
	Sales    *vendas.Loader
	Risk     *risk.Service
	Store    *store.Store
	Alerts   *alerts.Dispatcher

	// SlackProbe checks the bot token; nil when no token is configured
	SlackProbe SlackProbe

	Admin          config.AdminConfig
	BackupDir      string
	MaxUploadBytes int64
}

// Handler dashboard API
type Handler struct {
	Deps
	started  time.Time
	sessions *sessionStore
}

// NewHandler creates the API handler.
func NewHandler(deps Deps) *Handler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 50 << 20
	}
	return &Handler{
		Deps:     deps,
		started:  time.Now(),
		sessions: newSessionStore(12 * time.Hour),
	}
}

// RegisterRoutes registers every API route under router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.GET("/setores", h.ListSectors)
	router.GET("/config", h.PublicConfig)
	router.GET("/validar-setor/:setorId", h.ValidateSector)

	router.GET("/dashboard", h.Dashboard)
	router.GET("/setor/:setorId", h.LegacySector)
	router.GET("/setor/:setorId/rank", h.Rank)
	router.GET("/setor/:setorId/ciclos", h.Cycles)
	router.GET("/revendedor", h.Dealer)

	router.GET("/mensagem-recompensa", h.GetRewardMessage)
	router.GET("/notes", h.ListNotes)
	router.POST("/notes", h.SaveNote)

	router.POST("/admin/login", h.Login)
	router.POST("/admin/logout", h.Logout)

	admin := router.Group("/admin", h.requireAdmin)
	{
		admin.GET("/config", h.AdminConfig)
		admin.PUT("/config", h.UpdateConfig)
		admin.POST("/ciclo", h.SetCycle)
		admin.POST("/representatividade", h.MergeWeights)
		admin.POST("/mensagem-recompensa", h.SetRewardMessage)
		admin.DELETE("/mensagem-recompensa", h.ClearRewardMessage)

		admin.POST("/upload/:kind", h.Upload)
		admin.GET("/imports", h.ListImports)

		admin.PUT("/slack", h.UpdateSlack)
		admin.GET("/slack/status", h.SlackStatus)
		admin.POST("/slack/test", h.SlackTest)
		admin.POST("/slack/trigger", h.SlackTrigger)
		admin.GET("/slack/risk/:setorId", h.RiskSummary)
		admin.GET("/alerts", h.ListAlerts)
	}
}
