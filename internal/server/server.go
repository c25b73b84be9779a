package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labstack/gommon/log"

	"github.com/eduardocaduuu/SupervisionDash/internal/alerts"
	"github.com/eduardocaduuu/SupervisionDash/internal/api"
)

var logger = log.New("server")

// DevClientURL dashboard client dev server
const DevClientURL = "http://localhost:5173"

// Server HTTP server plus the alert scheduler
type Server struct {
	app       *App
	router    *gin.Engine
	http      *http.Server
	scheduler *alerts.Scheduler
}

// NewServer builds the router for app. The scheduler is created only when
// enabled in the configuration.
func NewServer(app *App) (*Server, error) {
	cfg := app.Config
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Deps{
		Dealers:        app.Dealers,
		Settings:       app.Settings,
		Registry:       app.Registry,
		Sales:          app.Sales,
		Risk:           app.Risk,
		Store:          app.Store,
		Alerts:         app.Dispatcher,
		Admin:          cfg.Admin,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	}
	if app.Sender != nil {
		deps.SlackProbe = app.Sender
	}
	if cfg.Data.BackupUploads {
		deps.BackupDir = filepath.Join(app.DataDir, "backups")
	}

	s := &Server{app: app, router: gin.Default()}
	s.setupRoutes(api.NewHandler(deps))
	s.http = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	if cfg.Alerts.Schedule {
		sched, err := alerts.NewScheduler(app.Dispatcher, app.Location, alerts.DefaultSchedules)
		if err != nil {
			return nil, err
		}
		s.scheduler = sched
	}
	return s, nil
}

func (s *Server) setupRoutes(h *api.Handler) {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	h.RegisterRoutes(s.router.Group("/api"))

	cfg := s.app.Config.Server
	switch {
	case cfg.DevMode:
		s.router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.Redirect(http.StatusTemporaryRedirect, DevClientURL+c.Request.URL.Path)
		})
	case cfg.StaticDir != "":
		s.serveStatic(cfg.StaticDir)
	default:
		s.router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})
	}
}

// serveStatic serves the built client from dir, falling back to index.html
// for client-side routes.
func (s *Server) serveStatic(dir string) {
	index := filepath.Join(dir, "index.html")
	s.router.Static("/assets", filepath.Join(dir, "assets"))
	s.router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if st, err := os.Stat(file); err == nil && !st.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the scheduler and serves addr until Shutdown.
func (s *Server) Run(addr string) error {
	if s.scheduler != nil {
		s.scheduler.Start()
		if next, ok := s.scheduler.Next(alerts.DefaultSchedules[0].Job, time.Now()); ok {
			logger.Infof("alert scheduler started, next %s run at %s", alerts.DefaultSchedules[0].Job, next.Format(time.RFC3339))
		}
	}
	s.http.Addr = addr
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the scheduler, waits for running jobs and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.scheduler != nil {
		select {
		case <-s.scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}
	return s.http.Shutdown(ctx)
}
