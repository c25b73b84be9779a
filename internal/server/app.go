package server

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/eduardocaduuu/SupervisionDash/internal/alerts"
	"github.com/eduardocaduuu/SupervisionDash/internal/config"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/cadastro"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/dealers"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/risk"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/settings"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/vendas"
	"github.com/eduardocaduuu/SupervisionDash/internal/store"
)

// App every service of the dashboard, wired from one configuration.
type App struct {
	Config  *config.AppConfig
	DataDir string

	Store      *store.Store
	Settings   *settings.Manager
	Registry   *cadastro.Loader
	Sales      *vendas.Loader
	Dealers    *dealers.Service
	Risk       *risk.Service
	Sender     *alerts.SlackSender
	Dispatcher *alerts.Dispatcher
	Location   *time.Location
}

// NewApp creates the data directory, opens the database and wires the services.
func NewApp(cfg *config.AppConfig) (*App, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	st, err := store.New(filepath.Join(dataDir, cfg.Data.DatabaseFile))
	if err != nil {
		return nil, err
	}
	mgr, err := settings.NewManager(dataDir)
	if err != nil {
		st.Close()
		return nil, err
	}

	registry := cadastro.NewLoader(dataDir, cadastro.WithFileNames(cfg.Files.Registry...))
	sales := vendas.NewLoader(dataDir, registry, vendas.WithFileNames(cfg.Files.Sales...))

	opts := dealers.Options{BlockedCodes: cfg.Sectors.Blocked}
	if cfg.Data.DemoFallback {
		opts.Demo = dealers.DemoGenerator{}
	}
	dealerSvc := dealers.NewService(dealers.LoaderSource{Cadastro: registry, Vendas: sales}, registry, mgr, opts)
	riskSvc := risk.NewService(dealerSvc, cfg.Slack.BaseURL)

	app := &App{
		Config:   cfg,
		DataDir:  dataDir,
		Store:    st,
		Settings: mgr,
		Registry: registry,
		Sales:    sales,
		Dealers:  dealerSvc,
		Risk:     riskSvc,
		Location: alerts.LoadLocation(cfg.Alerts.Timezone),
	}

	// a nil *SlackSender must not reach the Sender interface
	var sender alerts.Sender
	if cfg.Slack.BotToken != "" {
		app.Sender = alerts.NewSlackSender(cfg.Slack.BotToken)
		sender = app.Sender
	} else {
		logger.Warnf("SLACK_BOT_TOKEN not set, alerts disabled")
	}
	app.Dispatcher = alerts.NewDispatcher(sender, riskSvc, mgr, dealerSvc, st, alerts.Config{
		TestUserID: cfg.Slack.TestUserID,
		Pacing:     time.Duration(cfg.Alerts.PacingMS) * time.Millisecond,
		Location:   app.Location,
	})
	return app, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}
