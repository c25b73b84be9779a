package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eduardocaduuu/SupervisionDash/internal/config"
	"github.com/eduardocaduuu/SupervisionDash/internal/server"
	"github.com/eduardocaduuu/SupervisionDash/internal/util"
)

var logger = log.New("main")

type globalFlags struct {
	configPath string
	dataDir    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "supervisiondash",
		Short:         "Sales supervision dashboard for reseller sectors",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: config.toml beside the executable)")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "data directory (overrides the config file)")

	serve := newServeCommand(g)
	root.AddCommand(serve, newDashboardCommand(g), newAlertsCommand(g))
	// bare invocation serves
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func loadConfig(g *globalFlags) (*config.AppConfig, config.LoadConfigInfo) {
	cfg, info, err := config.LoadConfigWithInfo(g.configPath)
	if err != nil {
		logger.Warnf("failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	if g.dataDir != "" {
		cfg.Data.DataDir = g.dataDir
	}
	return cfg, info
}

func newServeCommand(g *globalFlags) *cobra.Command {
	var (
		port    int
		devMode bool
		open    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the alert scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, info := loadConfig(g)
			// an explicit port in config.toml or PORT wins over the flag
			if port > 0 && !info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}

			fmt.Println("==========================================")
			fmt.Println("  SupervisionDash")
			fmt.Println("==========================================")

			app, err := server.NewApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			fmt.Printf("Data dir: %s\n", app.DataDir)

			srv, err := server.NewServer(app)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
			errCh := make(chan error, 1)
			go func() {
				fmt.Printf("Listening on port %d ...\n", cfg.Server.Port)
				errCh <- srv.Run(addr)
			}()

			if open && !cfg.Server.DevMode {
				if err := util.OpenBrowserWithFallback(url); err != nil {
					fmt.Printf("Could not open a browser, visit %s\n", url)
				}
			}
			fmt.Println("\nPress Ctrl+C to stop...")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			fmt.Println("\nShutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (used only when config.toml and PORT leave it unset)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "development mode: redirect non-API paths to the client dev server")
	cmd.Flags().BoolVar(&open, "open", false, "open the dashboard in a browser")
	return cmd
}

func newDashboardCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard <setorId>",
		Short: "Print the dashboard of a sector as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := loadConfig(g)
			app, err := server.NewApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			dash, err := app.Dealers.Dashboard(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dash)
		},
	}
}

func newAlertsCommand(g *globalFlags) *cobra.Command {
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Slack risk alerts",
	}

	var sector string
	run := &cobra.Command{
		Use:   "run",
		Short: "Send the risk alerts now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := loadConfig(g)
			app, err := server.NewApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Dispatcher.Trigger(cmd.Context(), sector)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	run.Flags().StringVar(&sector, "sector", "", "alert a single sector")

	var threshold float64
	riskCmd := &cobra.Command{
		Use:   "risk <setorId>",
		Short: "Print the risk summary of a sector without sending it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := loadConfig(g)
			app, err := server.NewApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if threshold <= 0 {
				threshold = app.Settings.Get().Slack.RiskThresholdPercent
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(app.Risk.Summary(args[0], threshold))
		},
	}
	riskCmd.Flags().Float64Var(&threshold, "threshold", 0, "risk threshold percent (default: settings)")

	alertsCmd.AddCommand(run, riskCmd)
	return alertsCmd
}
