// Package cli wires the adapters into the signal service behind cobra commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"cryptoSignalBot/config"
	"cryptoSignalBot/internal/adapters/health"
	"cryptoSignalBot/internal/adapters/sqlite"
	"cryptoSignalBot/internal/app"
	"cryptoSignalBot/internal/metrics"
	"cryptoSignalBot/internal/notify"
	"cryptoSignalBot/internal/risk"
	"cryptoSignalBot/internal/strategy"
	"cryptoSignalBot/internal/strategy/indicators"
	"cryptoSignalBot/internal/utils"
)

// NewRootCmd creates the root command. Configuration is loaded once before
// any subcommand runs.
func NewRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "signalbot",
		Short:         "Technical-analysis signal bot for a single Binance spot pair",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				if err := os.Setenv("CONFIG_FILE", path); err != nil {
					return err
				}
			}
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file (overrides CONFIG_FILE)")

	cfgFn := func() *config.Config { return cfg }
	rootCmd.AddCommand(newRunCmd(cfgFn))
	rootCmd.AddCommand(newOnceCmd(cfgFn))
	rootCmd.AddCommand(newStatusCmd(cfgFn))
	rootCmd.AddCommand(newExportCmd(cfgFn))

	return rootCmd
}

func newRunCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the polling loop with the health listener until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, cfg())
		},
	}
}

func runBot(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := newLogger(cfg, cmd.ErrOrStderr())
	defer log.sync() //nolint:errcheck
	log.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	store, err := openStore(cfg, log)
	if err != nil {
		log.Error(ctx, err, "FATAL: Failed to initialize position store")
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(context.Background(), err, "Error closing position store")
		}
	}()

	market, err := newMarket(cfg, log)
	if err != nil {
		log.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		return err
	}
	if err := market.Ping(ctx); err != nil {
		// Non-fatal: the loop retries data fetches on its own schedule.
		log.Warn(ctx, "Exchange connectivity check failed", map[string]interface{}{"error": err.Error()})
	}
	notifier, err := newNotifier(cfg, log, false)
	if err != nil {
		log.Error(ctx, err, "FATAL: Failed to initialize notifier")
		return err
	}
	classifier, err := strategy.New(cfg.Strategy)
	if err != nil {
		log.Error(ctx, err, "FATAL: Failed to initialize classifier")
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	if cfg.Port > 0 {
		srv, err := health.NewServer(health.Config{Port: cfg.Port, Gatherer: registry, Logger: log})
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			// The loop still runs without a liveness endpoint.
			log.Error(ctx, err, "Health server unavailable")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Stop(shutdownCtx)
			}()
		}
	}

	svc, err := app.NewSignalService(cfg, log, market, notifier, store, classifier, m)
	if err != nil {
		log.Error(ctx, err, "FATAL: Failed to initialize signal service")
		return err
	}
	log.Info(ctx, "Signal service initialized", map[string]interface{}{"symbol": cfg.Symbol, "interval": cfg.Interval})

	if err := svc.Start(ctx); err != nil {
		log.Error(context.Background(), err, "Signal service exited with error")
		return err
	}
	log.Info(context.Background(), "Application finished gracefully.")
	return nil
}

func newOnceCmd(cfg func() *config.Config) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single analysis cycle and print the verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			log := newLogger(c, cmd.ErrOrStderr())
			defer log.sync() //nolint:errcheck

			store, err := openStore(c, log)
			if err != nil {
				return err
			}
			defer store.Close()

			market, err := newMarket(c, log)
			if err != nil {
				return err
			}
			notifier, err := newNotifier(c, log, dryRun)
			if err != nil {
				return err
			}
			classifier, err := strategy.New(c.Strategy)
			if err != nil {
				return err
			}
			svc, err := app.NewSignalService(c, log, market, notifier, store, classifier, nil)
			if err != nil {
				return err
			}

			res, err := svc.RunCycle(ctx)
			if err != nil {
				return err
			}
			printCycle(cmd, c, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the notification instead of sending it")
	return cmd
}

func printCycle(cmd *cobra.Command, cfg *config.Config, res *app.CycleResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s close %s\n", cfg.Symbol, cfg.Interval, notify.FormatPrice(res.Price))
	fmt.Fprintf(out, "Verdict: %s (strength %.1f)\n", res.Verdict.Direction, res.Verdict.Strength)
	if len(res.Verdict.Conditions) > 0 {
		fmt.Fprintf(out, "Conditions: %s\n", strings.Join(res.Verdict.Conditions, ", "))
	}
	if res.Verdict.Conflict {
		fmt.Fprintln(out, "Conflict: buy and sell both qualified")
	}
	if res.Transition != nil {
		fmt.Fprintf(out, "Position: %s -> %s @ %s\n", res.Transition.From, res.Transition.To, notify.FormatPrice(res.Transition.Current.EntryPrice))
	} else {
		fmt.Fprintf(out, "Position: %s\n", res.Position.Side)
	}
	fmt.Fprintf(out, "Notified: %t\n", res.Notified)
}

func newStatusCmd(cfg func() *config.Config) *cobra.Command {
	var historyLimit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the persisted position and its risk ladder",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			log := newLogger(c, cmd.ErrOrStderr())
			defer log.sync() //nolint:errcheck

			store, err := openStore(c, log)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			pos, err := store.Load(ctx, c.Symbol)
			if err != nil {
				return err
			}
			if pos == nil || !pos.IsOpen() {
				fmt.Fprintf(out, "%s: FLAT\n", c.Symbol)
			} else {
				fmt.Fprintf(out, "%s: %s @ %s since %s (strength %.1f)\n",
					c.Symbol, pos.Side, notify.FormatPrice(pos.EntryPrice), pos.EntryTime.UTC().Format(time.RFC3339), pos.SignalStrength)
				calc, err := risk.NewCalculator(c.Risk)
				if err != nil {
					return err
				}
				ladder, err := calc.ForPosition(pos)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Stop loss: %s\n", notify.FormatPrice(ladder.StopLoss))
				for i, tp := range ladder.TakeProfits {
					fmt.Fprintf(out, "TP%d: %s\n", i+1, notify.FormatPrice(tp))
				}
			}

			if repo, ok := store.(*sqlite.Repository); ok && historyLimit > 0 {
				entries, err := repo.History(ctx, c.Symbol, historyLimit)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "History (%d):\n", len(entries))
				for _, e := range entries {
					fmt.Fprintf(out, "  %s %s @ %s\n", e.RecordedAt.UTC().Format(time.RFC3339), e.Side, notify.FormatPrice(e.EntryPrice))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&historyLimit, "history", 10, "Number of past flips to list (sqlite backend only)")
	return cmd
}

func newExportCmd(cfg func() *config.Config) *cobra.Command {
	var (
		outPath string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch candles, compute indicators and write them to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			log := newLogger(c, cmd.ErrOrStderr())
			defer log.sync() //nolint:errcheck

			if limit <= 0 {
				limit = c.Window
			}
			engine, err := indicators.NewEngine(c.Indicators)
			if err != nil {
				return err
			}
			market, err := newMarket(c, log)
			if err != nil {
				return err
			}
			klines, err := market.GetKlines(ctx, c.Symbol, c.Interval, limit)
			if err != nil {
				return err
			}
			frame := engine.Compute(klines)

			if outPath == "" {
				outPath = fmt.Sprintf("data/%s_%s_%s.csv", c.Symbol, c.Interval, time.Now().UTC().Format("20060102T1504"))
			}
			if err := utils.WriteFrameToCSV(frame, outPath); err != nil {
				return fmt.Errorf("write CSV: %w", err)
			}
			log.Info(ctx, "Saved to", map[string]interface{}{"filename": outPath, "rows": len(frame.Rows)})
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows (%d warm) to %s\n", len(frame.Rows), frame.WarmRows(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output CSV path")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of candles to fetch (default WINDOW)")
	return cmd
}
