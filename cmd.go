package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"starlane/internal/api"
	"starlane/internal/config"
	"starlane/internal/db"
	"starlane/internal/engine"
	"starlane/internal/galaxy"
	"starlane/internal/graph"
	"starlane/internal/logger"
	"starlane/internal/metrics"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:           "starlane",
	Short:         "Starlane simulates empires colonizing a procedural galaxy",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		flags := cmd.Flags()
		if flags.Changed("seed") {
			cfg.Simulation.Seed, _ = flags.GetInt64("seed")
		}
		if flags.Changed("ticks") {
			cfg.Simulation.Ticks, _ = flags.GetInt("ticks")
		}
		if flags.Changed("db") {
			cfg.DB.Path, _ = flags.GetString("db")
		}
		if flags.Changed("addr") {
			cfg.Server.Addr, _ = flags.GetString("addr")
		}
		if flags.Changed("log-level") {
			cfg.Log.Level, _ = flags.GetString("log-level")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger.Configure(cfg.LoggerOptions())
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("CLI", err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "TOML or YAML config file")
	rootCmd.PersistentFlags().Int64("seed", 0, "override simulation.seed")
	rootCmd.PersistentFlags().String("log-level", "", "override log.level")

	runCmd.Flags().Int("ticks", 0, "override simulation.ticks")
	runCmd.Flags().String("db", "", "override db.path (empty string disables recording)")
	serveCmd.Flags().Int("ticks", 0, "stop ticking after this many ticks (0 runs forever)")
	serveCmd.Flags().String("db", "", "override db.path")
	serveCmd.Flags().String("addr", "", "override server.addr")

	rootCmd.AddCommand(generateCmd, runCmd, serveCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a galaxy and print its statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Banner(version)
		g, _, err := generate()
		if err != nil {
			return err
		}
		logger.Section("Empires")
		for _, e := range g.Empires {
			star, _ := g.Star(e.Home)
			logger.Stats(e.Name, star.Name)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless simulation and record it",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Banner(version)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, stats, err := generate()
		if err != nil {
			return err
		}
		sim := engine.New(g, cfg.EngineOptions())
		database, runID, err := openRun(sim, stats)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}

		start := time.Now()
		runErr := sim.Run(ctx, cfg.Simulation.Ticks)
		if database != nil {
			if err := database.FinishRun(runID, sim.TickCount()); err != nil {
				logger.Warn("DB", err.Error())
			}
		}
		if runErr != nil && ctx.Err() == nil {
			return runErr
		}

		logger.Section("Result")
		logger.Stats("Ticks", sim.TickCount())
		logger.Stats("Date", sim.Time())
		logger.Stats("Wall time", time.Since(start).Round(time.Millisecond))
		logger.Stats("Fleets", len(sim.Fleets()))
		for _, s := range sim.Snapshot() {
			logger.Stats(s.Name, fmt.Sprintf("%d systems, %d colonies, %d pop", s.Systems, s.Colonies, s.Population))
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation in real time behind the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Banner(version)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, stats, err := generate()
		if err != nil {
			return err
		}
		sim := engine.New(g, cfg.EngineOptions())
		m := metrics.New()
		sim.SetObserver(m)
		database, runID, err := openRun(sim, stats)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}

		runner := api.NewRunner(sim)
		srv := api.NewServer(runner, m, database, runID)

		ticks := 0
		if cmd.Flags().Changed("ticks") {
			ticks = cfg.Simulation.Ticks
		}
		grp, gctx := errgroup.WithContext(ctx)
		grp.Go(func() error { return srv.ListenAndServe(gctx, cfg.Server.Addr) })
		grp.Go(func() error {
			return runner.Run(gctx, cfg.Simulation.TickInterval, ticks)
		})
		err = grp.Wait()
		if database != nil {
			var tick uint64
			runner.View(func(sim *engine.Simulation) { tick = sim.TickCount() })
			if ferr := database.FinishRun(runID, tick); ferr != nil {
				logger.Warn("DB", ferr.Error())
			}
		}
		return err
	},
}

// generate builds the galaxy from cfg and prints its statistics.
func generate() (*galaxy.Galaxy, graph.BuildStats, error) {
	seed := cfg.Simulation.Seed
	logger.Info("GALAXY", fmt.Sprintf("Generating with seed %d", seed))
	start := time.Now()
	g, stats, err := galaxy.Generate(cfg.GalaxyParams(), seed)
	if err != nil {
		return nil, stats, err
	}
	logger.Success("GALAXY", fmt.Sprintf("Generated in %s", time.Since(start).Round(time.Millisecond)))

	logger.Section("Galaxy")
	logger.Stats("Seed", seed)
	logger.Stats("Star slots", stats.Points)
	logger.Stats("Stars", len(g.Stars))
	logger.Stats("Bodies", len(g.Bodies))
	logger.Stats("Lanes", stats.Lanes)
	logger.Stats("Void nodes", stats.Points-stats.Enabled)
	logger.Stats("Lanes pruned (long)", stats.LongRemoved)
	logger.Stats("Lanes pruned (random)", stats.RandomRemoved)
	logger.Stats("Empires", len(g.Empires))
	return g, stats, nil
}

// openRun opens the configured database and starts a run record wired to sim.
// It returns a nil DB when recording is disabled.
func openRun(sim *engine.Simulation, stats graph.BuildStats) (*db.DB, int64, error) {
	if cfg.DB.Path == "" {
		return nil, 0, nil
	}
	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, 0, err
	}
	runID, err := database.InsertRun(cfg.Simulation.Seed, len(sim.Galaxy.Stars), stats.Lanes, len(sim.Galaxy.Empires), cfg)
	if err != nil {
		database.Close()
		return nil, 0, err
	}
	sim.SetRecorder(database.Recorder(runID))
	logger.Info("DB", fmt.Sprintf("Recording run %d", runID))
	return database, runID, nil
}
