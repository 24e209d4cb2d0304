package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"CreditCycle/internal/bank"
	"CreditCycle/internal/checkpoint"
	"CreditCycle/internal/config"
	"CreditCycle/internal/government"
	"CreditCycle/internal/market"
	"CreditCycle/internal/model"
	"CreditCycle/internal/planning"
	"CreditCycle/internal/recorder"
	"CreditCycle/internal/report"
	"CreditCycle/internal/scheduler"
	"CreditCycle/internal/simulation"
	"CreditCycle/pkg/logger"

	"github.com/rs/zerolog"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (default $CONFIG_PATH or configs/config.yaml)")
	periods := flag.Int("periods", 0, "periods to run, overrides simulation.periods")
	resume := flag.Bool("checkpoint", false, "resume from the configured checkpoint and save after each period")
	flag.Parse()

	path := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	if *cfgPath != "" {
		path = *cfgPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		l := logger.New(logger.Config{})
		l.Fatal().Err(err).Msg("load config")
	}
	if *periods > 0 {
		cfg.Simulation.Periods = *periods
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", path).Msg("CreditCycle starting")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	econ, err := build(cfg, rec, *resume, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build economy")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkpointPath := ""
	if *resume {
		checkpointPath = cfg.Checkpoint.Path
	}
	sched := scheduler.NewScheduler(ctx, econ, cfg.Simulation.Periods, checkpointPath, log)

	if cfg.Schedule.StepCron != "" {
		if err := sched.Register(cfg.Schedule.StepCron); err != nil {
			log.Fatal().Err(err).Msg("register step task")
		}
		sched.Start()
		defer sched.Stop()
	} else {
		go func() {
			for {
				select {
				case <-sched.Done():
					return
				default:
					sched.RunStepNow()
				}
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sched.Done():
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
		cancel()
		<-sched.Done()
	}

	if err := sched.Err(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("run ended early")
	}
	log.Info().Str("run", econ.RunID()).Int("period", econ.Period()).Msg("\n" + report.FormatBank(econ.Bank().GetState()))
	log.Info().Msg("CreditCycle stopped")
}

// build creates a fresh economy, or resumes the checkpointed one when asked
// and a checkpoint exists.
func build(cfg *config.Config, rec recorder.Recorder, resume bool, log zerolog.Logger) (*simulation.Economy, error) {
	bankCfg := bank.Config{
		InitialEquity: cfg.Bank.Equity,
		CapitalRatio:  cfg.Bank.CapitalRatio,
		FixedSupply:   cfg.Bank.FixedSupply,
	}
	deps := simulation.Deps{
		Market: market.NewStochastic(market.Config{
			Mean:   cfg.Market.Mean,
			StdDev: cfg.Market.StdDev,
			Window: cfg.Market.Window,
			Seed:   cfg.Simulation.Seed,
		}, log),
		Planner: planning.New(planning.Config{
			InventoryShare:   cfg.Planning.InventoryShare,
			Markup:           cfg.Planning.Markup,
			OutputPerCapital: cfg.Planning.OutputPerCapital,
		}),
		Recorder: rec,
	}
	opts := simulation.Options{Workers: cfg.Simulation.Workers, Strict: cfg.Simulation.Strict}

	if resume {
		snap, err := checkpoint.Load(cfg.Checkpoint.Path)
		if err != nil {
			return nil, err
		}
		if !snap.Empty() {
			deps.Bank = bank.Restore(snap.Bank, bankCfg, log)
			deps.Government = government.Restore(snap.Government, log)
			opts.RunID = snap.RunID
			econ := simulation.New(cfg.MacroVars(), simulation.FirmsFromSnapshot(snap), deps, opts, log)
			econ.Resume(snap.Period)
			log.Info().Str("run", snap.RunID).Int("period", snap.Period).Msg("resumed from checkpoint")
			return econ, nil
		}
	}

	firms := simulation.NewPopulation(simulation.Seed{
		Count:                 cfg.Firms.Count,
		LiquidAsset:           cfg.Firms.LiquidAsset,
		Debt:                  cfg.Firms.Debt,
		Capital:               cfg.Firms.Capital,
		Productivity:          cfg.Firms.Productivity,
		Inventories:           cfg.Firms.Inventories,
		PastSales:             cfg.Firms.PastSales,
		GrossOperatingSurplus: cfg.Firms.GrossOperatingSurplus,
	})
	deps.Bank = bank.New(bankCfg, log)
	deps.Bank.BookLoan(totalDebt(firms))
	deps.Government = government.New(cfg.Macro.TaxRate, log)
	return simulation.New(cfg.MacroVars(), firms, deps, opts, log), nil
}

func totalDebt(firms []*model.Firm) float64 {
	sum := 0.0
	for _, f := range firms {
		sum += f.Debt.Current
	}
	return sum
}
