package main

import (
	"context"
	"io"
	"log"

	"github.com/spf13/cobra"

	"example.com/workouts/internal/config"
	"example.com/workouts/internal/persistence"
	"example.com/workouts/internal/persistence/backend"
	"example.com/workouts/internal/service"
)

// app holds what a single CLI invocation opens and must close.
type app struct {
	cfg       config.Config
	loadCfg   func() config.Config
	openStore func(context.Context, config.Config, *log.Logger) (backend.Opened, error)
	logger    *log.Logger

	opened backend.Opened
	svc    *service.Service
	asJSON bool
}

func newApp() *app {
	return &app{
		loadCfg:   config.Load,
		openStore: backend.Open,
		logger:    log.New(io.Discard, "", 0),
	}
}

func newRootCmd(a *app) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "workouts",
		Short:         "Log running and cycling activities",
		Long:          "workouts keeps a log of running and cycling activities in the slot configured by STORAGE_BACKEND and SLOT_KEY.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of a table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log storage warnings to stderr")

	// Commands that touch the slot open it before running and close it after.
	withService := func(cmd *cobra.Command) *cobra.Command {
		run := cmd.RunE
		cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
			if verbose {
				a.logger = log.New(cmd.ErrOrStderr(), "[workouts] ", log.LstdFlags)
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			defer func() {
				if closeErr := a.close(); err == nil {
					err = closeErr
				}
			}()
			return run(cmd, args)
		}
		return cmd
	}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Log a new activity",
	}
	logCmd.AddCommand(withService(newLogRunningCmd(a)), withService(newLogCyclingCmd(a)))

	rootCmd.AddCommand(
		logCmd,
		withService(newListCmd(a)),
		withService(newShowCmd(a)),
		withService(newVisitCmd(a)),
		withService(newEditCmd(a)),
		withService(newRemoveCmd(a)),
		withService(newClearCmd(a)),
		withService(newBoundsCmd(a)),
		newTokenCmd(a),
	)
	return rootCmd
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.cfg = a.loadCfg()

	opened, err := a.openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.opened = opened
	a.svc = service.New(persistence.NewAdapter(opened.Slot, persistence.WithLogger(a.logger)),
		service.WithLogger(a.logger),
		service.WithSlotName(a.cfg.SlotKey))
	a.svc.Restore(ctx)
	return nil
}

func (a *app) close() error {
	a.svc = nil
	return a.opened.Close()
}
