package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/iotaledger/hive.go/logger"

	"github.com/dueldanov/sigscript/internal/config"
	"github.com/dueldanov/sigscript/internal/scriptstore"
	"github.com/dueldanov/sigscript/internal/sigscript"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "sigscript-sim",
		Short:        "Run and check railway signal scripts",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCommand(), newValidateCommand(), newFunctionsCommand())

	return root
}

func newRunCommand() *cobra.Command {
	var (
		configPath  string
		layout      string
		scripts     string
		ticks       int
		scriptDebug bool
		realtime    bool
		watch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every signal head of a layout for a number of ticks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("layout") {
				cfg.Layout = layout
			}
			if flags.Changed("scripts") {
				cfg.Scripts.Dir = scripts
			}
			if flags.Changed("ticks") {
				cfg.Engine.Ticks = ticks
			}
			if flags.Changed("script-debug") {
				cfg.Engine.ScriptDebug = scriptDebug
			}
			if flags.Changed("realtime") {
				cfg.Engine.Realtime = realtime
			}
			if flags.Changed("watch") {
				cfg.Scripts.Watch = watch
			}
			if flags.Changed("metrics") {
				cfg.Metrics.Enabled = true
				cfg.Metrics.BindAddress = metricsAddr
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return runSimulation(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "sigscript-sim.yaml", "path to the configuration file")
	flags.StringVar(&layout, "layout", "", "path to the trackside layout file")
	flags.StringVar(&scripts, "scripts", "", "directory holding the signal scripts")
	flags.IntVar(&ticks, "ticks", 0, "number of ticks to run")
	flags.BoolVar(&scriptDebug, "script-debug", false, "log DEBUG_HEADER and DEBUG_OUT calls")
	flags.BoolVar(&realtime, "realtime", false, "wait one tick interval between ticks")
	flags.BoolVar(&watch, "watch", false, "reload changed script files while running")
	flags.StringVar(&metricsAddr, "metrics", "", "serve prometheus metrics on this address")

	return cmd
}

func runSimulation(cmd *cobra.Command, cfg *config.Config) error {
	rootLogger, err := logger.NewRootLogger(cfg.LoggerConfig())
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	log := rootLogger.Named("sim").With("run", uuid.New().String())

	sim, err := NewSimulator(log, cfg)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		server := &http.Server{
			Addr:              cfg.Metrics.BindAddress,
			Handler:           promhttp.HandlerFor(sim.Registry(), promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server failed: %s", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
		log.Infof("serving metrics on %s", cfg.Metrics.BindAddress)
	}

	return sim.Run(cmd.Context(), cmd.OutOrStdout(), cfg.Engine.Ticks)
}

func newValidateCommand() *cobra.Command {
	var scripts string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate every script of a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := scriptstore.ReadScriptDir(scripts)
			if err != nil {
				return err
			}

			var invalid []string
			for _, script := range parsed {
				if err := sigscript.Validate(script); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n", err)
					invalid = append(invalid, script.Name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", script.Name)
			}

			if len(invalid) > 0 {
				return errors.Errorf("%d invalid scripts: %s", len(invalid), strings.Join(invalid, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scripts, "scripts", "scripts", "directory holding the signal scripts")

	return cmd
}

func newFunctionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions available to signal scripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tARGS")
			for _, fn := range sigscript.Functions() {
				id, _ := sigscript.ParseFunction(fn.Name)
				fmt.Fprintf(w, "%d\t%s\t%d\n", id, fn.Name, fn.Args)
			}
			return w.Flush()
		},
	}
}
