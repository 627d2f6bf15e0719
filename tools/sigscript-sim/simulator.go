package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/logger"

	"github.com/dueldanov/sigscript/internal/config"
	"github.com/dueldanov/sigscript/internal/scriptstore"
	"github.com/dueldanov/sigscript/internal/sigscript"
	"github.com/dueldanov/sigscript/internal/trackside"
)

// Simulator runs the signal engine over a trackside layout.
type Simulator struct {
	*logger.WrappedLogger

	store    *scriptstore.Store
	network  *trackside.Network
	engine   *sigscript.Engine
	registry *prometheus.Registry
	interval time.Duration
	realtime bool
	watchDir string
}

// NewSimulator loads the layout and scripts named by cfg.
func NewSimulator(log *logger.Logger, cfg *config.Config) (*Simulator, error) {
	store, err := scriptstore.NewStore(log, mapdb.NewMapDB(), scriptstore.NewScriptCache(cfg.Scripts.CacheSize, cfg.GetCacheTTL()))
	if err != nil {
		return nil, err
	}
	if _, err := store.LoadDir(cfg.Scripts.Dir); err != nil {
		return nil, errors.Wrap(err, "failed to load scripts")
	}

	network, err := trackside.LoadLayout(log, cfg.Layout)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	engine := sigscript.NewEngine(log, store, network, sigscript.NewMetrics(registry))
	engine.SetScriptDebug(cfg.Engine.ScriptDebug)

	s := &Simulator{
		WrappedLogger: logger.NewWrappedLogger(log),
		store:         store,
		network:       network,
		engine:        engine,
		registry:      registry,
		interval:      cfg.GetTickInterval(),
		realtime:      cfg.Engine.Realtime,
	}
	if cfg.Scripts.Watch {
		s.watchDir = cfg.Scripts.Dir
	}

	engine.Events.FallbackApplied.Hook(func(head sigscript.SignalHead) {
		s.LogDebugf("no script for signal type %s, fallback aspect %s", head.SignalType(), head.State())
	})
	engine.Events.ScriptReturned.Hook(func(head sigscript.SignalHead) {
		s.LogDebugf("script %s returned early", head.SignalType())
	})

	return s, nil
}

// Registry returns the registry holding the engine metrics.
func (s *Simulator) Registry() *prometheus.Registry {
	return s.registry
}

// Run evaluates all heads ticks times and writes their aspects after each
// tick. It stops early when ctx is done.
func (s *Simulator) Run(ctx context.Context, out io.Writer, ticks int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.watchDir != "" {
		if err := s.store.Watch(ctx, s.watchDir); err != nil {
			return err
		}
	}

	s.LogInfof("running %d ticks over %d signals", ticks, len(s.network.Signals()))

	for tick := 1; tick <= ticks; tick++ {
		if tick > 1 && s.realtime {
			timer := time.NewTimer(s.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.engine.Update(s.network.Heads())
		if err := s.report(out, tick); err != nil {
			return err
		}
		s.network.Advance(float32(s.interval.Seconds()))
	}

	return nil
}

func (s *Simulator) report(out io.Writer, tick int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "tick %d", tick)
	if train := s.network.Train(); train != nil {
		fmt.Fprintf(w, "\ttrain %.0fm before %s", train.Distance, train.Signal)
	}
	fmt.Fprintln(w)

	for _, signal := range s.network.Signals() {
		for _, head := range signal.Heads {
			fmt.Fprintf(w, "  %s/%d\t%s\t%s\t%s\tdraw=%d\n",
				signal.ID, head.Number, head.SignalType(), signal.BlockState, head.State(), head.DrawState())
		}
	}

	return w.Flush()
}
