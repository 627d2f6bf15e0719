package sigscript

import (
	"time"

	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/runtime/event"
)

// Events contains engine events.
type Events struct {
	// FallbackApplied fires when a head without script got the fallback aspect.
	FallbackApplied *event.Event1[SignalHead]
	// ScriptReturned fires when a script ended through RETURN.
	ScriptReturned *event.Event1[SignalHead]
}

// Engine runs signal scripts against a network once per tick.
type Engine struct {
	*logger.WrappedLogger

	Events *Events

	repository   ScriptRepository
	network      Network
	metrics      *Metrics
	debugScripts bool
}

// NewEngine creates a new engine. repository and metrics may be nil.
func NewEngine(log *logger.Logger, repository ScriptRepository, network Network, metrics *Metrics) *Engine {
	return &Engine{
		WrappedLogger: logger.NewWrappedLogger(log),
		Events: &Events{
			FallbackApplied: event.New1[SignalHead](),
			ScriptReturned:  event.New1[SignalHead](),
		},
		repository: repository,
		network:    network,
		metrics:    metrics,
	}
}

// SetScriptDebug routes DEBUG_HEADER and DEBUG_OUT output to the engine logger.
func (e *Engine) SetScriptDebug(enabled bool) {
	e.debugScripts = enabled
}

// Update evaluates every head once, using the script registered for its signal type.
func (e *Engine) Update(heads []SignalHead) {
	for _, head := range heads {
		var script *Script
		if e.repository != nil {
			script = e.repository.Lookup(head.SignalType())
		}
		e.Evaluate(head, script)
	}

	if e.metrics != nil {
		e.metrics.Ticks.Inc()
	}
}

// Evaluate runs script once for head. Without script the head is set to its
// least restrictive aspect when its block is clear and to its most restrictive
// aspect otherwise.
func (e *Engine) Evaluate(head SignalHead, script *Script) {
	start := time.Now()

	if script == nil {
		e.applyFallback(head)
		e.observe(ModeFallback, start)
		return
	}

	env := NewEnvironment(head, e.network, script.LocalCount)
	if e.debugScripts {
		env.log = e.WrappedLogger
	}

	if !runBlock(script.Statements, env) {
		if e.metrics != nil {
			e.metrics.Returns.Inc()
		}
		e.Events.ScriptReturned.Trigger(head)
	}

	e.observe(ModeScript, start)
}

// applyFallback asks the network about the head's block, the only read, and
// writes the state once.
func (e *Engine) applyFallback(head SignalHead) {
	if e.network.BlockState(head) == BlockClear {
		head.SetState(head.LeastRestrictiveAspect())
	} else {
		head.SetState(head.MostRestrictiveAspect())
	}
	e.Events.FallbackApplied.Trigger(head)
}

func (e *Engine) observe(mode string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.Evaluations.WithLabelValues(mode).Inc()
	e.metrics.EvaluationLatency.Observe(time.Since(start).Seconds())
}
