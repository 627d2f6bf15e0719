package trackside

import (
	"github.com/pkg/errors"

	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/logger"

	"github.com/dueldanov/sigscript/internal/sigscript"
)

var (
	ErrUnknownSignal   = errors.New("unknown signal")
	ErrDuplicateSignal = errors.New("duplicate signal")
)

// Network is an in-memory track layout answering the queries of signal
// scripts. It implements sigscript.Network.
type Network struct {
	*logger.WrappedLogger

	signals map[string]*Signal
	order   []*Signal
	train   *Train
}

var _ sigscript.Network = (*Network)(nil)

// NewNetwork creates an empty network.
func NewNetwork(log *logger.Logger) *Network {
	return &Network{
		WrappedLogger: logger.NewWrappedLogger(log),
		signals:       make(map[string]*Signal),
	}
}

// AddSignal adds s and attaches its heads to it.
func (n *Network) AddSignal(s *Signal) error {
	if _, exists := n.signals[s.ID]; exists {
		return errors.Wrap(ErrDuplicateSignal, s.ID)
	}
	if s.Features == nil {
		s.Features = make(map[int]bool)
	}
	for _, h := range s.Heads {
		h.signal = s
		h.state = h.MostRestrictiveAspect()
	}

	n.signals[s.ID] = s
	n.order = append(n.order, s)

	return nil
}

// Signal returns the signal with id, or nil.
func (n *Network) Signal(id string) *Signal {
	return n.signals[id]
}

// Signals returns the signals in insertion order.
func (n *Network) Signals() []*Signal {
	return n.order
}

// Heads returns every head of the network in signal order.
func (n *Network) Heads() []sigscript.SignalHead {
	var heads []sigscript.SignalHead
	for _, s := range n.order {
		heads = append(heads, lo.Map(s.Heads, func(h *Head) sigscript.SignalHead { return h })...)
	}
	return heads
}

// Train returns the approaching train, or nil.
func (n *Network) Train() *Train {
	return n.train
}

// SetTrain places a train in front of the signal named by t.Signal.
func (n *Network) SetTrain(t *Train) error {
	if t != nil && n.signals[t.Signal] == nil {
		return errors.Wrap(ErrUnknownSignal, t.Signal)
	}
	n.train = t
	return nil
}

// Advance moves the train for dt seconds. A train passing a signal occupies
// the block behind it and releases the previous one; leaving the last signal
// removes it from the network.
func (n *Network) Advance(dt float32) {
	if n.train == nil {
		return
	}

	n.train.Distance -= n.train.Speed * dt
	for passes := 0; n.train.Distance <= 0 && passes < len(n.order); passes++ {
		passed := n.signals[n.train.Signal]
		n.releaseBlocks()
		passed.BlockState = sigscript.BlockOccupied
		n.LogDebugf("train passed signal %s", passed.ID)

		next := n.signals[passed.Next]
		if next == nil {
			n.LogDebugf("train left the network after signal %s", passed.ID)
			n.train = nil
			return
		}
		n.train.Signal = next.ID
		n.train.Distance += passed.Length
	}
}

func (n *Network) releaseBlocks() {
	for _, s := range n.order {
		if s.BlockState == sigscript.BlockOccupied {
			s.BlockState = sigscript.BlockClear
		}
	}
}

func asHead(head sigscript.SignalHead) (*Head, bool) {
	h, ok := head.(*Head)
	if !ok || h.signal == nil {
		return nil, false
	}
	return h, true
}

// walk visits the signals following head's signal until visit returns false,
// the chain ends or a signal repeats.
func (n *Network) walk(head sigscript.SignalHead, visit func(s *Signal) bool) {
	h, ok := asHead(head)
	if !ok {
		return
	}

	seen := map[string]bool{h.signal.ID: true}
	for s := n.signals[h.signal.Next]; s != nil && !seen[s.ID]; s = n.signals[s.Next] {
		seen[s.ID] = true
		if !visit(s) {
			return
		}
	}
}

func leastRestrictive(heads []*Head) sigscript.Aspect {
	least := heads[0].state
	for _, h := range heads[1:] {
		if h.state > least {
			least = h.state
		}
	}
	return least
}

func mostRestrictive(heads []*Head) sigscript.Aspect {
	most := heads[0].state
	for _, h := range heads[1:] {
		if h.state < most {
			most = h.state
		}
	}
	return most
}

// nextHeads returns the heads of function fn on the nth signal ahead that
// carries such heads.
func (n *Network) nextHeads(head sigscript.SignalHead, fn sigscript.SignalFunction, nth int) []*Head {
	var found []*Head
	n.walk(head, func(s *Signal) bool {
		heads := s.headsOf(fn)
		if len(heads) == 0 {
			return true
		}
		nth--
		if nth > 0 {
			return true
		}
		found = heads
		return false
	})
	return found
}

// BlockState returns the block state of head's signal.
func (n *Network) BlockState(head sigscript.SignalHead) sigscript.BlockState {
	h, ok := asHead(head)
	if !ok {
		return sigscript.BlockOccupied
	}
	return h.signal.BlockState
}

// RouteSet reports whether a route is set from head's signal.
func (n *Network) RouteSet(head sigscript.SignalHead) bool {
	h, ok := asHead(head)
	return ok && h.signal.RouteSet
}

// NextSignalLeastRestrictive returns the least restrictive fn aspect of the
// next signal carrying fn heads.
func (n *Network) NextSignalLeastRestrictive(head sigscript.SignalHead, fn sigscript.SignalFunction) sigscript.Aspect {
	return n.NextNthSignalLeastRestrictive(head, fn, 1)
}

// NextSignalMostRestrictive returns the most restrictive fn aspect of the
// next signal carrying fn heads.
func (n *Network) NextSignalMostRestrictive(head sigscript.SignalHead, fn sigscript.SignalFunction) sigscript.Aspect {
	heads := n.nextHeads(head, fn, 1)
	if len(heads) == 0 {
		return sigscript.AspectStop
	}
	return mostRestrictive(heads)
}

// ThisSignalLeastRestrictive returns the least restrictive aspect of the fn
// heads on head's own signal, and false when there are none.
func (n *Network) ThisSignalLeastRestrictive(head sigscript.SignalHead, fn sigscript.SignalFunction) (sigscript.Aspect, bool) {
	h, ok := asHead(head)
	if !ok {
		return sigscript.AspectStop, false
	}
	heads := h.signal.headsOf(fn)
	if len(heads) == 0 {
		return sigscript.AspectStop, false
	}
	return leastRestrictive(heads), true
}

// ThisSignalMostRestrictive returns the most restrictive aspect of the fn
// heads on head's own signal, and false when there are none.
func (n *Network) ThisSignalMostRestrictive(head sigscript.SignalHead, fn sigscript.SignalFunction) (sigscript.Aspect, bool) {
	h, ok := asHead(head)
	if !ok {
		return sigscript.AspectStop, false
	}
	heads := h.signal.headsOf(fn)
	if len(heads) == 0 {
		return sigscript.AspectStop, false
	}
	return mostRestrictive(heads), true
}

func (n *Network) oppositeHeads(head sigscript.SignalHead, fn sigscript.SignalFunction) []*Head {
	h, ok := asHead(head)
	if !ok {
		return nil
	}
	opposite := n.signals[h.signal.Opposite]
	if opposite == nil {
		return nil
	}
	return opposite.headsOf(fn)
}

// OppositeSignalLeastRestrictive returns the least restrictive fn aspect of
// the opposite signal.
func (n *Network) OppositeSignalLeastRestrictive(head sigscript.SignalHead, fn sigscript.SignalFunction) sigscript.Aspect {
	heads := n.oppositeHeads(head, fn)
	if len(heads) == 0 {
		return sigscript.AspectStop
	}
	return leastRestrictive(heads)
}

// OppositeSignalMostRestrictive returns the most restrictive fn aspect of the
// opposite signal.
func (n *Network) OppositeSignalMostRestrictive(head sigscript.SignalHead, fn sigscript.SignalFunction) sigscript.Aspect {
	heads := n.oppositeHeads(head, fn)
	if len(heads) == 0 {
		return sigscript.AspectStop
	}
	return mostRestrictive(heads)
}

// NextNthSignalLeastRestrictive treats counts below one as one.
func (n *Network) NextNthSignalLeastRestrictive(head sigscript.SignalHead, fn sigscript.SignalFunction, count int) sigscript.Aspect {
	if count < 1 {
		count = 1
	}
	heads := n.nextHeads(head, fn, count)
	if len(heads) == 0 {
		return sigscript.AspectStop
	}
	return leastRestrictive(heads)
}

// DistMultiSignalMostRestrictive returns the most restrictive fn1 aspect on
// the signals ahead up to, not including, the first signal carrying an fn2
// head.
func (n *Network) DistMultiSignalMostRestrictive(head sigscript.SignalHead, fn1, fn2 sigscript.SignalFunction) sigscript.Aspect {
	var heads []*Head
	n.walk(head, func(s *Signal) bool {
		if len(s.headsOf(fn2)) > 0 {
			return false
		}
		heads = append(heads, s.headsOf(fn1)...)
		return true
	})
	if len(heads) == 0 {
		return sigscript.AspectStop
	}
	return mostRestrictive(heads)
}

// SignalFeature reports whether head's signal has feature.
func (n *Network) SignalFeature(head sigscript.SignalHead, feature int) bool {
	h, ok := asHead(head)
	return ok && h.signal.Features[feature]
}

// trainDistance returns the distance of the train approaching head's signal.
func (n *Network) trainDistance(h *Head) (float32, bool) {
	if n.train == nil || n.train.Signal != h.signal.ID {
		return 0, false
	}
	return n.train.Distance, true
}

// ApproachControlPosition records distance on head and reports whether the
// approaching train is within it.
func (n *Network) ApproachControlPosition(head sigscript.SignalHead, distance int) bool {
	h, ok := asHead(head)
	if !ok {
		return false
	}
	position := float32(distance)
	h.approachPosition = &position

	d, ok := n.trainDistance(h)
	return ok && d <= position
}

// ApproachControlSpeed records distance and speed on head and reports whether
// the approaching train is within distance at no more than speed.
func (n *Network) ApproachControlSpeed(head sigscript.SignalHead, distance, speed int) bool {
	h, ok := asHead(head)
	if !ok {
		return false
	}
	position, limit := float32(distance), float32(speed)
	h.approachPosition = &position
	h.approachSpeed = &limit

	d, ok := n.trainDistance(h)
	return ok && d <= position && n.train.Speed <= limit
}

// TrainHasCallOn reports whether a train approaches head's signal and the
// signal grants a call-on, restricted or not.
func (n *Network) TrainHasCallOn(head sigscript.SignalHead, restricted bool) bool {
	h, ok := asHead(head)
	if !ok {
		return false
	}
	if _, approaching := n.trainDistance(h); !approaching {
		return false
	}
	if restricted {
		return h.signal.CallOnRestricted
	}
	return h.signal.CallOn
}

// HasHead reports whether head's signal carries a head numbered index.
func (n *Network) HasHead(head sigscript.SignalHead, index int) bool {
	h, ok := asHead(head)
	if !ok {
		return false
	}
	for _, other := range h.signal.Heads {
		if other.Number == index {
			return true
		}
	}
	return false
}

// DefaultDrawState returns the draw state configured for aspect, or -1.
func (n *Network) DefaultDrawState(head sigscript.SignalHead, aspect sigscript.Aspect) int {
	h, ok := asHead(head)
	if !ok {
		return -1
	}
	if drawState, ok := h.DrawStates[aspect]; ok {
		return drawState
	}
	return -1
}

// AllowClearToPartialRoute records on head whether it may clear to a partial
// route.
func (n *Network) AllowClearToPartialRoute(head sigscript.SignalHead, allow bool) {
	if h, ok := asHead(head); ok {
		h.allowPartialRoute = allow
	}
}
