package sigscript

import (
	"fmt"
)

// slotWrite records an external write performed by a script.
type slotWrite struct {
	Slot  string
	Value int
}

type testHead struct {
	signalType string
	state      Aspect
	drawState  int
	enabled    bool
	blockState BlockState
	acPosition *float32
	acSpeed    *float32
	least      Aspect
	most       Aspect

	reads  int
	writes []slotWrite
}

func newTestHead() *testHead {
	return &testHead{
		signalType: "TEST_SIGNAL",
		state:      AspectStop,
		enabled:    true,
		least:      AspectClear2,
		most:       AspectStop,
	}
}

func (h *testHead) SignalType() string { return h.signalType }

func (h *testHead) State() Aspect {
	h.reads++
	return h.state
}

func (h *testHead) SetState(aspect Aspect) {
	h.state = aspect
	h.writes = append(h.writes, slotWrite{Slot: "STATE", Value: int(aspect)})
}

func (h *testHead) DrawState() int {
	h.reads++
	return h.drawState
}

func (h *testHead) SetDrawState(drawState int) {
	h.drawState = drawState
	h.writes = append(h.writes, slotWrite{Slot: "DRAW_STATE", Value: drawState})
}

func (h *testHead) Enabled() bool {
	h.reads++
	return h.enabled
}

func (h *testHead) BlockState() BlockState {
	h.reads++
	return h.blockState
}

func (h *testHead) ApproachControlLimitPosition() (float32, bool) {
	h.reads++
	if h.acPosition == nil {
		return 0, false
	}
	return *h.acPosition, true
}

func (h *testHead) ApproachControlLimitSpeed() (float32, bool) {
	h.reads++
	if h.acSpeed == nil {
		return 0, false
	}
	return *h.acSpeed, true
}

func (h *testHead) LeastRestrictiveAspect() Aspect { return h.least }
func (h *testHead) MostRestrictiveAspect() Aspect  { return h.most }

type aspectPair struct {
	lr Aspect
	mr Aspect
}

// testNetwork answers queries from fixed tables and records every call.
type testNetwork struct {
	blockState       BlockState
	routeSet         bool
	next             map[SignalFunction]aspectPair
	this             map[SignalFunction]aspectPair
	opposite         map[SignalFunction]aspectPair
	nth              map[int]Aspect
	distMulti        Aspect
	features         map[int]bool
	trainDistance    int
	trainSpeed       int
	callOn           bool
	callOnRestricted bool
	heads            map[int]bool
	drawStates       map[Aspect]int
	partialRoute     bool

	calls []string
}

func newTestNetwork() *testNetwork {
	return &testNetwork{
		next:          make(map[SignalFunction]aspectPair),
		this:          make(map[SignalFunction]aspectPair),
		opposite:      make(map[SignalFunction]aspectPair),
		nth:           make(map[int]Aspect),
		features:      make(map[int]bool),
		heads:         make(map[int]bool),
		drawStates:    make(map[Aspect]int),
		trainDistance: -1,
	}
}

func (n *testNetwork) record(format string, args ...interface{}) {
	n.calls = append(n.calls, fmt.Sprintf(format, args...))
}

func (n *testNetwork) BlockState(SignalHead) BlockState {
	n.record("BLOCK_STATE")
	return n.blockState
}

func (n *testNetwork) RouteSet(SignalHead) bool {
	n.record("ROUTE_SET")
	return n.routeSet
}

func (n *testNetwork) NextSignalLeastRestrictive(_ SignalHead, fn SignalFunction) Aspect {
	n.record("NEXT_SIG_LR(%s)", fn)
	if p, ok := n.next[fn]; ok {
		return p.lr
	}
	return AspectStop
}

func (n *testNetwork) NextSignalMostRestrictive(_ SignalHead, fn SignalFunction) Aspect {
	n.record("NEXT_SIG_MR(%s)", fn)
	if p, ok := n.next[fn]; ok {
		return p.mr
	}
	return AspectStop
}

func (n *testNetwork) ThisSignalLeastRestrictive(_ SignalHead, fn SignalFunction) (Aspect, bool) {
	n.record("THIS_SIG_LR(%s)", fn)
	p, ok := n.this[fn]
	return p.lr, ok
}

func (n *testNetwork) ThisSignalMostRestrictive(_ SignalHead, fn SignalFunction) (Aspect, bool) {
	n.record("THIS_SIG_MR(%s)", fn)
	p, ok := n.this[fn]
	return p.mr, ok
}

func (n *testNetwork) OppositeSignalLeastRestrictive(_ SignalHead, fn SignalFunction) Aspect {
	n.record("OPP_SIG_LR(%s)", fn)
	if p, ok := n.opposite[fn]; ok {
		return p.lr
	}
	return AspectStop
}

func (n *testNetwork) OppositeSignalMostRestrictive(_ SignalHead, fn SignalFunction) Aspect {
	n.record("OPP_SIG_MR(%s)", fn)
	if p, ok := n.opposite[fn]; ok {
		return p.mr
	}
	return AspectStop
}

func (n *testNetwork) NextNthSignalLeastRestrictive(_ SignalHead, fn SignalFunction, count int) Aspect {
	n.record("NEXT_NSIG_LR(%s,%d)", fn, count)
	if a, ok := n.nth[count]; ok {
		return a
	}
	return AspectStop
}

func (n *testNetwork) DistMultiSignalMostRestrictive(_ SignalHead, fn1, fn2 SignalFunction) Aspect {
	n.record("DIST_MULTI_SIG_MR(%s,%s)", fn1, fn2)
	return n.distMulti
}

func (n *testNetwork) SignalFeature(_ SignalHead, feature int) bool {
	n.record("SIG_FEATURE(%d)", feature)
	return n.features[feature]
}

func (n *testNetwork) ApproachControlPosition(_ SignalHead, distance int) bool {
	n.record("APPROACH_CONTROL_POSITION(%d)", distance)
	return n.trainDistance >= 0 && n.trainDistance <= distance
}

func (n *testNetwork) ApproachControlSpeed(_ SignalHead, distance, speed int) bool {
	n.record("APPROACH_CONTROL_SPEED(%d,%d)", distance, speed)
	return n.trainDistance >= 0 && n.trainDistance <= distance && n.trainSpeed <= speed
}

func (n *testNetwork) TrainHasCallOn(_ SignalHead, restricted bool) bool {
	n.record("TRAINHASCALLON(%v)", restricted)
	if restricted {
		return n.callOnRestricted
	}
	return n.callOn
}

func (n *testNetwork) HasHead(_ SignalHead, index int) bool {
	n.record("HASHEAD(%d)", index)
	return n.heads[index]
}

func (n *testNetwork) DefaultDrawState(_ SignalHead, aspect Aspect) int {
	n.record("DEF_DRAW_STATE(%s)", aspect)
	if d, ok := n.drawStates[aspect]; ok {
		return d
	}
	return -1
}

func (n *testNetwork) AllowClearToPartialRoute(_ SignalHead, allow bool) {
	n.record("ALLOW_CLEAR_TO_PARTIAL_ROUTE(%v)", allow)
	n.partialRoute = allow
}

type mapRepository map[string]*Script

func (r mapRepository) Lookup(signalType string) *Script {
	return r[signalType]
}

// Script construction helpers.

func leaf(p *Parameter) *Term {
	return &Term{Params: []*Parameter{p}}
}

func constTerm(v int) *Term {
	return leaf(Const(v))
}

func opConst(op TermOperator, v int) *Term {
	return &Term{Operator: op, Params: []*Parameter{Const(v)}}
}

func call(id FunctionID, params ...*Parameter) *Term {
	return &Term{Function: id, Params: params}
}

func setState(a Aspect) *Statement {
	return &Statement{Target: ExternalTarget(ExternalState), Terms: []*Term{constTerm(int(a))}}
}

func setLocal(index, v int) *Statement {
	return &Statement{Target: LocalTarget(index), Terms: []*Term{constTerm(v)}}
}

func single(t *Term) *Condition {
	return &Condition{Term1: t}
}

func compare(t1 *Term, c Comparator, t2 *Term) *Condition {
	return &Condition{Term1: t1, Term2: t2, Comparator: c}
}

func testEnv(head *testHead, network *testNetwork, locals int) *Environment {
	return NewEnvironment(head, network, locals)
}
