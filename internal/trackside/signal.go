package trackside

import (
	"github.com/dueldanov/sigscript/internal/sigscript"
)

// Signal is a trackside signal with one or more heads.
type Signal struct {
	ID       string
	Next     string
	Opposite string
	// Length is the distance in metres from this signal to the next one.
	Length float32

	BlockState       sigscript.BlockState
	RouteSet         bool
	Enabled          bool
	CallOn           bool
	CallOnRestricted bool
	Features         map[int]bool

	Heads []*Head
}

// headsOf returns the heads of s with function fn.
func (s *Signal) headsOf(fn sigscript.SignalFunction) []*Head {
	var heads []*Head
	for _, h := range s.Heads {
		if h.Function == fn {
			heads = append(heads, h)
		}
	}
	return heads
}

// Head is a signal head. It implements sigscript.SignalHead.
type Head struct {
	Number     int
	Type       string
	Function   sigscript.SignalFunction
	Aspects    []sigscript.Aspect
	DrawStates map[sigscript.Aspect]int

	signal *Signal

	state     sigscript.Aspect
	drawState int

	approachPosition *float32
	approachSpeed    *float32

	allowPartialRoute bool
}

var _ sigscript.SignalHead = (*Head)(nil)

// Signal returns the signal the head belongs to.
func (h *Head) Signal() *Signal {
	return h.signal
}

func (h *Head) SignalType() string {
	return h.Type
}

func (h *Head) State() sigscript.Aspect {
	return h.state
}

func (h *Head) SetState(aspect sigscript.Aspect) {
	h.state = aspect
}

func (h *Head) DrawState() int {
	return h.drawState
}

func (h *Head) SetDrawState(drawState int) {
	h.drawState = drawState
}

func (h *Head) Enabled() bool {
	return h.signal.Enabled
}

func (h *Head) BlockState() sigscript.BlockState {
	return h.signal.BlockState
}

// ApproachControlLimitPosition returns the distance last requested through
// APPROACH_CONTROL_POSITION or APPROACH_CONTROL_SPEED.
func (h *Head) ApproachControlLimitPosition() (float32, bool) {
	if h.approachPosition == nil {
		return 0, false
	}
	return *h.approachPosition, true
}

// ApproachControlLimitSpeed returns the speed last requested through
// APPROACH_CONTROL_SPEED.
func (h *Head) ApproachControlLimitSpeed() (float32, bool) {
	if h.approachSpeed == nil {
		return 0, false
	}
	return *h.approachSpeed, true
}

// PartialRouteAllowed reports the last ALLOW_CLEAR_TO_PARTIAL_ROUTE request.
func (h *Head) PartialRouteAllowed() bool {
	return h.allowPartialRoute
}

func (h *Head) LeastRestrictiveAspect() sigscript.Aspect {
	if len(h.Aspects) == 0 {
		return sigscript.AspectClear2
	}
	least := h.Aspects[0]
	for _, a := range h.Aspects[1:] {
		if a > least {
			least = a
		}
	}
	return least
}

func (h *Head) MostRestrictiveAspect() sigscript.Aspect {
	if len(h.Aspects) == 0 {
		return sigscript.AspectStop
	}
	most := h.Aspects[0]
	for _, a := range h.Aspects[1:] {
		if a < most {
			most = a
		}
	}
	return most
}

// Train is the train approaching a signal.
type Train struct {
	// Signal is the ID of the signal the train approaches.
	Signal string
	// Distance to that signal in metres.
	Distance float32
	// Speed in metres per second.
	Speed float32
}
