package sigscript

// ScriptRepository supplies the parsed script of a signal type.
type ScriptRepository interface {
	// Lookup returns nil when the signal type has no script.
	Lookup(signalType string) *Script
}

// SignalHead is the signal head a script drives.
type SignalHead interface {
	SignalType() string

	State() Aspect
	SetState(aspect Aspect)

	DrawState() int
	SetDrawState(drawState int)

	// Enabled reports whether the signal is enabled for a train.
	Enabled() bool
	BlockState() BlockState

	ApproachControlLimitPosition() (float32, bool)
	ApproachControlLimitSpeed() (float32, bool)

	LeastRestrictiveAspect() Aspect
	MostRestrictiveAspect() Aspect
}

// Network answers the track and neighbouring signal queries of the function table.
type Network interface {
	BlockState(head SignalHead) BlockState
	RouteSet(head SignalHead) bool

	NextSignalLeastRestrictive(head SignalHead, fn SignalFunction) Aspect
	NextSignalMostRestrictive(head SignalHead, fn SignalFunction) Aspect

	// ThisSignalLeastRestrictive returns false when the head's own signal has no
	// head of function fn.
	ThisSignalLeastRestrictive(head SignalHead, fn SignalFunction) (Aspect, bool)
	ThisSignalMostRestrictive(head SignalHead, fn SignalFunction) (Aspect, bool)

	OppositeSignalLeastRestrictive(head SignalHead, fn SignalFunction) Aspect
	OppositeSignalMostRestrictive(head SignalHead, fn SignalFunction) Aspect

	NextNthSignalLeastRestrictive(head SignalHead, fn SignalFunction, n int) Aspect
	DistMultiSignalMostRestrictive(head SignalHead, fn1, fn2 SignalFunction) Aspect

	SignalFeature(head SignalHead, feature int) bool

	ApproachControlPosition(head SignalHead, distance int) bool
	ApproachControlSpeed(head SignalHead, distance, speed int) bool

	TrainHasCallOn(head SignalHead, restricted bool) bool
	HasHead(head SignalHead, index int) bool

	// DefaultDrawState returns -1 when the head has no draw state for aspect.
	DefaultDrawState(head SignalHead, aspect Aspect) int

	AllowClearToPartialRoute(head SignalHead, allow bool)
}
