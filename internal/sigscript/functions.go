package sigscript

import "sort"

// FunctionID identifies an entry of the external function table.
type FunctionID int

const (
	FuncNone FunctionID = iota
	// FuncReturn is the RETURN marker, not a callable function.
	FuncReturn
	FuncBlockState
	FuncRouteSet
	FuncNextSigLR
	FuncNextSigMR
	FuncThisSigLR
	FuncThisSigMR
	FuncOppSigLR
	FuncOppSigMR
	FuncNextNSigLR
	FuncDistMultiSigMR
	FuncSigFeature
	FuncApproachControlPosition
	FuncApproachControlSpeed
	FuncTrainHasCallOn
	FuncTrainHasCallOnRestricted
	FuncHasHead
	FuncDefDrawState
	FuncDebugHeader
	FuncDebugOut
	FuncAllowClearToPartialRoute
)

// BuiltinFunction is an entry of the external function table.
type BuiltinFunction struct {
	Name    string
	Args    int
	Handler func(env *Environment, p1, p2 int) int
}

var builtinFunctions = map[FunctionID]BuiltinFunction{
	FuncBlockState: {
		Name:    "BLOCK_STATE",
		Handler: funcBlockState,
	},
	FuncRouteSet: {
		Name:    "ROUTE_SET",
		Handler: funcRouteSet,
	},
	FuncNextSigLR: {
		Name:    "NEXT_SIG_LR",
		Args:    1,
		Handler: funcNextSigLR,
	},
	FuncNextSigMR: {
		Name:    "NEXT_SIG_MR",
		Args:    1,
		Handler: funcNextSigMR,
	},
	FuncThisSigLR: {
		Name:    "THIS_SIG_LR",
		Args:    1,
		Handler: funcThisSigLR,
	},
	FuncThisSigMR: {
		Name:    "THIS_SIG_MR",
		Args:    1,
		Handler: funcThisSigMR,
	},
	FuncOppSigLR: {
		Name:    "OPP_SIG_LR",
		Args:    1,
		Handler: funcOppSigLR,
	},
	FuncOppSigMR: {
		Name:    "OPP_SIG_MR",
		Args:    1,
		Handler: funcOppSigMR,
	},
	FuncNextNSigLR: {
		Name:    "NEXT_NSIG_LR",
		Args:    2,
		Handler: funcNextNSigLR,
	},
	FuncDistMultiSigMR: {
		Name:    "DIST_MULTI_SIG_MR",
		Args:    2,
		Handler: funcDistMultiSigMR,
	},
	FuncSigFeature: {
		Name:    "SIG_FEATURE",
		Args:    1,
		Handler: funcSigFeature,
	},
	FuncApproachControlPosition: {
		Name:    "APPROACH_CONTROL_POSITION",
		Args:    1,
		Handler: funcApproachControlPosition,
	},
	FuncApproachControlSpeed: {
		Name:    "APPROACH_CONTROL_SPEED",
		Args:    2,
		Handler: funcApproachControlSpeed,
	},
	FuncTrainHasCallOn: {
		Name:    "TRAINHASCALLON",
		Handler: funcTrainHasCallOn,
	},
	FuncTrainHasCallOnRestricted: {
		Name:    "TRAINHASCALLON_RESTRICTED",
		Handler: funcTrainHasCallOnRestricted,
	},
	FuncHasHead: {
		Name:    "HASHEAD",
		Args:    1,
		Handler: funcHasHead,
	},
	FuncDefDrawState: {
		Name:    "DEF_DRAW_STATE",
		Args:    1,
		Handler: funcDefDrawState,
	},
	FuncDebugHeader: {
		Name:    "DEBUG_HEADER",
		Handler: funcDebugHeader,
	},
	FuncDebugOut: {
		Name:    "DEBUG_OUT",
		Args:    1,
		Handler: funcDebugOut,
	},
	FuncAllowClearToPartialRoute: {
		Name:    "ALLOW_CLEAR_TO_PARTIAL_ROUTE",
		Args:    1,
		Handler: funcAllowClearToPartialRoute,
	},
}

var functionsByName = func() map[string]FunctionID {
	m := make(map[string]FunctionID, len(builtinFunctions)+1)
	for id, fn := range builtinFunctions {
		m[fn.Name] = id
	}
	m["RETURN"] = FuncReturn
	return m
}()

func (f FunctionID) String() string {
	switch f {
	case FuncNone:
		return "NONE"
	case FuncReturn:
		return "RETURN"
	}
	if fn, ok := builtinFunctions[f]; ok {
		return fn.Name
	}
	return "UNKNOWN"
}

// ParseFunction resolves a function name, including RETURN.
func ParseFunction(name string) (FunctionID, error) {
	if id, ok := functionsByName[name]; ok {
		return id, nil
	}
	return FuncNone, &NameError{Name: name}
}

// LookupFunction returns the table entry of id.
func LookupFunction(id FunctionID) (BuiltinFunction, bool) {
	fn, ok := builtinFunctions[id]
	return fn, ok
}

// Functions lists the function table ordered by identifier.
func Functions() []BuiltinFunction {
	ids := make([]int, 0, len(builtinFunctions))
	for id := range builtinFunctions {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	fns := make([]BuiltinFunction, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, builtinFunctions[FunctionID(id)])
	}
	return fns
}

// callFunction dispatches id with already resolved parameters. Unknown
// identifiers yield 0.
func callFunction(id FunctionID, p1, p2 int, env *Environment) int {
	fn, ok := builtinFunctions[id]
	if !ok {
		return 0
	}
	return fn.Handler(env, p1, p2)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func funcBlockState(env *Environment, _, _ int) int {
	return int(env.Network.BlockState(env.Head))
}

func funcRouteSet(env *Environment, _, _ int) int {
	return boolToInt(env.Network.RouteSet(env.Head))
}

func funcNextSigLR(env *Environment, fn, _ int) int {
	return int(env.Network.NextSignalLeastRestrictive(env.Head, SignalFunction(fn)))
}

func funcNextSigMR(env *Environment, fn, _ int) int {
	return int(env.Network.NextSignalMostRestrictive(env.Head, SignalFunction(fn)))
}

func funcThisSigLR(env *Environment, fn, _ int) int {
	aspect, found := env.Network.ThisSignalLeastRestrictive(env.Head, SignalFunction(fn))
	if !found {
		return -1
	}
	return int(aspect)
}

func funcThisSigMR(env *Environment, fn, _ int) int {
	aspect, found := env.Network.ThisSignalMostRestrictive(env.Head, SignalFunction(fn))
	if !found {
		return -1
	}
	return int(aspect)
}

func funcOppSigLR(env *Environment, fn, _ int) int {
	return int(env.Network.OppositeSignalLeastRestrictive(env.Head, SignalFunction(fn)))
}

func funcOppSigMR(env *Environment, fn, _ int) int {
	return int(env.Network.OppositeSignalMostRestrictive(env.Head, SignalFunction(fn)))
}

func funcNextNSigLR(env *Environment, fn, count int) int {
	return int(env.Network.NextNthSignalLeastRestrictive(env.Head, SignalFunction(fn), count))
}

func funcDistMultiSigMR(env *Environment, fn1, fn2 int) int {
	return int(env.Network.DistMultiSignalMostRestrictive(env.Head, SignalFunction(fn1), SignalFunction(fn2)))
}

func funcSigFeature(env *Environment, feature, _ int) int {
	return boolToInt(env.Network.SignalFeature(env.Head, feature))
}

func funcApproachControlPosition(env *Environment, distance, _ int) int {
	return boolToInt(env.Network.ApproachControlPosition(env.Head, distance))
}

func funcApproachControlSpeed(env *Environment, distance, speed int) int {
	return boolToInt(env.Network.ApproachControlSpeed(env.Head, distance, speed))
}

func funcTrainHasCallOn(env *Environment, _, _ int) int {
	return boolToInt(env.Network.TrainHasCallOn(env.Head, false))
}

func funcTrainHasCallOnRestricted(env *Environment, _, _ int) int {
	return boolToInt(env.Network.TrainHasCallOn(env.Head, true))
}

func funcHasHead(env *Environment, index, _ int) int {
	return boolToInt(env.Network.HasHead(env.Head, index))
}

func funcDefDrawState(env *Environment, aspect, _ int) int {
	return env.Network.DefaultDrawState(env.Head, Aspect(aspect))
}

func funcDebugHeader(env *Environment, _, _ int) int {
	env.debugf("signal type %s: state=%s draw_state=%d", env.Head.SignalType(), env.Head.State(), env.Head.DrawState())
	return 0
}

func funcDebugOut(env *Environment, value, _ int) int {
	env.debugf("signal type %s: debug value %d", env.Head.SignalType(), value)
	return 0
}

func funcAllowClearToPartialRoute(env *Environment, allow, _ int) int {
	env.Network.AllowClearToPartialRoute(env.Head, allow != 0)
	return 0
}
