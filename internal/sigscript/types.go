package sigscript

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/iotaledger/hive.go/lo"
)

// Errors
var (
	ErrInvalidScript  = errors.New("invalid signal script")
	ErrUnknownName    = errors.New("unknown identifier")
	ErrScriptNotFound = errors.New("signal script not found")
)

// Aspect is the indication shown by a signal head, ordered from most to least restrictive.
type Aspect int

const (
	AspectStop Aspect = iota
	AspectStopAndProceed
	AspectRestricting
	AspectApproach1
	AspectApproach2
	AspectApproach3
	AspectClear1
	AspectClear2
	AspectUnknown
)

var aspectNames = map[Aspect]string{
	AspectStop:           "STOP",
	AspectStopAndProceed: "STOP_AND_PROCEED",
	AspectRestricting:    "RESTRICTING",
	AspectApproach1:      "APPROACH_1",
	AspectApproach2:      "APPROACH_2",
	AspectApproach3:      "APPROACH_3",
	AspectClear1:         "CLEAR_1",
	AspectClear2:         "CLEAR_2",
	AspectUnknown:        "UNKNOWN",
}

func (a Aspect) String() string {
	if name, ok := aspectNames[a]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseAspect resolves an aspect name, with or without the SIGASP_ prefix.
func ParseAspect(name string) (Aspect, error) {
	return parseName(name, "SIGASP_", aspectNames)
}

// BlockState is the occupancy of the block a signal protects.
type BlockState int

const (
	BlockClear BlockState = iota
	BlockOccupied
	BlockJunctionObstructed
)

var blockStateNames = map[BlockState]string{
	BlockClear:              "CLEAR",
	BlockOccupied:           "OCCUPIED",
	BlockJunctionObstructed: "JN_OBSTRUCTED",
}

func (b BlockState) String() string {
	if name, ok := blockStateNames[b]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseBlockState resolves a block state name, with or without the BLOCK_ prefix.
func ParseBlockState(name string) (BlockState, error) {
	return parseName(name, "BLOCK_", blockStateNames)
}

// SignalFunction is the role a signal head plays (main signal, distant, shunting...).
type SignalFunction int

const (
	FunctionNormal SignalFunction = iota
	FunctionDistance
	FunctionRepeater
	FunctionShunting
	FunctionInfo
	FunctionSpeed
	FunctionAlert
	FunctionUnknown
)

var signalFunctionNames = map[SignalFunction]string{
	FunctionNormal:   "NORMAL",
	FunctionDistance: "DISTANCE",
	FunctionRepeater: "REPEATER",
	FunctionShunting: "SHUNTING",
	FunctionInfo:     "INFO",
	FunctionSpeed:    "SPEED",
	FunctionAlert:    "ALERT",
	FunctionUnknown:  "UNKNOWN",
}

func (f SignalFunction) String() string {
	if name, ok := signalFunctionNames[f]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseSignalFunction resolves a signal function name, with or without the SIGFN_ prefix.
func ParseSignalFunction(name string) (SignalFunction, error) {
	return parseName(name, "SIGFN_", signalFunctionNames)
}

// ExternalFloat names a value slot owned by the signal head.
type ExternalFloat int

const (
	ExternalNone ExternalFloat = iota
	ExternalState
	ExternalDrawState
	ExternalEnabled
	ExternalBlockState
	ExternalApproachControlPosition
	ExternalApproachControlSpeed
)

var externalFloatNames = map[ExternalFloat]string{
	ExternalState:                   "STATE",
	ExternalDrawState:               "DRAW_STATE",
	ExternalEnabled:                 "ENABLED",
	ExternalBlockState:              "BLOCK_STATE",
	ExternalApproachControlPosition: "APPROACH_CONTROL_REQ_POSITION",
	ExternalApproachControlSpeed:    "APPROACH_CONTROL_REQ_SPEED",
}

func (x ExternalFloat) String() string {
	if name, ok := externalFloatNames[x]; ok {
		return name
	}
	return "NONE"
}

// Writable reports whether a script may assign to the slot.
func (x ExternalFloat) Writable() bool {
	return x == ExternalState || x == ExternalDrawState
}

// ParseExternalFloat resolves an external float name.
func ParseExternalFloat(name string) (ExternalFloat, error) {
	return parseName(name, "", externalFloatNames)
}

// TermOperator combines a term with the running value of its sublevel.
type TermOperator int

const (
	OperatorNone TermOperator = iota
	OperatorMultiply
	OperatorPlus
	OperatorMinus
	OperatorDivide
	OperatorModulo
)

var termOperatorNames = map[TermOperator]string{
	OperatorNone:     "NONE",
	OperatorMultiply: "MULTIPLY",
	OperatorPlus:     "PLUS",
	OperatorMinus:    "MINUS",
	OperatorDivide:   "DIVIDE",
	OperatorModulo:   "MODULO",
}

func (o TermOperator) String() string {
	return termOperatorNames[o]
}

// ParseTermOperator resolves an operator name. The empty string is OperatorNone.
func ParseTermOperator(name string) (TermOperator, error) {
	if name == "" {
		return OperatorNone, nil
	}
	return parseName(name, "", termOperatorNames)
}

// Comparator relates the two terms of a condition.
type Comparator int

const (
	CompareNone Comparator = iota
	CompareGT
	CompareGE
	CompareLT
	CompareLE
	CompareEQ
	CompareNE
)

var comparatorNames = map[Comparator]string{
	CompareNone: "NONE",
	CompareGT:   "GT",
	CompareGE:   "GE",
	CompareLT:   "LT",
	CompareLE:   "LE",
	CompareEQ:   "EQ",
	CompareNE:   "NE",
}

func (c Comparator) String() string {
	return comparatorNames[c]
}

// ParseComparator resolves a comparator name. The empty string is CompareNone.
func ParseComparator(name string) (Comparator, error) {
	if name == "" {
		return CompareNone, nil
	}
	return parseName(name, "", comparatorNames)
}

// Apply compares a and b.
func (c Comparator) Apply(a, b int) bool {
	switch c {
	case CompareGT:
		return a > b
	case CompareGE:
		return a >= b
	case CompareLT:
		return a < b
	case CompareLE:
		return a <= b
	case CompareEQ:
		return a == b
	case CompareNE:
		return a != b
	default:
		return false
	}
}

// constantNames are the symbolic constants scripts may use in place of literals.
var constantNames = func() map[string]int {
	m := make(map[string]int)
	for a, name := range aspectNames {
		m["SIGASP_"+name] = int(a)
	}
	for b, name := range blockStateNames {
		m["BLOCK_"+name] = int(b)
	}
	for f, name := range signalFunctionNames {
		m["SIGFN_"+name] = int(f)
	}
	return m
}()

// ConstantValue resolves a symbolic constant such as SIGASP_STOP or SIGFN_NORMAL.
func ConstantValue(name string) (int, bool) {
	v, ok := constantNames[name]
	return v, ok
}

// ConstantNames lists the symbolic constants in sorted order.
func ConstantNames() []string {
	names := lo.Keys(constantNames)
	sort.Strings(names)
	return names
}

func parseName[T comparable](name, prefix string, names map[T]string) (T, error) {
	if prefix != "" && len(name) > len(prefix) && name[:len(prefix)] == prefix {
		name = name[len(prefix):]
	}
	for v, n := range names {
		if n == name {
			return v, nil
		}
	}
	var zero T
	return zero, &NameError{Name: name}
}

// NameError reports an identifier that is not part of the script vocabulary.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return "unknown identifier: " + e.Name
}

func (e *NameError) Unwrap() error {
	return ErrUnknownName
}
