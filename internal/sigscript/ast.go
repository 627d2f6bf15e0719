package sigscript

// Script is a parsed signal script. It is shared read-only by every head of the
// signal type it belongs to.
type Script struct {
	// Name is the signal type the script drives.
	Name string

	// LocalCount is the number of local variable slots an invocation needs.
	LocalCount int

	Statements []Node
}

// Node is a top level or block level entry: a *Statement or a *ConditionBlock.
type Node interface {
	node()
}

// TargetKind selects where an assignment stores its value.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetLocal
	TargetExternal
)

// AssignTarget is the left hand side of an assignment.
type AssignTarget struct {
	Kind     TargetKind
	Index    int
	External ExternalFloat
}

// LocalTarget returns a target writing local variable index.
func LocalTarget(index int) AssignTarget {
	return AssignTarget{Kind: TargetLocal, Index: index}
}

// ExternalTarget returns a target writing the external slot x.
func ExternalTarget(x ExternalFloat) AssignTarget {
	return AssignTarget{Kind: TargetExternal, External: x}
}

// Statement is an assignment, a bare expression evaluated for its side effects
// (TargetNone), or a RETURN when its first term is the return marker.
type Statement struct {
	Target AssignTarget
	Terms  []*Term
}

func (*Statement) node() {}

// IsReturn reports whether the statement aborts the script.
func (s *Statement) IsReturn() bool {
	return len(s.Terms) > 0 && s.Terms[0].Function == FuncReturn
}

// ReturnStatement builds the RETURN statement.
func ReturnStatement() *Statement {
	return &Statement{Terms: []*Term{{Function: FuncReturn}}}
}

// ConditionBlock is an if / else-if / else construct.
type ConditionBlock struct {
	Conditions ConditionList
	IfBlock    []Node

	// ElseIfBlocks are tried in order when Conditions is false. Only the
	// Conditions and IfBlock of each entry are used.
	ElseIfBlocks []*ConditionBlock

	ElseBlock []Node
}

func (*ConditionBlock) node() {}

// ParameterKind selects how a leaf parameter is resolved.
type ParameterKind int

const (
	ParamConstant ParameterKind = iota
	ParamLocal
	ParamExternal
)

// Parameter is a leaf operand: a literal, a local variable or an external slot.
type Parameter struct {
	Kind     ParameterKind
	Constant int
	Index    int
	External ExternalFloat

	// Minus negates the resolved value.
	Minus bool
}

// Const returns a constant parameter.
func Const(v int) *Parameter {
	return &Parameter{Kind: ParamConstant, Constant: v}
}

// Local returns a parameter reading local variable index.
func Local(index int) *Parameter {
	return &Parameter{Kind: ParamLocal, Index: index}
}

// External returns a parameter reading the external slot x.
func External(x ExternalFloat) *Parameter {
	return &Parameter{Kind: ParamExternal, External: x}
}

// Term is one operand of a flat arithmetic expression.
//
// Parenthesised groups are encoded through sublevels, the nesting depth of a
// term. A term without function or parameter whose Sublevel2 is greater than
// its Sublevel stands for the value of every term one level deeper, evaluated
// over the same term list.
type Term struct {
	Function FunctionID
	Params   []*Parameter

	Operator TermOperator

	// Negate is a logical NOT applied to the term value.
	Negate bool

	// Minus is a unary minus applied to the term value.
	Minus bool

	Sublevel  int
	Sublevel2 int
}

// Condition is an atomic boolean test: Term1 alone, or Term1 Comparator Term2.
type Condition struct {
	Term1      *Term
	Term2      *Term
	Comparator Comparator

	// Negate1 inverts a single term test. It is ignored when Term2 is set.
	Negate1 bool
}

// ConditionElement is an entry of a ConditionList: *Condition, AndOr, Not or a
// nested ConditionList.
type ConditionElement interface {
	conditionElement()
}

// ConditionList is a flat boolean expression evaluated strictly left to right.
type ConditionList []ConditionElement

func (ConditionList) conditionElement() {}

func (*Condition) conditionElement() {}

// AndOr is a combinator marker for the next element of a ConditionList.
type AndOr int

const (
	AndOrNone AndOr = iota
	AndOrAnd
	AndOrOr
)

func (AndOr) conditionElement() {}

func (a AndOr) String() string {
	switch a {
	case AndOrAnd:
		return "AND"
	case AndOrOr:
		return "OR"
	default:
		return "NONE"
	}
}

// Not is a marker inverting the next element of a ConditionList.
type Not struct{}

func (Not) conditionElement() {}
