package sigscript

import "github.com/iotaledger/hive.go/logger"

// Environment is the state of a single script invocation.
type Environment struct {
	Head    SignalHead
	Network Network

	// Locals is owned by the invocation and starts zeroed.
	Locals []int

	log *logger.WrappedLogger
}

// NewEnvironment creates an invocation environment with localCount zeroed locals.
func NewEnvironment(head SignalHead, network Network, localCount int) *Environment {
	return &Environment{
		Head:    head,
		Network: network,
		Locals:  make([]int, localCount),
	}
}

func (env *Environment) debugf(template string, args ...interface{}) {
	if env.log == nil {
		return
	}
	env.log.LogDebugf(template, args...)
}

// EvalTerms evaluates a term list at sublevel 0.
func EvalTerms(terms []*Term, env *Environment) int {
	return evalTerms(terms, 0, env)
}

// evalTerms folds the terms belonging to sublevel into a single value. A
// RETURN marker stops processing of the whole list.
func evalTerms(terms []*Term, sublevel int, env *Environment) int {
	tempvalue := 0

	for _, term := range terms {
		if term.Function == FuncReturn {
			break
		}
		if term.Sublevel != sublevel {
			continue
		}

		termvalue := termValue(term, terms, env)
		if term.Negate {
			termvalue = boolToInt(termvalue == 0)
		}

		switch term.Operator {
		case OperatorMultiply:
			tempvalue *= termvalue
		case OperatorPlus:
			tempvalue += termvalue
		case OperatorMinus:
			tempvalue -= termvalue
		case OperatorDivide:
			if termvalue == 0 {
				tempvalue = 0
			} else {
				tempvalue /= termvalue
			}
		case OperatorModulo:
			if termvalue == 0 {
				tempvalue = 0
			} else {
				tempvalue %= termvalue
			}
		default:
			tempvalue = termvalue
		}
	}

	return tempvalue
}

func termValue(term *Term, terms []*Term, env *Environment) int {
	var value int

	switch {
	case term.Function != FuncNone:
		var p1, p2 int
		if len(term.Params) > 0 {
			p1 = paramValue(term.Params[0], env)
		}
		if len(term.Params) > 1 {
			p2 = paramValue(term.Params[1], env)
		}
		value = callFunction(term.Function, p1, p2, env)

	case len(term.Params) > 0:
		value = paramValue(term.Params[0], env)

	case term.Sublevel2 > term.Sublevel:
		// Opens the next nesting depth; Sublevel2 only marks that one is opened.
		value = evalTerms(terms, term.Sublevel+1, env)
	}

	if term.Minus {
		value = -value
	}
	return value
}

func paramValue(p *Parameter, env *Environment) int {
	var value int

	switch p.Kind {
	case ParamConstant:
		value = p.Constant
	case ParamLocal:
		if p.Index >= 0 && p.Index < len(env.Locals) {
			value = env.Locals[p.Index]
		}
	case ParamExternal:
		value = externalValue(p.External, env.Head)
	}

	if p.Minus {
		value = -value
	}
	return value
}

func externalValue(x ExternalFloat, head SignalHead) int {
	switch x {
	case ExternalState:
		return int(head.State())
	case ExternalDrawState:
		return head.DrawState()
	case ExternalEnabled:
		return boolToInt(head.Enabled())
	case ExternalBlockState:
		return int(head.BlockState())
	case ExternalApproachControlPosition:
		if limit, ok := head.ApproachControlLimitPosition(); ok {
			return int(limit)
		}
		return -1
	case ExternalApproachControlSpeed:
		if limit, ok := head.ApproachControlLimitSpeed(); ok {
			return int(limit)
		}
		return -1
	default:
		return 0
	}
}
