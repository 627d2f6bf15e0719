package sigscript

// evalCondition evaluates the condition list of a block.
func evalCondition(block *ConditionBlock, env *Environment) bool {
	return evalConditionList(block.Conditions, env)
}

// evalConditionList combines the elements of list strictly left to right. A
// combinator or NOT marker applies to the next condition or nested list only.
// An empty list is true.
func evalConditionList(list ConditionList, env *Environment) bool {
	condition := true
	combinator := AndOrNone
	negate := false

	combine := func(value bool) {
		if negate {
			value = !value
		}
		switch combinator {
		case AndOrAnd:
			condition = condition && value
		case AndOrOr:
			condition = condition || value
		default:
			condition = value
		}
		combinator = AndOrNone
		negate = false
	}

	for _, element := range list {
		switch e := element.(type) {
		case Not:
			negate = true
		case AndOr:
			combinator = e
		case *Condition:
			combine(evalAtomic(e, env))
		case ConditionList:
			combine(evalConditionList(e, env))
		}
	}

	return condition
}

func evalAtomic(c *Condition, env *Environment) bool {
	if c.Term1 == nil {
		return false
	}
	term1 := evalTerms([]*Term{c.Term1}, c.Term1.Sublevel, env)

	if c.Term2 == nil {
		return (term1 != 0) != c.Negate1
	}

	term2 := evalTerms([]*Term{c.Term2}, c.Term2.Sublevel, env)
	return c.Comparator.Apply(term1, term2)
}
