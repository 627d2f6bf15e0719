package sigscript

// runBlock executes nodes in order. It returns false once a RETURN statement is
// reached, here or in any nested block, and true when the list is exhausted.
func runBlock(nodes []Node, env *Environment) bool {
	for _, node := range nodes {
		switch n := node.(type) {
		case *Statement:
			if n.IsReturn() {
				return false
			}
			assign(n, env)

		case *ConditionBlock:
			if !runConditionBlock(n, env) {
				return false
			}
		}
	}

	return true
}

// assign evaluates the statement and stores the result. Writes to read-only
// external slots are ignored.
func assign(stmt *Statement, env *Environment) {
	value := evalTerms(stmt.Terms, 0, env)

	switch stmt.Target.Kind {
	case TargetLocal:
		if stmt.Target.Index >= 0 && stmt.Target.Index < len(env.Locals) {
			env.Locals[stmt.Target.Index] = value
		}

	case TargetExternal:
		switch stmt.Target.External {
		case ExternalState:
			env.Head.SetState(Aspect(value))
		case ExternalDrawState:
			env.Head.SetDrawState(value)
		}
	}
}

// runConditionBlock runs at most one of the if, else-if and else blocks and
// returns the result of the block it ran.
func runConditionBlock(block *ConditionBlock, env *Environment) bool {
	if evalCondition(block, env) {
		return runBlock(block.IfBlock, env)
	}

	for _, elseIf := range block.ElseIfBlocks {
		if evalCondition(elseIf, env) {
			return runBlock(elseIf.IfBlock, env)
		}
	}

	if len(block.ElseBlock) > 0 {
		return runBlock(block.ElseBlock, env)
	}

	return true
}
