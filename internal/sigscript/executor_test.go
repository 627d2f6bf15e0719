package sigscript

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRunBlock_ReturnShortCircuits(t *testing.T) {
	head := newTestHead()
	env := testEnv(head, newTestNetwork(), 0)

	nodes := []Node{
		setState(AspectStopAndProceed),
		ReturnStatement(),
		setState(AspectRestricting),
	}

	require.False(t, runBlock(nodes, env))
	require.Equal(t, AspectStopAndProceed, head.state)
	require.Equal(t, []slotWrite{{Slot: "STATE", Value: 1}}, head.writes)
}

func TestRunBlock_ReturnPropagatesFromNestedBlocks(t *testing.T) {
	head := newTestHead()
	env := testEnv(head, newTestNetwork(), 1)

	nodes := []Node{
		&ConditionBlock{
			Conditions: ConditionList{boolCondition(false)},
			IfBlock:    []Node{setLocal(0, 1)},
			ElseBlock: []Node{
				&ConditionBlock{
					Conditions: ConditionList{boolCondition(true)},
					IfBlock:    []Node{setLocal(0, 2), ReturnStatement(), setLocal(0, 3)},
				},
				setLocal(0, 4),
			},
		},
		setState(AspectClear2),
	}

	require.False(t, runBlock(nodes, env))
	require.Equal(t, 2, env.Locals[0])
	require.Empty(t, head.writes)
}

func TestRunBlock_Completes(t *testing.T) {
	head := newTestHead()
	env := testEnv(head, newTestNetwork(), 0)

	require.True(t, runBlock([]Node{setState(AspectClear1)}, env))
	require.True(t, runBlock(nil, env))
	require.Equal(t, AspectClear1, head.state)
}

func TestAssign_Targets(t *testing.T) {
	head := newTestHead()
	env := testEnv(head, newTestNetwork(), 2)

	assign(&Statement{Target: LocalTarget(1), Terms: []*Term{constTerm(9)}}, env)
	require.Equal(t, []int{0, 9}, env.Locals)

	assign(&Statement{Target: ExternalTarget(ExternalDrawState), Terms: []*Term{leaf(Local(1)), opConst(OperatorMinus, 7)}}, env)
	require.Equal(t, 2, head.drawState)

	assign(&Statement{Target: ExternalTarget(ExternalState), Terms: []*Term{constTerm(int(AspectApproach3))}}, env)
	require.Equal(t, AspectApproach3, head.state)

	want := []slotWrite{{Slot: "DRAW_STATE", Value: 2}, {Slot: "STATE", Value: int(AspectApproach3)}}
	if diff := cmp.Diff(want, head.writes); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}

func TestAssign_ReadOnlyTargetsIgnored(t *testing.T) {
	head := newTestHead()
	head.enabled = true
	env := testEnv(head, newTestNetwork(), 0)

	for _, x := range []ExternalFloat{ExternalEnabled, ExternalBlockState, ExternalApproachControlPosition, ExternalApproachControlSpeed} {
		assign(&Statement{Target: ExternalTarget(x), Terms: []*Term{constTerm(0)}}, env)
	}

	require.Empty(t, head.writes)
	require.True(t, head.enabled)
}

func TestAssign_BareStatementEvaluatesForSideEffects(t *testing.T) {
	network := newTestNetwork()
	env := testEnv(newTestHead(), network, 0)

	assign(&Statement{Terms: []*Term{call(FuncAllowClearToPartialRoute, Const(1))}}, env)
	require.True(t, network.partialRoute)
}

func branchScript() *ConditionBlock {
	return &ConditionBlock{
		Conditions: ConditionList{compare(leaf(Local(0)), CompareEQ, constTerm(1))},
		IfBlock:    []Node{setLocal(1, 10), setState(AspectClear2)},
		ElseIfBlocks: []*ConditionBlock{
			{
				Conditions: ConditionList{compare(leaf(Local(0)), CompareEQ, constTerm(2))},
				IfBlock:    []Node{setLocal(1, 20), setState(AspectApproach1)},
			},
			{
				Conditions: ConditionList{compare(leaf(Local(0)), CompareGE, constTerm(2))},
				IfBlock:    []Node{setLocal(1, 30), setState(AspectRestricting)},
			},
		},
		ElseBlock: []Node{setLocal(1, 40), setState(AspectStop)},
	}
}

func TestRunConditionBlock_Exclusivity(t *testing.T) {
	tests := []struct {
		selector  int
		wantLocal int
		wantState Aspect
	}{
		{1, 10, AspectClear2},
		{2, 20, AspectApproach1},
		{3, 30, AspectRestricting},
		{0, 40, AspectStop},
	}

	for _, tt := range tests {
		head := newTestHead()
		env := testEnv(head, newTestNetwork(), 2)
		env.Locals[0] = tt.selector

		require.True(t, runConditionBlock(branchScript(), env))
		require.Equal(t, tt.wantLocal, env.Locals[1], "selector %d", tt.selector)
		require.Equal(t, []slotWrite{{Slot: "STATE", Value: int(tt.wantState)}}, head.writes, "selector %d", tt.selector)
	}
}

func TestRunConditionBlock_NoMatchWithoutElse(t *testing.T) {
	head := newTestHead()
	env := testEnv(head, newTestNetwork(), 0)

	block := &ConditionBlock{
		Conditions:   ConditionList{boolCondition(false)},
		IfBlock:      []Node{setState(AspectClear2)},
		ElseIfBlocks: []*ConditionBlock{{Conditions: ConditionList{boolCondition(false)}, IfBlock: []Node{setState(AspectClear1)}}},
	}

	require.True(t, runConditionBlock(block, env))
	require.Empty(t, head.writes)
}

func TestRunConditionBlock_ElseIfReturnPropagates(t *testing.T) {
	head := newTestHead()
	env := testEnv(head, newTestNetwork(), 0)

	block := &ConditionBlock{
		Conditions: ConditionList{boolCondition(false)},
		ElseIfBlocks: []*ConditionBlock{
			{Conditions: ConditionList{boolCondition(true)}, IfBlock: []Node{ReturnStatement()}},
		},
	}

	require.False(t, runBlock([]Node{block, setState(AspectClear2)}, env))
	require.Empty(t, head.writes)
}
