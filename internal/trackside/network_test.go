package trackside

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/logger"

	"github.com/dueldanov/sigscript/internal/sigscript"
)

func loadTestLayout(t *testing.T) *Network {
	t.Helper()

	network, err := LoadLayout(logger.NewNopLogger(), filepath.Join("testdata", "layout.yaml"))
	require.NoError(t, err)

	return network
}

func head(network *Network, signal string, index int) *Head {
	return network.Signal(signal).Heads[index]
}

func TestLoadLayout(t *testing.T) {
	network := loadTestLayout(t)

	require.Len(t, network.Signals(), 4)
	require.Len(t, network.Heads(), 5)

	s1 := network.Signal("S1")
	assert.True(t, s1.RouteSet)
	assert.True(t, s1.Enabled)
	assert.Equal(t, sigscript.BlockClear, s1.BlockState)
	assert.Equal(t, map[int]bool{1: true, 3: true}, s1.Features)

	home := head(network, "S1", 0)
	assert.Equal(t, "UK_3ASPECT", home.SignalType())
	assert.Equal(t, sigscript.AspectStop, home.State())
	assert.Equal(t, sigscript.AspectClear2, home.LeastRestrictiveAspect())
	assert.Equal(t, sigscript.AspectStop, home.MostRestrictiveAspect())
	assert.Same(t, s1, home.Signal())

	distant := head(network, "S1", 1)
	assert.Equal(t, sigscript.FunctionDistance, distant.Function)
	assert.Equal(t, sigscript.AspectApproach1, distant.State())

	assert.Equal(t, sigscript.BlockOccupied, head(network, "S2", 0).BlockState())
	assert.False(t, head(network, "S3", 0).Enabled())

	require.NotNil(t, network.Train())
	assert.Equal(t, "S1", network.Train().Signal)
}

func TestLoadLayout_Errors(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
	}{
		{"missing id", Layout{Signals: []SignalLayout{{}}}},
		{"duplicate id", Layout{Signals: []SignalLayout{{ID: "A"}, {ID: "A"}}}},
		{"unknown next", Layout{Signals: []SignalLayout{{ID: "A", Next: "B"}}}},
		{"unknown opposite", Layout{Signals: []SignalLayout{{ID: "A", Opposite: "B"}}}},
		{"unknown block state", Layout{Signals: []SignalLayout{{ID: "A", Block: "FLOODED"}}}},
		{"head without type", Layout{Signals: []SignalLayout{{ID: "A", Heads: []HeadLayout{{}}}}}},
		{"unknown function", Layout{Signals: []SignalLayout{{ID: "A", Heads: []HeadLayout{{Type: "T", Function: "SEMAPHORE"}}}}}},
		{"unknown aspect", Layout{Signals: []SignalLayout{{ID: "A", Heads: []HeadLayout{{Type: "T", Aspects: []string{"GREEN"}}}}}}},
		{"train at unknown signal", Layout{Signals: []SignalLayout{{ID: "A"}}, Train: &TrainLayout{Signal: "B"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.layout.Build(logger.NewNopLogger())
			require.Error(t, err)
		})
	}

	_, err := LoadLayout(logger.NewNopLogger(), filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
}

func TestNetwork_NextSignal(t *testing.T) {
	network := loadTestLayout(t)
	home := head(network, "S1", 0)

	head(network, "S2", 0).SetState(sigscript.AspectApproach1)
	head(network, "S3", 0).SetState(sigscript.AspectClear2)

	assert.Equal(t, sigscript.AspectApproach1, network.NextSignalLeastRestrictive(home, sigscript.FunctionNormal))
	assert.Equal(t, sigscript.AspectApproach1, network.NextSignalMostRestrictive(home, sigscript.FunctionNormal))
	assert.Equal(t, sigscript.AspectClear2, network.NextNthSignalLeastRestrictive(home, sigscript.FunctionNormal, 2))
	assert.Equal(t, sigscript.AspectApproach1, network.NextNthSignalLeastRestrictive(home, sigscript.FunctionNormal, 0))
	assert.Equal(t, sigscript.AspectStop, network.NextNthSignalLeastRestrictive(home, sigscript.FunctionNormal, 3))

	// No signal ahead carries a shunting head.
	assert.Equal(t, sigscript.AspectStop, network.NextSignalLeastRestrictive(home, sigscript.FunctionShunting))
	// S3 ends the line.
	assert.Equal(t, sigscript.AspectStop, network.NextSignalLeastRestrictive(head(network, "S3", 0), sigscript.FunctionNormal))
}

func TestNetwork_NextSignalStopsOnLoop(t *testing.T) {
	network := NewNetwork(logger.NewNopLogger())
	require.NoError(t, network.AddSignal(&Signal{ID: "A", Next: "B", Heads: []*Head{{Type: "T", Function: sigscript.FunctionDistance}}}))
	require.NoError(t, network.AddSignal(&Signal{ID: "B", Next: "A", Heads: []*Head{{Type: "T", Function: sigscript.FunctionDistance}}}))

	a := head(network, "A", 0)
	require.Equal(t, sigscript.AspectStop, network.NextSignalLeastRestrictive(a, sigscript.FunctionNormal))
	require.Equal(t, sigscript.AspectStop, network.NextNthSignalLeastRestrictive(a, sigscript.FunctionDistance, 5))
}

func TestNetwork_ThisAndOppositeSignal(t *testing.T) {
	network := loadTestLayout(t)
	home := head(network, "S1", 0)
	head(network, "S1", 1).SetState(sigscript.AspectClear2)

	aspect, ok := network.ThisSignalLeastRestrictive(home, sigscript.FunctionDistance)
	require.True(t, ok)
	require.Equal(t, sigscript.AspectClear2, aspect)

	aspect, ok = network.ThisSignalMostRestrictive(home, sigscript.FunctionNormal)
	require.True(t, ok)
	require.Equal(t, sigscript.AspectStop, aspect)

	_, ok = network.ThisSignalLeastRestrictive(home, sigscript.FunctionShunting)
	require.False(t, ok)

	head(network, "R1", 0).SetState(sigscript.AspectRestricting)
	require.Equal(t, sigscript.AspectRestricting, network.OppositeSignalLeastRestrictive(home, sigscript.FunctionShunting))
	require.Equal(t, sigscript.AspectRestricting, network.OppositeSignalMostRestrictive(home, sigscript.FunctionShunting))
	require.Equal(t, sigscript.AspectStop, network.OppositeSignalLeastRestrictive(home, sigscript.FunctionNormal))
	require.Equal(t, sigscript.AspectStop, network.OppositeSignalMostRestrictive(head(network, "S2", 0), sigscript.FunctionShunting))
}

func TestNetwork_DistMultiSignal(t *testing.T) {
	network := NewNetwork(logger.NewNopLogger())
	for _, s := range []*Signal{
		{ID: "D", Next: "R1", Heads: []*Head{{Type: "DIST", Function: sigscript.FunctionDistance}}},
		{ID: "R1", Next: "R2", Heads: []*Head{{Type: "REP", Function: sigscript.FunctionRepeater}}},
		{ID: "R2", Next: "H", Heads: []*Head{{Type: "REP", Function: sigscript.FunctionRepeater}}},
		{ID: "H", Next: "R3", Heads: []*Head{{Type: "HOME", Function: sigscript.FunctionNormal}}},
		{ID: "R3", Heads: []*Head{{Type: "REP", Function: sigscript.FunctionRepeater}}},
	} {
		require.NoError(t, network.AddSignal(s))
	}

	head(network, "R1", 0).SetState(sigscript.AspectClear1)
	head(network, "R2", 0).SetState(sigscript.AspectApproach2)
	head(network, "R3", 0).SetState(sigscript.AspectStop)

	d := head(network, "D", 0)
	require.Equal(t, sigscript.AspectApproach2,
		network.DistMultiSignalMostRestrictive(d, sigscript.FunctionRepeater, sigscript.FunctionNormal))
	require.Equal(t, sigscript.AspectStop,
		network.DistMultiSignalMostRestrictive(d, sigscript.FunctionShunting, sigscript.FunctionNormal))
}

func TestNetwork_ApproachControl(t *testing.T) {
	network := loadTestLayout(t)
	home := head(network, "S1", 0)

	_, set := home.ApproachControlLimitPosition()
	require.False(t, set)

	require.False(t, network.ApproachControlPosition(home, 400))
	require.True(t, network.ApproachControlPosition(home, 500))

	limit, set := home.ApproachControlLimitPosition()
	require.True(t, set)
	require.Equal(t, float32(500), limit)

	require.False(t, network.ApproachControlSpeed(home, 600, 20))
	require.True(t, network.ApproachControlSpeed(home, 600, 30))

	speed, set := home.ApproachControlLimitSpeed()
	require.True(t, set)
	require.Equal(t, float32(30), speed)

	// Without a train approaching S2 its approach control never releases.
	require.False(t, network.ApproachControlPosition(head(network, "S2", 0), 10000))
}

func TestNetwork_SignalQueries(t *testing.T) {
	network := loadTestLayout(t)
	home := head(network, "S1", 0)
	s2 := head(network, "S2", 0)

	assert.Equal(t, sigscript.BlockClear, network.BlockState(home))
	assert.Equal(t, sigscript.BlockOccupied, network.BlockState(s2))
	assert.True(t, network.RouteSet(home))
	assert.False(t, network.RouteSet(s2))

	assert.True(t, network.SignalFeature(home, 3))
	assert.False(t, network.SignalFeature(home, 2))

	assert.True(t, network.HasHead(home, 1))
	assert.False(t, network.HasHead(home, 2))
	assert.False(t, network.HasHead(s2, 1))

	assert.Equal(t, 2, network.DefaultDrawState(home, sigscript.AspectClear2))
	assert.Equal(t, -1, network.DefaultDrawState(home, sigscript.AspectRestricting))

	network.AllowClearToPartialRoute(home, true)
	assert.True(t, home.PartialRouteAllowed())
}

func TestNetwork_CallOn(t *testing.T) {
	network := loadTestLayout(t)
	s2 := head(network, "S2", 0)

	// S2 has call-on set but the train approaches S1.
	require.False(t, network.TrainHasCallOn(s2, false))

	require.NoError(t, network.SetTrain(&Train{Signal: "S2", Distance: 100, Speed: 5}))
	require.True(t, network.TrainHasCallOn(s2, false))
	require.False(t, network.TrainHasCallOn(s2, true))
}

func TestNetwork_Advance(t *testing.T) {
	network := loadTestLayout(t)
	network.Signal("S2").BlockState = sigscript.BlockClear

	network.Advance(10)
	require.Equal(t, "S1", network.Train().Signal)
	require.Equal(t, float32(250), network.Train().Distance)

	network.Advance(12)
	require.Equal(t, "S2", network.Train().Signal)
	require.Equal(t, float32(550), network.Train().Distance)
	require.Equal(t, sigscript.BlockOccupied, network.Signal("S1").BlockState)

	network.Advance(30)
	require.Equal(t, "S3", network.Train().Signal)
	require.Equal(t, sigscript.BlockClear, network.Signal("S1").BlockState)
	require.Equal(t, sigscript.BlockOccupied, network.Signal("S2").BlockState)

	network.Advance(1000)
	require.Nil(t, network.Train())
	require.Equal(t, sigscript.BlockOccupied, network.Signal("S3").BlockState)

	require.NotPanics(t, func() { network.Advance(1) })
}

func TestNetwork_ForeignHead(t *testing.T) {
	network := loadTestLayout(t)
	var foreign sigscript.SignalHead = &Head{Type: "DETACHED"}

	require.Equal(t, sigscript.BlockOccupied, network.BlockState(foreign))
	require.Equal(t, sigscript.AspectStop, network.NextSignalLeastRestrictive(foreign, sigscript.FunctionNormal))
	require.Equal(t, -1, network.DefaultDrawState(foreign, sigscript.AspectStop))
	require.False(t, network.HasHead(foreign, 0))
}
