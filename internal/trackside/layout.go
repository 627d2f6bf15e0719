package trackside

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/iotaledger/hive.go/logger"

	"github.com/dueldanov/sigscript/internal/sigscript"
)

// Layout is the YAML description of a network.
type Layout struct {
	Signals []SignalLayout `yaml:"signals"`
	Train   *TrainLayout   `yaml:"train,omitempty"`
}

type SignalLayout struct {
	ID               string       `yaml:"id"`
	Next             string       `yaml:"next,omitempty"`
	Opposite         string       `yaml:"opposite,omitempty"`
	Length           float32      `yaml:"length,omitempty"`
	Block            string       `yaml:"block,omitempty"`
	RouteSet         bool         `yaml:"route_set,omitempty"`
	Disabled         bool         `yaml:"disabled,omitempty"`
	CallOn           bool         `yaml:"call_on,omitempty"`
	CallOnRestricted bool         `yaml:"call_on_restricted,omitempty"`
	Features         []int        `yaml:"features,omitempty"`
	Heads            []HeadLayout `yaml:"heads"`
}

type HeadLayout struct {
	Number     int            `yaml:"number"`
	Type       string         `yaml:"type"`
	Function   string         `yaml:"function,omitempty"`
	Aspects    []string       `yaml:"aspects,omitempty"`
	DrawStates map[string]int `yaml:"draw_states,omitempty"`
}

type TrainLayout struct {
	Signal   string  `yaml:"signal"`
	Distance float32 `yaml:"distance"`
	Speed    float32 `yaml:"speed"`
}

// LoadLayout reads a YAML layout file and builds its network.
func LoadLayout(log *logger.Logger, path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read layout %s", path)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, errors.Wrapf(err, "failed to parse layout %s", path)
	}

	network, err := layout.Build(log)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid layout %s", path)
	}

	return network, nil
}

// Build creates the network described by l.
func (l *Layout) Build(log *logger.Logger) (*Network, error) {
	network := NewNetwork(log)

	for i := range l.Signals {
		s, err := l.Signals[i].signal()
		if err != nil {
			return nil, errors.Wrapf(err, "signal %s", l.Signals[i].ID)
		}
		if err := network.AddSignal(s); err != nil {
			return nil, err
		}
	}

	for _, s := range network.order {
		if s.Next != "" && network.signals[s.Next] == nil {
			return nil, errors.Wrapf(ErrUnknownSignal, "%s: next %s", s.ID, s.Next)
		}
		if s.Opposite != "" && network.signals[s.Opposite] == nil {
			return nil, errors.Wrapf(ErrUnknownSignal, "%s: opposite %s", s.ID, s.Opposite)
		}
	}

	if l.Train != nil {
		if err := network.SetTrain(&Train{Signal: l.Train.Signal, Distance: l.Train.Distance, Speed: l.Train.Speed}); err != nil {
			return nil, errors.Wrap(err, "train")
		}
	}

	return network, nil
}

func (l *SignalLayout) signal() (*Signal, error) {
	if l.ID == "" {
		return nil, errors.New("missing id")
	}

	s := &Signal{
		ID:               l.ID,
		Next:             l.Next,
		Opposite:         l.Opposite,
		Length:           l.Length,
		RouteSet:         l.RouteSet,
		Enabled:          !l.Disabled,
		CallOn:           l.CallOn,
		CallOnRestricted: l.CallOnRestricted,
		Features:         make(map[int]bool, len(l.Features)),
	}

	if l.Block != "" {
		state, err := sigscript.ParseBlockState(l.Block)
		if err != nil {
			return nil, err
		}
		s.BlockState = state
	}

	for _, f := range l.Features {
		s.Features[f] = true
	}

	for i := range l.Heads {
		h, err := l.Heads[i].head()
		if err != nil {
			return nil, errors.Wrapf(err, "head %d", l.Heads[i].Number)
		}
		s.Heads = append(s.Heads, h)
	}

	return s, nil
}

func (l *HeadLayout) head() (*Head, error) {
	if l.Type == "" {
		return nil, errors.New("missing signal type")
	}

	h := &Head{
		Number:     l.Number,
		Type:       l.Type,
		DrawStates: make(map[sigscript.Aspect]int, len(l.DrawStates)),
	}

	if l.Function != "" {
		fn, err := sigscript.ParseSignalFunction(l.Function)
		if err != nil {
			return nil, err
		}
		h.Function = fn
	}

	for _, name := range l.Aspects {
		aspect, err := sigscript.ParseAspect(name)
		if err != nil {
			return nil, err
		}
		h.Aspects = append(h.Aspects, aspect)
	}

	for name, drawState := range l.DrawStates {
		aspect, err := sigscript.ParseAspect(name)
		if err != nil {
			return nil, err
		}
		h.DrawStates[aspect] = drawState
	}

	return h, nil
}
