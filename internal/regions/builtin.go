package regions

import (
	"context"
	"fmt"

	"regionnet/internal/engine"
)

const (
	KindActivate = "activate"
	KindConstant = "constant"
	KindCounter  = "counter"
	KindIdentity = "identity"
	KindScale    = "scale"
	KindSum      = "sum"
)

const (
	InputName  = "in"
	OutputName = "out"
)

// constant writes the same value into every element on every step.
type constant struct {
	spec  engine.PortSpec
	value float64
}

func newConstant(cfg Config) (engine.Impl, error) {
	return &constant{
		spec:  sourceSpec(cfg),
		value: cfg.param("value", 0),
	}, nil
}

func (c *constant) Spec() engine.PortSpec {
	return c.spec
}

func (c *constant) Compute(_ context.Context, region *engine.Region, _ int) error {
	w, err := region.Writer(OutputName)
	if err != nil {
		return err
	}
	return w.Fill(c.value)
}

// counter writes start + step*stride + node*nodeStride into each element of
// a node's slice, or into each element for a region-level output.
type counter struct {
	spec       engine.PortSpec
	start      float64
	stride     float64
	nodeStride float64
}

func newCounter(cfg Config) (engine.Impl, error) {
	return &counter{
		spec:       sourceSpec(cfg),
		start:      cfg.param("start", 0),
		stride:     cfg.param("stride", 1),
		nodeStride: cfg.param("node_stride", 0),
	}, nil
}

func (c *counter) Spec() engine.PortSpec {
	return c.spec
}

func (c *counter) Compute(_ context.Context, region *engine.Region, step int) error {
	w, err := region.Writer(OutputName)
	if err != nil {
		return err
	}
	base := c.start + float64(step)*c.stride
	if c.spec.Outputs[0].RegionLevel {
		return w.Fill(base)
	}
	for node := 0; node < region.NodeCount(); node++ {
		for i := 0; i < w.NodeWidth(); i++ {
			if err := w.SetNode(node, i, base+float64(node)*c.nodeStride); err != nil {
				return err
			}
		}
	}
	return nil
}

// scale concatenates its input views in link order and multiplies them by
// factor. Extra input elements are dropped; missing ones read as zero.
type scale struct {
	spec   engine.PortSpec
	factor float64
}

func newScale(cfg Config) (engine.Impl, error) {
	if !cfg.RegionLevel {
		return nil, fmt.Errorf("%w: scale output must be region level", ErrBadConfig)
	}
	return &scale{
		spec:   filterSpec(cfg),
		factor: cfg.param("factor", 1),
	}, nil
}

func newIdentity(cfg Config) (engine.Impl, error) {
	params := make(map[string]float64, len(cfg.Params)+1)
	for k, v := range cfg.Params {
		params[k] = v
	}
	params["factor"] = 1
	cfg.Params = params
	return newScale(cfg)
}

func (s *scale) Spec() engine.PortSpec {
	return s.spec
}

func (s *scale) Compute(_ context.Context, region *engine.Region, _ int) error {
	values, err := gather(region)
	if err != nil {
		return err
	}
	w, err := region.Writer(OutputName)
	if err != nil {
		return err
	}
	for i := 0; i < w.Count(); i++ {
		v := 0.0
		if i < len(values) {
			v = values[i] * s.factor
		}
		if err := w.Set(i, v); err != nil {
			return err
		}
	}
	return nil
}

// sum adds its input views element-wise.
type sum struct {
	spec engine.PortSpec
}

func newSum(cfg Config) (engine.Impl, error) {
	if !cfg.RegionLevel {
		return nil, fmt.Errorf("%w: sum output must be region level", ErrBadConfig)
	}
	return &sum{spec: filterSpec(cfg)}, nil
}

func (s *sum) Spec() engine.PortSpec {
	return s.spec
}

func (s *sum) Compute(_ context.Context, region *engine.Region, _ int) error {
	in, err := region.Input(InputName)
	if err != nil {
		return err
	}
	views, err := in.Views()
	if err != nil {
		return err
	}
	w, err := region.Writer(OutputName)
	if err != nil {
		return err
	}
	for i := 0; i < w.Count(); i++ {
		total := 0.0
		for _, view := range views {
			if i >= view.Count() {
				continue
			}
			v, err := view.Get(i)
			if err != nil {
				return err
			}
			total += v
		}
		if err := w.Set(i, total); err != nil {
			return err
		}
	}
	return nil
}

func sourceSpec(cfg Config) engine.PortSpec {
	return engine.PortSpec{
		Outputs: []engine.OutputSpec{{
			Name:         OutputName,
			Type:         cfg.Type,
			RegionLevel:  cfg.RegionLevel,
			ElementCount: cfg.Width,
		}},
	}
}

func filterSpec(cfg Config) engine.PortSpec {
	spec := sourceSpec(cfg)
	spec.Inputs = []engine.InputSpec{{Name: InputName, Type: cfg.Type}}
	return spec
}

func gather(region *engine.Region) ([]float64, error) {
	in, err := region.Input(InputName)
	if err != nil {
		return nil, err
	}
	views, err := in.Views()
	if err != nil {
		return nil, err
	}
	var values []float64
	for _, view := range views {
		values = append(values, view.Values()...)
	}
	return values, nil
}
