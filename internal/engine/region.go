package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"regionnet/internal/array"
)

// OutputSpec declares one output port of a Region implementation.
type OutputSpec struct {
	Name        string
	Type        array.BasicType
	RegionLevel bool
	// ElementCount is the per-node width, or the whole buffer size when
	// RegionLevel is set.
	ElementCount int
}

// InputSpec declares one input port of a Region implementation.
type InputSpec struct {
	Name string
	Type array.BasicType
}

type PortSpec struct {
	Outputs []OutputSpec
	Inputs  []InputSpec
}

// Impl is the computational logic behind a Region. Compute runs once per
// network step after every upstream Region has finished writing.
type Impl interface {
	Spec() PortSpec
	Compute(ctx context.Context, region *Region, step int) error
}

// Region is a named processing unit. It owns its Outputs and Inputs.
type Region struct {
	name        string
	kind        string
	nodeCount   int
	impl        Impl
	outputs     map[string]*Output
	outputSpecs map[string]OutputSpec
	inputs      map[string]*Input
	initialized bool
}

func NewRegion(name, kind string, nodeCount int, impl Impl) (*Region, error) {
	if name == "" {
		return nil, errors.New("region name is required")
	}
	if nodeCount <= 0 {
		return nil, fmt.Errorf("region %q: node count must be > 0, got=%d", name, nodeCount)
	}
	if impl == nil {
		return nil, fmt.Errorf("region %q: implementation is required", name)
	}

	r := &Region{
		name:        name,
		kind:        kind,
		nodeCount:   nodeCount,
		impl:        impl,
		outputs:     make(map[string]*Output),
		outputSpecs: make(map[string]OutputSpec),
		inputs:      make(map[string]*Input),
	}
	spec := impl.Spec()
	for _, outSpec := range spec.Outputs {
		if _, exists := r.outputs[outSpec.Name]; exists || outSpec.Name == "" {
			return nil, fmt.Errorf("region %q: %w: output %q", name, ErrDuplicatePort, outSpec.Name)
		}
		out, err := NewOutput(r, outSpec.Type, outSpec.RegionLevel)
		if err != nil {
			return nil, fmt.Errorf("region %q output %q: %w", name, outSpec.Name, err)
		}
		out.SetName(outSpec.Name)
		r.outputs[outSpec.Name] = out
		r.outputSpecs[outSpec.Name] = outSpec
	}
	for _, inSpec := range spec.Inputs {
		if _, exists := r.inputs[inSpec.Name]; exists || inSpec.Name == "" {
			return nil, fmt.Errorf("region %q: %w: input %q", name, ErrDuplicatePort, inSpec.Name)
		}
		in, err := NewInput(r, inSpec.Name, inSpec.Type)
		if err != nil {
			return nil, fmt.Errorf("region %q input %q: %w", name, inSpec.Name, err)
		}
		r.inputs[inSpec.Name] = in
	}
	return r, nil
}

func (r *Region) Name() string {
	return r.name
}

func (r *Region) Kind() string {
	return r.kind
}

func (r *Region) NodeCount() int {
	return r.nodeCount
}

func (r *Region) Impl() Impl {
	return r.impl
}

func (r *Region) Initialized() bool {
	return r.initialized
}

// Initialize sizes every Output from its declared spec. It is safe to call
// repeatedly; unchanged outputs keep their buffers.
func (r *Region) Initialize() error {
	for _, name := range r.OutputNames() {
		if err := r.outputs[name].Initialize(r.outputSpecs[name].ElementCount); err != nil {
			return err
		}
	}
	r.initialized = true
	return nil
}

// SetNodeCount changes the node topology and re-initializes outputs if the
// region was already initialized. Regions owned by a Network are resized
// through Network.SetNodeCount.
func (r *Region) SetNodeCount(nodeCount int) error {
	if nodeCount <= 0 {
		return fmt.Errorf("region %q: node count must be > 0, got=%d", r.name, nodeCount)
	}
	if nodeCount == r.nodeCount {
		return nil
	}
	r.nodeCount = nodeCount
	if !r.initialized {
		return nil
	}
	return r.Initialize()
}

func (r *Region) Output(name string) (*Output, error) {
	out, ok := r.outputs[name]
	if !ok {
		return nil, fmt.Errorf("region %q: %w: output %q", r.name, ErrPortNotFound, name)
	}
	return out, nil
}

func (r *Region) Input(name string) (*Input, error) {
	in, ok := r.inputs[name]
	if !ok {
		return nil, fmt.Errorf("region %q: %w: input %q", r.name, ErrPortNotFound, name)
	}
	return in, nil
}

// Writer exposes the write path of one of this Region's outputs.
func (r *Region) Writer(name string) (OutputWriter, error) {
	out, err := r.Output(name)
	if err != nil {
		return OutputWriter{}, err
	}
	return out.writer(), nil
}

func (r *Region) OutputNames() []string {
	return sortedKeys(r.outputs)
}

func (r *Region) InputNames() []string {
	return sortedKeys(r.inputs)
}

func (r *Region) HasOutgoingLinks() bool {
	for _, out := range r.outputs {
		if out.HasOutgoingLinks() {
			return true
		}
	}
	return false
}

// CheckRemovable refuses removal while any Output still feeds a Link.
func (r *Region) CheckRemovable() error {
	for _, name := range r.OutputNames() {
		out := r.outputs[name]
		if out.HasOutgoingLinks() {
			return fmt.Errorf("region %q: %w: output %q has %d", r.name, ErrRegionHasOutgoingLinks, name, out.LinkCount())
		}
	}
	return nil
}

func (r *Region) Compute(ctx context.Context, step int) error {
	if !r.initialized {
		return fmt.Errorf("region %q: %w", r.name, ErrNotInitialized)
	}
	if err := r.impl.Compute(ctx, r, step); err != nil {
		return fmt.Errorf("region %q compute: %w", r.name, err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
