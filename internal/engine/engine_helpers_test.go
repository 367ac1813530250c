package engine

import (
	"context"
	"testing"

	"regionnet/internal/array"
)

type stubImpl struct {
	spec     PortSpec
	computed []int
	compute  func(ctx context.Context, region *Region, step int) error
}

func (s *stubImpl) Spec() PortSpec {
	return s.spec
}

func (s *stubImpl) Compute(ctx context.Context, region *Region, step int) error {
	s.computed = append(s.computed, step)
	if s.compute != nil {
		return s.compute(ctx, region, step)
	}
	return nil
}

func producerSpec(regionLevel bool, width int) PortSpec {
	return PortSpec{
		Outputs: []OutputSpec{{Name: "out", Type: array.Real32, RegionLevel: regionLevel, ElementCount: width}},
	}
}

func consumerSpec() PortSpec {
	return PortSpec{
		Inputs:  []InputSpec{{Name: "in", Type: array.Real32}},
		Outputs: []OutputSpec{{Name: "out", Type: array.Real32, RegionLevel: true, ElementCount: 1}},
	}
}

func mustRegion(t *testing.T, name string, nodes int, spec PortSpec) *Region {
	t.Helper()
	region, err := NewRegion(name, "stub", nodes, &stubImpl{spec: spec})
	if err != nil {
		t.Fatalf("new region %s: %v", name, err)
	}
	return region
}

func mustOutput(t *testing.T, region *Region, regionLevel bool) *Output {
	t.Helper()
	out, err := NewOutput(region, array.Real32, regionLevel)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}
	out.SetName("bottomUpOut")
	return out
}

func mustInput(t *testing.T, region *Region) *Input {
	t.Helper()
	in, err := NewInput(region, "bottomUpIn", array.Real32)
	if err != nil {
		t.Fatalf("new input: %v", err)
	}
	return in
}

func mustLink(t *testing.T, src *Output, dest *Input) *Link {
	t.Helper()
	link, err := NewLink(src, dest, WholeBuffer)
	if err != nil {
		t.Fatalf("new link: %v", err)
	}
	return link
}
