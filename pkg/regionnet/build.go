package regionnet

import (
	"fmt"

	"regionnet/internal/config"
	"regionnet/internal/engine"
	"regionnet/internal/model"
	"regionnet/internal/regions"
)

// Build assembles a Network from a graph description. Links are attached
// through their destination Inputs in declaration order.
func Build(spec model.GraphSpec, opts ...engine.Option) (*engine.Network, error) {
	n := engine.NewNetwork(opts...)
	for _, rs := range spec.Regions {
		typ, err := config.RegionType(rs)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", rs.Name, err)
		}
		nodes := rs.Nodes
		if nodes == 0 {
			nodes = 1
		}
		impl, err := regions.New(rs.Kind, regions.Config{
			Type:        typ,
			Width:       rs.Width,
			RegionLevel: rs.RegionLevel,
			Activation:  rs.Activation,
			Params:      rs.Params,
		})
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", rs.Name, err)
		}
		if _, err := n.AddRegion(rs.Name, rs.Kind, nodes, impl); err != nil {
			return nil, err
		}
	}

	for i, ls := range spec.Links {
		srcRegion, srcOutput, err := config.SplitEndpoint(ls.Source)
		if err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
		destRegion, destInput, err := config.SplitEndpoint(ls.Destination)
		if err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
		srcNode := engine.WholeBuffer
		if ls.SourceNode != nil {
			srcNode = *ls.SourceNode
		}
		if _, err := n.Link(srcRegion, srcOutput, destRegion, destInput, srcNode); err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	return n, nil
}

// OutputInfo describes one initialized Output.
type OutputInfo struct {
	Region      string
	Output      string
	Type        string
	RegionLevel bool
	Nodes       int
	NodeWidth   int
	Count       int
	Bytes       int
	Links       int
}

// Inspect builds and initializes the graph, reports every Output in
// execution order, then tears the graph down again.
func Inspect(spec model.GraphSpec, opts ...engine.Option) ([]OutputInfo, error) {
	n, err := Build(spec, opts...)
	if err != nil {
		return nil, err
	}
	if err := n.Initialize(); err != nil {
		return nil, err
	}
	order, err := n.ExecutionOrder()
	if err != nil {
		return nil, err
	}

	var out []OutputInfo
	for _, name := range order {
		region, err := n.Region(name)
		if err != nil {
			return nil, err
		}
		for _, outputName := range region.OutputNames() {
			output, err := region.Output(outputName)
			if err != nil {
				return nil, err
			}
			view, err := output.Data()
			if err != nil {
				return nil, err
			}
			out = append(out, OutputInfo{
				Region:      name,
				Output:      outputName,
				Type:        output.ElementType().String(),
				RegionLevel: output.IsRegionLevel(),
				Nodes:       region.NodeCount(),
				NodeWidth:   output.NodeOutputElementCount(),
				Count:       view.Count(),
				Bytes:       view.Bytes(),
				Links:       output.LinkCount(),
			})
		}
	}
	if err := n.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
