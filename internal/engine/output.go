package engine

import (
	"fmt"
	"math"
	"sort"

	"regionnet/internal/array"
)

// Output is a Region's named data-producing port. It owns the buffer the
// Region writes into and tracks the Links reading from it. Links are
// registered only by their Input; the Output never creates or destroys one.
type Output struct {
	region      *Region
	elementType array.BasicType
	regionLevel bool
	data        *array.Array
	// order of links never matters, unlike Input
	links                  map[*Link]struct{}
	name                   string
	nodeOutputElementCount int
}

func NewOutput(region *Region, elementType array.BasicType, regionLevel bool) (*Output, error) {
	if region == nil {
		return nil, ErrInvalidRegion
	}
	data, err := array.New(elementType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, elementType)
	}
	return &Output{
		region:      region,
		elementType: elementType,
		regionLevel: regionLevel,
		data:        data,
		links:       make(map[*Link]struct{}),
	}, nil
}

func (o *Output) SetName(name string) {
	o.name = name
}

func (o *Output) Name() string {
	return o.name
}

// Initialize sizes the buffer for nodeOutputElementCount elements per node,
// or for exactly that many elements when the Output is region level. Calling
// it again with parameters that produce the same layout keeps the current
// buffer; anything else reallocates and leaves earlier Views stale.
func (o *Output) Initialize(nodeOutputElementCount int) error {
	if nodeOutputElementCount <= 0 {
		return o.errorf(ErrInvalidSize, "node output element count must be > 0, got=%d", nodeOutputElementCount)
	}
	total := nodeOutputElementCount
	if !o.regionLevel {
		nodes := o.region.NodeCount()
		if nodes <= 0 {
			return o.errorf(ErrInvalidSize, "region reports %d nodes", nodes)
		}
		if nodes > math.MaxInt/nodeOutputElementCount {
			return o.errorf(ErrInvalidSize, "%d nodes x %d elements overflows", nodes, nodeOutputElementCount)
		}
		total = nodeOutputElementCount * nodes
	}

	if o.data.Allocated() && o.data.Count() == total && o.nodeOutputElementCount == nodeOutputElementCount {
		return nil
	}
	if err := o.data.Allocate(total); err != nil {
		return o.errorf(ErrInvalidSize, "%v", err)
	}
	o.nodeOutputElementCount = nodeOutputElementCount
	return nil
}

// InitializeAs is Initialize with an explicit element type check. The element
// type is fixed at construction, so a different type is a configuration error.
func (o *Output) InitializeAs(elementType array.BasicType, nodeOutputElementCount int) error {
	if elementType != o.elementType {
		return o.errorf(ErrTypeMismatch, "got=%s want=%s", elementType, o.elementType)
	}
	return o.Initialize(nodeOutputElementCount)
}

// Invalidate drops the buffer. Data fails until the next Initialize.
func (o *Output) Invalidate() {
	if !o.data.Allocated() {
		return
	}
	o.data.Release()
	o.nodeOutputElementCount = 0
}

func (o *Output) Initialized() bool {
	return o.data.Allocated()
}

// AddLink is called by Input.AddLink.
func (o *Output) AddLink(link *Link) error {
	if link == nil {
		return o.errorf(ErrNilLink, "add")
	}
	if _, exists := o.links[link]; exists {
		return o.errorf(ErrLinkExists, "%s", link)
	}
	o.links[link] = struct{}{}
	return nil
}

// RemoveLink is called by Input.RemoveLink, including when the Network
// removes the Region that owns that Input.
func (o *Output) RemoveLink(link *Link) error {
	if link == nil {
		return o.errorf(ErrNilLink, "remove")
	}
	if _, exists := o.links[link]; !exists {
		return o.errorf(ErrLinkNotFound, "%s", link)
	}
	delete(o.links, link)
	return nil
}

// HasOutgoingLinks gates Region removal: only false is safe.
func (o *Output) HasOutgoingLinks() bool {
	return len(o.links) > 0
}

func (o *Output) LinkCount() int {
	return len(o.links)
}

// Links returns the registered links ordered by ID for diagnostics.
func (o *Output) Links() []*Link {
	out := make([]*Link, 0, len(o.links))
	for link := range o.links {
		out = append(out, link)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// Data returns a read-only view of the whole buffer.
func (o *Output) Data() (array.View, error) {
	if !o.data.Allocated() {
		return array.View{}, o.errorf(ErrNotInitialized, "data requested")
	}
	return o.data.View()
}

// NodeData returns the slice of the buffer that belongs to one node, at
// offset node × NodeOutputElementCount.
func (o *Output) NodeData(node int) (array.View, error) {
	if o.regionLevel {
		return array.View{}, o.errorf(ErrNotPerNode, "node=%d", node)
	}
	view, err := o.Data()
	if err != nil {
		return array.View{}, err
	}
	nodes := view.Count() / o.nodeOutputElementCount
	if node < 0 || node >= nodes {
		return array.View{}, o.errorf(ErrInvalidNode, "node=%d nodes=%d", node, nodes)
	}
	return view.Slice(node*o.nodeOutputElementCount, o.nodeOutputElementCount)
}

func (o *Output) IsRegionLevel() bool {
	return o.regionLevel
}

func (o *Output) ElementType() array.BasicType {
	return o.elementType
}

func (o *Output) Region() *Region {
	return o.region
}

func (o *Output) NodeOutputElementCount() int {
	return o.nodeOutputElementCount
}

func (o *Output) writer() OutputWriter {
	return OutputWriter{output: o}
}

func (o *Output) errorf(err error, format string, args ...any) error {
	return fmt.Errorf("output %q of region %q: %w: %s", o.name, o.region.Name(), err, fmt.Sprintf(format, args...))
}

// OutputWriter is the owning Region's write path into an Output buffer.
type OutputWriter struct {
	output *Output
}

func (w OutputWriter) Count() int {
	return w.output.data.Count()
}

func (w OutputWriter) NodeWidth() int {
	return w.output.nodeOutputElementCount
}

func (w OutputWriter) Set(i int, v float64) error {
	if !w.output.data.Allocated() {
		return w.output.errorf(ErrNotInitialized, "write")
	}
	return w.output.data.Set(i, v)
}

func (w OutputWriter) SetNode(node, i int, v float64) error {
	if w.output.regionLevel {
		return w.output.errorf(ErrNotPerNode, "node=%d", node)
	}
	width := w.output.nodeOutputElementCount
	if i < 0 || i >= width {
		return w.output.errorf(array.ErrOutOfRange, "node=%d element=%d width=%d", node, i, width)
	}
	return w.Set(node*width+i, v)
}

func (w OutputWriter) Fill(v float64) error {
	if !w.output.data.Allocated() {
		return w.output.errorf(ErrNotInitialized, "fill")
	}
	return w.output.data.Fill(v)
}
