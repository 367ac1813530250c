package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Observer is called after every completed step with the regions in
// execution order. It must not mutate the Network.
type Observer func(ctx context.Context, step int, regions []*Region) error

type Option func(*Network)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(n *Network) {
		if observer != nil {
			n.observers = append(n.observers, observer)
		}
	}
}

// Network owns all Regions and orchestrates link edits, execution order and
// teardown. Structural edits and computation never interleave: every public
// method holds the same lock.
type Network struct {
	mu          sync.Mutex
	logger      *slog.Logger
	regions     map[string]*Region
	observers   []Observer
	order       []*Region
	initialized bool
	step        int
}

func NewNetwork(opts ...Option) *Network {
	n := &Network{
		logger:  slog.Default(),
		regions: make(map[string]*Region),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Network) AddRegion(name, kind string, nodeCount int, impl Impl) (*Region, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.regions[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRegionExists, name)
	}
	region, err := NewRegion(name, kind, nodeCount, impl)
	if err != nil {
		return nil, err
	}
	n.regions[name] = region
	n.invalidateOrder()
	n.logger.Debug("network: region added", "region", name, "kind", kind, "nodes", nodeCount)
	return region, nil
}

// Region returns the live region. Reading its outputs is safe between runs;
// structural changes go through Network methods such as SetNodeCount so they
// cannot interleave with Run.
func (n *Network) Region(name string) (*Region, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.region(name)
}

// SetNodeCount changes a region's node count while no step is running. An
// initialized region resizes its per-node outputs immediately, which leaves
// earlier Views of them stale.
func (n *Network) SetNodeCount(name string, nodeCount int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	region, err := n.region(name)
	if err != nil {
		return err
	}
	before := region.NodeCount()
	if err := region.SetNodeCount(nodeCount); err != nil {
		return err
	}
	n.logger.Debug("network: node count changed", "region", name, "from", before, "to", nodeCount)
	return nil
}

// Regions returns all regions sorted by name.
func (n *Network) Regions() []*Region {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]*Region, 0, len(n.regions))
	for _, name := range sortedKeys(n.regions) {
		out = append(out, n.regions[name])
	}
	return out
}

// Link connects srcRegion.srcOutput to destRegion.destInput. srcNode selects
// a single node slice of the source, or WholeBuffer.
func (n *Network) Link(srcRegion, srcOutput, destRegion, destInput string, srcNode int) (*Link, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	src, err := n.region(srcRegion)
	if err != nil {
		return nil, err
	}
	dest, err := n.region(destRegion)
	if err != nil {
		return nil, err
	}
	out, err := src.Output(srcOutput)
	if err != nil {
		return nil, err
	}
	in, err := dest.Input(destInput)
	if err != nil {
		return nil, err
	}
	link, err := NewLink(out, in, srcNode)
	if err != nil {
		return nil, err
	}
	if err := in.AddLink(link); err != nil {
		return nil, err
	}
	n.invalidateOrder()
	n.logger.Debug("network: link added", "link", link.String(), "id", link.ID().String())
	return link, nil
}

// Unlink removes link through its destination Input.
func (n *Network) Unlink(link *Link) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if link == nil {
		return ErrNilLink
	}
	if err := link.Destination().RemoveLink(link); err != nil {
		return err
	}
	n.invalidateOrder()
	n.logger.Debug("network: link removed", "link", link.String())
	return nil
}

// Links returns every link in the network, grouped by destination region
// name and input name, each group in input order.
func (n *Network) Links() []*Link {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []*Link
	for _, regionName := range sortedKeys(n.regions) {
		region := n.regions[regionName]
		for _, inputName := range region.InputNames() {
			out = append(out, region.inputs[inputName].links...)
		}
	}
	return out
}

// RemoveRegion detaches the region's incoming links and drops it. Removal is
// refused while any of its outputs still feeds a link.
func (n *Network) RemoveRegion(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	region, err := n.region(name)
	if err != nil {
		return err
	}
	if err := region.CheckRemovable(); err != nil {
		return err
	}
	for _, inputName := range region.InputNames() {
		if err := region.inputs[inputName].RemoveAllLinks(); err != nil {
			return err
		}
	}
	delete(n.regions, name)
	n.invalidateOrder()
	n.logger.Debug("network: region removed", "region", name)
	return nil
}

// Initialize validates the graph and initializes every region in
// execution order.
func (n *Network) Initialize() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.initialize()
}

// ExecutionOrder lists region names upstream first; ties are broken by name.
func (n *Network) ExecutionOrder() ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	order, err := n.executionOrder()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(order))
	for i, region := range order {
		names[i] = region.Name()
	}
	return names, nil
}

// Run executes steps full passes over the graph. Each region finishes
// writing its outputs before any downstream region computes.
func (n *Network) Run(ctx context.Context, steps int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if steps <= 0 {
		return fmt.Errorf("steps must be > 0, got=%d", steps)
	}
	if err := n.initialize(); err != nil {
		return err
	}
	n.logger.Info("network: run started", "regions", len(n.order), "steps", steps, "from_step", n.step)
	for i := 0; i < steps; i++ {
		for _, region := range n.order {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := region.Compute(ctx, n.step); err != nil {
				return err
			}
		}
		for _, observer := range n.observers {
			if err := observer(ctx, n.step, append([]*Region(nil), n.order...)); err != nil {
				return fmt.Errorf("observer at step %d: %w", n.step, err)
			}
		}
		n.step++
	}
	n.logger.Info("network: run finished", "steps", steps, "total_steps", n.step)
	return nil
}

// Step is the number of completed steps.
func (n *Network) Step() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.step
}

// Close tears the graph down: every link is removed through its Input, then
// every region is dropped once it reports no outgoing links.
func (n *Network) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	names := sortedKeys(n.regions)
	for _, name := range names {
		region := n.regions[name]
		for _, inputName := range region.InputNames() {
			if err := region.inputs[inputName].RemoveAllLinks(); err != nil {
				return err
			}
		}
	}
	for _, name := range names {
		if err := n.regions[name].CheckRemovable(); err != nil {
			return err
		}
		delete(n.regions, name)
	}
	n.invalidateOrder()
	n.logger.Debug("network: closed", "regions", len(names))
	return nil
}

func (n *Network) region(name string) (*Region, error) {
	region, ok := n.regions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRegionNotFound, name)
	}
	return region, nil
}

func (n *Network) invalidateOrder() {
	n.order = nil
	n.initialized = false
}

func (n *Network) initialize() error {
	if n.initialized {
		return nil
	}
	order, err := n.executionOrder()
	if err != nil {
		return err
	}
	for _, region := range order {
		if err := region.Initialize(); err != nil {
			return err
		}
	}
	n.order = order
	n.initialized = true
	return nil
}

func (n *Network) executionOrder() ([]*Region, error) {
	indegree := make(map[string]int, len(n.regions))
	downstream := make(map[string]map[string]struct{}, len(n.regions))
	for name := range n.regions {
		indegree[name] = 0
	}
	for name, region := range n.regions {
		for _, in := range region.inputs {
			for _, link := range in.links {
				upstream := link.Source().Region().Name()
				if downstream[upstream] == nil {
					downstream[upstream] = make(map[string]struct{})
				}
				if _, seen := downstream[upstream][name]; seen {
					continue
				}
				downstream[upstream][name] = struct{}{}
				indegree[name]++
			}
		}
	}

	var ready []string
	for name, degree := range indegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]*Region, 0, len(n.regions))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, n.regions[name])

		var released []string
		for next := range downstream[name] {
			indegree[next]--
			if indegree[next] == 0 {
				released = append(released, next)
			}
		}
		if len(released) > 0 {
			ready = append(ready, released...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(n.regions) {
		var stuck []string
		for name, degree := range indegree {
			if degree > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return order, nil
}
