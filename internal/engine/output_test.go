package engine

import (
	"errors"
	"strings"
	"testing"

	"regionnet/internal/array"
)

func TestNewOutputRequiresRegionAndValidType(t *testing.T) {
	if _, err := NewOutput(nil, array.Real32, true); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected invalid region error, got %v", err)
	}
	region := mustRegion(t, "r", 1, PortSpec{})
	if _, err := NewOutput(region, array.Invalid, true); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected invalid type error, got %v", err)
	}
}

func TestOutputAccessorsAndName(t *testing.T) {
	region := mustRegion(t, "sensor", 3, PortSpec{})
	out := mustOutput(t, region, false)
	if out.Name() != "bottomUpOut" {
		t.Fatalf("unexpected name: %q", out.Name())
	}
	out.SetName("renamed")
	if out.Name() != "renamed" {
		t.Fatalf("expected overwritten name, got %q", out.Name())
	}
	if out.IsRegionLevel() || out.Region() != region || out.ElementType() != array.Real32 {
		t.Fatalf("unexpected accessors: level=%v region=%p type=%s", out.IsRegionLevel(), out.Region(), out.ElementType())
	}
	if out.NodeOutputElementCount() != 0 || out.Initialized() {
		t.Fatal("expected fresh output to be uninitialized")
	}
}

func TestOutputDataBeforeInitializeFails(t *testing.T) {
	region := mustRegion(t, "sensor", 1, PortSpec{})
	out := mustOutput(t, region, true)

	_, err := out.Data()
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"bottomUpOut"`) || !strings.Contains(err.Error(), `"sensor"`) {
		t.Fatalf("expected diagnostic to name output and region, got %q", err.Error())
	}
}

func TestOutputInitializeSizing(t *testing.T) {
	tests := []struct {
		name        string
		regionLevel bool
		nodes       int
		width       int
		want        int
	}{
		{name: "region-level", regionLevel: true, nodes: 3, width: 4, want: 4},
		{name: "per-node", regionLevel: false, nodes: 3, width: 4, want: 12},
		{name: "single-node", regionLevel: false, nodes: 1, width: 7, want: 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			region := mustRegion(t, "r", tc.nodes, PortSpec{})
			out := mustOutput(t, region, tc.regionLevel)
			if err := out.Initialize(tc.width); err != nil {
				t.Fatalf("initialize: %v", err)
			}
			view, err := out.Data()
			if err != nil {
				t.Fatalf("data: %v", err)
			}
			if view.Count() != tc.want {
				t.Fatalf("unexpected buffer size: got=%d want=%d", view.Count(), tc.want)
			}
			if out.NodeOutputElementCount() != tc.width {
				t.Fatalf("unexpected node width: got=%d want=%d", out.NodeOutputElementCount(), tc.width)
			}
		})
	}
}

func TestOutputInitializeRejectsZeroSize(t *testing.T) {
	region := mustRegion(t, "r", 2, PortSpec{})
	for _, regionLevel := range []bool{true, false} {
		out := mustOutput(t, region, regionLevel)
		if err := out.Initialize(0); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("regionLevel=%v: expected invalid size, got %v", regionLevel, err)
		}
		if out.Initialized() {
			t.Fatalf("regionLevel=%v: failed initialize must not allocate", regionLevel)
		}
	}
}

func TestOutputInitializeRejectsOverflowingSize(t *testing.T) {
	region := mustRegion(t, "r", 4, PortSpec{})

	wide, err := NewOutput(region, array.Real64, true)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}
	wide.SetName("wide")
	if err := wide.Initialize(1 << 61); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected invalid size for byte overflow, got %v", err)
	}
	if wide.Initialized() {
		t.Fatal("overflowing initialize must not allocate")
	}

	perNode, err := NewOutput(region, array.Byte, false)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}
	perNode.SetName("perNode")
	if err := perNode.Initialize(1 << 62); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected invalid size for element count overflow, got %v", err)
	}
	if perNode.Initialized() {
		t.Fatal("overflowing initialize must not allocate")
	}

	if err := perNode.Initialize(2); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := perNode.Initialize(1 << 62); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected invalid size, got %v", err)
	}
	view, err := perNode.Data()
	if err != nil {
		t.Fatalf("data after rejected resize: %v", err)
	}
	if view.Stale() || view.Count() != 8 || perNode.NodeOutputElementCount() != 2 {
		t.Fatalf("rejected resize changed layout: count=%d width=%d", view.Count(), perNode.NodeOutputElementCount())
	}
}

func TestOutputReinitializeSameSizeKeepsBuffer(t *testing.T) {
	region := mustRegion(t, "r", 2, PortSpec{})
	out := mustOutput(t, region, false)
	if err := out.Initialize(3); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := out.writer().Set(4, 2.5); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, err := out.Data()
	if err != nil {
		t.Fatalf("data: %v", err)
	}

	if err := out.Initialize(3); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	after, err := out.Data()
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if before.Stale() {
		t.Fatal("identical re-initialize must not invalidate views")
	}
	if after.Count() != 6 {
		t.Fatalf("unexpected size: %d", after.Count())
	}
	if got, _ := after.Get(4); got != 2.5 {
		t.Fatalf("expected content preserved, got %v", got)
	}
}

func TestOutputReinitializeDifferentSizeReallocates(t *testing.T) {
	region := mustRegion(t, "r", 1, PortSpec{})
	out := mustOutput(t, region, true)
	if err := out.Initialize(5); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	old, err := out.Data()
	if err != nil {
		t.Fatalf("data: %v", err)
	}

	if err := out.Initialize(8); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	fresh, err := out.Data()
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if fresh.Count() != 8 {
		t.Fatalf("unexpected size: got=%d want=8", fresh.Count())
	}
	if !old.Stale() {
		t.Fatal("expected previous view to be stale")
	}
	if fresh.Stale() {
		t.Fatal("fresh view reported stale")
	}
}

func TestOutputReinitializeAfterNodeCountChange(t *testing.T) {
	region := mustRegion(t, "r", 2, producerSpec(false, 4))
	if err := region.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	out, err := region.Output("out")
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	old, _ := out.Data()

	if err := region.SetNodeCount(5); err != nil {
		t.Fatalf("set node count: %v", err)
	}
	view, err := out.Data()
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if view.Count() != 20 || out.NodeOutputElementCount() != 4 {
		t.Fatalf("unexpected layout: count=%d width=%d", view.Count(), out.NodeOutputElementCount())
	}
	if !old.Stale() {
		t.Fatal("expected node count change to reallocate")
	}
}

func TestOutputInitializeAsRejectsTypeChange(t *testing.T) {
	region := mustRegion(t, "r", 1, PortSpec{})
	out := mustOutput(t, region, true)
	if err := out.InitializeAs(array.Int32, 4); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if err := out.InitializeAs(array.Real32, 4); err != nil {
		t.Fatalf("initialize as same type: %v", err)
	}
}

func TestOutputInvalidate(t *testing.T) {
	region := mustRegion(t, "r", 1, PortSpec{})
	out := mustOutput(t, region, true)
	if err := out.Initialize(2); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	out.Invalidate()
	if _, err := out.Data(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected not initialized after invalidate, got %v", err)
	}
	if err := out.Initialize(2); err != nil {
		t.Fatalf("initialize after invalidate: %v", err)
	}
	if _, err := out.Data(); err != nil {
		t.Fatalf("data after reinitialize: %v", err)
	}
}

func TestOutputNodeData(t *testing.T) {
	region := mustRegion(t, "r", 3, PortSpec{})
	out := mustOutput(t, region, false)
	if err := out.Initialize(2); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	w := out.writer()
	for node := 0; node < 3; node++ {
		for i := 0; i < 2; i++ {
			if err := w.SetNode(node, i, float64(node*10+i)); err != nil {
				t.Fatalf("set node: %v", err)
			}
		}
	}

	view, err := out.NodeData(2)
	if err != nil {
		t.Fatalf("node data: %v", err)
	}
	if got := view.Values(); len(got) != 2 || got[0] != 20 || got[1] != 21 {
		t.Fatalf("unexpected node slice: %v", got)
	}
	if _, err := out.NodeData(3); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("expected invalid node error, got %v", err)
	}
	if err := w.SetNode(0, 2, 1); !errors.Is(err, array.ErrOutOfRange) {
		t.Fatalf("expected out of range write, got %v", err)
	}

	flat := mustOutput(t, region, true)
	if err := flat.Initialize(2); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := flat.NodeData(0); !errors.Is(err, ErrNotPerNode) {
		t.Fatalf("expected region-level node access to fail, got %v", err)
	}
}

func TestOutputLinkRegistration(t *testing.T) {
	src := mustRegion(t, "src", 1, PortSpec{})
	dest := mustRegion(t, "dest", 1, PortSpec{})
	out := mustOutput(t, src, true)
	link := mustLink(t, out, mustInput(t, dest))

	if out.HasOutgoingLinks() {
		t.Fatal("fresh output reported outgoing links")
	}
	if err := out.AddLink(link); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if !out.HasOutgoingLinks() {
		t.Fatal("expected outgoing links after add")
	}

	if err := out.AddLink(link); !errors.Is(err, ErrLinkExists) {
		t.Fatalf("expected duplicate link error, got %v", err)
	}
	if out.LinkCount() != 1 {
		t.Fatalf("duplicate add mutated link set: %d", out.LinkCount())
	}
	if err := out.AddLink(nil); !errors.Is(err, ErrNilLink) {
		t.Fatalf("expected nil link error, got %v", err)
	}

	stranger := mustLink(t, out, mustInput(t, dest))
	if err := out.RemoveLink(stranger); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected link not found, got %v", err)
	}
	if out.LinkCount() != 1 {
		t.Fatalf("failed remove mutated link set: %d", out.LinkCount())
	}

	if err := out.RemoveLink(link); err != nil {
		t.Fatalf("remove link: %v", err)
	}
	if out.HasOutgoingLinks() {
		t.Fatal("expected no outgoing links after remove")
	}
	if err := out.RemoveLink(link); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected second remove to fail, got %v", err)
	}
}

func TestOutputLinksSortedByID(t *testing.T) {
	src := mustRegion(t, "src", 1, PortSpec{})
	dest := mustRegion(t, "dest", 1, PortSpec{})
	out := mustOutput(t, src, true)
	for i := 0; i < 5; i++ {
		if err := out.AddLink(mustLink(t, out, mustInput(t, dest))); err != nil {
			t.Fatalf("add link: %v", err)
		}
	}
	links := out.Links()
	for i := 1; i < len(links); i++ {
		if links[i-1].ID().String() > links[i].ID().String() {
			t.Fatalf("links not ordered by id at %d", i)
		}
	}
}
