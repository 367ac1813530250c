package array

import (
	"errors"
	"math"
	"testing"
)

func TestParseBasicType(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   BasicType
		hasErr bool
	}{
		{name: "canonical", input: "Real32", want: Real32},
		{name: "lowercase", input: "uint16", want: UInt16},
		{name: "padded", input: " Bool ", want: Bool},
		{name: "unknown", input: "complex", hasErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBasicType(tc.input)
			if tc.hasErr {
				if !errors.Is(err, ErrUnknownType) {
					t.Fatalf("expected unknown type error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected type: got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestNewRejectsInvalidType(t *testing.T) {
	if _, err := New(Invalid); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestArraySetGetRoundTripPerType(t *testing.T) {
	tests := []struct {
		typ  BasicType
		in   float64
		want float64
	}{
		{typ: Byte, in: 200, want: 200},
		{typ: Bool, in: 3, want: 1},
		{typ: Int16, in: -1200, want: -1200},
		{typ: UInt16, in: 65000, want: 65000},
		{typ: Int32, in: -70000, want: -70000},
		{typ: UInt32, in: 4000000000, want: 4000000000},
		{typ: Int64, in: -1 << 40, want: -1 << 40},
		{typ: UInt64, in: 1 << 50, want: 1 << 50},
		{typ: Real32, in: 0.5, want: 0.5},
		{typ: Real64, in: math.Pi, want: math.Pi},
	}

	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			a, err := New(tc.typ)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if err := a.Allocate(3); err != nil {
				t.Fatalf("allocate: %v", err)
			}
			if err := a.Set(2, tc.in); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := a.Get(2)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected value: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestArrayAccessBeforeAllocate(t *testing.T) {
	a, err := New(Real64)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := a.Get(0); !errors.Is(err, ErrNotAllocated) {
		t.Fatalf("expected not allocated, got %v", err)
	}
	if _, err := a.View(); !errors.Is(err, ErrNotAllocated) {
		t.Fatalf("expected not allocated view, got %v", err)
	}
	if err := a.Allocate(-1); !errors.Is(err, ErrNegativeSize) {
		t.Fatalf("expected negative size error, got %v", err)
	}
}

func TestArrayAllocateRejectsByteOverflow(t *testing.T) {
	a, err := New(Real64)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Allocate(1 << 61); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected too large error, got %v", err)
	}
	if a.Allocated() || a.Count() != 0 || a.Generation() != 0 {
		t.Fatalf("failed allocate changed state: allocated=%v count=%d gen=%d", a.Allocated(), a.Count(), a.Generation())
	}
}

func TestViewReadOnlyWindowAndStaleness(t *testing.T) {
	a, err := New(Real32)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Allocate(6); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	for i := 0; i < 6; i++ {
		if err := a.Set(i, float64(i)); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}

	view, err := a.View()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	slice, err := view.Slice(2, 2)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if got := slice.Values(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected slice values: %v", got)
	}
	if slice.Bytes() != 8 {
		t.Fatalf("unexpected slice byte size: %d", slice.Bytes())
	}
	if _, err := slice.Get(2); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := view.Slice(5, 2); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range slice, got %v", err)
	}

	// writes through the owner are visible to live views
	if err := a.Set(3, 9); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := slice.Get(1); got != 9 {
		t.Fatalf("expected view to observe owner write, got %v", got)
	}

	if view.Stale() {
		t.Fatal("fresh view reported stale")
	}
	if err := a.Allocate(4); err != nil {
		t.Fatalf("reallocate: %v", err)
	}
	if !view.Stale() || !slice.Stale() {
		t.Fatal("expected views to be stale after reallocation")
	}
	if got, _ := view.Get(5); got != 5 {
		t.Fatalf("stale view should keep reading its block, got %v", got)
	}
}
