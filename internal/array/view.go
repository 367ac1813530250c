package array

import "fmt"

// View is a read-only window into an Array. It cannot resize, reallocate or
// replace the underlying block; the zero View is empty.
type View struct {
	owner      *Array
	data       []byte
	typ        BasicType
	offset     int
	count      int
	generation uint64
}

func (v View) Type() BasicType {
	return v.typ
}

func (v View) Count() int {
	return v.count
}

// Bytes reports the size of the window in bytes.
func (v View) Bytes() int {
	return v.count * v.typ.Size()
}

// Stale reports whether the owning Array was reallocated after this View was
// taken. A stale View still reads the block it was created from.
func (v View) Stale() bool {
	if v.owner == nil {
		return false
	}
	return v.owner.generation != v.generation
}

func (v View) Get(i int) (float64, error) {
	if i < 0 || i >= v.count {
		return 0, fmt.Errorf("%w: index=%d count=%d", ErrOutOfRange, i, v.count)
	}
	return decode(v.typ, v.data, v.offset+i), nil
}

// Values copies the window out as float64s.
func (v View) Values() []float64 {
	out := make([]float64, v.count)
	for i := range out {
		out[i] = decode(v.typ, v.data, v.offset+i)
	}
	return out
}

// Slice narrows the window to count elements starting at offset.
func (v View) Slice(offset, count int) (View, error) {
	if offset < 0 || count < 0 || offset+count > v.count {
		return View{}, fmt.Errorf("%w: slice offset=%d count=%d of %d", ErrOutOfRange, offset, count, v.count)
	}
	out := v
	out.offset = v.offset + offset
	out.count = count
	return out, nil
}
