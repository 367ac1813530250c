package array

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotAllocated = errors.New("array not allocated")
	ErrOutOfRange   = errors.New("index out of range")
	ErrNegativeSize = errors.New("array size must be >= 0")
	ErrTooLarge     = errors.New("array size overflows addressable memory")
)

// Array is a typed, fixed-capacity block of numeric elements. It is owned by
// exactly one producer; everybody else reads it through a View.
type Array struct {
	typ        BasicType
	count      int
	data       []byte
	allocated  bool
	generation uint64
}

func New(t BasicType) (*Array, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return &Array{typ: t}, nil
}

// Allocate replaces the backing block with a zeroed one holding count
// elements. Views taken before the call keep the old block and report Stale.
func (a *Array) Allocate(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: got=%d", ErrNegativeSize, count)
	}
	if count > math.MaxInt/a.typ.Size() {
		return fmt.Errorf("%w: count=%d of %s", ErrTooLarge, count, a.typ)
	}
	a.data = make([]byte, count*a.typ.Size())
	a.count = count
	a.allocated = true
	a.generation++
	return nil
}

// Release drops the backing block. The Array can be allocated again later.
func (a *Array) Release() {
	a.data = nil
	a.count = 0
	a.allocated = false
	a.generation++
}

func (a *Array) Type() BasicType {
	return a.typ
}

func (a *Array) Count() int {
	return a.count
}

func (a *Array) Allocated() bool {
	return a.allocated
}

// Generation changes every time the backing block is replaced.
func (a *Array) Generation() uint64 {
	return a.generation
}

func (a *Array) Get(i int) (float64, error) {
	if !a.allocated {
		return 0, ErrNotAllocated
	}
	if i < 0 || i >= a.count {
		return 0, fmt.Errorf("%w: index=%d count=%d", ErrOutOfRange, i, a.count)
	}
	return decode(a.typ, a.data, i), nil
}

func (a *Array) Set(i int, v float64) error {
	if !a.allocated {
		return ErrNotAllocated
	}
	if i < 0 || i >= a.count {
		return fmt.Errorf("%w: index=%d count=%d", ErrOutOfRange, i, a.count)
	}
	encode(a.typ, a.data, i, v)
	return nil
}

func (a *Array) Fill(v float64) error {
	if !a.allocated {
		return ErrNotAllocated
	}
	for i := 0; i < a.count; i++ {
		encode(a.typ, a.data, i, v)
	}
	return nil
}

// View returns a read-only window over the whole current block.
func (a *Array) View() (View, error) {
	if !a.allocated {
		return View{}, ErrNotAllocated
	}
	return View{
		owner:      a,
		data:       a.data,
		typ:        a.typ,
		offset:     0,
		count:      a.count,
		generation: a.generation,
	}, nil
}

func decode(t BasicType, data []byte, i int) float64 {
	off := i * t.Size()
	switch t {
	case Byte:
		return float64(data[off])
	case Bool:
		if data[off] != 0 {
			return 1
		}
		return 0
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(data[off:])))
	case UInt16:
		return float64(binary.LittleEndian.Uint16(data[off:]))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(data[off:])))
	case UInt32:
		return float64(binary.LittleEndian.Uint32(data[off:]))
	case Int64:
		return float64(int64(binary.LittleEndian.Uint64(data[off:])))
	case UInt64:
		return float64(binary.LittleEndian.Uint64(data[off:]))
	case Real32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
	case Real64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
	default:
		return 0
	}
}

func encode(t BasicType, data []byte, i int, v float64) {
	off := i * t.Size()
	switch t {
	case Byte:
		data[off] = byte(v)
	case Bool:
		if v != 0 {
			data[off] = 1
		} else {
			data[off] = 0
		}
	case Int16:
		binary.LittleEndian.PutUint16(data[off:], uint16(int16(v)))
	case UInt16:
		binary.LittleEndian.PutUint16(data[off:], uint16(v))
	case Int32:
		binary.LittleEndian.PutUint32(data[off:], uint32(int32(v)))
	case UInt32:
		binary.LittleEndian.PutUint32(data[off:], uint32(v))
	case Int64:
		binary.LittleEndian.PutUint64(data[off:], uint64(int64(v)))
	case UInt64:
		binary.LittleEndian.PutUint64(data[off:], uint64(v))
	case Real32:
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(float32(v)))
	case Real64:
		binary.LittleEndian.PutUint64(data[off:], math.Float64bits(v))
	}
}
