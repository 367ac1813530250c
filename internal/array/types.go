package array

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownType = errors.New("unknown basic type")

// BasicType tags the scalar element type held by an Array.
type BasicType int

const (
	Invalid BasicType = iota
	Byte
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Real32
	Real64
	Bool
)

var basicTypeNames = map[BasicType]string{
	Byte:   "Byte",
	Int16:  "Int16",
	UInt16: "UInt16",
	Int32:  "Int32",
	UInt32: "UInt32",
	Int64:  "Int64",
	UInt64: "UInt64",
	Real32: "Real32",
	Real64: "Real64",
	Bool:   "Bool",
}

func (t BasicType) Valid() bool {
	_, ok := basicTypeNames[t]
	return ok
}

// Size reports the width of one element in bytes, or 0 for an invalid type.
func (t BasicType) Size() int {
	switch t {
	case Byte, Bool:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Real32:
		return 4
	case Int64, UInt64, Real64:
		return 8
	default:
		return 0
	}
}

func (t BasicType) String() string {
	if name, ok := basicTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("BasicType(%d)", int(t))
}

// ParseBasicType accepts the canonical names case-insensitively.
func ParseBasicType(name string) (BasicType, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for t, candidate := range basicTypeNames {
		if strings.ToLower(candidate) == normalized {
			return t, nil
		}
	}
	return Invalid, fmt.Errorf("%w: %s", ErrUnknownType, name)
}
