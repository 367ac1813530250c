package engine

import (
	"fmt"

	"github.com/google/uuid"

	"regionnet/internal/array"
)

// WholeBuffer selects the full source buffer instead of a single node slice.
const WholeBuffer = -1

// Link is a directed edge from one Output to one Input. It owns neither end.
type Link struct {
	id      uuid.UUID
	src     *Output
	dest    *Input
	srcNode int
}

// NewLink binds src to dest without registering it anywhere; registration
// happens through Input.AddLink.
func NewLink(src *Output, dest *Input, srcNode int) (*Link, error) {
	if src == nil || dest == nil {
		return nil, fmt.Errorf("%w: link endpoints are required", ErrPortNotFound)
	}
	if src.ElementType() != dest.ElementType() {
		return nil, fmt.Errorf("%w: %s.%s is %s, %s.%s is %s",
			ErrTypeMismatch,
			src.Region().Name(), src.Name(), src.ElementType(),
			dest.Region().Name(), dest.Name(), dest.ElementType(),
		)
	}
	if srcNode != WholeBuffer {
		if srcNode < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidNode, srcNode)
		}
		if src.IsRegionLevel() {
			return nil, fmt.Errorf("%w: %s.%s cannot be addressed per node", ErrNotPerNode, src.Region().Name(), src.Name())
		}
	}
	return &Link{
		id:      uuid.New(),
		src:     src,
		dest:    dest,
		srcNode: srcNode,
	}, nil
}

func (l *Link) ID() uuid.UUID {
	return l.id
}

func (l *Link) Source() *Output {
	return l.src
}

func (l *Link) Destination() *Input {
	return l.dest
}

func (l *Link) SourceNode() int {
	return l.srcNode
}

// Data fetches the current source view. Callers must not keep the result
// across an Initialize of the source Output.
func (l *Link) Data() (array.View, error) {
	if l.srcNode == WholeBuffer {
		return l.src.Data()
	}
	return l.src.NodeData(l.srcNode)
}

func (l *Link) String() string {
	src := fmt.Sprintf("%s.%s", l.src.Region().Name(), l.src.Name())
	if l.srcNode != WholeBuffer {
		src = fmt.Sprintf("%s[%d]", src, l.srcNode)
	}
	return fmt.Sprintf("%s -> %s.%s", src, l.dest.Region().Name(), l.dest.Name())
}
