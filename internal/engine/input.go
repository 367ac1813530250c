package engine

import (
	"fmt"

	"regionnet/internal/array"
)

// Input is a Region's named data-consuming port. Unlike Output, the order of
// its links is significant: Views returns them in the order they were added.
type Input struct {
	region      *Region
	name        string
	elementType array.BasicType
	links       []*Link
}

func NewInput(region *Region, name string, elementType array.BasicType) (*Input, error) {
	if region == nil {
		return nil, ErrInvalidRegion
	}
	if !elementType.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, elementType)
	}
	return &Input{region: region, name: name, elementType: elementType}, nil
}

func (in *Input) Name() string {
	return in.name
}

func (in *Input) Region() *Region {
	return in.region
}

func (in *Input) ElementType() array.BasicType {
	return in.elementType
}

// AddLink appends link and registers it with its source Output.
func (in *Input) AddLink(link *Link) error {
	if link == nil {
		return in.errorf(ErrNilLink, "add")
	}
	if link.Destination() != in {
		return in.errorf(ErrLinkNotFound, "%s targets another input", link)
	}
	for _, existing := range in.links {
		if existing == link {
			return in.errorf(ErrLinkExists, "%s", link)
		}
	}
	if err := link.Source().AddLink(link); err != nil {
		return err
	}
	in.links = append(in.links, link)
	return nil
}

// RemoveLink detaches link from this Input and from its source Output.
func (in *Input) RemoveLink(link *Link) error {
	if link == nil {
		return in.errorf(ErrNilLink, "remove")
	}
	idx := -1
	for i, existing := range in.links {
		if existing == link {
			idx = i
			break
		}
	}
	if idx < 0 {
		return in.errorf(ErrLinkNotFound, "%s", link)
	}
	if err := link.Source().RemoveLink(link); err != nil {
		return err
	}
	in.links = append(in.links[:idx], in.links[idx+1:]...)
	return nil
}

// RemoveAllLinks detaches every link, newest first.
func (in *Input) RemoveAllLinks() error {
	for len(in.links) > 0 {
		if err := in.RemoveLink(in.links[len(in.links)-1]); err != nil {
			return err
		}
	}
	return nil
}

func (in *Input) Links() []*Link {
	return append([]*Link(nil), in.links...)
}

// Views pulls a fresh view from every link, in link order.
func (in *Input) Views() ([]array.View, error) {
	views := make([]array.View, 0, len(in.links))
	for _, link := range in.links {
		view, err := link.Data()
		if err != nil {
			return nil, fmt.Errorf("input %q of region %q: %w", in.name, in.region.Name(), err)
		}
		views = append(views, view)
	}
	return views, nil
}

// Count is the total number of elements across all linked views.
func (in *Input) Count() (int, error) {
	views, err := in.Views()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, view := range views {
		total += view.Count()
	}
	return total, nil
}

func (in *Input) errorf(err error, format string, args ...any) error {
	return fmt.Errorf("input %q of region %q: %w: %s", in.name, in.region.Name(), err, fmt.Sprintf(format, args...))
}
