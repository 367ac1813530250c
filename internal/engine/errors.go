package engine

import "errors"

// Construction and configuration errors.
var (
	ErrInvalidRegion  = errors.New("invalid owning region")
	ErrInvalidType    = errors.New("invalid element type")
	ErrInvalidSize    = errors.New("invalid output size")
	ErrTypeMismatch   = errors.New("element type mismatch")
	ErrInvalidNode    = errors.New("invalid node index")
	ErrNotPerNode     = errors.New("output is region level")
	ErrDuplicatePort  = errors.New("duplicate port name")
	ErrPortNotFound   = errors.New("port not found")
	ErrRegionExists   = errors.New("region already exists")
	ErrRegionNotFound = errors.New("region not found")
	ErrCycle          = errors.New("link cycle detected")
)

// Contract violations. These indicate a defect in graph construction and are
// never retried.
var (
	ErrNilLink                = errors.New("link is nil")
	ErrLinkExists             = errors.New("link already registered")
	ErrLinkNotFound           = errors.New("link not registered")
	ErrNotInitialized         = errors.New("output not initialized")
	ErrRegionHasOutgoingLinks = errors.New("region has outgoing links")
)
