package regions

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"regionnet/internal/array"
	"regionnet/internal/engine"
)

var (
	ErrKindExists   = errors.New("region kind already registered")
	ErrKindNotFound = errors.New("region kind not found")
	ErrBadConfig    = errors.New("invalid region config")
)

// Config parameterizes a Region implementation at construction time.
type Config struct {
	Type        array.BasicType
	Width       int
	RegionLevel bool
	// Activation names the function used by the activate kind.
	Activation  string
	Params      map[string]float64
}

func (c Config) param(name string, fallback float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return fallback
}

type Factory func(cfg Config) (engine.Impl, error)

var kindRegistry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

func init() {
	initializeBuiltInKinds()
}

func initializeBuiltInKinds() {
	MustRegister(KindConstant, newConstant)
	MustRegister(KindCounter, newCounter)
	MustRegister(KindIdentity, newIdentity)
	MustRegister(KindScale, newScale)
	MustRegister(KindSum, newSum)
	MustRegister(KindActivate, newActivate)
}

func Register(kind string, factory Factory) error {
	if kind == "" {
		return errors.New("region kind is required")
	}
	if factory == nil {
		return errors.New("region factory is required")
	}

	kindRegistry.mu.Lock()
	defer kindRegistry.mu.Unlock()
	if _, exists := kindRegistry.m[kind]; exists {
		return fmt.Errorf("%w: %s", ErrKindExists, kind)
	}
	kindRegistry.m[kind] = factory
	return nil
}

func MustRegister(kind string, factory Factory) {
	if err := Register(kind, factory); err != nil {
		panic(err)
	}
}

// New resolves kind and builds an implementation from cfg.
func New(kind string, cfg Config) (engine.Impl, error) {
	kindRegistry.mu.RLock()
	factory, ok := kindRegistry.m[kind]
	kindRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKindNotFound, kind)
	}
	if cfg.Type == array.Invalid {
		cfg.Type = array.Real32
	}
	if cfg.Width == 0 {
		cfg.Width = 1
	}
	if cfg.Width < 0 {
		return nil, fmt.Errorf("%w: %s width must be > 0, got=%d", ErrBadConfig, kind, cfg.Width)
	}
	return factory(cfg)
}

func List() []string {
	kindRegistry.mu.RLock()
	defer kindRegistry.mu.RUnlock()

	names := make([]string, 0, len(kindRegistry.m))
	for name := range kindRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetRegistryForTests() {
	kindRegistry.mu.Lock()
	kindRegistry.m = make(map[string]Factory)
	kindRegistry.mu.Unlock()
	initializeBuiltInKinds()
}
