package regions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"regionnet/internal/engine"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
)

const defaultSaturationLimit = 1000.0

type ActivationFunc func(x float64) float64

var activationRegistry = struct {
	mu sync.RWMutex
	m  map[string]ActivationFunc
}{
	m: make(map[string]ActivationFunc),
}

func init() {
	for name, fn := range builtInActivations() {
		MustRegisterActivation(name, fn)
	}
}

func builtInActivations() map[string]ActivationFunc {
	return map[string]ActivationFunc{
		"identity": func(x float64) float64 { return x },
		"relu":     func(x float64) float64 { return math.Max(x, 0) },
		"tanh":     math.Tanh,
		"sigmoid":  func(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) },
		"sign": func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		},
	}
}

func RegisterActivation(name string, fn ActivationFunc) error {
	if name == "" {
		return errors.New("activation name is required")
	}
	if fn == nil {
		return errors.New("activation function is required")
	}

	activationRegistry.mu.Lock()
	defer activationRegistry.mu.Unlock()
	if _, exists := activationRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrActivationExists, name)
	}
	activationRegistry.m[name] = fn
	return nil
}

func MustRegisterActivation(name string, fn ActivationFunc) {
	if err := RegisterActivation(name, fn); err != nil {
		panic(err)
	}
}

func GetActivation(name string) (ActivationFunc, error) {
	activationRegistry.mu.RLock()
	fn, ok := activationRegistry.m[name]
	activationRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActivationNotFound, name)
	}
	return fn, nil
}

func ListActivations() []string {
	activationRegistry.mu.RLock()
	defer activationRegistry.mu.RUnlock()

	names := make([]string, 0, len(activationRegistry.m))
	for name := range activationRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Saturate clamps value to [-spread, spread].
func Saturate(value, spread float64) float64 {
	if spread < 0 {
		spread = -spread
	}
	if value > spread {
		return spread
	}
	if value < -spread {
		return -spread
	}
	return value
}

// activate applies a named activation to bias + each concatenated input
// element and saturates the result.
type activate struct {
	spec   engine.PortSpec
	fn     ActivationFunc
	bias   float64
	spread float64
}

func newActivate(cfg Config) (engine.Impl, error) {
	if !cfg.RegionLevel {
		return nil, fmt.Errorf("%w: activate output must be region level", ErrBadConfig)
	}
	name := cfg.Activation
	if name == "" {
		name = "identity"
	}
	fn, err := GetActivation(name)
	if err != nil {
		return nil, err
	}
	return &activate{
		spec:   filterSpec(cfg),
		fn:     fn,
		bias:   cfg.param("bias", 0),
		spread: cfg.param("saturation", defaultSaturationLimit),
	}, nil
}

func (a *activate) Spec() engine.PortSpec {
	return a.spec
}

func (a *activate) Compute(_ context.Context, region *engine.Region, _ int) error {
	values, err := gather(region)
	if err != nil {
		return err
	}
	w, err := region.Writer(OutputName)
	if err != nil {
		return err
	}
	for i := 0; i < w.Count(); i++ {
		x := a.bias
		if i < len(values) {
			x += values[i]
		}
		if err := w.Set(i, Saturate(a.fn(x), a.spread)); err != nil {
			return err
		}
	}
	return nil
}
