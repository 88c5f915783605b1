package hal

import (
	"fmt"
	"sync"
)

// DiscoverFunc enumerates the physically present boards of one kind.
type DiscoverFunc func() ([]Board, error)

// Registry maps board kinds to the discovery function of their chosen
// backend. It is an explicit object handed to the application's setup code
// so tests can substitute fake registries without global teardown.
type Registry struct {
	mu    sync.RWMutex
	kinds []string
	funcs map[string]DiscoverFunc
}

func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]DiscoverFunc),
	}
}

// Register installs the discovery function for a board kind. It panics on
// duplicate registration to catch wiring mistakes at start-up.
func (reg *Registry) Register(kind string, f DiscoverFunc) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if kind == "" {
		panic("hal: empty board kind")
	}
	if _, dup := reg.funcs[kind]; dup {
		panic(fmt.Errorf("hal: duplicate backend registered for %q", kind))
	}
	reg.kinds = append(reg.kinds, kind)
	reg.funcs[kind] = f
}

// Kinds returns the registered board kinds in registration order.
func (reg *Registry) Kinds() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	kinds := make([]string, len(reg.kinds))
	copy(kinds, reg.kinds)
	return kinds
}

// Discover runs the registered backend's discovery for one board kind.
func (reg *Registry) Discover(kind string) (*Group[Board], error) {
	reg.mu.RLock()
	f, ok := reg.funcs[kind]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("hal: no backend registered for %q", kind)
	}
	return DiscoverGroup(kind, f)
}

// DiscoverAll discovers every registered board kind, in registration order.
// Discovery against a shared transport is not safe to run concurrently, so
// kinds are discovered one after the other.
func (reg *Registry) DiscoverAll() (map[string]*Group[Board], error) {
	groups := make(map[string]*Group[Board])
	for _, kind := range reg.Kinds() {
		group, err := reg.Discover(kind)
		if err != nil {
			return nil, err
		}
		groups[kind] = group
	}
	return groups, nil
}

// AsBoards adapts a typed discovery function to a DiscoverFunc.
func AsBoards[T Board](f func() ([]T, error)) DiscoverFunc {
	return func() ([]Board, error) {
		typed, err := f()
		if err != nil {
			return nil, err
		}
		boards := make([]Board, len(typed))
		for i, b := range typed {
			boards[i] = b
		}
		return boards, nil
	}
}
