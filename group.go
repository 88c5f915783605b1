package hal

import "fmt"

// Group is a typed collection of the boards of one kind found by a single
// discovery call, keyed by serial number in discovery order. A group is
// immutable once built; re-discovering produces a fresh group.
type Group[T Board] struct {
	kind    string
	serials []string
	boards  map[string]T
}

// NewGroup organizes discovered boards into a group. Duplicate serial
// numbers are ambiguous hardware and fail the call with *AmbiguityError.
func NewGroup[T Board](kind string, boards []T) (*Group[T], error) {
	g := &Group[T]{
		kind:    kind,
		serials: make([]string, 0, len(boards)),
		boards:  make(map[string]T, len(boards)),
	}
	for _, board := range boards {
		serial := board.SerialNumber()
		if _, dup := g.boards[serial]; dup {
			return nil, &AmbiguityError{Kind: kind, Serial: serial}
		}
		g.serials = append(g.serials, serial)
		g.boards[serial] = board
	}
	return g, nil
}

// DiscoverGroup runs a driver's discovery function and groups the result.
func DiscoverGroup[T Board](kind string, discover func() ([]T, error)) (*Group[T], error) {
	boards, err := discover()
	if err != nil {
		return nil, fmt.Errorf("hal: discovering %s boards: %w", kind, err)
	}
	return NewGroup(kind, boards)
}

// Kind returns the board kind this group was discovered for.
func (g *Group[T]) Kind() string { return g.kind }

// Len returns the number of boards in the group.
func (g *Group[T]) Len() int { return len(g.serials) }

// Contains reports whether a board with the given serial number was found.
func (g *Group[T]) Contains(serial string) bool {
	_, ok := g.boards[serial]
	return ok
}

// Boards returns the boards in discovery order.
func (g *Group[T]) Boards() []T {
	boards := make([]T, len(g.serials))
	for i, serial := range g.serials {
		boards[i] = g.boards[serial]
	}
	return boards
}

// Get returns the board with the given serial number.
func (g *Group[T]) Get(serial string) (T, error) {
	board, ok := g.boards[serial]
	if !ok {
		return board, &BoardNotFoundError{Kind: g.kind, Serial: serial}
	}
	return board, nil
}

// Singular returns the sole board in the group, failing with
// *BoardCountError when there are zero or several boards connected.
func (g *Group[T]) Singular() (T, error) {
	if len(g.serials) != 1 {
		var zero T
		return zero, &BoardCountError{Kind: g.kind, Count: len(g.serials)}
	}
	return g.boards[g.serials[0]], nil
}

// MakeSafe makes every board in the group safe, best-effort.
func (g *Group[T]) MakeSafe() error {
	var errs []error
	for _, serial := range g.serials {
		if err := g.boards[serial].MakeSafe(); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", g.kind, serial, err))
		}
	}
	return Safety(errs)
}

// DistinctSerials verifies that no two discovered boards report the same
// serial number. Drivers call this before returning from discovery so an
// ambiguous result never leaks out as a partial one.
func DistinctSerials[T Board](kind string, boards []T) error {
	seen := make(map[string]bool, len(boards))
	for _, board := range boards {
		serial := board.SerialNumber()
		if seen[serial] {
			return &AmbiguityError{Kind: kind, Serial: serial}
		}
		seen[serial] = true
	}
	return nil
}
