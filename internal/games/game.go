package games

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	ErrUnsupportedGameType = errors.New("unsupported game type")
	ErrInvalidParameters   = errors.New("invalid parameters")
	ErrDegenerateDraw      = errors.New("degenerate draw")
)

// GameSpec describes a registered game.
type GameSpec struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	MetricLabel string      `json:"metric_label"`
	Params      []ParamSpec `json:"params,omitempty"`
}

// ParamSpec describes one optional integer parameter of a game.
type ParamSpec struct {
	Name    string `json:"name"`
	Default int    `json:"default"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
}

// Game produces an outcome from a draw source.
type Game interface {
	Spec() GameSpec
	// Validate checks params without consuming any draws.
	Validate(params Params) error
	Outcome(draws Draws, params Params) (Outcome, error)
}

// Registry maps game identifiers to their generators.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

// NewRegistry creates a registry holding the given games.
func NewRegistry(games ...Game) (*Registry, error) {
	r := &Registry{games: make(map[string]Game, len(games))}
	for _, g := range games {
		if err := r.Register(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry with slot, keno, plinko and spin.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(&SlotGame{}, &KenoGame{}, &PlinkoGame{}, &SpinGame{})
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a game. Identifiers must be unique.
func (r *Registry) Register(g Game) error {
	id := g.Spec().ID
	if id == "" {
		return fmt.Errorf("game has empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[id]; exists {
		return fmt.Errorf("game %q already registered", id)
	}
	r.games[id] = g
	return nil
}

// Get retrieves a game by identifier.
func (r *Registry) Get(id string) (Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	return g, ok
}

// Lookup is Get with ErrUnsupportedGameType for unknown identifiers.
func (r *Registry) Lookup(id string) (Game, error) {
	g, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGameType, id)
	}
	return g, nil
}

// List returns the specs of all registered games sorted by ID.
func (r *Registry) List() []GameSpec {
	r.mu.RLock()
	specs := make([]GameSpec, 0, len(r.games))
	for _, g := range r.games {
		specs = append(specs, g.Spec())
	}
	r.mu.RUnlock()

	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

// bucket maps a fraction in [0, 1) onto 0..n-1.
func bucket(f float64, n int) int {
	idx := int(math.Floor(f * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
