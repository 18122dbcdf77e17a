package games

import (
	"fmt"
	"strings"

	"github.com/MJE43/pf-fairness-engine/internal/engine"
)

// Draws supplies the fractions a game consumes.
type Draws interface {
	Next() float64
}

// Derivation selects how multiple draws are derived from one seed.
type Derivation int

const (
	// DerivationStream gives every draw its own value from the seed's stream.
	DerivationStream Derivation = iota
	// DerivationSingle repeats the seed's first fraction for every draw. This is
	// the browser engine's behaviour: slot reels are all equal and keno cannot
	// fill more than one pick.
	DerivationSingle
)

func (d Derivation) String() string {
	switch d {
	case DerivationStream:
		return "stream"
	case DerivationSingle:
		return "single"
	default:
		return fmt.Sprintf("derivation(%d)", int(d))
	}
}

// ParseDerivation parses "stream" or "single".
func ParseDerivation(s string) (Derivation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stream":
		return DerivationStream, nil
	case "single":
		return DerivationSingle, nil
	default:
		return 0, fmt.Errorf("unknown derivation %q (want stream or single)", s)
	}
}

// NewDraws returns the draw source for seed under the given derivation.
func NewDraws(seed string, d Derivation) Draws {
	if d == DerivationSingle {
		return singleDraw(engine.SeededRandom(seed))
	}
	return engine.NewStream(seed)
}

type singleDraw float64

func (s singleDraw) Next() float64 { return float64(s) }
