package games

import (
	"fmt"
	"sort"
)

const (
	KenoSquares = 80

	// MaxKenoDraws bounds the fill loop so a repeating draw source cannot spin forever.
	MaxKenoDraws = 10_000
)

var kenoPicks = ParamSpec{Name: "picks", Default: 20, Min: 1, Max: KenoSquares}

// KenoGame draws a sorted set of distinct numbers in [1, 80].
type KenoGame struct{}

// Spec returns metadata about the Keno game
func (g *KenoGame) Spec() GameSpec {
	return GameSpec{
		ID:          "keno",
		Name:        "Keno",
		MetricLabel: "numbers",
		Params:      []ParamSpec{kenoPicks},
	}
}

func (g *KenoGame) Validate(params Params) error {
	_, err := params.intInRange(kenoPicks)
	return err
}

// Outcome inserts floor(r*80)+1 for successive draws until the set holds
// picks numbers, then returns it in ascending order.
func (g *KenoGame) Outcome(draws Draws, params Params) (Outcome, error) {
	picks, err := params.intInRange(kenoPicks)
	if err != nil {
		return Outcome{}, err
	}

	seen := make(map[int]bool, picks)
	numbers := make([]int, 0, picks)
	for drawn := 0; len(numbers) < picks; drawn++ {
		if drawn == MaxKenoDraws {
			return Outcome{}, fmt.Errorf("%w: keno filled %d of %d picks after %d draws",
				ErrDegenerateDraw, len(numbers), picks, drawn)
		}
		n := bucket(draws.Next(), KenoSquares) + 1
		if seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}

	sort.Ints(numbers)
	return Sequence(numbers), nil
}
