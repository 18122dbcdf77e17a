package games

const slotSymbols = 10

var slotReels = ParamSpec{Name: "reels", Default: 3, Min: 1, Max: 100}

// SlotGame draws one symbol in [0, 10) per reel.
type SlotGame struct{}

// Spec returns metadata about the slot game
func (g *SlotGame) Spec() GameSpec {
	return GameSpec{
		ID:          "slot",
		Name:        "Slot",
		MetricLabel: "symbols",
		Params:      []ParamSpec{slotReels},
	}
}

func (g *SlotGame) Validate(params Params) error {
	_, err := params.intInRange(slotReels)
	return err
}

// Outcome fills each reel from the next draw.
func (g *SlotGame) Outcome(draws Draws, params Params) (Outcome, error) {
	reels, err := params.intInRange(slotReels)
	if err != nil {
		return Outcome{}, err
	}

	symbols := make([]int, reels)
	for i := range symbols {
		symbols[i] = bucket(draws.Next(), slotSymbols)
	}
	return Sequence(symbols), nil
}
