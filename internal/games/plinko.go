package games

var plinkoRows = ParamSpec{Name: "rows", Default: 8, Min: 1, Max: 64}

// PlinkoGame picks the landing slot in [0, rows].
type PlinkoGame struct{}

// Spec returns metadata about the Plinko game.
func (g *PlinkoGame) Spec() GameSpec {
	return GameSpec{
		ID:          "plinko",
		Name:        "Plinko",
		MetricLabel: "slot",
		Params:      []ParamSpec{plinkoRows},
	}
}

func (g *PlinkoGame) Validate(params Params) error {
	_, err := params.intInRange(plinkoRows)
	return err
}

// Outcome uses a single draw: floor(r * (rows+1)).
func (g *PlinkoGame) Outcome(draws Draws, params Params) (Outcome, error) {
	rows, err := params.intInRange(plinkoRows)
	if err != nil {
		return Outcome{}, err
	}
	return Scalar(bucket(draws.Next(), rows+1)), nil
}
