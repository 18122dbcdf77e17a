package games

// SpinPockets is the number of wheel pockets, 0 through 36.
const SpinPockets = 37

// SpinGame lands the wheel on a pocket in [0, 36].
type SpinGame struct{}

// Spec returns metadata about the spin wheel
func (g *SpinGame) Spec() GameSpec {
	return GameSpec{
		ID:          "spin",
		Name:        "Spin",
		MetricLabel: "pocket",
	}
}

// Validate accepts any params; spin has no options.
func (g *SpinGame) Validate(params Params) error { return nil }

func (g *SpinGame) Outcome(draws Draws, params Params) (Outcome, error) {
	return Scalar(bucket(draws.Next(), SpinPockets)), nil
}
