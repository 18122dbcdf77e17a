package fairness

import "github.com/MJE43/pf-fairness-engine/internal/games"

// Record is a generated game result together with the values that let anyone
// holding the signing key check it later. Field order is part of the token format.
type Record struct {
	Result    games.Outcome `json:"result"`
	Hash      string        `json:"hash"`
	Seed      string        `json:"seed"`
	Timestamp int64         `json:"timestamp"`
	Signature string        `json:"signature"`
}
