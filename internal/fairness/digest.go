package fairness

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gowebpki/jcs"

	"github.com/MJE43/pf-fairness-engine/internal/engine"
	"github.com/MJE43/pf-fairness-engine/internal/games"
)

// digestInput is serialized in the same key order a browser's JSON.stringify
// produces for {result, seed, timestamp}. The order also happens to be sorted,
// so the canonical form matches byte for byte.
type digestInput struct {
	Result    games.Outcome `json:"result"`
	Seed      string        `json:"seed"`
	Timestamp int64         `json:"timestamp"`
}

// CanonicalPayload returns the exact text the integrity hash is computed over.
func CanonicalPayload(result games.Outcome, seed string, timestamp int64) (string, error) {
	raw, err := json.Marshal(digestInput{Result: result, Seed: seed, Timestamp: timestamp})
	if err != nil {
		return "", fmt.Errorf("marshal digest input: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize digest input: %w", err)
	}
	return string(canonical), nil
}

// Digest computes the record hash: the 32-bit rolling hash of the canonical
// payload, rendered as signed lower-case hex.
func Digest(result games.Outcome, seed string, timestamp int64) (string, error) {
	payload, err := CanonicalPayload(result, seed, timestamp)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(int64(engine.RollingHash(payload)), 16), nil
}
