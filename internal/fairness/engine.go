package fairness

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/coder/quartz"

	"github.com/MJE43/pf-fairness-engine/internal/games"
)

// Engine generates signed game records and verifies them. It holds no mutable
// state beyond the entropy reader and is safe for concurrent use.
type Engine struct {
	registry   *games.Registry
	clock      quartz.Clock
	signer     Signer
	derivation games.Derivation

	entropyMu sync.Mutex
	entropy   io.Reader
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default slot/keno/plinko/spin registry.
func WithRegistry(r *games.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithClock sets the clock used for record timestamps.
func WithClock(c quartz.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithEntropy sets the source seeds are drawn from. Defaults to crypto/rand.
func WithEntropy(r io.Reader) Option {
	return func(e *Engine) { e.entropy = r }
}

// WithSigner replaces the LegacySigner built from the key.
func WithSigner(s Signer) Option {
	return func(e *Engine) { e.signer = s }
}

// WithDerivation selects how multi-draw games read the seed.
func WithDerivation(d games.Derivation) Option {
	return func(e *Engine) { e.derivation = d }
}

// New creates an engine signing with key.
func New(key string, opts ...Option) (*Engine, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	if _, err := latin1Bytes(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	e := &Engine{
		clock:      quartz.NewReal(),
		signer:     LegacySigner{Key: key},
		derivation: games.DerivationStream,
		entropy:    rand.Reader,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = games.DefaultRegistry()
	}

	if _, err := e.newSeed(); err != nil {
		return nil, err
	}
	return e, nil
}

// Registry returns the games this engine can generate.
func (e *Engine) Registry() *games.Registry { return e.registry }

// Derivation returns the configured draw derivation.
func (e *Engine) Derivation() games.Derivation { return e.derivation }

// Generate produces a fresh signed record for gameType.
func (e *Engine) Generate(gameType string, params games.Params) (Record, error) {
	game, err := e.registry.Lookup(gameType)
	if err != nil {
		return Record{}, err
	}
	if err := game.Validate(params); err != nil {
		return Record{}, err
	}

	seed, err := e.newSeed()
	if err != nil {
		return Record{}, err
	}
	timestamp := e.clock.Now().UnixMilli()

	result, err := game.Outcome(games.NewDraws(seed, e.derivation), params)
	if err != nil {
		return Record{}, fmt.Errorf("%s outcome for seed %s: %w", gameType, seed, err)
	}

	hash, err := Digest(result, seed, timestamp)
	if err != nil {
		return Record{}, err
	}
	signature, err := e.signer.Sign(hash)
	if err != nil {
		return Record{}, fmt.Errorf("sign record: %w", err)
	}

	return Record{
		Result:    result,
		Hash:      hash,
		Seed:      seed,
		Timestamp: timestamp,
		Signature: signature,
	}, nil
}

// Verify reports whether rec's hash matches its contents and its signature
// matches the hash under this engine's signer.
func (e *Engine) Verify(rec Record) bool {
	if rec.Result.IsZero() {
		return false
	}
	hash, err := Digest(rec.Result, rec.Seed, rec.Timestamp)
	if err != nil || !equalStrings(hash, rec.Hash) {
		return false
	}
	signature, err := e.signer.Sign(rec.Hash)
	if err != nil {
		return false
	}
	return equalStrings(signature, rec.Signature)
}

// VerificationData returns the record's portable token.
func (e *Engine) VerificationData(rec Record) (string, error) {
	return EncodeToken(rec)
}

// VerifyToken decodes a token and verifies the record inside it. Malformed
// tokens verify as false.
func (e *Engine) VerifyToken(token string) bool {
	rec, err := DecodeToken(token)
	if err != nil {
		return false
	}
	return e.Verify(rec)
}

// Replay re-derives the outcome gameType produces for seed.
func (e *Engine) Replay(gameType string, params games.Params, seed string) (games.Outcome, error) {
	game, err := e.registry.Lookup(gameType)
	if err != nil {
		return games.Outcome{}, err
	}
	if err := game.Validate(params); err != nil {
		return games.Outcome{}, err
	}
	return game.Outcome(games.NewDraws(seed, e.derivation), params)
}

// VerifyOutcome is Verify plus a check that rec.Result is the outcome the
// seed actually yields for gameType and params.
func (e *Engine) VerifyOutcome(gameType string, params games.Params, rec Record) bool {
	if !e.Verify(rec) {
		return false
	}
	replayed, err := e.Replay(gameType, params, rec.Seed)
	if err != nil {
		return false
	}
	return replayed.Equal(rec.Result)
}

// newSeed draws a uint32 and renders it in base 36.
func (e *Engine) newSeed() (string, error) {
	var b [4]byte
	e.entropyMu.Lock()
	_, err := io.ReadFull(e.entropy, b[:])
	e.entropyMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRandomSourceUnavailable, err)
	}
	return strconv.FormatUint(uint64(binary.BigEndian.Uint32(b[:])), 36), nil
}

func equalStrings(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
