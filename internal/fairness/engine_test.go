package fairness

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/pf-fairness-engine/internal/games"
)

const testKey = "your-server-key"

type referenceRecord struct {
	Canonical string          `json:"canonical"`
	Record    json.RawMessage `json:"record"`
	Token     string          `json:"token"`
}

func loadReferenceRecords(t *testing.T) (string, []referenceRecord) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "reference_vectors.json"))
	require.NoError(t, err)

	var file struct {
		Key     string            `json:"key"`
		Records []referenceRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &file))
	require.NotEmpty(t, file.Records)
	return file.Key, file.Records
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(testKey, opts...)
	require.NoError(t, err)
	return e
}

func TestReferenceRecords(t *testing.T) {
	key, vectors := loadReferenceRecords(t)
	e := newTestEngine(t)
	require.Equal(t, testKey, key)

	for _, v := range vectors {
		t.Run(v.Canonical, func(t *testing.T) {
			var rec Record
			require.NoError(t, json.Unmarshal(v.Record, &rec))

			payload, err := CanonicalPayload(rec.Result, rec.Seed, rec.Timestamp)
			require.NoError(t, err)
			assert.Equal(t, v.Canonical, payload)

			hash, err := Digest(rec.Result, rec.Seed, rec.Timestamp)
			require.NoError(t, err)
			assert.Equal(t, rec.Hash, hash)

			sig, err := LegacySigner{Key: key}.Sign(rec.Hash)
			require.NoError(t, err)
			assert.Equal(t, rec.Signature, sig)

			token, err := e.VerificationData(rec)
			require.NoError(t, err)
			assert.Equal(t, v.Token, token)

			assert.True(t, e.Verify(rec))
			assert.True(t, e.VerifyToken(v.Token))

			decoded, err := DecodeToken(v.Token)
			require.NoError(t, err)
			assert.True(t, decoded.Result.Equal(rec.Result))
			assert.Equal(t, rec.Seed, decoded.Seed)
			assert.Equal(t, rec.Timestamp, decoded.Timestamp)
		})
	}
}

func TestGenerateUsesClockAndEntropy(t *testing.T) {
	clock := quartz.NewMock(t)
	clock.Set(time.UnixMilli(1700000000000))

	entropy := bytes.NewReader([]byte{0, 0, 0, 0, 0xDE, 0xAD, 0xBE, 0xEF, 0xFF, 0xFF, 0xFF, 0xFF})
	e := newTestEngine(t, WithClock(clock), WithEntropy(entropy))

	rec, err := e.Generate("spin", nil)
	require.NoError(t, err)
	assert.Equal(t, "1ps9wxb", rec.Seed)
	assert.Equal(t, int64(1700000000000), rec.Timestamp)
	assert.True(t, e.Verify(rec))

	replayed, err := e.Replay("spin", nil, rec.Seed)
	require.NoError(t, err)
	assert.True(t, replayed.Equal(rec.Result))

	clock.Set(time.UnixMilli(1700000000500))
	rec, err = e.Generate("plinko", games.Params{"rows": 8})
	require.NoError(t, err)
	assert.Equal(t, "1z141z3", rec.Seed)
	assert.Equal(t, int64(1700000000500), rec.Timestamp)

	// Entropy is exhausted now.
	_, err = e.Generate("spin", nil)
	assert.ErrorIs(t, err, ErrRandomSourceUnavailable)
}

func TestGenerateRanges(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 200; i++ {
		rec, err := e.Generate("plinko", games.Params{"rows": 8})
		require.NoError(t, err)
		require.False(t, rec.Result.IsSequence())
		assert.GreaterOrEqual(t, rec.Result.Int(), 0)
		assert.LessOrEqual(t, rec.Result.Int(), 8)

		rec, err = e.Generate("spin", games.Params{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.Result.Int(), 0)
		assert.LessOrEqual(t, rec.Result.Int(), 36)

		rec, err = e.Generate("keno", games.Params{"picks": 20})
		require.NoError(t, err)
		picks := rec.Result.Ints()
		require.Len(t, picks, 20)
		for j, n := range picks {
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, 80)
			if j > 0 {
				assert.Less(t, picks[j-1], n)
			}
		}

		rec, err = e.Generate("slot", games.Params{"reels": 3})
		require.NoError(t, err)
		reels := rec.Result.Ints()
		require.Len(t, reels, 3)
		for _, n := range reels {
			assert.GreaterOrEqual(t, n, 0)
			assert.LessOrEqual(t, n, 9)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	e := newTestEngine(t)

	rec, err := e.Generate("roulette-xyz", games.Params{})
	assert.ErrorIs(t, err, ErrUnsupportedGameType)
	assert.Equal(t, Record{}, rec)

	rec, err = e.Generate("plinko", games.Params{"rows": "eight"})
	assert.ErrorIs(t, err, ErrInvalidParameters)
	assert.Equal(t, Record{}, rec)

	_, err = e.Generate("keno", games.Params{"picks": 81})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestTamperDetection(t *testing.T) {
	e := newTestEngine(t)
	rec, err := e.Generate("slot", games.Params{"reels": 5})
	require.NoError(t, err)
	require.True(t, e.Verify(rec))

	reels := rec.Result.Ints()
	reels[0] = (reels[0] + 1) % 10

	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{"result", func(r *Record) { r.Result = games.Sequence(reels) }},
		{"result shape", func(r *Record) { r.Result = games.Scalar(reels[1]) }},
		{"missing result", func(r *Record) { r.Result = games.Outcome{} }},
		{"seed", func(r *Record) { r.Seed += "0" }},
		{"timestamp", func(r *Record) { r.Timestamp++ }},
		{"hash", func(r *Record) { r.Hash = "deadbeef" }},
		{"signature", func(r *Record) { r.Signature = "AAAA" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := rec
			tt.mutate(&tampered)
			assert.False(t, e.Verify(tampered))
		})
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	e := newTestEngine(t)

	for _, token := range []string{
		"not-valid-base64!!!",
		"",
		"e30=",                 // {}
		"bnVsbA==",             // null
		"eyJyZXN1bHQiOiI3In0=", // {"result":"7"}
	} {
		assert.False(t, e.VerifyToken(token), "token %q", token)
	}

	_, err := DecodeToken("not-valid-base64!!!")
	assert.Error(t, err)
}

func TestCrossKeyRejected(t *testing.T) {
	a := newTestEngine(t)
	b, err := New("another-key")
	require.NoError(t, err)

	rec, err := a.Generate("keno", nil)
	require.NoError(t, err)
	assert.True(t, a.Verify(rec))
	assert.False(t, b.Verify(rec))

	token, err := a.VerificationData(rec)
	require.NoError(t, err)
	assert.False(t, b.VerifyToken(token))
}

func TestNewValidatesKeyAndEntropy(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = New("ключ")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = New("clé")
	assert.NoError(t, err, "Latin-1 keys are accepted")

	_, err = New(testKey, WithEntropy(failingReader{}))
	assert.ErrorIs(t, err, ErrRandomSourceUnavailable)

	_, err = New(testKey, WithEntropy(bytes.NewReader([]byte{1, 2})))
	assert.ErrorIs(t, err, ErrRandomSourceUnavailable)
}

func TestSingleDerivation(t *testing.T) {
	e := newTestEngine(t, WithDerivation(games.DerivationSingle))
	assert.Equal(t, games.DerivationSingle, e.Derivation())

	rec, err := e.Generate("slot", games.Params{"reels": 4})
	require.NoError(t, err)
	reels := rec.Result.Ints()
	for _, n := range reels {
		assert.Equal(t, reels[0], n)
	}
	assert.True(t, e.VerifyOutcome("slot", games.Params{"reels": 4}, rec))

	_, err = e.Generate("keno", games.Params{"picks": 20})
	assert.ErrorIs(t, err, ErrDegenerateDraw)

	rec, err = e.Generate("keno", games.Params{"picks": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Result.Len())
}

func TestHMACSigner(t *testing.T) {
	signer := HMACSigner{Key: []byte("hmac-secret")}
	e := newTestEngine(t, WithSigner(signer))
	legacy := newTestEngine(t)

	rec, err := e.Generate("plinko", nil)
	require.NoError(t, err)
	assert.Len(t, rec.Signature, 64)
	assert.True(t, e.Verify(rec))
	assert.False(t, legacy.Verify(rec))

	token, err := e.VerificationData(rec)
	require.NoError(t, err)
	assert.True(t, e.VerifyToken(token))

	_, err = HMACSigner{}.Sign("abc")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestVerifyOutcome(t *testing.T) {
	e := newTestEngine(t)
	params := games.Params{"picks": 10}

	rec, err := e.Generate("keno", params)
	require.NoError(t, err)
	assert.True(t, e.VerifyOutcome("keno", params, rec))
	assert.False(t, e.VerifyOutcome("keno", games.Params{"picks": 11}, rec))
	assert.False(t, e.VerifyOutcome("roulette-xyz", params, rec))

	// A holder of the key can re-sign any result; only replay catches it.
	forged := rec
	forged.Result = games.Sequence([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	forged.Hash, err = Digest(forged.Result, forged.Seed, forged.Timestamp)
	require.NoError(t, err)
	forged.Signature, err = LegacySigner{Key: testKey}.Sign(forged.Hash)
	require.NoError(t, err)

	assert.True(t, e.Verify(forged))
	assert.False(t, e.VerifyOutcome("keno", params, forged))
}

func TestVerificationDataUnencodable(t *testing.T) {
	e := newTestEngine(t)
	rec := Record{Result: games.Scalar(1), Hash: "1", Seed: "😀", Timestamp: 1, Signature: "x"}

	_, err := e.VerificationData(rec)
	assert.ErrorIs(t, err, ErrUnencodable)

	rec.Seed = "ü"
	token, err := e.VerificationData(rec)
	require.NoError(t, err)
	decoded, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ü", decoded.Seed)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy pool closed") }
