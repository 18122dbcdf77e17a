package fairness

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Signer turns a record hash into its signature.
type Signer interface {
	Sign(hash string) (string, error)
}

// LegacySigner reproduces the browser engine's signature: standard base64 of
// hash+key. Anyone who sees one signature can strip the hash prefix and read
// the key, so it only proves the record was not edited by someone who never
// saw a signature.
type LegacySigner struct {
	Key string
}

func (s LegacySigner) Sign(hash string) (string, error) {
	b, err := latin1Bytes(hash + s.Key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// HMACSigner signs with hex HMAC-SHA256 keyed by Key. Records keep the same
// shape; only the signature text changes.
type HMACSigner struct {
	Key []byte
}

func (s HMACSigner) Sign(hash string) (string, error) {
	if len(s.Key) == 0 {
		return "", fmt.Errorf("%w: empty hmac key", ErrInvalidKey)
	}
	mac := hmac.New(sha256.New, s.Key)
	mac.Write([]byte(hash))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
