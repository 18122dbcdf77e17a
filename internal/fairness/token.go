package fairness

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeToken renders a record as a single copyable string: base64 of its
// JSON, with each character written as one Latin-1 byte.
func EncodeToken(rec Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	b, err := latin1Bytes(string(data))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeToken is the inverse of EncodeToken.
func DecodeToken(token string) (Record, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return Record{}, fmt.Errorf("decode token: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(latin1String(raw)), &rec); err != nil {
		return Record{}, fmt.Errorf("parse token: %w", err)
	}
	return rec, nil
}

// latin1Bytes maps each rune to a single byte, failing on runes above U+00FF.
func latin1Bytes(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0xFF {
			return nil, fmt.Errorf("%w: character %q at offset %d is outside Latin-1", ErrUnencodable, r, i)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

func latin1String(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
