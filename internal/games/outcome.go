package games

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxSafeInteger is the largest integer a JSON consumer in a browser can hold exactly.
const maxSafeInteger = 1<<53 - 1

// Outcome is a game result: a single integer or an ordered sequence of integers.
// The zero value holds no result.
type Outcome struct {
	values []int
	seq    bool
}

// Scalar returns a single-integer outcome.
func Scalar(v int) Outcome {
	return Outcome{values: []int{v}}
}

// Sequence returns a sequence outcome holding a copy of vs.
func Sequence(vs []int) Outcome {
	return Outcome{values: append(make([]int, 0, len(vs)), vs...), seq: true}
}

func (o Outcome) IsZero() bool     { return o.values == nil && !o.seq }
func (o Outcome) IsSequence() bool { return o.seq }

// Int returns the scalar value, or 0 for sequences.
func (o Outcome) Int() int {
	if o.seq || len(o.values) == 0 {
		return 0
	}
	return o.values[0]
}

// Ints returns a copy of the values. A scalar yields a one-element slice.
func (o Outcome) Ints() []int {
	return append([]int(nil), o.values...)
}

func (o Outcome) Len() int { return len(o.values) }

// Equal reports whether both outcomes have the same shape and values.
func (o Outcome) Equal(p Outcome) bool {
	if o.seq != p.seq || len(o.values) != len(p.values) || o.IsZero() != p.IsZero() {
		return false
	}
	for i := range o.values {
		if o.values[i] != p.values[i] {
			return false
		}
	}
	return true
}

func (o Outcome) String() string {
	switch {
	case o.IsZero():
		return "<none>"
	case !o.seq:
		return strconv.Itoa(o.values[0])
	}
	parts := make([]string, len(o.values))
	for i, v := range o.values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// MarshalJSON renders a number for scalars and an array for sequences.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.IsZero() {
		return []byte("null"), nil
	}
	if !o.seq {
		return []byte(strconv.Itoa(o.values[0])), nil
	}
	if o.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o.values)
}

// UnmarshalJSON accepts an integral number or an array of integral numbers.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("outcome: %w", err)
	}

	switch v := raw.(type) {
	case json.Number:
		n, err := integral(v)
		if err != nil {
			return fmt.Errorf("outcome: %w", err)
		}
		*o = Scalar(n)
	case []any:
		values := make([]int, len(v))
		for i, item := range v {
			num, ok := item.(json.Number)
			if !ok {
				return fmt.Errorf("outcome index %d: expected number, got %T", i, item)
			}
			n, err := integral(num)
			if err != nil {
				return fmt.Errorf("outcome index %d: %w", i, err)
			}
			values[i] = n
		}
		*o = Outcome{values: values, seq: true}
	default:
		return fmt.Errorf("outcome: expected number or array, got %T", raw)
	}
	return nil
}

// integral converts a JSON number that denotes an exact integer. 7.0 is
// accepted because a browser serializes it as 7.
func integral(n json.Number) (int, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		if i > maxSafeInteger || i < -maxSafeInteger {
			return 0, fmt.Errorf("number %s out of range", n)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", n.String())
	}
	if math.Trunc(f) != f || math.Abs(f) > maxSafeInteger {
		return 0, fmt.Errorf("number %s is not an integer", n)
	}
	return int(f), nil
}
