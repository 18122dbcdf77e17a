package games

import (
	"encoding/json"
	"fmt"
	"math"
)

// Params carries game options as decoded from JSON.
type Params map[string]any

// Int reads an integer option. Missing, nil and zero values select def, the
// same way the browser engine's `params.x || def` does.
func (p Params) Int(key string, def int) (int, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}

	var v int
	switch n := raw.(type) {
	case int:
		v = n
	case int8:
		v = int(n)
	case int16:
		v = int(n)
	case int32:
		v = int(n)
	case int64:
		v = int(n)
	case uint:
		v = int(n)
	case uint8:
		v = int(n)
	case uint16:
		v = int(n)
	case uint32:
		v = int(n)
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %s=%d out of range", ErrInvalidParameters, key, n)
		}
		v = int(n)
	case float32:
		return p.fromFloat(key, float64(n), def)
	case float64:
		return p.fromFloat(key, n, def)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidParameters, key, n.String())
		}
		return p.fromFloat(key, f, def)
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidParameters, key, raw)
	}

	if v == 0 {
		return def, nil
	}
	return v, nil
}

func (p Params) fromFloat(key string, f float64, def int) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s=%v is not an integer", ErrInvalidParameters, key, f)
	}
	if f == 0 {
		return def, nil
	}
	return int(f), nil
}

// intInRange reads an option described by spec and checks its bounds.
func (p Params) intInRange(spec ParamSpec) (int, error) {
	v, err := p.Int(spec.Name, spec.Default)
	if err != nil {
		return 0, err
	}
	if v < spec.Min || v > spec.Max {
		return 0, fmt.Errorf("%w: %s=%d must be between %d and %d", ErrInvalidParameters, spec.Name, v, spec.Min, spec.Max)
	}
	return v, nil
}
