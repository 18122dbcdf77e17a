package fairness

import (
	"errors"

	"github.com/MJE43/pf-fairness-engine/internal/games"
)

var (
	ErrUnsupportedGameType = games.ErrUnsupportedGameType
	ErrInvalidParameters   = games.ErrInvalidParameters
	ErrDegenerateDraw      = games.ErrDegenerateDraw

	ErrRandomSourceUnavailable = errors.New("cryptographic random source unavailable")
	ErrInvalidKey              = errors.New("invalid signing key")
	ErrUnencodable             = errors.New("record cannot be encoded as a verification token")
)
