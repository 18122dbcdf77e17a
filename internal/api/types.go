package api

import (
	"github.com/MJE43/pf-fairness-engine/internal/fairness"
	"github.com/MJE43/pf-fairness-engine/internal/games"
	"github.com/MJE43/pf-fairness-engine/internal/store"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

const (
	// Input validation errors
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeValidation    = "validation_error"

	// Game and record errors
	ErrTypeGameNotFound = "game_not_found"
	ErrTypeNotFound     = "not_found"

	// System errors
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategorySystem     ErrorCategory = "system"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidParams, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeGameNotFound, ErrTypeNotFound:
		return CategoryGame
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// GamesResponse represents the games metadata response
type GamesResponse struct {
	Games         []games.GameSpec `json:"games"`
	Derivation    string           `json:"derivation"`
	EngineVersion string           `json:"engine_version"`
}

// GenerateRequest asks for a fresh record
type GenerateRequest struct {
	Game   string         `json:"game"`
	Params map[string]any `json:"params,omitempty"`
}

// GenerateResponse carries the new record and its verification token
type GenerateResponse struct {
	ID            string          `json:"id"`
	Record        fairness.Record `json:"record"`
	Token         string          `json:"token"`
	Stored        bool            `json:"stored"`
	EngineVersion string          `json:"engine_version"`
}

// RecordResponse wraps a stored record
type RecordResponse struct {
	store.StoredRecord
	Valid bool `json:"valid"`
}

// VerifyRequest checks a record as submitted
type VerifyRequest struct {
	Record *fairness.Record `json:"record"`
}

// VerifyResponse reports a verification outcome
type VerifyResponse struct {
	Valid         bool   `json:"valid"`
	EngineVersion string `json:"engine_version"`
}

// VerifyTokenRequest carries either a token or the ID of a stored record
type VerifyTokenRequest struct {
	Token string `json:"token,omitempty"`
	ID    string `json:"id,omitempty"`
}

// VerifyTokenResponse reports the token verdict and the record inside it
type VerifyTokenResponse struct {
	Valid         bool             `json:"valid"`
	Record        *fairness.Record `json:"record,omitempty"`
	EngineVersion string           `json:"engine_version"`
}

// ReplayRequest re-derives a record's outcome from its seed
type ReplayRequest struct {
	Game   string           `json:"game"`
	Params map[string]any   `json:"params,omitempty"`
	Record *fairness.Record `json:"record"`
}

// ReplayResponse compares the replayed outcome with the recorded one
type ReplayResponse struct {
	Valid          bool          `json:"valid"`
	SignatureValid bool          `json:"signature_valid"`
	Outcome        games.Outcome `json:"outcome"`
	EngineVersion  string        `json:"engine_version"`
}
