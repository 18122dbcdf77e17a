package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-fairness-engine/internal/fairness"
	"github.com/MJE43/pf-fairness-engine/internal/store"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]any),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause adds the underlying cause error
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	ctx := eb.context
	if len(ctx) == 0 {
		ctx = nil
	}
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   ctx,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// classify maps engine and store errors onto an HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, fairness.ErrUnsupportedGameType):
		return http.StatusBadRequest, ErrTypeGameNotFound
	case errors.Is(err, fairness.ErrInvalidParameters):
		return http.StatusBadRequest, ErrTypeInvalidParams
	case errors.Is(err, fairness.ErrDegenerateDraw):
		return http.StatusUnprocessableEntity, ErrTypeInvalidParams
	case errors.Is(err, fairness.ErrRandomSourceUnavailable):
		return http.StatusServiceUnavailable, ErrTypeServiceUnavailable
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrTypeNotFound
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *log.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError classifies err and writes the matching response.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())
	status, errType := classify(err)

	message := err.Error()
	if status >= http.StatusInternalServerError && errType == ErrTypeInternal {
		message = "Internal server error"
	}

	engineErr := NewError(errType, message).
		WithRequestID(requestID).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method)
	if errType == ErrTypeInternal {
		engineErr.WithCause(err)
	}

	eh.writeErrorResponse(w, r, status, engineErr.Build())
}

// HandleValidationError handles validation-specific errors
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	eh.HandleStatus(w, r, http.StatusBadRequest, ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message), "field", field)
}

// HandleStatus writes an error of errType with explicit status and key/value context.
func (eh *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, errType, message string, kv ...any) {
	builder := NewError(errType, message).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method)
	for i := 0; i+1 < len(kv); i += 2 {
		builder.WithContext(fmt.Sprint(kv[i]), kv[i+1])
	}
	eh.writeErrorResponse(w, r, status, builder.Build())
}

// logError logs with a level chosen by error category and status.
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)
	fields := []any{
		"type", engineErr.Type,
		"category", category,
		"status", status,
		"request_id", engineErr.RequestID,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if cause, ok := engineErr.Context["cause"]; ok {
		fields = append(fields, "cause", cause)
	}

	switch {
	case status >= http.StatusInternalServerError:
		eh.logger.Error(engineErr.Message, fields...)
	case category == CategoryValidation:
		eh.logger.Warn(engineErr.Message, fields...)
	default:
		eh.logger.Info(engineErr.Message, fields...)
	}
}

// writeErrorResponse writes the error response as JSON
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, engineErr EngineError) {
	eh.logError(r, engineErr, status)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Error("failed to encode error response", "err", err)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())
				eh.logger.Error("panic recovered", "request_id", requestID, "path", r.URL.Path, "method", r.Method, "panic", rvr)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()
				eh.writeErrorResponse(w, r, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
