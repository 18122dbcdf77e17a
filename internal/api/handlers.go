package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MJE43/pf-fairness-engine/internal/cache"
	"github.com/MJE43/pf-fairness-engine/internal/fairness"
	"github.com/MJE43/pf-fairness-engine/internal/games"
	"github.com/MJE43/pf-fairness-engine/internal/store"
)

// decodeJSON reads a bounded JSON body into dst. Numbers stay json.Number so
// game params keep their exact value. On failure the error response is written.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after JSON body")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.errorHandler.HandleStatus(w, r, http.StatusRequestEntityTooLarge, ErrTypeValidation,
			"Request body too large", "limit_bytes", tooLarge.Limit)
	case errors.Is(err, io.EOF):
		s.errorHandler.HandleStatus(w, r, http.StatusBadRequest, ErrTypeValidation, "Request body is empty")
	default:
		s.errorHandler.HandleStatus(w, r, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", "error", err.Error())
	}
	return false
}

// handleListGames returns available games with their parameters
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GamesResponse{
		Games:         s.engine.Registry().List(),
		Derivation:    s.engine.Derivation().String(),
		EngineVersion: EngineVersion,
	})
}

// handleGenerate produces a new record, stores it and caches its token
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Game) == "" {
		s.errorHandler.HandleValidationError(w, r, "game", "game is required")
		return
	}

	rec, err := s.engine.Generate(req.Game, games.Params(req.Params))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	token, err := s.engine.VerificationData(rec)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	stored := store.StoredRecord{
		ID:            uuid.New(),
		Game:          req.Game,
		ParamsJSON:    paramsJSON(req.Params),
		Record:        rec,
		Token:         token,
		EngineVersion: EngineVersion,
	}

	ctx := r.Context()
	resp := GenerateResponse{
		ID:            stored.ID.String(),
		Record:        rec,
		Token:         token,
		EngineVersion: EngineVersion,
	}
	if s.db != nil {
		if err := s.db.SaveRecord(ctx, &stored); err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.Stored = true
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, stored.ID, token); err != nil {
			s.logger.Warn("token cache write failed", "id", stored.ID, "err", err)
		}
	}

	s.logger.Debug("record generated",
		"id", stored.ID,
		"game", req.Game,
		"seed_hash", hashSeed(rec.Seed),
		"hash", rec.Hash,
		"request_id", middleware.GetReqID(ctx),
	)

	s.writeJSON(w, http.StatusCreated, resp)
}

func paramsJSON(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// handleGetRecord returns a stored record and re-verifies it
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "id", "id must be a UUID")
		return
	}
	if s.db == nil {
		s.errorHandler.HandleStatus(w, r, http.StatusServiceUnavailable, ErrTypeServiceUnavailable, "Record storage is not configured")
		return
	}

	rec, err := s.db.GetRecord(r.Context(), id)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, RecordResponse{
		StoredRecord: *rec,
		Valid:        s.engine.Verify(rec.Record),
	})
}

// handleListRecords returns stored records newest first
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleStatus(w, r, http.StatusServiceUnavailable, ErrTypeServiceUnavailable, "Record storage is not configured")
		return
	}

	q := store.RecordsQuery{Game: r.URL.Query().Get("game")}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &q.Page}, {"per_page", &q.PerPage}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorHandler.HandleValidationError(w, r, p.name, fmt.Sprintf("%s must be a positive integer", p.name))
			return
		}
		*p.dst = n
	}

	list, err := s.db.ListRecords(r.Context(), q)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleVerify verifies a record as submitted
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Record == nil {
		s.errorHandler.HandleValidationError(w, r, "record", "record is required")
		return
	}

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Valid:         s.engine.Verify(*req.Record),
		EngineVersion: EngineVersion,
	})
}

// handleVerifyToken verifies a token given inline or looked up by record ID
func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyTokenRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	token := strings.TrimSpace(req.Token)
	switch {
	case token != "" && req.ID != "":
		s.errorHandler.HandleValidationError(w, r, "token", "give either token or id, not both")
		return
	case token == "" && req.ID == "":
		s.errorHandler.HandleValidationError(w, r, "token", "token or id is required")
		return
	case token == "":
		id, err := uuid.Parse(req.ID)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "id", "id must be a UUID")
			return
		}
		if token, err = s.lookupToken(r, id); err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
	}

	resp := VerifyTokenResponse{
		Valid:         s.engine.VerifyToken(token),
		EngineVersion: EngineVersion,
	}
	if rec, err := fairness.DecodeToken(token); err == nil {
		resp.Record = &rec
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// lookupToken reads a token from the cache, then from the store.
func (s *Server) lookupToken(r *http.Request, id uuid.UUID) (string, error) {
	ctx := r.Context()
	if s.cache != nil {
		token, err := s.cache.Get(ctx, id)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("token cache read failed", "id", id, "err", err)
		}
	}

	if s.db == nil {
		return "", store.ErrNotFound
	}
	rec, err := s.db.GetRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, id, rec.Token); err != nil {
			s.logger.Warn("token cache write failed", "id", id, "err", err)
		}
	}
	return rec.Token, nil
}

// handleReplay re-derives the outcome from the record's seed
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req ReplayRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Game) == "" {
		s.errorHandler.HandleValidationError(w, r, "game", "game is required")
		return
	}
	if req.Record == nil {
		s.errorHandler.HandleValidationError(w, r, "record", "record is required")
		return
	}

	params := games.Params(req.Params)
	outcome, err := s.engine.Replay(req.Game, params, req.Record.Seed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ReplayResponse{
		Valid:          s.engine.VerifyOutcome(req.Game, params, *req.Record),
		SignatureValid: s.engine.Verify(*req.Record),
		Outcome:        outcome,
		EngineVersion:  EngineVersion,
	})
}
