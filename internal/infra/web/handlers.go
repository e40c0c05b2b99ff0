package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fractal-respect-game/internal/domain"
	"fractal-respect-game/internal/usecase"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = msg
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondDomainError maps domain sentinels onto HTTP statuses with stable
// machine-readable codes.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidGroupSize),
		errors.Is(err, domain.ErrInvalidCandidate),
		errors.Is(err, domain.ErrNotAParticipant),
		errors.Is(err, domain.ErrUnknownOverride),
		errors.Is(err, domain.ErrNoVotes),
		errors.Is(err, domain.ErrNoCandidates):
		respondError(w, http.StatusBadRequest, errCode(err), err.Error())
	case errors.Is(err, domain.ErrDuplicateParticipant),
		errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrNotPaused),
		errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrGroupFull),
		errors.Is(err, domain.ErrMemberAlreadyRanked),
		errors.Is(err, domain.ErrRanksAssigned),
		errors.Is(err, domain.ErrSessionBusy):
		respondError(w, http.StatusConflict, errCode(err), err.Error())
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, errCode(err), err.Error())
	case errors.Is(err, domain.ErrNotFacilitator):
		respondError(w, http.StatusForbidden, errCode(err), err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func errCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidGroupSize):
		return "invalid_group_size"
	case errors.Is(err, domain.ErrDuplicateParticipant):
		return "duplicate_participant"
	case errors.Is(err, domain.ErrNotAParticipant):
		return "not_a_participant"
	case errors.Is(err, domain.ErrInvalidCandidate):
		return "invalid_candidate"
	case errors.Is(err, domain.ErrUnknownOverride):
		return "unknown_override"
	case errors.Is(err, domain.ErrSessionNotActive):
		return "session_not_active"
	case errors.Is(err, domain.ErrNotPaused):
		return "session_not_paused"
	case errors.Is(err, domain.ErrSessionCompleted):
		return "session_completed"
	case errors.Is(err, domain.ErrGroupFull):
		return "group_full"
	case errors.Is(err, domain.ErrMemberAlreadyRanked):
		return "member_already_ranked"
	case errors.Is(err, domain.ErrRanksAssigned):
		return "ranks_assigned"
	case errors.Is(err, domain.ErrNoVotes):
		return "no_votes"
	case errors.Is(err, domain.ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotFacilitator):
		return "not_facilitator"
	case errors.Is(err, domain.ErrSessionBusy):
		return "session_busy"
	default:
		return "invalid_argument"
	}
}

// ---- admin ----

type adminLoginRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if !s.auth.CheckSecret(req.Secret) {
		respondError(w, http.StatusUnauthorized, "unauthorized", "invalid admin secret")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "could not mint token")
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{token})
}

// ---- sessions ----

type startSessionRequest struct {
	GuildID       string   `json:"guild_id"`
	FacilitatorID string   `json:"facilitator_id"`
	Participants  []string `json:"participants"`
	Name          string   `json:"name"`
	FractalNumber string   `json:"fractal_number"`
	GroupNumber   string   `json:"group_number"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	view, err := s.facade.StartGame(r.Context(), req.GuildID, req.FacilitatorID, req.Participants, usecase.SessionMeta{
		Name:          req.Name,
		FractalNumber: req.FractalNumber,
		GroupNumber:   req.GroupNumber,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	views, err := s.facade.ActiveSessions(r.Context(), r.URL.Query().Get("guild_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data  interface{} `json:"data"`
		Total int         `json:"total"`
	}{views, len(views)})
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.facade.SessionStatus(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type endSessionRequest struct {
	RequesterID string `json:"requester_id"`
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	var req endSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if err := s.facade.EndGame(r.Context(), chi.URLParam(r, "sessionID"), req.RequesterID); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type voteRequest struct {
	VoterID     string `json:"voter_id"`
	CandidateID string `json:"candidate_id"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	outcome, err := s.facade.CastVote(r.Context(), chi.URLParam(r, "sessionID"), req.VoterID, req.CandidateID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var op usecase.OverrideOp
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	view, err := s.facade.ApplyOverride(r.Context(), chi.URLParam(r, "sessionID"), op)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ---- history ----

func (s *Server) handleHistorySearch(w http.ResponseWriter, r *http.Request) {
	recs, err := s.facade.SearchHistory(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	total, err := s.facade.HistoryCount(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data  interface{} `json:"data"`
		Total int         `json:"total"`
	}{recs, total})
}

func (s *Server) handleHistoryRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.facade.RecentHistory(r.Context(), limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data interface{} `json:"data"`
	}{recs})
}

type upsertMemberRequest struct {
	DisplayName string `json:"display_name"`
	Wallet      string `json:"wallet"`
}

func (s *Server) handleUpsertMember(w http.ResponseWriter, r *http.Request) {
	var req upsertMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if err := s.members.Upsert(r.Context(), chi.URLParam(r, "memberID"), req.DisplayName, req.Wallet); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMemberStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.facade.MemberStats(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.facade.Leaderboard(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data interface{} `json:"data"`
	}{board})
}
