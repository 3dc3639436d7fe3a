package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	electionerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	electionhttp "ballotcore/contexts/election-trust/election-service/transport/http"
)

// handleCreateElection godoc
// @Summary Create a draft election
// @Tags elections
// @Accept json
// @Produce json
// @Param request body http.CreateElectionRequest true "election definition"
// @Success 200 {object} http.ElectionResponse
// @Router /api/elections/v1/elections [post]
func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.CreateElectionHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListElections(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ListElectionsHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.GetElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateElection(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.UpdateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.UpdateElectionHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteElection(w http.ResponseWriter, r *http.Request) {
	if err := s.elections.Handler.DeleteElectionHandler(r.Context(), r.PathValue("election_id")); err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStartElection godoc
// @Summary Activate a draft election
// @Tags elections
// @Produce json
// @Param election_id path string true "election id"
// @Success 200 {object} http.LifecycleResponse
// @Router /api/elections/v1/elections/{election_id}/start [post]
func (s *Server) handleStartElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.StartElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteStart(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CompleteTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.CompleteStartHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEndElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.EndElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteEnd(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CompleteTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.CompleteEndHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArchiveElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ArchiveElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElectionResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ResultsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.RegisterCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.RegisterCandidateHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrInvalidElectionInput):
		writeElectionError(w, http.StatusBadRequest, "invalid_election_input", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotFound):
		writeElectionError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrCandidateNotFound):
		writeElectionError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrElectionArchived):
		writeElectionError(w, http.StatusConflict, "election_archived", err.Error())
	case errors.Is(err, electionerrors.ErrElectionAlreadyActive):
		writeElectionError(w, http.StatusConflict, "election_already_active", err.Error())
	case errors.Is(err, electionerrors.ErrActiveElectionExists):
		writeElectionError(w, http.StatusConflict, "active_election_exists", err.Error())
	case errors.Is(err, electionerrors.ErrElectionWindowClosed):
		writeElectionError(w, http.StatusConflict, "election_window_closed", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotDraft):
		writeElectionError(w, http.StatusConflict, "election_not_draft", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
