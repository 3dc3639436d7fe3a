package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	voteerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	votehttp "ballotcore/contexts/election-trust/vote-ledger/transport/http"
)

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req votehttp.RegisterVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.votes.Handler.RegisterVoterHandler(r.Context(), req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVoters(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.ListVotersHandler(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVoter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.GetVoterHandler(r.Context(), r.PathValue("voter_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveVoter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.ApproveVoterHandler(r.Context(), r.PathValue("voter_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectVoter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.RejectVoterHandler(r.Context(), r.PathValue("voter_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCastVote godoc
// @Summary Cast a vote for a candidate
// @Tags votes
// @Accept json
// @Produce json
// @Param request body http.CastVoteRequest true "vote"
// @Success 201 {object} http.CastVoteResponse
// @Router /api/votes/v1/votes [post]
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req votehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.votes.Handler.CastVoteHandler(r.Context(), req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRecordVote(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.RecordVoteHandler(r.Context(), r.PathValue("vote_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteRecord(w http.ResponseWriter, r *http.Request) {
	var req votehttp.CompleteRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.votes.Handler.CompleteRecordHandler(r.Context(), r.PathValue("vote_id"), req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.TallyHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteStatus(w http.ResponseWriter, r *http.Request) {
	voterID := r.URL.Query().Get("voter_id")
	electionID := r.URL.Query().Get("election_id")
	if voterID == "" || electionID == "" {
		writeVoteError(w, http.StatusBadRequest, "invalid_vote_input", "voter_id and election_id query parameters are required")
		return
	}
	resp, err := s.votes.Handler.VoteStatusHandler(r.Context(), voterID, electionID)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writeVoteError(w, http.StatusBadRequest, "invalid_vote_input", err.Error())
	case errors.Is(err, voteerrors.ErrVoterNotFound):
		writeVoteError(w, http.StatusNotFound, "voter_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrVoteNotFound):
		writeVoteError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrElectionNotFound):
		writeVoteError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrCandidateNotFound):
		writeVoteError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrVoterNotApproved):
		writeVoteError(w, http.StatusForbidden, "voter_not_approved", err.Error())
	case errors.Is(err, voteerrors.ErrVoterAlreadyResolved):
		writeVoteError(w, http.StatusConflict, "voter_already_resolved", err.Error())
	case errors.Is(err, voteerrors.ErrAlreadyVoted):
		writeVoteError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, voteerrors.ErrElectionNotActive):
		writeVoteError(w, http.StatusConflict, "election_not_active", err.Error())
	case errors.Is(err, voteerrors.ErrElectionWindowClosed):
		writeVoteError(w, http.StatusConflict, "election_window_closed", err.Error())
	case errors.Is(err, voteerrors.ErrCandidateNotInElection):
		writeVoteError(w, http.StatusUnprocessableEntity, "candidate_not_in_election", err.Error())
	case errors.Is(err, voteerrors.ErrChainRecordFailed):
		writeVoteError(w, http.StatusBadGateway, "chain_record_failed", err.Error())
	default:
		writeVoteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVoteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
