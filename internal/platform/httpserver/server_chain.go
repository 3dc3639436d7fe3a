package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chainerrors "ballotcore/contexts/election-trust/chain-gateway/domain/errors"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type completeSagaRequest struct {
	TxHash string `json:"tx_hash"`
}

type chainStatusResponse struct {
	Operation string `json:"operation"`
	SubjectID string `json:"subject_id"`
	Done      bool   `json:"done"`
}

type challengeRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type challengeResponse struct {
	WalletAddress string `json:"wallet_address"`
	Nonce         string `json:"nonce"`
	ExpiresAt     string `json:"expires_at"`
}

type chainErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleCompleteSaga(w http.ResponseWriter, r *http.Request) {
	var req completeSagaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeChainError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	outcome, err := s.chain.Orchestrator.Complete(r.Context(), r.PathValue("saga_id"), req.TxHash)
	if err != nil {
		writeChainDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleChainStatus(w http.ResponseWriter, r *http.Request) {
	op := r.URL.Query().Get("operation")
	subjectID := r.URL.Query().Get("subject_id")
	if op == "" || subjectID == "" {
		writeChainError(w, http.StatusBadRequest, "invalid_dispatch_input", "operation and subject_id query parameters are required")
		return
	}
	done, err := s.chain.Orchestrator.Status(r.Context(), chainv1.Operation(op), subjectID)
	if err != nil {
		writeChainDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chainStatusResponse{
		Operation: op,
		SubjectID: subjectID,
		Done:      done,
	})
}

func (s *Server) handleIssueChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeChainError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	challenge, err := s.chain.Challenges.Issue(r.Context(), req.WalletAddress)
	if err != nil {
		writeChainDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, challengeResponse{
		WalletAddress: challenge.Address,
		Nonce:         challenge.Nonce,
		ExpiresAt:     challenge.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) handleConsumeChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeChainError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	challenge, err := s.chain.Challenges.Consume(r.Context(), req.WalletAddress)
	if err != nil {
		writeChainDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challengeResponse{
		WalletAddress: challenge.Address,
		Nonce:         challenge.Nonce,
		ExpiresAt:     challenge.ExpiresAt.Format(time.RFC3339),
	})
}

func writeChainDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chainerrors.ErrInvalidDispatch):
		writeChainError(w, http.StatusBadRequest, "invalid_dispatch_input", err.Error())
	case errors.Is(err, chainerrors.ErrTxHashRequired):
		writeChainError(w, http.StatusBadRequest, "tx_hash_required", err.Error())
	case errors.Is(err, chainerrors.ErrInvalidSigner):
		writeChainError(w, http.StatusBadRequest, "invalid_signer_mode", err.Error())
	case errors.Is(err, chainerrors.ErrSagaNotFound):
		writeChainError(w, http.StatusNotFound, "saga_not_found", err.Error())
	case errors.Is(err, chainerrors.ErrChallengeNotFound):
		writeChainError(w, http.StatusNotFound, "challenge_not_found", err.Error())
	case errors.Is(err, chainerrors.ErrSagaAlreadyResolved):
		writeChainError(w, http.StatusConflict, "saga_already_resolved", err.Error())
	case errors.Is(err, chainerrors.ErrChainUnavailable):
		writeChainError(w, http.StatusBadGateway, "chain_unavailable", err.Error())
	default:
		writeChainError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeChainError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, chainErrorResponse{
		Code:    code,
		Message: message,
	})
}
