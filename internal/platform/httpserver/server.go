package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chaingateway "ballotcore/contexts/election-trust/chain-gateway"
	electionservice "ballotcore/contexts/election-trust/election-service"
	voteledger "ballotcore/contexts/election-trust/vote-ledger"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ballotcore/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	elections electionservice.Module
	votes     voteledger.Module
	chain     chaingateway.Module
}

func New(
	elections electionservice.Module,
	votes voteledger.Module,
	chain chaingateway.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		elections: elections,
		votes:     votes,
		chain:     chain,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/elections/v1/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /api/elections/v1/elections", s.handleListElections)
	s.mux.HandleFunc("GET /api/elections/v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("PUT /api/elections/v1/elections/{election_id}", s.handleUpdateElection)
	s.mux.HandleFunc("DELETE /api/elections/v1/elections/{election_id}", s.handleDeleteElection)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/start", s.handleStartElection)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/start/complete", s.handleCompleteStart)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/end", s.handleEndElection)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/end/complete", s.handleCompleteEnd)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/archive", s.handleArchiveElection)
	s.mux.HandleFunc("GET /api/elections/v1/elections/{election_id}/results", s.handleElectionResults)
	s.mux.HandleFunc("POST /api/elections/v1/candidates", s.handleRegisterCandidate)

	s.mux.HandleFunc("POST /api/votes/v1/voters", s.handleRegisterVoter)
	s.mux.HandleFunc("GET /api/votes/v1/voters", s.handleListVoters)
	s.mux.HandleFunc("GET /api/votes/v1/voters/{voter_id}", s.handleGetVoter)
	s.mux.HandleFunc("POST /api/votes/v1/voters/{voter_id}/approve", s.handleApproveVoter)
	s.mux.HandleFunc("POST /api/votes/v1/voters/{voter_id}/reject", s.handleRejectVoter)
	s.mux.HandleFunc("POST /api/votes/v1/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /api/votes/v1/votes/{vote_id}/record", s.handleRecordVote)
	s.mux.HandleFunc("POST /api/votes/v1/votes/{vote_id}/record/complete", s.handleCompleteRecord)
	s.mux.HandleFunc("GET /api/votes/v1/elections/{election_id}/tally", s.handleTally)
	s.mux.HandleFunc("GET /api/votes/v1/status", s.handleVoteStatus)

	s.mux.HandleFunc("POST /api/chain/v1/sagas/{saga_id}/complete", s.handleCompleteSaga)
	s.mux.HandleFunc("GET /api/chain/v1/status", s.handleChainStatus)
	s.mux.HandleFunc("POST /api/chain/v1/challenges", s.handleIssueChallenge)
	s.mux.HandleFunc("POST /api/chain/v1/challenges/consume", s.handleConsumeChallenge)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
