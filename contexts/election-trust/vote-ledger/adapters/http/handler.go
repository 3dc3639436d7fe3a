package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotcore/contexts/election-trust/vote-ledger/application/commands"
	"ballotcore/contexts/election-trust/vote-ledger/application/queries"
	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
	httptransport "ballotcore/contexts/election-trust/vote-ledger/transport/http"
)

type Handler struct {
	Cast    commands.CastVoteUseCase
	Voters  commands.VoterUseCase
	Record  commands.RecordVoteUseCase
	Queries queries.LedgerUseCase
	Logger  *slog.Logger
}

func (h Handler) RegisterVoterHandler(ctx context.Context, req httptransport.RegisterVoterRequest) (httptransport.VoterResponse, error) {
	voter, err := h.Voters.Register(ctx, commands.RegisterVoterCommand{
		FullName:      req.FullName,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return httptransport.VoterResponse{Status: "success", Data: voterDTO(voter)}, nil
}

func (h Handler) ApproveVoterHandler(ctx context.Context, voterID string) (httptransport.VoterResponse, error) {
	result, err := h.Voters.Approve(ctx, commands.ApproveVoterCommand{VoterID: voterID})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return httptransport.VoterResponse{
		Status:  "success",
		Warning: result.Warning,
		Chain:   chainDTO(result.Chain),
		Data:    voterDTO(result.Voter),
	}, nil
}

func (h Handler) RejectVoterHandler(ctx context.Context, voterID string) (httptransport.VoterResponse, error) {
	voter, err := h.Voters.Reject(ctx, voterID)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return httptransport.VoterResponse{Status: "success", Data: voterDTO(voter)}, nil
}

func (h Handler) GetVoterHandler(ctx context.Context, voterID string) (httptransport.VoterResponse, error) {
	voter, err := h.Queries.GetVoter(ctx, voterID)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return httptransport.VoterResponse{Status: "success", Data: voterDTO(voter)}, nil
}

func (h Handler) ListVotersHandler(ctx context.Context, status string) (httptransport.VoterListResponse, error) {
	voters, err := h.Queries.ListVoters(ctx, entities.VoterStatus(status))
	if err != nil {
		return httptransport.VoterListResponse{}, err
	}
	resp := httptransport.VoterListResponse{
		Status: "success",
		Data:   make([]httptransport.VoterDTO, 0, len(voters)),
	}
	for _, voter := range voters {
		resp.Data = append(resp.Data, voterDTO(voter))
	}
	return resp, nil
}

func (h Handler) CastVoteHandler(ctx context.Context, req httptransport.CastVoteRequest) (httptransport.CastVoteResponse, error) {
	result, err := h.Cast.Execute(ctx, commands.CastVoteCommand{
		VoterID:     req.VoterID,
		ElectionID:  req.ElectionID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Status:  "success",
		Warning: result.Warning,
		Chain:   chainDTO(result.Chain),
		Data:    voteDTO(result.Vote),
	}, nil
}

func (h Handler) RecordVoteHandler(ctx context.Context, voteID string) (httptransport.RecordVoteResponse, error) {
	result, err := h.Record.Execute(ctx, commands.RecordVoteCommand{VoteID: voteID})
	if err != nil {
		return httptransport.RecordVoteResponse{}, err
	}
	status := "success"
	if result.Pending {
		status = "pending_signature"
	}
	return httptransport.RecordVoteResponse{
		Status:  status,
		Pending: result.Pending,
		Chain:   chainDTO(result.Chain),
		Data:    voteDTO(result.Vote),
	}, nil
}

func (h Handler) CompleteRecordHandler(ctx context.Context, voteID string, req httptransport.CompleteRecordRequest) (httptransport.RecordVoteResponse, error) {
	result, err := h.Record.CompleteRecord(ctx, commands.CompleteRecordCommand{
		VoteID: voteID,
		TxHash: req.TxHash,
	})
	if err != nil {
		return httptransport.RecordVoteResponse{}, err
	}
	return httptransport.RecordVoteResponse{
		Status: "success",
		Chain:  chainDTO(result.Chain),
		Data:   voteDTO(result.Vote),
	}, nil
}

func (h Handler) TallyHandler(ctx context.Context, electionID string) (httptransport.TallyResponse, error) {
	tally, err := h.Queries.ElectionTally(ctx, electionID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	resp := httptransport.TallyResponse{Status: "success"}
	resp.Data.ElectionID = tally.Election.ElectionID
	resp.Data.Title = tally.Election.Title
	resp.Data.TotalVotes = tally.TotalVotes
	resp.Data.NoneVotes = tally.NoneVotes
	resp.Data.Candidates = make([]httptransport.TallyCandidateDTO, 0, len(tally.Candidates))
	for _, candidate := range tally.Candidates {
		resp.Data.Candidates = append(resp.Data.Candidates, httptransport.TallyCandidateDTO{
			CandidateID:      candidate.CandidateID,
			FirstName:        candidate.FirstName,
			LastName:         candidate.LastName,
			PartyName:        candidate.PartyName,
			ChainCandidateID: candidate.ChainCandidateID,
			VoteCount:        candidate.VoteCount,
		})
	}
	return resp, nil
}

func (h Handler) VoteStatusHandler(ctx context.Context, voterID string, electionID string) (httptransport.VoteStatusResponse, error) {
	status, err := h.Queries.CheckChainVoteStatus(ctx, voterID, electionID)
	if err != nil {
		return httptransport.VoteStatusResponse{}, err
	}
	resp := httptransport.VoteStatusResponse{Status: "success"}
	resp.Data.HasVotedPrimary = status.HasVotedPrimary
	resp.Data.HasVotedMirror = status.HasVotedMirror
	resp.Data.ChainConfirmed = status.ChainConfirmed
	resp.Data.ChainDone = status.ChainDone
	resp.Data.TxHash = status.TxHash
	return resp, nil
}

func chainDTO(outcome ports.ChainOutcome) httptransport.ChainOutcomeDTO {
	return httptransport.ChainOutcomeDTO{
		Success:          outcome.Success,
		Pending:          outcome.Pending,
		AlreadySatisfied: outcome.AlreadySatisfied,
		TxHash:           outcome.TxHash,
		SagaID:           outcome.SagaID,
		Error:            outcome.Error,
		Warning:          outcome.Warning,
	}
}

func voterDTO(voter entities.Voter) httptransport.VoterDTO {
	return httptransport.VoterDTO{
		VoterID:           voter.VoterID,
		FullName:          voter.FullName,
		Email:             voter.Email,
		WalletAddress:     voter.WalletAddress,
		Status:            string(voter.Status),
		HasVoted:          voter.HasVoted,
		LastVotedElection: voter.LastVotedElection,
		ApproveTxHash:     voter.ApproveTxHash,
	}
}

func voteDTO(vote entities.Vote) httptransport.VoteDTO {
	return httptransport.VoteDTO{
		VoteID:         vote.VoteID,
		VoterID:        vote.VoterID,
		ElectionID:     vote.ElectionID,
		CandidateID:    vote.CandidateID,
		NoneOption:     vote.NoneOption(),
		TxHash:         vote.TxHash,
		ChainConfirmed: vote.ChainConfirmed,
		CastAt:         vote.CastAt.UTC().Format(time.RFC3339),
	}
}
