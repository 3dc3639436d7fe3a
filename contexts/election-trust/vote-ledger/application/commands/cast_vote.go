package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "ballotcore/contexts/election-trust/vote-ledger/application"
	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type CastVoteCommand struct {
	VoterID    string
	ElectionID string
	// CandidateID is empty for a none-of-the-above vote.
	CandidateID string
}

// CastVoteResult separates the primary-store outcome from the best-effort
// chain propagation. Warning is non-empty when the chain side failed but the
// vote committed; the primary store stays authoritative.
type CastVoteResult struct {
	Vote    entities.Vote
	Chain   ports.ChainOutcome
	Warning string
}

type CastVoteUseCase struct {
	Votes      ports.VoteRepository
	Voters     ports.VoterRepository
	Elections  ports.ElectionReader
	Candidates ports.CandidateStore
	Dispatcher ports.ChainDispatcher
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Execute applies the cast-time preconditions in order, inserts the vote, and
// updates the denormalized counters. The insert is the race arbiter: two
// concurrent casts for the same (voter, election) both pass the read checks,
// but the second insert fails on the uniqueness constraint.
func (uc CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	electionID := strings.TrimSpace(cmd.ElectionID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	if voterID == "" || electionID == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	election, err := uc.Elections.GetElectionSnapshot(ctx, electionID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !election.IsActive || election.IsArchived {
		return CastVoteResult{}, domainerrors.ErrElectionNotActive
	}
	now := uc.Clock.Now().UTC()
	if now.After(election.EndDate) {
		return CastVoteResult{}, domainerrors.ErrElectionWindowClosed
	}

	voter, err := uc.Voters.GetVoter(ctx, voterID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !voter.Approved() {
		return CastVoteResult{}, domainerrors.ErrVoterNotApproved
	}

	var candidate entities.CandidateSnapshot
	if candidateID != "" {
		candidate, err = uc.Candidates.GetCandidateSnapshot(ctx, candidateID)
		if err != nil {
			return CastVoteResult{}, err
		}
		if candidate.ElectionID != election.ElectionID {
			return CastVoteResult{}, domainerrors.ErrCandidateNotInElection
		}
		candidate, err = uc.ensureChainCandidateID(ctx, election, candidate)
		if err != nil {
			return CastVoteResult{}, err
		}
	}

	if _, err := uc.Votes.GetVote(ctx, voterID, electionID); err == nil {
		return CastVoteResult{}, domainerrors.ErrAlreadyVoted
	} else if !errors.Is(err, domainerrors.ErrVoteNotFound) {
		return CastVoteResult{}, err
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	vote := entities.Vote{
		VoteID:      voteID,
		VoterID:     voterID,
		ElectionID:  electionID,
		CandidateID: candidateID,
		CastAt:      now,
		UpdatedAt:   now,
	}
	if err := uc.Votes.InsertVote(ctx, vote); err != nil {
		return CastVoteResult{}, err
	}

	if candidateID != "" {
		if err := uc.Candidates.IncrementVoteCount(ctx, candidateID); err != nil {
			return CastVoteResult{}, err
		}
	}
	if err := uc.Elections.IncrementTotalVotes(ctx, electionID); err != nil {
		return CastVoteResult{}, err
	}

	voter.HasVoted = true
	voter.LastVotedElection = electionID
	voter.UpdatedAt = now
	if err := uc.Voters.UpdateVoter(ctx, voter); err != nil {
		return CastVoteResult{}, err
	}

	outcome := uc.Dispatcher.DispatchSecondary(ctx, chainv1.OperationCastVote, vote.VoteID, castParams(vote, candidate))
	if outcome.Success && outcome.TxHash != "" {
		vote.TxHash = outcome.TxHash
		vote.ChainConfirmed = true
		vote.UpdatedAt = now
		if err := uc.Votes.UpdateVote(ctx, vote); err != nil {
			return CastVoteResult{}, err
		}
	}

	uc.appendVoteCastEvent(ctx, vote, candidate, now)

	logger.Info("vote cast",
		"event", "vote_cast",
		"module", "election-trust/vote-ledger",
		"layer", "application",
		"vote_id", vote.VoteID,
		"election_id", vote.ElectionID,
		"none_option", vote.NoneOption(),
		"chain_confirmed", vote.ChainConfirmed,
	)
	return CastVoteResult{Vote: vote, Chain: outcome, Warning: outcome.Warning}, nil
}

// ensureChainCandidateID backfills the external-ledger correlation id from
// the candidate's position in the stable ordered ballot. The derived id is
// persisted so repeated casts resolve the same value without recomputing.
func (uc CastVoteUseCase) ensureChainCandidateID(
	ctx context.Context,
	election entities.ElectionSnapshot,
	candidate entities.CandidateSnapshot,
) (entities.CandidateSnapshot, error) {
	if candidate.ChainCandidateID != "" {
		return candidate, nil
	}
	ordered, err := uc.Candidates.ListOrdered(ctx, election.ElectionID, election.Category)
	if err != nil {
		return entities.CandidateSnapshot{}, err
	}
	for position, entry := range ordered {
		if entry.CandidateID != candidate.CandidateID {
			continue
		}
		chainID := strconv.Itoa(position + 1)
		if err := uc.Candidates.SetChainCandidateID(ctx, candidate.CandidateID, chainID); err != nil {
			return entities.CandidateSnapshot{}, err
		}
		candidate.ChainCandidateID = chainID
		return candidate, nil
	}
	return entities.CandidateSnapshot{}, domainerrors.ErrCandidateNotInElection
}

func (uc CastVoteUseCase) appendVoteCastEvent(
	ctx context.Context,
	vote entities.Vote,
	candidate entities.CandidateSnapshot,
	occurredAt time.Time,
) {
	if uc.Outbox == nil {
		return
	}
	logger := application.ResolveLogger(uc.Logger)
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Error("vote event id generation failed",
			"event", "vote_event_id_failed",
			"module", "election-trust/vote-ledger",
			"layer", "application",
			"vote_id", vote.VoteID,
			"error", err.Error(),
		)
		return
	}
	payload, err := json.Marshal(map[string]any{
		"vote_id":            vote.VoteID,
		"voter_id":           vote.VoterID,
		"election_id":        vote.ElectionID,
		"candidate_id":       vote.CandidateID,
		"candidate_first":    candidate.FirstName,
		"candidate_last":     candidate.LastName,
		"candidate_party":    candidate.PartyName,
		"chain_candidate_id": candidate.ChainCandidateID,
		"none_option":        vote.NoneOption(),
		"tx_hash":            vote.TxHash,
	})
	if err != nil {
		return
	}
	event := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "vote.cast",
		OccurredAt:       occurredAt,
		SourceService:    "vote-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     vote.ElectionID,
		Data:             payload,
	}
	if err := uc.Outbox.AppendOutbox(ctx, event); err != nil {
		logger.Error("vote outbox append failed",
			"event", "vote_outbox_append_failed",
			"module", "election-trust/vote-ledger",
			"layer", "application",
			"vote_id", vote.VoteID,
			"error", err.Error(),
		)
	}
}

func castParams(vote entities.Vote, candidate entities.CandidateSnapshot) map[string]string {
	params := map[string]string{
		"vote_id":     vote.VoteID,
		"voter_id":    vote.VoterID,
		"election_id": vote.ElectionID,
	}
	if !vote.NoneOption() {
		params["candidate_id"] = vote.CandidateID
		params["chain_candidate_id"] = candidate.ChainCandidateID
	}
	return params
}
