package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "ballotcore/contexts/election-trust/vote-ledger/application"
	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type LedgerUseCase struct {
	Votes      ports.VoteRepository
	Voters     ports.VoterRepository
	Elections  ports.ElectionReader
	Candidates ports.CandidateStore
	Dispatcher ports.ChainDispatcher
	Mirror     ports.MirrorVoteReader
	Logger     *slog.Logger
}

func (uc LedgerUseCase) GetVoter(ctx context.Context, voterID string) (entities.Voter, error) {
	return uc.Voters.GetVoter(ctx, strings.TrimSpace(voterID))
}

func (uc LedgerUseCase) ListVoters(ctx context.Context, status entities.VoterStatus) ([]entities.Voter, error) {
	return uc.Voters.ListVoters(ctx, status)
}

// Tally recomputes the election count from authoritative Vote rows and pairs
// it with the live candidate counters.
type Tally struct {
	Election   entities.ElectionSnapshot
	Candidates []entities.CandidateSnapshot
	TotalVotes int
	NoneVotes  int
}

func (uc LedgerUseCase) ElectionTally(ctx context.Context, electionID string) (Tally, error) {
	election, err := uc.Elections.GetElectionSnapshot(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return Tally{}, err
	}
	votes, err := uc.Votes.ListVotesForElection(ctx, election.ElectionID)
	if err != nil {
		return Tally{}, err
	}
	candidates, err := uc.Candidates.ListOrdered(ctx, election.ElectionID, election.Category)
	if err != nil {
		return Tally{}, err
	}
	noneVotes := 0
	for _, vote := range votes {
		if vote.NoneOption() {
			noneVotes++
		}
	}
	return Tally{
		Election:   election,
		Candidates: candidates,
		TotalVotes: len(votes),
		NoneVotes:  noneVotes,
	}, nil
}

// VoteStatus reconciles the primary vote row, the chain status, and the
// mirror-side already-voted guard for one (voter, election) pair. The mirror
// check covers partial prior failures where the mirror recorded a vote the
// primary lost.
type VoteStatus struct {
	HasVotedPrimary bool
	HasVotedMirror  bool
	ChainConfirmed  bool
	ChainDone       bool
	TxHash          string
}

func (uc LedgerUseCase) CheckChainVoteStatus(ctx context.Context, voterID string, electionID string) (VoteStatus, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID = strings.TrimSpace(voterID)
	electionID = strings.TrimSpace(electionID)
	if voterID == "" || electionID == "" {
		return VoteStatus{}, domainerrors.ErrInvalidVoteInput
	}

	status := VoteStatus{}
	vote, err := uc.Votes.GetVote(ctx, voterID, electionID)
	switch {
	case err == nil:
		status.HasVotedPrimary = true
		status.ChainConfirmed = vote.ChainConfirmed
		status.TxHash = vote.TxHash
	case errors.Is(err, domainerrors.ErrVoteNotFound):
	default:
		return VoteStatus{}, err
	}

	if status.HasVotedPrimary {
		done, err := uc.Dispatcher.Status(ctx, chainv1.OperationCastVote, vote.VoteID)
		if err != nil {
			logger.Warn("chain vote status check failed",
				"event", "vote_chain_status_failed",
				"module", "election-trust/vote-ledger",
				"layer", "application",
				"vote_id", vote.VoteID,
				"error", err.Error(),
			)
		} else {
			status.ChainDone = done
		}
	}

	if uc.Mirror != nil {
		mirrored, err := uc.Mirror.MirrorHasVoted(ctx, voterID, electionID)
		if err != nil {
			logger.Warn("mirror vote guard check failed",
				"event", "vote_mirror_guard_failed",
				"module", "election-trust/vote-ledger",
				"layer", "application",
				"election_id", electionID,
				"error", err.Error(),
			)
		} else {
			status.HasVotedMirror = mirrored
		}
	}
	return status, nil
}
