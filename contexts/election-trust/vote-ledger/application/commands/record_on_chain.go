package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "ballotcore/contexts/election-trust/vote-ledger/application"
	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type RecordVoteCommand struct {
	VoteID string
}

type CompleteRecordCommand struct {
	VoteID string
	TxHash string
}

// RecordVoteResult reports the explicit ledger-confirmation attempt. Pending
// means a wallet signature is still required; the vote stays unconfirmed
// until CompleteRecord.
type RecordVoteResult struct {
	Vote    entities.Vote
	Chain   ports.ChainOutcome
	Pending bool
}

// RecordVoteUseCase is the hard-failure chain path: the caller explicitly
// asked for a ledger-confirmed vote, so a chain refusal is an error and the
// vote stays unconfirmed, unlike the best-effort propagation at cast time.
type RecordVoteUseCase struct {
	Votes      ports.VoteRepository
	Dispatcher ports.ChainDispatcher
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc RecordVoteUseCase) Execute(ctx context.Context, cmd RecordVoteCommand) (RecordVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	vote, err := uc.Votes.GetVoteByID(ctx, strings.TrimSpace(cmd.VoteID))
	if err != nil {
		return RecordVoteResult{}, err
	}
	if vote.ChainConfirmed {
		return RecordVoteResult{
			Vote:  vote,
			Chain: ports.ChainOutcome{Success: true, AlreadySatisfied: true, TxHash: vote.TxHash},
		}, nil
	}

	outcome, err := uc.Dispatcher.Dispatch(ctx, chainv1.OperationCastVote, vote.VoteID, recordParams(vote))
	if err != nil {
		return RecordVoteResult{}, err
	}
	if outcome.Pending {
		logger.Info("vote recording awaiting wallet signature",
			"event", "vote_record_pending_signature",
			"module", "election-trust/vote-ledger",
			"layer", "application",
			"vote_id", vote.VoteID,
			"saga_id", outcome.SagaID,
		)
		return RecordVoteResult{Vote: vote, Chain: outcome, Pending: true}, nil
	}
	if !outcome.Success {
		logger.Error("vote recording refused by chain",
			"event", "vote_record_chain_refused",
			"module", "election-trust/vote-ledger",
			"layer", "application",
			"vote_id", vote.VoteID,
			"chain_error", outcome.Error,
		)
		return RecordVoteResult{Vote: vote, Chain: outcome},
			fmt.Errorf("%w: %s", domainerrors.ErrChainRecordFailed, outcome.Error)
	}

	return uc.commit(ctx, vote, outcome)
}

// CompleteRecord finishes a wallet-signed recording with the externally
// obtained transaction hash.
func (uc RecordVoteUseCase) CompleteRecord(ctx context.Context, cmd CompleteRecordCommand) (RecordVoteResult, error) {
	vote, err := uc.Votes.GetVoteByID(ctx, strings.TrimSpace(cmd.VoteID))
	if err != nil {
		return RecordVoteResult{}, err
	}
	outcome, err := uc.Dispatcher.Complete(ctx, chainv1.OperationCastVote, vote.VoteID, cmd.TxHash)
	if err != nil {
		return RecordVoteResult{}, err
	}
	return uc.commit(ctx, vote, outcome)
}

func (uc RecordVoteUseCase) commit(ctx context.Context, vote entities.Vote, outcome ports.ChainOutcome) (RecordVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	vote.TxHash = outcome.TxHash
	vote.ChainConfirmed = true
	vote.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Votes.UpdateVote(ctx, vote); err != nil {
		return RecordVoteResult{}, err
	}

	logger.Info("vote recorded on chain",
		"event", "vote_recorded_on_chain",
		"module", "election-trust/vote-ledger",
		"layer", "application",
		"vote_id", vote.VoteID,
		"tx_hash", vote.TxHash,
		"already_satisfied", outcome.AlreadySatisfied,
	)
	return RecordVoteResult{Vote: vote, Chain: outcome}, nil
}

func recordParams(vote entities.Vote) map[string]string {
	params := map[string]string{
		"vote_id":     vote.VoteID,
		"voter_id":    vote.VoterID,
		"election_id": vote.ElectionID,
	}
	if !vote.NoneOption() {
		params["candidate_id"] = vote.CandidateID
	}
	return params
}
