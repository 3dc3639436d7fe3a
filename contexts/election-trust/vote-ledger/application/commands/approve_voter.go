package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ballotcore/contexts/election-trust/vote-ledger/application"
	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type RegisterVoterCommand struct {
	FullName      string
	Email         string
	WalletAddress string
}

type ApproveVoterCommand struct {
	VoterID string
}

// ApproveVoterResult carries the chain approval as a secondary effect.
// Warning is set when the chain dispatch soft-failed; the approval itself
// still committed.
type ApproveVoterResult struct {
	Voter   entities.Voter
	Chain   ports.ChainOutcome
	Warning string
}

type VoterUseCase struct {
	Voters     ports.VoterRepository
	Dispatcher ports.ChainDispatcher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc VoterUseCase) Register(ctx context.Context, cmd RegisterVoterCommand) (entities.Voter, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.FullName) == "" || strings.TrimSpace(cmd.Email) == "" {
		return entities.Voter{}, domainerrors.ErrInvalidVoteInput
	}

	now := uc.Clock.Now().UTC()
	voterID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Voter{}, err
	}
	voter := entities.Voter{
		VoterID:       voterID,
		FullName:      strings.TrimSpace(cmd.FullName),
		Email:         strings.ToLower(strings.TrimSpace(cmd.Email)),
		WalletAddress: strings.ToLower(strings.TrimSpace(cmd.WalletAddress)),
		Status:        entities.VoterStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Voters.SaveVoter(ctx, voter); err != nil {
		return entities.Voter{}, err
	}

	logger.Info("voter registered",
		"event", "voter_registered",
		"module", "election-trust/vote-ledger",
		"layer", "application",
		"voter_id", voter.VoterID,
	)
	return voter, nil
}

// Approve moves a pending voter to approved and dispatches the chain approval
// as a best-effort secondary effect.
func (uc VoterUseCase) Approve(ctx context.Context, cmd ApproveVoterCommand) (ApproveVoterResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter, err := uc.Voters.GetVoter(ctx, strings.TrimSpace(cmd.VoterID))
	if err != nil {
		return ApproveVoterResult{}, err
	}
	if voter.Status != entities.VoterStatusPending {
		return ApproveVoterResult{}, domainerrors.ErrVoterAlreadyResolved
	}

	voter.Status = entities.VoterStatusApproved
	voter.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Voters.UpdateVoter(ctx, voter); err != nil {
		return ApproveVoterResult{}, err
	}

	outcome := uc.Dispatcher.DispatchSecondary(ctx, chainv1.OperationApproveVoter, voter.VoterID, map[string]string{
		"voter_id":       voter.VoterID,
		"wallet_address": voter.WalletAddress,
	})
	if outcome.Success && outcome.TxHash != "" {
		voter.ApproveTxHash = outcome.TxHash
		if err := uc.Voters.UpdateVoter(ctx, voter); err != nil {
			return ApproveVoterResult{}, err
		}
	}

	logger.Info("voter approved",
		"event", "voter_approved",
		"module", "election-trust/vote-ledger",
		"layer", "application",
		"voter_id", voter.VoterID,
		"chain_warning", outcome.Warning,
	)
	return ApproveVoterResult{Voter: voter, Chain: outcome, Warning: outcome.Warning}, nil
}

func (uc VoterUseCase) Reject(ctx context.Context, voterID string) (entities.Voter, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter, err := uc.Voters.GetVoter(ctx, strings.TrimSpace(voterID))
	if err != nil {
		return entities.Voter{}, err
	}
	if voter.Status != entities.VoterStatusPending {
		return entities.Voter{}, domainerrors.ErrVoterAlreadyResolved
	}

	voter.Status = entities.VoterStatusRejected
	voter.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Voters.UpdateVoter(ctx, voter); err != nil {
		return entities.Voter{}, err
	}

	logger.Info("voter rejected",
		"event", "voter_rejected",
		"module", "election-trust/vote-ledger",
		"layer", "application",
		"voter_id", voter.VoterID,
	)
	return voter, nil
}
