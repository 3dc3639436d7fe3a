package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-trust/chain-gateway/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/chain-gateway/domain/errors"
	"ballotcore/contexts/election-trust/chain-gateway/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

// DispatchRequest describes one logical chain state change. SubjectID is the
// primary-store key of the entity the operation applies to (election, voter,
// or vote) and scopes wallet-saga reuse.
type DispatchRequest struct {
	Operation chainv1.Operation
	SubjectID string
	Params    map[string]string
	Signer    entities.SignerMode
}

// Orchestrator routes dispatches through the custodial or wallet protocol.
// Chain failures are reported inside the Outcome, not as Go errors, so each
// caller applies its own soft/hard failure policy.
type Orchestrator struct {
	Chain       ports.LedgerClient
	Sagas       ports.SagaStore
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Dispatch executes one chain operation. Custodial mode submits and waits for
// confirmation. Wallet mode persists a saga row and returns pending call data;
// the local commit must wait for Complete.
func (o Orchestrator) Dispatch(ctx context.Context, req DispatchRequest) (chainv1.Outcome, error) {
	logger := ResolveLogger(o.Logger)
	if req.Operation == "" || strings.TrimSpace(req.SubjectID) == "" {
		return chainv1.Outcome{}, domainerrors.ErrInvalidDispatch
	}
	if !req.Signer.Valid() {
		return chainv1.Outcome{}, domainerrors.ErrInvalidSigner
	}

	switch req.Signer.Kind {
	case entities.SignerKindCustodial:
		return o.dispatchCustodial(ctx, req, logger), nil
	case entities.SignerKindWallet:
		return o.dispatchWallet(ctx, req, logger)
	default:
		return chainv1.Outcome{}, domainerrors.ErrInvalidSigner
	}
}

// DispatchSecondary runs a best-effort dispatch for non-critical follow-up
// effects. It never fails the caller; failures surface as a warning only.
func (o Orchestrator) DispatchSecondary(ctx context.Context, req DispatchRequest) chainv1.Outcome {
	logger := ResolveLogger(o.Logger)
	outcome, err := o.Dispatch(ctx, req)
	if err != nil {
		logger.Warn("secondary chain dispatch rejected",
			"event", "chain_secondary_dispatch_rejected",
			"module", "election-trust/chain-gateway",
			"layer", "application",
			"operation", string(req.Operation),
			"subject_id", strings.TrimSpace(req.SubjectID),
			"error", err.Error(),
		)
		return chainv1.Outcome{Warning: err.Error()}
	}
	if !outcome.Success && !outcome.Pending {
		outcome.Warning = outcome.Error
		outcome.Error = ""
	}
	return outcome
}

// Complete resolves a wallet saga with the externally obtained transaction
// hash. Completing an already-committed saga is a no-op replay.
func (o Orchestrator) Complete(ctx context.Context, sagaID string, txHash string) (chainv1.Outcome, error) {
	logger := ResolveLogger(o.Logger)
	if strings.TrimSpace(txHash) == "" {
		return chainv1.Outcome{}, domainerrors.ErrTxHashRequired
	}
	saga, err := o.Sagas.GetSaga(ctx, strings.TrimSpace(sagaID))
	if err != nil {
		return chainv1.Outcome{}, err
	}
	if saga.State == entities.SagaStateCommitted {
		logger.Info("wallet saga completion replayed",
			"event", "chain_saga_complete_replayed",
			"module", "election-trust/chain-gateway",
			"layer", "application",
			"saga_id", saga.SagaID,
			"operation", string(saga.Operation),
		)
		return chainv1.Outcome{Success: true, AlreadySatisfied: true, TxHash: saga.TxHash, SagaID: saga.SagaID}, nil
	}

	saga.TxHash = strings.TrimSpace(txHash)
	saga.State = entities.SagaStateCommitted
	saga.UpdatedAt = o.now()
	if err := o.Sagas.SaveSaga(ctx, saga); err != nil {
		return chainv1.Outcome{}, err
	}
	logger.Info("wallet saga committed",
		"event", "chain_saga_committed",
		"module", "election-trust/chain-gateway",
		"layer", "application",
		"saga_id", saga.SagaID,
		"operation", string(saga.Operation),
		"subject_id", saga.SubjectID,
	)
	return chainv1.Outcome{Success: true, TxHash: saga.TxHash, SagaID: saga.SagaID}, nil
}

// CompleteBySubject resolves the open saga for an (operation, subject) pair.
// Callers that never saw the saga id (client-driven completion) use this path.
func (o Orchestrator) CompleteBySubject(
	ctx context.Context,
	op chainv1.Operation,
	subjectID string,
	txHash string,
) (chainv1.Outcome, error) {
	saga, found, err := o.Sagas.GetOpenSagaBySubject(ctx, op, strings.TrimSpace(subjectID))
	if err != nil {
		return chainv1.Outcome{}, err
	}
	if !found {
		return chainv1.Outcome{}, domainerrors.ErrSagaNotFound
	}
	return o.Complete(ctx, saga.SagaID, txHash)
}

// Status asks the chain whether an operation is already satisfied.
func (o Orchestrator) Status(ctx context.Context, op chainv1.Operation, subjectID string) (bool, error) {
	callCtx, cancel := o.boundedCtx(ctx)
	defer cancel()
	return o.Chain.Status(callCtx, op, strings.TrimSpace(subjectID))
}

func (o Orchestrator) dispatchCustodial(
	ctx context.Context,
	req DispatchRequest,
	logger *slog.Logger,
) chainv1.Outcome {
	callCtx, cancel := o.boundedCtx(ctx)
	defer cancel()

	result, err := o.Chain.Submit(callCtx, req.Operation, req.Params, req.Signer.KeyID)
	if err != nil {
		logger.Warn("custodial chain submit failed",
			"event", "chain_custodial_submit_failed",
			"module", "election-trust/chain-gateway",
			"layer", "application",
			"operation", string(req.Operation),
			"subject_id", strings.TrimSpace(req.SubjectID),
			"error", err.Error(),
		)
		return chainv1.Outcome{Error: err.Error()}
	}
	if result.AlreadySatisfied {
		logger.Info("chain operation already satisfied",
			"event", "chain_already_satisfied",
			"module", "election-trust/chain-gateway",
			"layer", "application",
			"operation", string(req.Operation),
			"subject_id", strings.TrimSpace(req.SubjectID),
		)
		return chainv1.Outcome{Success: true, AlreadySatisfied: true, TxHash: result.TxHash}
	}
	if !result.Confirmed {
		return chainv1.Outcome{Error: "chain submission not confirmed"}
	}
	logger.Info("custodial chain submit confirmed",
		"event", "chain_custodial_submit_confirmed",
		"module", "election-trust/chain-gateway",
		"layer", "application",
		"operation", string(req.Operation),
		"subject_id", strings.TrimSpace(req.SubjectID),
		"tx_hash", result.TxHash,
	)
	return chainv1.Outcome{Success: true, TxHash: result.TxHash}
}

func (o Orchestrator) dispatchWallet(
	ctx context.Context,
	req DispatchRequest,
	logger *slog.Logger,
) (chainv1.Outcome, error) {
	now := o.now()
	subjectID := strings.TrimSpace(req.SubjectID)

	// Re-preparing the same pending operation must reuse the existing saga so
	// a retried client does not fork the completion path.
	if open, found, err := o.Sagas.GetOpenSagaBySubject(ctx, req.Operation, subjectID); err != nil {
		return chainv1.Outcome{}, err
	} else if found {
		return o.pendingOutcome(open), nil
	}

	sagaID, err := o.IDGen.NewID(ctx)
	if err != nil {
		return chainv1.Outcome{}, err
	}
	saga := entities.WalletSaga{
		SagaID:        sagaID,
		Operation:     req.Operation,
		SubjectID:     subjectID,
		WalletAddress: req.Signer.WalletAddress,
		Params:        req.Params,
		State:         entities.SagaStatePrepared,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.Sagas.SaveSaga(ctx, saga); err != nil {
		return chainv1.Outcome{}, err
	}

	saga.State = entities.SagaStateAwaitingConfirmation
	saga.UpdatedAt = o.now()
	if err := o.Sagas.SaveSaga(ctx, saga); err != nil {
		return chainv1.Outcome{}, err
	}

	logger.Info("wallet dispatch prepared",
		"event", "chain_wallet_dispatch_prepared",
		"module", "election-trust/chain-gateway",
		"layer", "application",
		"saga_id", saga.SagaID,
		"operation", string(saga.Operation),
		"subject_id", saga.SubjectID,
		"wallet_address", saga.WalletAddress,
	)
	return o.pendingOutcome(saga), nil
}

func (o Orchestrator) pendingOutcome(saga entities.WalletSaga) chainv1.Outcome {
	return chainv1.Outcome{
		Pending: true,
		SagaID:  saga.SagaID,
		CallData: &chainv1.CallData{
			ContractAddress: o.Chain.ContractAddress(),
			Method:          contractMethod(saga.Operation),
			Params:          saga.Params,
		},
	}
}

func (o Orchestrator) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (o Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func contractMethod(op chainv1.Operation) string {
	switch op {
	case chainv1.OperationStartElection:
		return "startElection"
	case chainv1.OperationEndElection:
		return "endElection"
	case chainv1.OperationArchive:
		return "archiveElection"
	case chainv1.OperationApproveVoter:
		return "approveVoter"
	case chainv1.OperationCastVote:
		return "castVote"
	default:
		return string(op)
	}
}
