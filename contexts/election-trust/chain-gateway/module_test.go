package chaingateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	chaingateway "ballotcore/contexts/election-trust/chain-gateway"
	"ballotcore/contexts/election-trust/chain-gateway/application"
	"ballotcore/contexts/election-trust/chain-gateway/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/chain-gateway/domain/errors"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

func custodialRequest(subjectID string) application.DispatchRequest {
	return application.DispatchRequest{
		Operation: chainv1.OperationCastVote,
		SubjectID: subjectID,
		Params:    map[string]string{"vote_id": subjectID},
		Signer:    entities.CustodialSigner("key-1"),
	}
}

func TestCustodialDispatchConfirmsAndReplaysAlreadySatisfied(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)

	first, err := module.Orchestrator.Dispatch(context.Background(), custodialRequest("vote-1"))
	require.NoError(t, err)
	require.True(t, first.Success)
	require.False(t, first.AlreadySatisfied)
	require.NotEmpty(t, first.TxHash)

	replay, err := module.Orchestrator.Dispatch(context.Background(), custodialRequest("vote-1"))
	require.NoError(t, err)
	require.True(t, replay.Success)
	require.True(t, replay.AlreadySatisfied)
	require.Equal(t, first.TxHash, replay.TxHash, "already satisfied replay reports the original hash")
}

func TestCustodialDispatchCarriesChainFailureInOutcome(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)
	module.Chain.FailWith(errors.New("node unreachable"))

	outcome, err := module.Orchestrator.Dispatch(context.Background(), custodialRequest("vote-1"))
	require.NoError(t, err, "chain failure is not a dispatch error")
	require.False(t, outcome.Success)
	require.Contains(t, outcome.Error, "node unreachable")
}

func TestDispatchSecondaryDowngradesFailureToWarning(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)
	module.Chain.FailWith(errors.New("node unreachable"))

	outcome := module.Orchestrator.DispatchSecondary(context.Background(), custodialRequest("vote-1"))
	require.False(t, outcome.Success)
	require.Empty(t, outcome.Error)
	require.Contains(t, outcome.Warning, "node unreachable")

	invalid := module.Orchestrator.DispatchSecondary(context.Background(), application.DispatchRequest{
		Operation: chainv1.OperationCastVote,
		SubjectID: "vote-1",
	})
	require.NotEmpty(t, invalid.Warning, "rejected dispatch surfaces as warning only")
}

func TestWalletDispatchPreparesSagaAndReusesIt(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)
	req := application.DispatchRequest{
		Operation: chainv1.OperationStartElection,
		SubjectID: "election-1",
		Params:    map[string]string{"election_id": "election-1"},
		Signer:    entities.WalletSigner("0xabc"),
	}

	pending, err := module.Orchestrator.Dispatch(context.Background(), req)
	require.NoError(t, err)
	require.True(t, pending.Pending)
	require.NotEmpty(t, pending.SagaID)
	require.NotNil(t, pending.CallData)
	require.Equal(t, "0xcontract", pending.CallData.ContractAddress)

	retried, err := module.Orchestrator.Dispatch(context.Background(), req)
	require.NoError(t, err)
	require.True(t, retried.Pending)
	require.Equal(t, pending.SagaID, retried.SagaID, "retried dispatch must not fork the saga")
}

func TestWalletSagaCompletion(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)
	req := application.DispatchRequest{
		Operation: chainv1.OperationStartElection,
		SubjectID: "election-1",
		Signer:    entities.WalletSigner("0xabc"),
	}
	pending, err := module.Orchestrator.Dispatch(context.Background(), req)
	require.NoError(t, err)

	_, err = module.Orchestrator.Complete(context.Background(), pending.SagaID, "")
	require.ErrorIs(t, err, domainerrors.ErrTxHashRequired)

	committed, err := module.Orchestrator.Complete(context.Background(), pending.SagaID, "0xsigned")
	require.NoError(t, err)
	require.True(t, committed.Success)
	require.Equal(t, "0xsigned", committed.TxHash)

	replayed, err := module.Orchestrator.Complete(context.Background(), pending.SagaID, "0xother")
	require.NoError(t, err)
	require.True(t, replayed.AlreadySatisfied)
	require.Equal(t, "0xsigned", replayed.TxHash, "replayed completion keeps the committed hash")

	_, err = module.Orchestrator.CompleteBySubject(context.Background(), chainv1.OperationStartElection, "election-1", "0xlate")
	require.ErrorIs(t, err, domainerrors.ErrSagaNotFound, "committed saga is no longer open")
}

func TestCompleteBySubjectResolvesOpenSaga(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)
	pending, err := module.Orchestrator.Dispatch(context.Background(), application.DispatchRequest{
		Operation: chainv1.OperationEndElection,
		SubjectID: "election-9",
		Signer:    entities.WalletSigner("0xabc"),
	})
	require.NoError(t, err)

	committed, err := module.Orchestrator.CompleteBySubject(context.Background(), chainv1.OperationEndElection, "election-9", "0xsigned")
	require.NoError(t, err)
	require.True(t, committed.Success)
	require.Equal(t, pending.SagaID, committed.SagaID)
}

func TestDispatchRejectsInvalidInput(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)

	_, err := module.Orchestrator.Dispatch(context.Background(), application.DispatchRequest{
		SubjectID: "vote-1",
		Signer:    entities.CustodialSigner("key-1"),
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidDispatch)

	_, err = module.Orchestrator.Dispatch(context.Background(), application.DispatchRequest{
		Operation: chainv1.OperationCastVote,
		SubjectID: "vote-1",
		Signer:    entities.WalletSigner(""),
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidSigner)
}

func TestStatusReflectsSatisfiedOperations(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)

	done, err := module.Orchestrator.Status(context.Background(), chainv1.OperationCastVote, "vote-1")
	require.NoError(t, err)
	require.False(t, done)

	_, err = module.Orchestrator.Dispatch(context.Background(), custodialRequest("vote-1"))
	require.NoError(t, err)

	done, err = module.Orchestrator.Status(context.Background(), chainv1.OperationCastVote, "vote-1")
	require.NoError(t, err)
	require.True(t, done)
}

func TestLoginChallengeIssueAndConsume(t *testing.T) {
	module := chaingateway.NewInMemoryModule("0xcontract", nil)

	challenge, err := module.Challenges.Issue(context.Background(), "0xABCDEF")
	require.NoError(t, err)
	require.NotEmpty(t, challenge.Nonce)

	consumed, err := module.Challenges.Consume(context.Background(), "0xabcdef")
	require.NoError(t, err)
	require.Equal(t, challenge.Nonce, consumed.Nonce, "challenge lookup is case-insensitive on address")

	_, err = module.Challenges.Consume(context.Background(), "0xabcdef")
	require.ErrorIs(t, err, domainerrors.ErrChallengeNotFound, "challenge is single use")
}
