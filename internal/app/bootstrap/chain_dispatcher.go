package bootstrap

import (
	"context"

	"ballotcore/contexts/election-trust/chain-gateway/application"
	"ballotcore/contexts/election-trust/chain-gateway/domain/entities"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

// chainDispatcher adapts the gateway orchestrator to the dispatcher port the
// election and vote services declare. Signer selection happens here so module
// code never sees deployment configuration: custodial mode signs with the
// configured key, wallet mode expects the caller to carry wallet_address in
// the dispatch params.
type chainDispatcher struct {
	orchestrator application.Orchestrator
	signerMode   string
	signerKeyID  string
}

func (d chainDispatcher) signer(params map[string]string) entities.SignerMode {
	if d.signerMode == string(entities.SignerKindWallet) {
		return entities.WalletSigner(params["wallet_address"])
	}
	return entities.CustodialSigner(d.signerKeyID)
}

func (d chainDispatcher) Dispatch(
	ctx context.Context,
	op chainv1.Operation,
	subjectID string,
	params map[string]string,
) (chainv1.Outcome, error) {
	return d.orchestrator.Dispatch(ctx, application.DispatchRequest{
		Operation: op,
		SubjectID: subjectID,
		Params:    params,
		Signer:    d.signer(params),
	})
}

func (d chainDispatcher) DispatchSecondary(
	ctx context.Context,
	op chainv1.Operation,
	subjectID string,
	params map[string]string,
) chainv1.Outcome {
	return d.orchestrator.DispatchSecondary(ctx, application.DispatchRequest{
		Operation: op,
		SubjectID: subjectID,
		Params:    params,
		Signer:    d.signer(params),
	})
}

func (d chainDispatcher) Complete(
	ctx context.Context,
	op chainv1.Operation,
	subjectID string,
	txHash string,
) (chainv1.Outcome, error) {
	return d.orchestrator.CompleteBySubject(ctx, op, subjectID, txHash)
}

func (d chainDispatcher) Status(ctx context.Context, op chainv1.Operation, subjectID string) (bool, error) {
	return d.orchestrator.Status(ctx, op, subjectID)
}
