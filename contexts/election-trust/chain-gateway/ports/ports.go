package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-trust/chain-gateway/domain/entities"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

// SubmitResult is the raw chain response before gateway normalization.
// AlreadySatisfied covers "already started", "already approved" and similar
// idempotent rejections the chain reports for repeated operations.
type SubmitResult struct {
	Confirmed        bool
	AlreadySatisfied bool
	TxHash           string
}

// LedgerClient is the opaque chain submission capability. Implementations
// must honor ctx cancellation; the gateway bounds every call with a timeout.
type LedgerClient interface {
	Submit(ctx context.Context, op chainv1.Operation, params map[string]string, keyID string) (SubmitResult, error)
	Status(ctx context.Context, op chainv1.Operation, subjectID string) (done bool, err error)
	ContractAddress() string
}

// SagaStore persists wallet-mode dispatches between the prepare and complete
// round trips.
type SagaStore interface {
	SaveSaga(ctx context.Context, saga entities.WalletSaga) error
	GetSaga(ctx context.Context, sagaID string) (entities.WalletSaga, error)
	// GetOpenSagaBySubject returns the newest non-committed saga for an
	// (operation, subject) pair so repeated prepares reuse one row.
	GetOpenSagaBySubject(ctx context.Context, op chainv1.Operation, subjectID string) (entities.WalletSaga, bool, error)
}

// ChallengeStore holds single-use login nonces keyed by wallet address with
// explicit expiry.
type ChallengeStore interface {
	PutChallenge(ctx context.Context, challenge entities.LoginChallenge) error
	// TakeChallenge atomically consumes a live challenge for the address.
	TakeChallenge(ctx context.Context, address string, now time.Time) (entities.LoginChallenge, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
