package entities

import (
	"time"

	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type SagaState string

const (
	SagaStatePrepared             SagaState = "prepared"
	SagaStateAwaitingConfirmation SagaState = "awaiting_confirmation"
	SagaStateCommitted            SagaState = "committed"
)

// WalletSaga tracks a wallet-signed dispatch across its two round trips. The
// row is written before call data is returned to the client so the complete
// step can be resumed idempotently after a restart.
type WalletSaga struct {
	SagaID        string
	Operation     chainv1.Operation
	SubjectID     string
	WalletAddress string
	Params        map[string]string
	State         SagaState
	TxHash        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LoginChallenge is a single-use signing nonce scoped to a wallet address.
// Expired or consumed challenges are rejected on lookup.
type LoginChallenge struct {
	Address   string
	Nonce     string
	ExpiresAt time.Time
}
