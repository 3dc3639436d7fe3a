package v1

// Operation names a logical on-chain state change dispatched by the gateway.
// This package is generated-contract-only and must stay backward compatible.
type Operation string

const (
	OperationStartElection Operation = "start_election"
	OperationEndElection   Operation = "end_election"
	OperationArchive       Operation = "archive_election"
	OperationApproveVoter  Operation = "approve_voter"
	OperationCastVote      Operation = "cast_vote"
)

// CallData describes an unsigned contract call returned to wallet-mode
// callers; the client signs and submits it out of band.
type CallData struct {
	ContractAddress string            `json:"contract_address"`
	Method          string            `json:"method"`
	Params          map[string]string `json:"params"`
}

// Outcome is the canonical result attached to every command response that
// touches the chain. Success and Pending are not mutually exclusive with
// AlreadySatisfied: an already-satisfied chain response counts as success.
type Outcome struct {
	Success          bool      `json:"success"`
	Pending          bool      `json:"pending"`
	AlreadySatisfied bool      `json:"already_satisfied"`
	TxHash           string    `json:"tx_hash,omitempty"`
	SagaID           string    `json:"saga_id,omitempty"`
	CallData         *CallData `json:"call_data,omitempty"`
	Error            string    `json:"error,omitempty"`
	Warning          string    `json:"warning,omitempty"`
}
