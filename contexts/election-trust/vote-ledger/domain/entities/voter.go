package entities

import "time"

type VoterStatus string

const (
	VoterStatusPending  VoterStatus = "pending"
	VoterStatusApproved VoterStatus = "approved"
	VoterStatusRejected VoterStatus = "rejected"
)

// Voter is the ledger-side registration record. HasVoted and
// LastVotedElection are caches over the authoritative Vote rows; the
// uniqueness constraint on votes is what actually prevents double voting.
type Voter struct {
	VoterID           string
	FullName          string
	Email             string
	WalletAddress     string
	Status            VoterStatus
	HasVoted          bool
	LastVotedElection string
	ApproveTxHash     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (v Voter) Approved() bool {
	return v.Status == VoterStatusApproved
}
