package entities

import "time"

// Vote is one ledger row. CandidateID is empty for a none-of-the-above vote.
// At most one row may ever exist per (VoterID, ElectionID) pair; the storage
// adapter maps the duplicate-key violation to ErrAlreadyVoted.
type Vote struct {
	VoteID         string
	VoterID        string
	ElectionID     string
	CandidateID    string
	TxHash         string
	ChainConfirmed bool
	CastAt         time.Time
	UpdatedAt      time.Time
}

func (v Vote) NoneOption() bool {
	return v.CandidateID == ""
}

// ElectionSnapshot is the read model of an election as the ledger needs it
// for cast-time preconditions.
type ElectionSnapshot struct {
	ElectionID string
	Title      string
	Category   string
	IsActive   bool
	IsArchived bool
	EndDate    time.Time
	TotalVotes int
}

// CandidateSnapshot is the read model of a candidate for ballot validation
// and counter updates. ChainCandidateID is the external-ledger correlation
// key, backfilled deterministically when absent.
type CandidateSnapshot struct {
	CandidateID      string
	FirstName        string
	LastName         string
	PartyName        string
	Category         string
	ElectionID       string
	ChainCandidateID string
	VoteCount        int
}
