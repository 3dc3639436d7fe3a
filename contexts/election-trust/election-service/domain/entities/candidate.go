package entities

import (
	"strings"
	"time"
)

// Candidate belongs to exactly one election, but the reference may be empty
// at creation time and backfilled later by the association resolver.
type Candidate struct {
	CandidateID      string
	FirstName        string
	LastName         string
	PartyName        string
	Category         string
	Constituency     string
	VoteCount        int
	ElectionID       string
	ChainCandidateID string
	InActiveElection bool
	IsArchived       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsStrayFor reports whether the candidate should be linked to the election:
// same category, matching region when the election constrains one, and no
// election reference set yet.
func (c Candidate) IsStrayFor(election Election) bool {
	if strings.TrimSpace(c.ElectionID) != "" {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(c.Category), strings.TrimSpace(election.Category)) {
		return false
	}
	region := strings.TrimSpace(election.Region)
	if region == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.Constituency), region)
}
