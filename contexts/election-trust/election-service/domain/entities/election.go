package entities

import (
	"strings"
	"time"
)

// Election is the aggregate driven by the lifecycle state machine. The state
// is carried by the IsActive/IsArchived pair: draft (false,false), active
// (true,false), ended/archived (false,true). Archived is terminal.
type Election struct {
	ElectionID      string
	Title           string
	Category        string
	Region          string
	Pincode         string
	StartDate       time.Time
	EndDate         time.Time
	IsActive        bool
	IsArchived      bool
	TotalVotes      int
	ChainElectionID string
	StartTxHash     string
	EndTxHash       string
	ArchiveTxHash   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsDraft reports whether the election may still be edited or deleted.
func (e Election) IsDraft() bool {
	return !e.IsActive && !e.IsArchived
}

func (e Election) PastEnd(now time.Time) bool {
	return now.UTC().After(e.EndDate.UTC())
}

func (e Election) ValidateBasics() bool {
	return strings.TrimSpace(e.Title) != "" &&
		strings.TrimSpace(e.Category) != "" &&
		strings.TrimSpace(e.Region) != "" &&
		strings.TrimSpace(e.Pincode) != "" &&
		!e.StartDate.IsZero() &&
		!e.EndDate.IsZero() &&
		e.EndDate.After(e.StartDate)
}
