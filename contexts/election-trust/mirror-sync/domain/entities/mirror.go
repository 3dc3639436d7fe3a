package entities

import "time"

// RemoteElection is the mirror-side election record. MirrorKey is the
// mirror's own key; OriginalElectionID correlates back to the primary store.
type RemoteElection struct {
	MirrorKey          string
	OriginalElectionID string
	Title              string
	IsActive           bool
	IsArchived         bool
	TotalVotes         int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RemoteCandidate mirrors a ballot candidate. OriginalCandidateID may carry a
// disambiguating suffix appended by earlier sync runs, which is why the
// matcher includes a prefix strategy.
type RemoteCandidate struct {
	MirrorKey           string
	OriginalCandidateID string
	ElectionKey         string
	FirstName           string
	LastName            string
	PartyName           string
	VoteCount           int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RemoteVote mirrors one cast vote. The (VoterID, ElectionKey) pair is the
// mirror-side duplicate guard.
type RemoteVote struct {
	MirrorKey      string
	OriginalVoteID string
	VoterID        string
	ElectionKey    string
	CandidateKey   string
	CreatedAt      time.Time
}
