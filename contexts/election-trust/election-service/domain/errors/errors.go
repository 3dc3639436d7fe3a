package errors

import "errors"

var (
	ErrInvalidElectionInput  = errors.New("invalid election input")
	ErrElectionNotFound      = errors.New("election not found")
	ErrCandidateNotFound     = errors.New("candidate not found")
	ErrElectionArchived      = errors.New("election is archived")
	ErrElectionAlreadyActive = errors.New("election is already active")
	ErrActiveElectionExists  = errors.New("another election is already active")
	ErrElectionWindowClosed  = errors.New("election end date has passed")
	ErrElectionNotDraft      = errors.New("election is not in draft state")
)
