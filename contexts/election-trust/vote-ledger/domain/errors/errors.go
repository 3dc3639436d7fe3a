package errors

import "errors"

var (
	ErrInvalidVoteInput       = errors.New("vote input is invalid")
	ErrVoterNotFound          = errors.New("voter not found")
	ErrVoterNotApproved       = errors.New("voter is not approved")
	ErrVoterAlreadyResolved   = errors.New("voter approval already resolved")
	ErrAlreadyVoted           = errors.New("voter has already voted in this election")
	ErrElectionNotFound       = errors.New("election not found")
	ErrElectionNotActive      = errors.New("election is not active")
	ErrElectionWindowClosed   = errors.New("election voting window has closed")
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrCandidateNotInElection = errors.New("candidate does not belong to this election")
	ErrVoteNotFound           = errors.New("vote not found")
	ErrChainRecordFailed      = errors.New("chain vote recording failed")
)
