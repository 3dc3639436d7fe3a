package errors

import "errors"

var (
	ErrMirrorUnavailable       = errors.New("mirror store is unavailable")
	ErrRemoteElectionNotFound  = errors.New("remote election not found")
	ErrRemoteCandidateNotFound = errors.New("remote candidate not found")
	ErrRemoteVoteNotFound      = errors.New("remote vote not found")
	ErrMirrorAlreadyVoted      = errors.New("mirror already records a vote for this voter and election")
	ErrIncrementExhausted      = errors.New("all counter increment tiers failed")
	ErrInvalidSyncInput        = errors.New("sync input is invalid")
)
