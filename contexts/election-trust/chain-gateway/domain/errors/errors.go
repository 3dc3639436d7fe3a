package errors

import "errors"

var (
	ErrInvalidSigner       = errors.New("signer mode is invalid")
	ErrInvalidDispatch     = errors.New("invalid dispatch input")
	ErrSagaNotFound        = errors.New("wallet saga not found")
	ErrSagaAlreadyResolved = errors.New("wallet saga is already committed")
	ErrTxHashRequired      = errors.New("external transaction hash is required")
	ErrChainUnavailable    = errors.New("chain submission failed")
	ErrChallengeNotFound   = errors.New("login challenge not found or expired")
)
