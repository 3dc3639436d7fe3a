// Package voteledger is the authoritative record of cast votes. It enforces
// one vote per voter per election through a storage-level uniqueness
// constraint, owns the voter approval workflow, and exposes the explicit
// ledger-confirmation path for votes the caller requires on chain.
package voteledger
