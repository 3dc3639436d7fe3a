// Package electionservice implements the election lifecycle state machine
// inside the election-trust context.
//
// The module owns election state transitions (draft, active, ended/archived),
// the association resolver that backfills loose candidate-to-election links,
// and the periodic sweep that ends and archives elections past their window.
// Chain dispatch and mirror propagation are reached through ports; the
// primary store is always the authority.
package electionservice
