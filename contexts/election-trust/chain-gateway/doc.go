// Package chaingateway implements the transaction orchestrator inside the
// election-trust context.
//
// The module owns chain dispatch for election and vote state changes. It
// supports two submission protocols: custodial signing (single synchronous
// round trip) and wallet signing (prepare call data, commit later with an
// externally obtained transaction hash). Wallet dispatches are persisted as
// saga rows so the completion step survives process restarts. Chain responses
// reporting an operation as already satisfied are normalized to success.
package chaingateway
