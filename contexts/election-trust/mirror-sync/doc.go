// Package mirrorsync propagates primary-store election and vote writes into
// the secondary ledger mirror. Propagation is best effort: the primary store
// stays authoritative, mirror failures are logged and retried, and the
// candidate correlation heuristic tolerates mirrors whose keys drifted from
// the primary's.
package mirrorsync
