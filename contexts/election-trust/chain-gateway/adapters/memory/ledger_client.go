package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"ballotcore/contexts/election-trust/chain-gateway/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

// LedgerClient is an in-process chain stand-in used while runtime wiring is
// finalized for a real node endpoint. It remembers satisfied operations so a
// repeated submit reports AlreadySatisfied, matching chain semantics.
type LedgerClient struct {
	mu        sync.Mutex
	satisfied map[string]string
	failErr   error
	contract  string
	sequence  int
}

func NewLedgerClient(contractAddress string) *LedgerClient {
	if strings.TrimSpace(contractAddress) == "" {
		contractAddress = "0x0000000000000000000000000000000000000000"
	}
	return &LedgerClient{
		satisfied: make(map[string]string),
		contract:  contractAddress,
	}
}

// FailWith forces every subsequent Submit/Status call to fail. Passing nil
// restores normal behavior.
func (c *LedgerClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failErr = err
}

func (c *LedgerClient) Submit(
	ctx context.Context,
	op chainv1.Operation,
	params map[string]string,
	_ string,
) (ports.SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.SubmitResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return ports.SubmitResult{}, c.failErr
	}

	key := operationKey(op, params)
	if txHash, ok := c.satisfied[key]; ok {
		return ports.SubmitResult{Confirmed: true, AlreadySatisfied: true, TxHash: txHash}, nil
	}

	c.sequence++
	txHash := txHashFor(key, c.sequence)
	c.satisfied[key] = txHash
	return ports.SubmitResult{Confirmed: true, TxHash: txHash}, nil
}

func (c *LedgerClient) Status(ctx context.Context, op chainv1.Operation, subjectID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return false, c.failErr
	}
	prefix := string(op) + "|"
	for key := range c.satisfied {
		if strings.HasPrefix(key, prefix) && strings.Contains(key, strings.TrimSpace(subjectID)) {
			return true, nil
		}
	}
	return false, nil
}

func (c *LedgerClient) ContractAddress() string {
	return c.contract
}

func operationKey(op chainv1.Operation, params map[string]string) string {
	subject := params["election_id"]
	if subject == "" {
		subject = params["voter_id"]
	}
	if subject == "" {
		subject = params["vote_id"]
	}
	return string(op) + "|" + subject
}

func txHashFor(key string, sequence int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", key, sequence)))
	return "0x" + hex.EncodeToString(sum[:])
}
