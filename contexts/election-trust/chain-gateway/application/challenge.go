package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-trust/chain-gateway/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/chain-gateway/domain/errors"
	"ballotcore/contexts/election-trust/chain-gateway/ports"
)

// ChallengeService issues and consumes single-use wallet login nonces. State
// lives behind the ChallengeStore port with explicit TTL, never in a
// process-global map.
type ChallengeService struct {
	Challenges ports.ChallengeStore
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	TTL        time.Duration
	Logger     *slog.Logger
}

func (s ChallengeService) Issue(ctx context.Context, address string) (entities.LoginChallenge, error) {
	logger := ResolveLogger(s.Logger)
	address = strings.TrimSpace(strings.ToLower(address))
	if address == "" {
		return entities.LoginChallenge{}, domainerrors.ErrInvalidDispatch
	}
	nonce, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.LoginChallenge{}, err
	}
	challenge := entities.LoginChallenge{
		Address:   address,
		Nonce:     nonce,
		ExpiresAt: s.now().Add(s.resolveTTL()),
	}
	if err := s.Challenges.PutChallenge(ctx, challenge); err != nil {
		return entities.LoginChallenge{}, err
	}
	logger.Info("login challenge issued",
		"event", "chain_challenge_issued",
		"module", "election-trust/chain-gateway",
		"layer", "application",
		"address", address,
	)
	return challenge, nil
}

// Consume takes the live challenge for an address exactly once. A second
// consume, or a consume after expiry, fails with ErrChallengeNotFound.
func (s ChallengeService) Consume(ctx context.Context, address string) (entities.LoginChallenge, error) {
	address = strings.TrimSpace(strings.ToLower(address))
	challenge, found, err := s.Challenges.TakeChallenge(ctx, address, s.now())
	if err != nil {
		return entities.LoginChallenge{}, err
	}
	if !found {
		return entities.LoginChallenge{}, domainerrors.ErrChallengeNotFound
	}
	return challenge, nil
}

func (s ChallengeService) resolveTTL() time.Duration {
	if s.TTL <= 0 {
		return 5 * time.Minute
	}
	return s.TTL
}

func (s ChallengeService) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
