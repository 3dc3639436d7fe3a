package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-trust/chain-gateway/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/chain-gateway/domain/errors"
	chainv1 "ballotcore/contracts/gen/chain/v1"

	"github.com/google/uuid"
)

// Store keeps wallet sagas and login challenges in memory for tests and
// single-process wiring.
type Store struct {
	mu         sync.RWMutex
	sagas      map[string]entities.WalletSaga
	challenges map[string]entities.LoginChallenge
}

func NewStore() *Store {
	return &Store{
		sagas:      make(map[string]entities.WalletSaga),
		challenges: make(map[string]entities.LoginChallenge),
	}
}

func (s *Store) SaveSaga(_ context.Context, saga entities.WalletSaga) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sagas[strings.TrimSpace(saga.SagaID)] = saga
	return nil
}

func (s *Store) GetSaga(_ context.Context, sagaID string) (entities.WalletSaga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	saga, ok := s.sagas[strings.TrimSpace(sagaID)]
	if !ok {
		return entities.WalletSaga{}, domainerrors.ErrSagaNotFound
	}
	return saga, nil
}

func (s *Store) GetOpenSagaBySubject(
	_ context.Context,
	op chainv1.Operation,
	subjectID string,
) (entities.WalletSaga, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest entities.WalletSaga
	found := false
	for _, saga := range s.sagas {
		if saga.Operation != op || saga.SubjectID != strings.TrimSpace(subjectID) {
			continue
		}
		if saga.State == entities.SagaStateCommitted {
			continue
		}
		if !found || saga.CreatedAt.After(newest.CreatedAt) {
			newest = saga
			found = true
		}
	}
	return newest, found, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) PutChallenge(_ context.Context, challenge entities.LoginChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[strings.TrimSpace(challenge.Address)] = challenge
	return nil
}

func (s *Store) TakeChallenge(
	_ context.Context,
	address string,
	now time.Time,
) (entities.LoginChallenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	address = strings.TrimSpace(address)
	challenge, ok := s.challenges[address]
	if !ok {
		return entities.LoginChallenge{}, false, nil
	}
	delete(s.challenges, address)
	if challenge.ExpiresAt.Before(now) {
		return entities.LoginChallenge{}, false, nil
	}
	return challenge, true, nil
}
