package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
	"ballotcore/contexts/election-trust/mirror-sync/ports"

	"github.com/google/uuid"
)

// Store is the in-memory mirror used by tests and single-process wiring.
// Sessions draw from a bounded slot pool so leaked sessions surface as
// acquisition stalls, the same failure mode a real connection pool has.
// The Fail* knobs inject faults per concern for resilience tests.
type Store struct {
	mu sync.RWMutex

	elections  map[string]entities.RemoteElection
	candidates map[string]entities.RemoteCandidate
	votes      map[string]entities.RemoteVote
	seen       map[string]time.Time
	seq        int

	slots chan struct{}

	acquireErr error
	saveErr    error
	atomicErr  error
	rawErr     error
}

func NewStore(poolSize int) *Store {
	if poolSize <= 0 {
		poolSize = 8
	}
	return &Store{
		elections:  make(map[string]entities.RemoteElection),
		candidates: make(map[string]entities.RemoteCandidate),
		votes:      make(map[string]entities.RemoteVote),
		seen:       make(map[string]time.Time),
		slots:      make(chan struct{}, poolSize),
	}
}

// FailAcquire makes every Acquire fail, simulating an unreachable mirror.
func (s *Store) FailAcquire(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquireErr = err
}

// FailSave fails the load-mutate-save candidate path.
func (s *Store) FailSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// FailAtomic fails the atomic increment tier.
func (s *Store) FailAtomic(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atomicErr = err
}

// FailRaw fails the raw increment tier.
func (s *Store) FailRaw(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawErr = err
}

func (s *Store) SetElection(election entities.RemoteElection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[election.MirrorKey] = election
}

func (s *Store) SetCandidate(candidate entities.RemoteCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	candidate.CreatedAt = time.Unix(int64(s.seq), 0)
	s.candidates[candidate.MirrorKey] = candidate
}

func (s *Store) Candidate(mirrorKey string) (entities.RemoteCandidate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[mirrorKey]
	return candidate, ok
}

func (s *Store) Election(originalElectionID string) (entities.RemoteElection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, election := range s.elections {
		if election.OriginalElectionID == originalElectionID {
			return election, true
		}
	}
	return entities.RemoteElection{}, false
}

func (s *Store) VoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes)
}

func (s *Store) Acquire(ctx context.Context) (ports.Session, error) {
	s.mu.RLock()
	acquireErr := s.acquireErr
	s.mu.RUnlock()
	if acquireErr != nil {
		return nil, acquireErr
	}
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &session{store: s}, nil
}

type session struct {
	store    *Store
	released bool
}

func (se *session) Release() {
	if se.released {
		return
	}
	se.released = true
	<-se.store.slots
}

func (se *session) GetElectionByOriginalID(_ context.Context, originalElectionID string) (entities.RemoteElection, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	for _, election := range se.store.elections {
		if election.OriginalElectionID == strings.TrimSpace(originalElectionID) {
			return election, nil
		}
	}
	return entities.RemoteElection{}, domainerrors.ErrRemoteElectionNotFound
}

func (se *session) UpsertElection(_ context.Context, election entities.RemoteElection) error {
	se.store.mu.Lock()
	defer se.store.mu.Unlock()
	se.store.elections[election.MirrorKey] = election
	return nil
}

func (se *session) GetCandidateByKey(_ context.Context, mirrorKey string) (entities.RemoteCandidate, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	candidate, ok := se.store.candidates[strings.TrimSpace(mirrorKey)]
	if !ok {
		return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
	}
	return candidate, nil
}

func (se *session) FindCandidateByOriginalID(_ context.Context, electionKey string, originalCandidateID string) (entities.RemoteCandidate, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	for _, candidate := range se.store.candidates {
		if candidate.ElectionKey == electionKey && candidate.OriginalCandidateID == originalCandidateID {
			return candidate, nil
		}
	}
	return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
}

func (se *session) FindCandidateByOriginalIDPrefix(_ context.Context, electionKey string, originalCandidateIDPrefix string) (entities.RemoteCandidate, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	for _, candidate := range se.store.candidates {
		if candidate.ElectionKey == electionKey &&
			candidate.OriginalCandidateID != "" &&
			strings.HasPrefix(candidate.OriginalCandidateID, originalCandidateIDPrefix) {
			return candidate, nil
		}
	}
	return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
}

func (se *session) FindCandidateByName(_ context.Context, electionKey string, firstName string, lastName string, partyName string) (entities.RemoteCandidate, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	for _, candidate := range se.store.candidates {
		if candidate.ElectionKey == electionKey &&
			strings.EqualFold(candidate.FirstName, firstName) &&
			strings.EqualFold(candidate.LastName, lastName) &&
			strings.EqualFold(candidate.PartyName, partyName) {
			return candidate, nil
		}
	}
	return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
}

func (se *session) CreateCandidate(_ context.Context, candidate entities.RemoteCandidate) error {
	se.store.mu.Lock()
	defer se.store.mu.Unlock()
	se.store.seq++
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Unix(int64(se.store.seq), 0)
	}
	se.store.candidates[candidate.MirrorKey] = candidate
	return nil
}

func (se *session) SaveCandidate(_ context.Context, candidate entities.RemoteCandidate) error {
	se.store.mu.Lock()
	defer se.store.mu.Unlock()
	if se.store.saveErr != nil {
		return se.store.saveErr
	}
	if _, ok := se.store.candidates[candidate.MirrorKey]; !ok {
		return domainerrors.ErrRemoteCandidateNotFound
	}
	se.store.candidates[candidate.MirrorKey] = candidate
	return nil
}

func (se *session) ListCandidatesForElection(_ context.Context, electionKey string) ([]entities.RemoteCandidate, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	items := make([]entities.RemoteCandidate, 0)
	for _, candidate := range se.store.candidates {
		if candidate.ElectionKey == electionKey {
			items = append(items, candidate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (se *session) AtomicIncrementVotes(_ context.Context, candidateKey string, delta int) error {
	se.store.mu.Lock()
	defer se.store.mu.Unlock()
	if se.store.atomicErr != nil {
		return se.store.atomicErr
	}
	candidate, ok := se.store.candidates[candidateKey]
	if !ok {
		return domainerrors.ErrRemoteCandidateNotFound
	}
	candidate.VoteCount += delta
	se.store.candidates[candidateKey] = candidate
	return nil
}

func (se *session) RawIncrementVotes(_ context.Context, candidateKey string, delta int) error {
	se.store.mu.Lock()
	defer se.store.mu.Unlock()
	if se.store.rawErr != nil {
		return se.store.rawErr
	}
	candidate, ok := se.store.candidates[candidateKey]
	if !ok {
		return domainerrors.ErrRemoteCandidateNotFound
	}
	candidate.VoteCount += delta
	se.store.candidates[candidateKey] = candidate
	return nil
}

func (se *session) GetVoteByPair(_ context.Context, voterID string, electionKey string) (entities.RemoteVote, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	for _, vote := range se.store.votes {
		if vote.VoterID == strings.TrimSpace(voterID) && vote.ElectionKey == electionKey {
			return vote, nil
		}
	}
	return entities.RemoteVote{}, domainerrors.ErrRemoteVoteNotFound
}

func (se *session) CreateVote(_ context.Context, vote entities.RemoteVote) error {
	se.store.mu.Lock()
	defer se.store.mu.Unlock()
	se.store.votes[vote.MirrorKey] = vote
	return nil
}

func (se *session) UpdateVote(_ context.Context, vote entities.RemoteVote) error {
	se.store.mu.Lock()
	defer se.store.mu.Unlock()
	if _, ok := se.store.votes[vote.MirrorKey]; !ok {
		return domainerrors.ErrRemoteVoteNotFound
	}
	se.store.votes[vote.MirrorKey] = vote
	return nil
}

func (se *session) ListVotesForElection(_ context.Context, electionKey string) ([]entities.RemoteVote, error) {
	se.store.mu.RLock()
	defer se.store.mu.RUnlock()
	items := make([]entities.RemoteVote, 0)
	for _, vote := range se.store.votes {
		if vote.ElectionKey == electionKey {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, _ string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[eventID]; ok {
		return true, nil
	}
	s.seen[eventID] = expiresAt
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.MirrorStore = (*Store)(nil)
var _ ports.Session = (*session)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
