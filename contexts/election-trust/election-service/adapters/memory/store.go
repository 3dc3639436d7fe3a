package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store keeps elections, candidates and outbox rows in memory for tests and
// single-process wiring. Vote counts are seeded explicitly since the vote
// rows live in another module.
type Store struct {
	mu sync.RWMutex

	elections  map[string]entities.Election
	candidates map[string]entities.Candidate
	voteCounts map[string]int
	outbox     map[string]outboxRecord
}

func NewStore(seed []entities.Election) *Store {
	elections := make(map[string]entities.Election, len(seed))
	for _, election := range seed {
		elections[election.ElectionID] = election
	}
	return &Store{
		elections:  elections,
		candidates: make(map[string]entities.Candidate),
		voteCounts: make(map[string]int),
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) SetElection(election entities.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) SetCandidate(candidate entities.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
}

func (s *Store) SetVoteCount(electionID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voteCounts[strings.TrimSpace(electionID)] = count
}

func (s *Store) PendingOutbox() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if !record.published {
			items = append(items, record.message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) UpdateElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(election.ElectionID)
	if _, ok := s.elections[id]; !ok {
		return domainerrors.ErrElectionNotFound
	}
	s.elections[id] = election
	return nil
}

func (s *Store) DeleteElection(_ context.Context, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(electionID)
	if _, ok := s.elections[id]; !ok {
		return domainerrors.ErrElectionNotFound
	}
	delete(s.elections, id)
	return nil
}

func (s *Store) ListElections(_ context.Context) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0, len(s.elections))
	for _, election := range s.elections {
		items = append(items, election)
	}
	sortElectionsByCreation(items)
	return items, nil
}

func (s *Store) GetActiveElection(_ context.Context) (entities.Election, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, election := range s.elections {
		if election.IsActive {
			return election, true, nil
		}
	}
	return entities.Election{}, false, nil
}

func (s *Store) ListActivePastEnd(_ context.Context, now time.Time, limit int) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if election.IsActive && election.PastEnd(now) {
			items = append(items, election)
		}
	}
	sortElectionsByCreation(items)
	return capElections(items, limit), nil
}

func (s *Store) ListEndedUnarchived(_ context.Context, now time.Time, limit int) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if !election.IsActive && !election.IsArchived && election.PastEnd(now) {
			items = append(items, election)
		}
	}
	sortElectionsByCreation(items)
	return capElections(items, limit), nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListStray(_ context.Context, category string, region string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category = strings.TrimSpace(category)
	region = strings.TrimSpace(region)
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if strings.TrimSpace(candidate.ElectionID) != "" {
			continue
		}
		if !strings.EqualFold(candidate.Category, category) {
			continue
		}
		if region != "" && !strings.EqualFold(candidate.Constituency, region) {
			continue
		}
		items = append(items, candidate)
	}
	sortCandidatesByCreation(items)
	return items, nil
}

func (s *Store) AssignElection(_ context.Context, candidateIDs []string, electionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	electionID = strings.TrimSpace(electionID)
	changed := 0
	for _, id := range candidateIDs {
		candidate, ok := s.candidates[strings.TrimSpace(id)]
		if !ok || strings.TrimSpace(candidate.ElectionID) != "" {
			continue
		}
		candidate.ElectionID = electionID
		s.candidates[candidate.CandidateID] = candidate
		changed++
	}
	return changed, nil
}

func (s *Store) ListForElection(_ context.Context, electionID string, category string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	electionID = strings.TrimSpace(electionID)
	category = strings.TrimSpace(category)
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.ElectionID == electionID || strings.EqualFold(candidate.Category, category) {
			items = append(items, candidate)
		}
	}
	sortCandidatesByCreation(items)
	return items, nil
}

func (s *Store) SetInActiveElection(_ context.Context, electionID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	electionID = strings.TrimSpace(electionID)
	for id, candidate := range s.candidates {
		if candidate.ElectionID != electionID {
			continue
		}
		candidate.InActiveElection = active
		s.candidates[id] = candidate
	}
	return nil
}

func (s *Store) ArchiveForElection(_ context.Context, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	electionID = strings.TrimSpace(electionID)
	for id, candidate := range s.candidates {
		if candidate.ElectionID != electionID {
			continue
		}
		candidate.IsArchived = true
		s.candidates[id] = candidate
	}
	return nil
}

func (s *Store) CountVotes(_ context.Context, electionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voteCounts[strings.TrimSpace(electionID)], nil
}

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.outbox[event.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    event.OccurredAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	items := s.PendingOutbox()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func capElections(items []entities.Election, limit int) []entities.Election {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func sortElectionsByCreation(items []entities.Election) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func sortCandidatesByCreation(items []entities.Candidate) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
