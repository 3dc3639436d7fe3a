package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	"ballotcore/contexts/election-trust/vote-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store keeps voters, votes and ballot projections in memory for tests and
// single-process wiring. The votesByPair index plays the role of the storage
// uniqueness constraint: InsertVote consults it under the write lock, so the
// second insert for a pair fails the same way a duplicate-key violation does.
type Store struct {
	mu sync.RWMutex

	voters      map[string]entities.Voter
	votes       map[string]entities.Vote
	votesByPair map[string]string
	elections   map[string]entities.ElectionSnapshot
	candidates  map[string]entities.CandidateSnapshot
	candidateAt map[string]time.Time
	outbox      map[string]outboxRecord
	seq         int
}

func NewStore() *Store {
	return &Store{
		voters:      make(map[string]entities.Voter),
		votes:       make(map[string]entities.Vote),
		votesByPair: make(map[string]string),
		elections:   make(map[string]entities.ElectionSnapshot),
		candidates:  make(map[string]entities.CandidateSnapshot),
		candidateAt: make(map[string]time.Time),
		outbox:      make(map[string]outboxRecord),
	}
}

func pairKey(voterID string, electionID string) string {
	return strings.TrimSpace(voterID) + "|" + strings.TrimSpace(electionID)
}

func (s *Store) SetVoter(voter entities.Voter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[strings.TrimSpace(voter.VoterID)] = voter
}

func (s *Store) SetElectionSnapshot(election entities.ElectionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) SetCandidateSnapshot(candidate entities.CandidateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(candidate.CandidateID)
	s.candidates[id] = candidate
	if _, ok := s.candidateAt[id]; !ok {
		s.seq++
		s.candidateAt[id] = time.Unix(int64(s.seq), 0)
	}
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

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(vote.VoterID, vote.ElectionID)
	if _, exists := s.votesByPair[key]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	s.votes[vote.VoteID] = vote
	s.votesByPair[key] = vote.VoteID
	return nil
}

func (s *Store) GetVote(_ context.Context, voterID string, electionID string) (entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voteID, ok := s.votesByPair[pairKey(voterID, electionID)]
	if !ok {
		return entities.Vote{}, domainerrors.ErrVoteNotFound
	}
	return s.votes[voteID], nil
}

func (s *Store) GetVoteByID(_ context.Context, voteID string) (entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return entities.Vote{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

func (s *Store) UpdateVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.votes[vote.VoteID]; !ok {
		return domainerrors.ErrVoteNotFound
	}
	s.votes[vote.VoteID] = vote
	return nil
}

func (s *Store) CountVotes(_ context.Context, electionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, vote := range s.votes {
		if vote.ElectionID == strings.TrimSpace(electionID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListVotesForElection(_ context.Context, electionID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) SaveVoter(_ context.Context, voter entities.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[strings.TrimSpace(voter.VoterID)] = voter
	return nil
}

func (s *Store) GetVoter(_ context.Context, voterID string) (entities.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[strings.TrimSpace(voterID)]
	if !ok {
		return entities.Voter{}, domainerrors.ErrVoterNotFound
	}
	return voter, nil
}

func (s *Store) UpdateVoter(_ context.Context, voter entities.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voters[strings.TrimSpace(voter.VoterID)]; !ok {
		return domainerrors.ErrVoterNotFound
	}
	s.voters[strings.TrimSpace(voter.VoterID)] = voter
	return nil
}

func (s *Store) ListVoters(_ context.Context, status entities.VoterStatus) ([]entities.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Voter, 0)
	for _, voter := range s.voters {
		if status == "" || voter.Status == status {
			items = append(items, voter)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetElectionSnapshot(_ context.Context, electionID string) (entities.ElectionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.ElectionSnapshot{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) IncrementTotalVotes(_ context.Context, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return domainerrors.ErrElectionNotFound
	}
	election.TotalVotes++
	s.elections[election.ElectionID] = election
	return nil
}

func (s *Store) GetCandidateSnapshot(_ context.Context, candidateID string) (entities.CandidateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.CandidateSnapshot{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListOrdered(_ context.Context, electionID string, category string) ([]entities.CandidateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.CandidateSnapshot, 0)
	for _, candidate := range s.candidates {
		if candidate.ElectionID == strings.TrimSpace(electionID) ||
			strings.EqualFold(candidate.Category, strings.TrimSpace(category)) {
			items = append(items, candidate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return s.candidateAt[items[i].CandidateID].Before(s.candidateAt[items[j].CandidateID])
	})
	return items, nil
}

func (s *Store) SetChainCandidateID(_ context.Context, candidateID string, chainCandidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return domainerrors.ErrCandidateNotFound
	}
	candidate.ChainCandidateID = chainCandidateID
	s.candidates[candidate.CandidateID] = candidate
	return nil
}

func (s *Store) IncrementVoteCount(_ context.Context, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return domainerrors.ErrCandidateNotFound
	}
	candidate.VoteCount++
	s.candidates[candidate.CandidateID] = candidate
	return nil
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
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
