package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
	"ballotcore/contexts/election-trust/mirror-sync/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store hands out mirror sessions bounded by a slot pool layered over the
// shared gorm connection. The slot pool keeps the mirror from starving the
// primary store's pool when the mirror database degrades.
type Store struct {
	db     *gorm.DB
	slots  chan struct{}
	logger *slog.Logger
}

func NewStore(db *gorm.DB, poolSize int, logger *slog.Logger) *Store {
	if poolSize <= 0 {
		poolSize = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		slots:  make(chan struct{}, poolSize),
		logger: logger,
	}
}

func (s *Store) Acquire(ctx context.Context) (ports.Session, error) {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &session{store: s}, nil
}

func (s *Store) ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	row := dedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: payloadHash,
		ExpiresAt:   expiresAt.UTC(),
	}
	create := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return true, nil
		}
		return false, create.Error
	}
	return create.RowsAffected == 0, nil
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

func (se *session) db(ctx context.Context) *gorm.DB {
	return se.store.db.WithContext(ctx)
}

func (se *session) GetElectionByOriginalID(ctx context.Context, originalElectionID string) (entities.RemoteElection, error) {
	var row electionModel
	err := se.db(ctx).
		Where("original_election_id = ?", strings.TrimSpace(originalElectionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RemoteElection{}, domainerrors.ErrRemoteElectionNotFound
		}
		return entities.RemoteElection{}, se.logError("mirror_get_election_failed", err, "original_election_id", strings.TrimSpace(originalElectionID))
	}
	return row.toEntity(), nil
}

func (se *session) UpsertElection(ctx context.Context, election entities.RemoteElection) error {
	row := electionModelFromEntity(election)
	err := se.db(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":       row.Title,
			"is_active":   row.IsActive,
			"is_archived": row.IsArchived,
			"total_votes": row.TotalVotes,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return se.logError("mirror_upsert_election_failed", err, "mirror_key", row.ID)
	}
	return nil
}

func (se *session) GetCandidateByKey(ctx context.Context, mirrorKey string) (entities.RemoteCandidate, error) {
	var row candidateModel
	err := se.db(ctx).
		Where("id = ?", strings.TrimSpace(mirrorKey)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
		}
		return entities.RemoteCandidate{}, se.logError("mirror_get_candidate_failed", err, "mirror_key", strings.TrimSpace(mirrorKey))
	}
	return row.toEntity(), nil
}

func (se *session) FindCandidateByOriginalID(ctx context.Context, electionKey string, originalCandidateID string) (entities.RemoteCandidate, error) {
	var row candidateModel
	err := se.db(ctx).
		Where("election_key = ?", electionKey).
		Where("original_candidate_id = ?", originalCandidateID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
		}
		return entities.RemoteCandidate{}, se.logError("mirror_find_candidate_failed", err, "election_key", electionKey)
	}
	return row.toEntity(), nil
}

func (se *session) FindCandidateByOriginalIDPrefix(ctx context.Context, electionKey string, originalCandidateIDPrefix string) (entities.RemoteCandidate, error) {
	var row candidateModel
	err := se.db(ctx).
		Where("election_key = ?", electionKey).
		Where("original_candidate_id LIKE ?", originalCandidateIDPrefix+"%").
		Order("original_candidate_id ASC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
		}
		return entities.RemoteCandidate{}, se.logError("mirror_find_candidate_prefix_failed", err, "election_key", electionKey)
	}
	return row.toEntity(), nil
}

func (se *session) FindCandidateByName(ctx context.Context, electionKey string, firstName string, lastName string, partyName string) (entities.RemoteCandidate, error) {
	var row candidateModel
	err := se.db(ctx).
		Where("election_key = ?", electionKey).
		Where("LOWER(first_name) = LOWER(?)", strings.TrimSpace(firstName)).
		Where("LOWER(last_name) = LOWER(?)", strings.TrimSpace(lastName)).
		Where("LOWER(party_name) = LOWER(?)", strings.TrimSpace(partyName)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RemoteCandidate{}, domainerrors.ErrRemoteCandidateNotFound
		}
		return entities.RemoteCandidate{}, se.logError("mirror_find_candidate_name_failed", err, "election_key", electionKey)
	}
	return row.toEntity(), nil
}

func (se *session) CreateCandidate(ctx context.Context, candidate entities.RemoteCandidate) error {
	row := candidateModelFromEntity(candidate)
	if err := se.db(ctx).Create(&row).Error; err != nil {
		return se.logError("mirror_create_candidate_failed", err, "mirror_key", row.ID)
	}
	return nil
}

func (se *session) SaveCandidate(ctx context.Context, candidate entities.RemoteCandidate) error {
	row := candidateModelFromEntity(candidate)
	err := se.db(ctx).Model(&candidateModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"original_candidate_id": row.OriginalCandidateID,
			"first_name":            row.FirstName,
			"last_name":             row.LastName,
			"party_name":            row.PartyName,
			"vote_count":            row.VoteCount,
			"updated_at":            row.UpdatedAt,
		}).
		Error
	if err != nil {
		return se.logError("mirror_save_candidate_failed", err, "mirror_key", row.ID)
	}
	return nil
}

func (se *session) ListCandidatesForElection(ctx context.Context, electionKey string) ([]entities.RemoteCandidate, error) {
	var rows []candidateModel
	err := se.db(ctx).
		Where("election_key = ?", electionKey).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, se.logError("mirror_list_candidates_failed", err, "election_key", electionKey)
	}
	items := make([]entities.RemoteCandidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (se *session) AtomicIncrementVotes(ctx context.Context, candidateKey string, delta int) error {
	result := se.db(ctx).Model(&candidateModel{}).
		Where("id = ?", strings.TrimSpace(candidateKey)).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta))
	if result.Error != nil {
		return se.logError("mirror_atomic_increment_failed", result.Error, "mirror_key", strings.TrimSpace(candidateKey))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRemoteCandidateNotFound
	}
	return nil
}

func (se *session) RawIncrementVotes(ctx context.Context, candidateKey string, delta int) error {
	result := se.db(ctx).Exec(
		"UPDATE mirror_candidates SET vote_count = vote_count + ? WHERE id = ?",
		delta, strings.TrimSpace(candidateKey),
	)
	if result.Error != nil {
		return se.logError("mirror_raw_increment_failed", result.Error, "mirror_key", strings.TrimSpace(candidateKey))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRemoteCandidateNotFound
	}
	return nil
}

func (se *session) GetVoteByPair(ctx context.Context, voterID string, electionKey string) (entities.RemoteVote, error) {
	var row voteModel
	err := se.db(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("election_key = ?", electionKey).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RemoteVote{}, domainerrors.ErrRemoteVoteNotFound
		}
		return entities.RemoteVote{}, se.logError("mirror_get_vote_failed", err, "election_key", electionKey)
	}
	return row.toEntity(), nil
}

func (se *session) CreateVote(ctx context.Context, vote entities.RemoteVote) error {
	row := voteModelFromEntity(vote)
	if err := se.db(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrMirrorAlreadyVoted
		}
		return se.logError("mirror_create_vote_failed", err, "mirror_key", row.ID)
	}
	return nil
}

func (se *session) UpdateVote(ctx context.Context, vote entities.RemoteVote) error {
	row := voteModelFromEntity(vote)
	err := se.db(ctx).Model(&voteModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"candidate_key": row.CandidateKey,
		}).
		Error
	if err != nil {
		return se.logError("mirror_update_vote_failed", err, "mirror_key", row.ID)
	}
	return nil
}

func (se *session) ListVotesForElection(ctx context.Context, electionKey string) ([]entities.RemoteVote, error) {
	var rows []voteModel
	err := se.db(ctx).
		Where("election_key = ?", electionKey).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, se.logError("mirror_list_votes_failed", err, "election_key", electionKey)
	}
	items := make([]entities.RemoteVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (se *session) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-trust/mirror-sync",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	se.store.logger.Error("mirror store operation failed", fields...)
	return err
}

type electionModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	OriginalElectionID string    `gorm:"column:original_election_id;uniqueIndex"`
	Title              string    `gorm:"column:title"`
	IsActive           bool      `gorm:"column:is_active"`
	IsArchived         bool      `gorm:"column:is_archived"`
	TotalVotes         int       `gorm:"column:total_votes"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "mirror_elections"
}

func electionModelFromEntity(election entities.RemoteElection) electionModel {
	return electionModel{
		ID:                 election.MirrorKey,
		OriginalElectionID: election.OriginalElectionID,
		Title:              election.Title,
		IsActive:           election.IsActive,
		IsArchived:         election.IsArchived,
		TotalVotes:         election.TotalVotes,
		CreatedAt:          election.CreatedAt,
		UpdatedAt:          election.UpdatedAt,
	}
}

func (m electionModel) toEntity() entities.RemoteElection {
	return entities.RemoteElection{
		MirrorKey:          m.ID,
		OriginalElectionID: m.OriginalElectionID,
		Title:              m.Title,
		IsActive:           m.IsActive,
		IsArchived:         m.IsArchived,
		TotalVotes:         m.TotalVotes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

type candidateModel struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	OriginalCandidateID string    `gorm:"column:original_candidate_id;index"`
	ElectionKey         string    `gorm:"column:election_key;index"`
	FirstName           string    `gorm:"column:first_name"`
	LastName            string    `gorm:"column:last_name"`
	PartyName           string    `gorm:"column:party_name"`
	VoteCount           int       `gorm:"column:vote_count"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "mirror_candidates"
}

func candidateModelFromEntity(candidate entities.RemoteCandidate) candidateModel {
	return candidateModel{
		ID:                  candidate.MirrorKey,
		OriginalCandidateID: candidate.OriginalCandidateID,
		ElectionKey:         candidate.ElectionKey,
		FirstName:           candidate.FirstName,
		LastName:            candidate.LastName,
		PartyName:           candidate.PartyName,
		VoteCount:           candidate.VoteCount,
		CreatedAt:           candidate.CreatedAt,
		UpdatedAt:           candidate.UpdatedAt,
	}
}

func (m candidateModel) toEntity() entities.RemoteCandidate {
	return entities.RemoteCandidate{
		MirrorKey:           m.ID,
		OriginalCandidateID: m.OriginalCandidateID,
		ElectionKey:         m.ElectionKey,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		PartyName:           m.PartyName,
		VoteCount:           m.VoteCount,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

type voteModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	OriginalVoteID string    `gorm:"column:original_vote_id;index"`
	VoterID        string    `gorm:"column:voter_id;uniqueIndex:idx_mirror_votes_pair"`
	ElectionKey    string    `gorm:"column:election_key;uniqueIndex:idx_mirror_votes_pair;index"`
	CandidateKey   string    `gorm:"column:candidate_key;index"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "mirror_votes"
}

func voteModelFromEntity(vote entities.RemoteVote) voteModel {
	return voteModel{
		ID:             vote.MirrorKey,
		OriginalVoteID: vote.OriginalVoteID,
		VoterID:        vote.VoterID,
		ElectionKey:    vote.ElectionKey,
		CandidateKey:   vote.CandidateKey,
		CreatedAt:      vote.CreatedAt,
	}
}

func (m voteModel) toEntity() entities.RemoteVote {
	return entities.RemoteVote{
		MirrorKey:      m.ID,
		OriginalVoteID: m.OriginalVoteID,
		VoterID:        m.VoterID,
		ElectionKey:    m.ElectionKey,
		CandidateKey:   m.CandidateKey,
		CreatedAt:      m.CreatedAt,
	}
}

type dedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
}

func (dedupModel) TableName() string {
	return "mirror_event_dedup"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.MirrorStore = (*Store)(nil)
var _ ports.Session = (*session)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
