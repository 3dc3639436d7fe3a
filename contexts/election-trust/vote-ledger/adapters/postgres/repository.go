package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/vote-ledger/domain/errors"
	"ballotcore/contexts/election-trust/vote-ledger/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// InsertVote relies on the composite unique index on (voter_id, election_id):
// the second of two concurrent inserts for the same pair hits the duplicate
// key violation, which maps to the already-voted conflict.
func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("vote_repo_insert_failed", err, "vote_id", row.ID)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, voterID string, electionID string) (entities.Vote, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, domainerrors.ErrVoteNotFound
		}
		return entities.Vote{}, r.logError("vote_repo_get_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetVoteByID(ctx context.Context, voteID string) (entities.Vote, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, domainerrors.ErrVoteNotFound
		}
		return entities.Vote{}, r.logError("vote_repo_get_by_id_failed", err, "vote_id", strings.TrimSpace(voteID))
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"tx_hash":         row.TxHash,
			"chain_confirmed": row.ChainConfirmed,
			"updated_at":      row.UpdatedAt,
		}).
		Error
	if err != nil {
		return r.logError("vote_repo_update_failed", err, "vote_id", row.ID)
	}
	return nil
}

func (r *Repository) CountVotes(ctx context.Context, electionID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("vote_repo_count_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return int(count), nil
}

func (r *Repository) ListVotesForElection(ctx context.Context, electionID string) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("cast_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("vote_repo_list_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveVoter(ctx context.Context, voter entities.Voter) error {
	row := voterModelFromEntity(voter)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("vote_repo_save_voter_failed", err, "voter_id", row.ID)
	}
	return nil
}

func (r *Repository) GetVoter(ctx context.Context, voterID string) (entities.Voter, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, domainerrors.ErrVoterNotFound
		}
		return entities.Voter{}, r.logError("vote_repo_get_voter_failed", err, "voter_id", strings.TrimSpace(voterID))
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateVoter(ctx context.Context, voter entities.Voter) error {
	row := voterModelFromEntity(voter)
	err := r.db.WithContext(ctx).Model(&voterModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"status":              row.Status,
			"has_voted":           row.HasVoted,
			"last_voted_election": row.LastVotedElection,
			"approve_tx_hash":     row.ApproveTxHash,
			"updated_at":          row.UpdatedAt,
		}).
		Error
	if err != nil {
		return r.logError("vote_repo_update_voter_failed", err, "voter_id", row.ID)
	}
	return nil
}

func (r *Repository) ListVoters(ctx context.Context, status entities.VoterStatus) ([]entities.Voter, error) {
	tx := r.db.WithContext(ctx).Model(&voterModel{})
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	var rows []voterModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("vote_repo_list_voters_failed", err)
	}
	items := make([]entities.Voter, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetElectionSnapshot(ctx context.Context, electionID string) (entities.ElectionSnapshot, error) {
	var row electionSnapshotModel
	err := r.db.WithContext(ctx).
		Table("elections").
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ElectionSnapshot{}, domainerrors.ErrElectionNotFound
		}
		return entities.ElectionSnapshot{}, r.logError("vote_repo_get_election_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return entities.ElectionSnapshot{
		ElectionID: row.ID,
		Title:      row.Title,
		Category:   row.Category,
		IsActive:   row.IsActive,
		IsArchived: row.IsArchived,
		EndDate:    row.EndDate,
		TotalVotes: row.TotalVotes,
	}, nil
}

func (r *Repository) IncrementTotalVotes(ctx context.Context, electionID string) error {
	err := r.db.WithContext(ctx).
		Table("elections").
		Where("id = ?", strings.TrimSpace(electionID)).
		UpdateColumn("total_votes", gorm.Expr("total_votes + ?", 1)).
		Error
	if err != nil {
		return r.logError("vote_repo_increment_total_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return nil
}

func (r *Repository) GetCandidateSnapshot(ctx context.Context, candidateID string) (entities.CandidateSnapshot, error) {
	var row candidateSnapshotModel
	err := r.db.WithContext(ctx).
		Table("candidates").
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CandidateSnapshot{}, domainerrors.ErrCandidateNotFound
		}
		return entities.CandidateSnapshot{}, r.logError("vote_repo_get_candidate_failed", err, "candidate_id", strings.TrimSpace(candidateID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListOrdered(ctx context.Context, electionID string, category string) ([]entities.CandidateSnapshot, error) {
	var rows []candidateSnapshotModel
	err := r.db.WithContext(ctx).
		Table("candidates").
		Where("election_id = ? OR LOWER(category) = LOWER(?)", strings.TrimSpace(electionID), strings.TrimSpace(category)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("vote_repo_list_candidates_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	items := make([]entities.CandidateSnapshot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SetChainCandidateID(ctx context.Context, candidateID string, chainCandidateID string) error {
	err := r.db.WithContext(ctx).
		Table("candidates").
		Where("id = ?", strings.TrimSpace(candidateID)).
		Where("(chain_candidate IS NULL OR chain_candidate = '')").
		UpdateColumn("chain_candidate", chainCandidateID).
		Error
	if err != nil {
		return r.logError("vote_repo_set_chain_candidate_failed", err, "candidate_id", strings.TrimSpace(candidateID))
	}
	return nil
}

func (r *Repository) IncrementVoteCount(ctx context.Context, candidateID string) error {
	err := r.db.WithContext(ctx).
		Table("candidates").
		Where("id = ?", strings.TrimSpace(candidateID)).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1)).
		Error
	if err != nil {
		return r.logError("vote_repo_increment_candidate_failed", err, "candidate_id", strings.TrimSpace(candidateID))
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:           event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      string(payload),
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return r.logError("vote_repo_append_outbox_failed", err, "event_id", event.EventID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("vote_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      []byte(row.Payload),
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		}).
		Error
	if err != nil {
		return r.logError("vote_repo_mark_outbox_published_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-trust/vote-ledger",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("vote repository operation failed", fields...)
	return err
}

type voteModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	VoterID        string    `gorm:"column:voter_id;uniqueIndex:idx_votes_voter_election"`
	ElectionID     string    `gorm:"column:election_id;uniqueIndex:idx_votes_voter_election;index"`
	CandidateID    string    `gorm:"column:candidate_id;index"`
	TxHash         string    `gorm:"column:tx_hash"`
	ChainConfirmed bool      `gorm:"column:chain_confirmed"`
	CastAt         time.Time `gorm:"column:cast_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ID:             strings.TrimSpace(vote.VoteID),
		VoterID:        strings.TrimSpace(vote.VoterID),
		ElectionID:     strings.TrimSpace(vote.ElectionID),
		CandidateID:    strings.TrimSpace(vote.CandidateID),
		TxHash:         vote.TxHash,
		ChainConfirmed: vote.ChainConfirmed,
		CastAt:         vote.CastAt.UTC(),
		UpdatedAt:      vote.UpdatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:         m.ID,
		VoterID:        m.VoterID,
		ElectionID:     m.ElectionID,
		CandidateID:    m.CandidateID,
		TxHash:         m.TxHash,
		ChainConfirmed: m.ChainConfirmed,
		CastAt:         m.CastAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type voterModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	FullName          string    `gorm:"column:full_name"`
	Email             string    `gorm:"column:email"`
	WalletAddress     string    `gorm:"column:wallet_address"`
	Status            string    `gorm:"column:status;index"`
	HasVoted          bool      `gorm:"column:has_voted"`
	LastVotedElection string    `gorm:"column:last_voted_election"`
	ApproveTxHash     string    `gorm:"column:approve_tx_hash"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (voterModel) TableName() string {
	return "voters"
}

func voterModelFromEntity(voter entities.Voter) voterModel {
	return voterModel{
		ID:                strings.TrimSpace(voter.VoterID),
		FullName:          voter.FullName,
		Email:             voter.Email,
		WalletAddress:     voter.WalletAddress,
		Status:            string(voter.Status),
		HasVoted:          voter.HasVoted,
		LastVotedElection: voter.LastVotedElection,
		ApproveTxHash:     voter.ApproveTxHash,
		CreatedAt:         voter.CreatedAt,
		UpdatedAt:         voter.UpdatedAt,
	}
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		VoterID:           m.ID,
		FullName:          m.FullName,
		Email:             m.Email,
		WalletAddress:     m.WalletAddress,
		Status:            entities.VoterStatus(m.Status),
		HasVoted:          m.HasVoted,
		LastVotedElection: m.LastVotedElection,
		ApproveTxHash:     m.ApproveTxHash,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// electionSnapshotModel reads the election-service owned table; the ledger
// never writes these columns except the total counter increment.
type electionSnapshotModel struct {
	ID         string    `gorm:"column:id"`
	Title      string    `gorm:"column:title"`
	Category   string    `gorm:"column:category"`
	IsActive   bool      `gorm:"column:is_active"`
	IsArchived bool      `gorm:"column:is_archived"`
	EndDate    time.Time `gorm:"column:end_date"`
	TotalVotes int       `gorm:"column:total_votes"`
}

type candidateSnapshotModel struct {
	ID               string `gorm:"column:id"`
	FirstName        string `gorm:"column:first_name"`
	LastName         string `gorm:"column:last_name"`
	PartyName        string `gorm:"column:party_name"`
	Category         string `gorm:"column:category"`
	ElectionID       string `gorm:"column:election_id"`
	ChainCandidateID string `gorm:"column:chain_candidate"`
	VoteCount        int    `gorm:"column:vote_count"`
}

func (m candidateSnapshotModel) toEntity() entities.CandidateSnapshot {
	return entities.CandidateSnapshot{
		CandidateID:      m.ID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		PartyName:        m.PartyName,
		Category:         m.Category,
		ElectionID:       m.ElectionID,
		ChainCandidateID: m.ChainCandidateID,
		VoteCount:        m.VoteCount,
	}
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "vote_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.VoterRepository = (*Repository)(nil)
var _ ports.ElectionReader = (*Repository)(nil)
var _ ports.CandidateStore = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
