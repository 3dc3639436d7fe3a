package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"

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

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("election_repo_save_failed", err, "election_id", row.ID)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("election_repo_get_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	update := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":           row.Title,
			"category":        row.Category,
			"region":          row.Region,
			"pincode":         row.Pincode,
			"start_date":      row.StartDate,
			"end_date":        row.EndDate,
			"is_active":       row.IsActive,
			"is_archived":     row.IsArchived,
			"total_votes":     row.TotalVotes,
			"chain_election":  row.ChainElectionID,
			"start_tx_hash":   row.StartTxHash,
			"end_tx_hash":     row.EndTxHash,
			"archive_tx_hash": row.ArchiveTxHash,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if update.Error != nil {
		return r.logError("election_repo_update_failed", update.Error, "election_id", row.ID)
	}
	return nil
}

func (r *Repository) DeleteElection(ctx context.Context, electionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		Delete(&electionModel{})
	if result.Error != nil {
		return r.logError("election_repo_delete_failed", result.Error, "election_id", strings.TrimSpace(electionID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrElectionNotFound
	}
	return nil
}

func (r *Repository) ListElections(ctx context.Context) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_failed", err)
	}
	return toElectionEntities(rows), nil
}

func (r *Repository) GetActiveElection(ctx context.Context) (entities.Election, bool, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, false, nil
		}
		return entities.Election{}, false, r.logError("election_repo_get_active_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListActivePastEnd(ctx context.Context, now time.Time, limit int) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("end_date < ?", now.UTC()).
		Order("end_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_active_past_end_failed", err)
	}
	return toElectionEntities(rows), nil
}

func (r *Repository) ListEndedUnarchived(ctx context.Context, now time.Time, limit int) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", false).
		Where("is_archived = ?", false).
		Where("end_date < ?", now.UTC()).
		Order("end_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_ended_unarchived_failed", err)
	}
	return toElectionEntities(rows), nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"first_name":         row.FirstName,
			"last_name":          row.LastName,
			"party_name":         row.PartyName,
			"category":           row.Category,
			"constituency":       row.Constituency,
			"vote_count":         row.VoteCount,
			"election_id":        row.ElectionID,
			"chain_candidate":    row.ChainCandidateID,
			"in_active_election": row.InActiveElection,
			"is_archived":        row.IsArchived,
			"updated_at":         row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_candidate_failed", create.Error, "candidate_id", row.ID)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("election_repo_get_candidate_failed", err, "candidate_id", strings.TrimSpace(candidateID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListStray(ctx context.Context, category string, region string) ([]entities.Candidate, error) {
	tx := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("LOWER(category) = LOWER(?)", strings.TrimSpace(category)).
		Where("(election_id IS NULL OR election_id = '')")
	if strings.TrimSpace(region) != "" {
		tx = tx.Where("LOWER(constituency) = LOWER(?)", strings.TrimSpace(region))
	}
	var rows []candidateModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_stray_failed", err, "category", strings.TrimSpace(category))
	}
	return toCandidateEntities(rows), nil
}

func (r *Repository) AssignElection(ctx context.Context, candidateIDs []string, electionID string) (int, error) {
	if len(candidateIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("id IN ?", candidateIDs).
		Where("(election_id IS NULL OR election_id = '')").
		Update("election_id", strings.TrimSpace(electionID))
	if result.Error != nil {
		return 0, r.logError("election_repo_assign_election_failed", result.Error, "election_id", strings.TrimSpace(electionID))
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) ListForElection(ctx context.Context, electionID string, category string) ([]entities.Candidate, error) {
	var rows []candidateModel
	err := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("election_id = ? OR LOWER(category) = LOWER(?)", strings.TrimSpace(electionID), strings.TrimSpace(category)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("election_repo_list_for_election_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return toCandidateEntities(rows), nil
}

func (r *Repository) SetInActiveElection(ctx context.Context, electionID string, active bool) error {
	err := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Update("in_active_election", active).
		Error
	if err != nil {
		return r.logError("election_repo_set_in_active_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return nil
}

func (r *Repository) ArchiveForElection(ctx context.Context, electionID string) error {
	err := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Update("is_archived", true).
		Error
	if err != nil {
		return r.logError("election_repo_archive_candidates_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return nil
}

func (r *Repository) CountVotes(ctx context.Context, electionID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("votes").
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("election_repo_count_votes_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return int(count), nil
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
		return r.logError("election_repo_append_outbox_failed", err, "event_id", event.EventID)
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
		return nil, r.logError("election_repo_list_pending_outbox_failed", err)
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
		return r.logError("election_repo_mark_outbox_published_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-trust/election-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

type electionModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Title           string    `gorm:"column:title"`
	Category        string    `gorm:"column:category;index"`
	Region          string    `gorm:"column:region"`
	Pincode         string    `gorm:"column:pincode"`
	StartDate       time.Time `gorm:"column:start_date"`
	EndDate         time.Time `gorm:"column:end_date;index"`
	IsActive        bool      `gorm:"column:is_active;index"`
	IsArchived      bool      `gorm:"column:is_archived"`
	TotalVotes      int       `gorm:"column:total_votes"`
	ChainElectionID string    `gorm:"column:chain_election"`
	StartTxHash     string    `gorm:"column:start_tx_hash"`
	EndTxHash       string    `gorm:"column:end_tx_hash"`
	ArchiveTxHash   string    `gorm:"column:archive_tx_hash"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	return electionModel{
		ID:              strings.TrimSpace(election.ElectionID),
		Title:           election.Title,
		Category:        election.Category,
		Region:          election.Region,
		Pincode:         election.Pincode,
		StartDate:       election.StartDate.UTC(),
		EndDate:         election.EndDate.UTC(),
		IsActive:        election.IsActive,
		IsArchived:      election.IsArchived,
		TotalVotes:      election.TotalVotes,
		ChainElectionID: election.ChainElectionID,
		StartTxHash:     election.StartTxHash,
		EndTxHash:       election.EndTxHash,
		ArchiveTxHash:   election.ArchiveTxHash,
		CreatedAt:       election.CreatedAt,
		UpdatedAt:       election.UpdatedAt,
	}
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID:      m.ID,
		Title:           m.Title,
		Category:        m.Category,
		Region:          m.Region,
		Pincode:         m.Pincode,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		IsActive:        m.IsActive,
		IsArchived:      m.IsArchived,
		TotalVotes:      m.TotalVotes,
		ChainElectionID: m.ChainElectionID,
		StartTxHash:     m.StartTxHash,
		EndTxHash:       m.EndTxHash,
		ArchiveTxHash:   m.ArchiveTxHash,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toElectionEntities(rows []electionModel) []entities.Election {
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type candidateModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	FirstName        string    `gorm:"column:first_name"`
	LastName         string    `gorm:"column:last_name"`
	PartyName        string    `gorm:"column:party_name"`
	Category         string    `gorm:"column:category;index"`
	Constituency     string    `gorm:"column:constituency"`
	VoteCount        int       `gorm:"column:vote_count"`
	ElectionID       string    `gorm:"column:election_id;index"`
	ChainCandidateID string    `gorm:"column:chain_candidate"`
	InActiveElection bool      `gorm:"column:in_active_election"`
	IsArchived       bool      `gorm:"column:is_archived"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	return candidateModel{
		ID:               strings.TrimSpace(candidate.CandidateID),
		FirstName:        candidate.FirstName,
		LastName:         candidate.LastName,
		PartyName:        candidate.PartyName,
		Category:         candidate.Category,
		Constituency:     candidate.Constituency,
		VoteCount:        candidate.VoteCount,
		ElectionID:       strings.TrimSpace(candidate.ElectionID),
		ChainCandidateID: candidate.ChainCandidateID,
		InActiveElection: candidate.InActiveElection,
		IsArchived:       candidate.IsArchived,
		CreatedAt:        candidate.CreatedAt,
		UpdatedAt:        candidate.UpdatedAt,
	}
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID:      m.ID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		PartyName:        m.PartyName,
		Category:         m.Category,
		Constituency:     m.Constituency,
		VoteCount:        m.VoteCount,
		ElectionID:       m.ElectionID,
		ChainCandidateID: m.ChainCandidateID,
		InActiveElection: m.InActiveElection,
		IsArchived:       m.IsArchived,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toCandidateEntities(rows []candidateModel) []entities.Candidate {
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
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
	return "election_outbox"
}
