package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-trust/chain-gateway/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/chain-gateway/domain/errors"
	chainv1 "ballotcore/contracts/gen/chain/v1"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *Repository) SaveSaga(ctx context.Context, saga entities.WalletSaga) error {
	row, err := sagaModelFromEntity(saga)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"state":      row.State,
			"tx_hash":    row.TxHash,
			"params":     row.Params,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("chain_repo_save_saga_failed", create.Error,
			"saga_id", strings.TrimSpace(saga.SagaID),
			"operation", string(saga.Operation),
		)
	}
	return nil
}

func (r *Repository) GetSaga(ctx context.Context, sagaID string) (entities.WalletSaga, error) {
	var row sagaModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sagaID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WalletSaga{}, domainerrors.ErrSagaNotFound
		}
		return entities.WalletSaga{}, r.logError("chain_repo_get_saga_failed", err, "saga_id", strings.TrimSpace(sagaID))
	}
	return row.toEntity()
}

func (r *Repository) GetOpenSagaBySubject(
	ctx context.Context,
	op chainv1.Operation,
	subjectID string,
) (entities.WalletSaga, bool, error) {
	var row sagaModel
	err := r.db.WithContext(ctx).
		Where("operation = ?", string(op)).
		Where("subject_id = ?", strings.TrimSpace(subjectID)).
		Where("state <> ?", string(entities.SagaStateCommitted)).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WalletSaga{}, false, nil
		}
		return entities.WalletSaga{}, false, r.logError("chain_repo_get_open_saga_failed", err,
			"operation", string(op),
			"subject_id", strings.TrimSpace(subjectID),
		)
	}
	saga, err := row.toEntity()
	if err != nil {
		return entities.WalletSaga{}, false, err
	}
	return saga, true, nil
}

func (r *Repository) PutChallenge(ctx context.Context, challenge entities.LoginChallenge) error {
	row := challengeModel{
		Address:   strings.TrimSpace(challenge.Address),
		Nonce:     challenge.Nonce,
		ExpiresAt: challenge.ExpiresAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"nonce":      row.Nonce,
			"expires_at": row.ExpiresAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("chain_repo_put_challenge_failed", create.Error, "address", row.Address)
	}
	return nil
}

func (r *Repository) TakeChallenge(
	ctx context.Context,
	address string,
	now time.Time,
) (entities.LoginChallenge, bool, error) {
	address = strings.TrimSpace(address)
	var row challengeModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("address = ?", address).First(&row).Error; err != nil {
			return err
		}
		return tx.Where("address = ?", address).Delete(&challengeModel{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.LoginChallenge{}, false, nil
		}
		return entities.LoginChallenge{}, false, r.logError("chain_repo_take_challenge_failed", err, "address", address)
	}
	if row.ExpiresAt.Before(now) {
		return entities.LoginChallenge{}, false, nil
	}
	return entities.LoginChallenge{
		Address:   row.Address,
		Nonce:     row.Nonce,
		ExpiresAt: row.ExpiresAt,
	}, true, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-trust/chain-gateway",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("chain gateway repository operation failed", fields...)
	return err
}

type sagaModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Operation     string    `gorm:"column:operation;index:idx_wallet_sagas_subject"`
	SubjectID     string    `gorm:"column:subject_id;index:idx_wallet_sagas_subject"`
	WalletAddress string    `gorm:"column:wallet_address"`
	Params        string    `gorm:"column:params"`
	State         string    `gorm:"column:state"`
	TxHash        string    `gorm:"column:tx_hash"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (sagaModel) TableName() string {
	return "wallet_sagas"
}

func sagaModelFromEntity(saga entities.WalletSaga) (sagaModel, error) {
	params, err := json.Marshal(saga.Params)
	if err != nil {
		return sagaModel{}, err
	}
	return sagaModel{
		ID:            strings.TrimSpace(saga.SagaID),
		Operation:     string(saga.Operation),
		SubjectID:     strings.TrimSpace(saga.SubjectID),
		WalletAddress: strings.TrimSpace(saga.WalletAddress),
		Params:        string(params),
		State:         string(saga.State),
		TxHash:        strings.TrimSpace(saga.TxHash),
		CreatedAt:     saga.CreatedAt,
		UpdatedAt:     saga.UpdatedAt,
	}, nil
}

func (m sagaModel) toEntity() (entities.WalletSaga, error) {
	params := map[string]string{}
	if strings.TrimSpace(m.Params) != "" {
		if err := json.Unmarshal([]byte(m.Params), &params); err != nil {
			return entities.WalletSaga{}, err
		}
	}
	return entities.WalletSaga{
		SagaID:        m.ID,
		Operation:     chainv1.Operation(m.Operation),
		SubjectID:     m.SubjectID,
		WalletAddress: m.WalletAddress,
		Params:        params,
		State:         entities.SagaState(m.State),
		TxHash:        m.TxHash,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

type challengeModel struct {
	Address   string    `gorm:"column:address;primaryKey"`
	Nonce     string    `gorm:"column:nonce"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (challengeModel) TableName() string {
	return "login_challenges"
}
