package repository

import (
	"errors"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/mappers"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultSweepAttemptRepository struct {
	DB *gorm.DB
}

func NewDefaultSweepAttemptRepository(db *gorm.DB) *DefaultSweepAttemptRepository {
	return &DefaultSweepAttemptRepository{DB: db}
}

func (r *DefaultSweepAttemptRepository) RecordAttempt(attempt *domain.SweepAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	attemptModel := mappers.ToGORMSweepAttempt(attempt)
	return r.DB.Create(attemptModel).Error
}

func (r *DefaultSweepAttemptRepository) GetAttemptsByWallet(address string, limit int64) ([]*domain.SweepAttempt, error) {
	var attemptModels []models.SweepAttemptModel
	if err := r.DB.
		Where("from_address = ?", address).
		Order("created_at DESC").
		Limit(int(limit)).
		Find(&attemptModels).Error; err != nil {
		return nil, err
	}

	attempts := make([]*domain.SweepAttempt, len(attemptModels))
	for i, attemptModel := range attemptModels {
		attempts[i] = mappers.ToDomainSweepAttempt(&attemptModel)
	}

	return attempts, nil
}

func (r *DefaultSweepAttemptRepository) LastSuccessfulAttempt(address string, chain domain.Chain) (*domain.SweepAttempt, error) {
	var attemptModel models.SweepAttemptModel
	err := r.DB.
		Where("from_address = ? AND chain = ? AND success = ?", address, string(chain), true).
		Order("created_at DESC").
		First(&attemptModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return mappers.ToDomainSweepAttempt(&attemptModel), nil
}
