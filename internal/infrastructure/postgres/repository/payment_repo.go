package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/mappers"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPaymentRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{DB: db}
}

func (r *DefaultPaymentRepository) CreatePayment(payment *domain.Payment) error {
	paymentModel := mappers.ToGORMPayment(payment)
	if err := r.DB.Create(paymentModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultPaymentRepository) GetPaymentByID(paymentID string) (*domain.Payment, error) {
	var payment models.PaymentModel
	if err := r.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	return mappers.ToDomainPayment(&payment), nil
}

// UpdatePaymentStatus applies a guarded transition. The WHERE clause on the
// current status makes the persisted row the arbiter between racing
// callers: the loser sees zero rows affected and gets ErrInvalidState.
func (r *DefaultPaymentRepository) UpdatePaymentStatus(paymentID string, fromStatus, toStatus domain.PaymentStatus) error {
	res := r.DB.Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", paymentID, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidState
	}

	return nil
}

func (r *DefaultPaymentRepository) MarkProcessing(paymentID string, chain domain.Chain, walletAddress string) error {
	res := r.DB.Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", paymentID, domain.StatusPending).
		Updates(map[string]interface{}{
			"status":         domain.StatusProcessing,
			"chain":          string(chain),
			"wallet_address": walletAddress,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidState
	}

	return nil
}

func (r *DefaultPaymentRepository) SetTxHash(paymentID, txHash string) error {
	return r.DB.Model(&models.PaymentModel{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"tx_hash":    txHash,
			"updated_at": time.Now(),
		}).Error
}

func (r *DefaultPaymentRepository) FindExpiredPayments(now time.Time) ([]*domain.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.DB.
		Where("status = ?", domain.StatusPending).
		Where("expires_at < ?", now).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, len(paymentModels))
	for i, paymentModel := range paymentModels {
		payments[i] = mappers.ToDomainPayment(&paymentModel)
	}

	return payments, nil
}

func (r *DefaultPaymentRepository) GetPayments(filters domain.PaymentFilters, page, limit int64) ([]*domain.Payment, int64, error) {
	var paymentModels []models.PaymentModel
	var total int64

	baseQuery := r.DB.Model(&models.PaymentModel{})

	if len(filters.Statuses) > 0 {
		baseQuery = baseQuery.Where("status IN (?)", filters.Statuses)
	}
	if filters.Chain != "" {
		baseQuery = baseQuery.Where("chain = ?", string(filters.Chain))
	}
	if !filters.DateFrom.IsZero() {
		baseQuery = baseQuery.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		baseQuery = baseQuery.Where("created_at <= ?", filters.DateTo)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	offset := (page - 1) * limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&paymentModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find payments: %w", err)
	}

	payments := make([]*domain.Payment, len(paymentModels))
	for i, paymentModel := range paymentModels {
		payments[i] = mappers.ToDomainPayment(&paymentModel)
	}

	return payments, total, nil
}
