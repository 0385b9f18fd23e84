package repository

import (
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/mappers"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultPaymentEventRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentEventRepository(db *gorm.DB) *DefaultPaymentEventRepository {
	return &DefaultPaymentEventRepository{DB: db}
}

func (r *DefaultPaymentEventRepository) AppendEvent(event *domain.PaymentEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	eventModel := mappers.ToGORMEvent(event)
	return r.DB.Create(eventModel).Error
}

func (r *DefaultPaymentEventRepository) GetEventsByPaymentID(paymentID string) ([]*domain.PaymentEvent, error) {
	var eventModels []models.PaymentEventModel
	if err := r.DB.
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}

	events := make([]*domain.PaymentEvent, len(eventModels))
	for i, eventModel := range eventModels {
		events[i] = mappers.ToDomainEvent(&eventModel)
	}

	return events, nil
}
