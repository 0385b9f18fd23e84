package mappers

import (
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/models"
)

func ToDomainEvent(model *models.PaymentEventModel) *domain.PaymentEvent {
	return &domain.PaymentEvent{
		ID:        model.ID,
		PaymentID: model.PaymentID,
		Type:      domain.PaymentEventType(model.EventType),
		Data:      model.Data,
		CreatedAt: model.CreatedAt,
	}
}

func ToGORMEvent(event *domain.PaymentEvent) *models.PaymentEventModel {
	return &models.PaymentEventModel{
		ID:        event.ID,
		PaymentID: event.PaymentID,
		EventType: string(event.Type),
		Data:      event.Data,
		CreatedAt: event.CreatedAt,
	}
}

func ToDomainWalletBalance(model *models.WalletBalanceModel) *domain.WalletBalanceRecord {
	return &domain.WalletBalanceRecord{
		Address:      model.Address,
		Chain:        domain.Chain(model.Chain),
		TotalHandled: model.TotalHandled,
		LastActivity: model.LastActivity,
	}
}

func ToDomainSweepAttempt(model *models.SweepAttemptModel) *domain.SweepAttempt {
	return &domain.SweepAttempt{
		ID:           model.ID,
		FromAddress:  model.FromAddress,
		ToAddress:    model.ToAddress,
		Amount:       model.Amount,
		Chain:        domain.Chain(model.Chain),
		TxHash:       model.TxHash,
		Success:      model.Success,
		ErrorMessage: model.ErrorMessage,
		CreatedAt:    model.CreatedAt,
	}
}

func ToGORMSweepAttempt(attempt *domain.SweepAttempt) *models.SweepAttemptModel {
	return &models.SweepAttemptModel{
		ID:           attempt.ID,
		FromAddress:  attempt.FromAddress,
		ToAddress:    attempt.ToAddress,
		Amount:       attempt.Amount,
		Chain:        string(attempt.Chain),
		TxHash:       attempt.TxHash,
		Success:      attempt.Success,
		ErrorMessage: attempt.ErrorMessage,
		CreatedAt:    attempt.CreatedAt,
	}
}
