package mappers

import (
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/models"
)

func ToDomainPayment(model *models.PaymentModel) *domain.Payment {
	return &domain.Payment{
		ID:            model.ID,
		ServiceName:   model.ServiceName,
		Description:   model.Description,
		Amount:        model.Amount,
		Chain:         domain.Chain(model.Chain),
		Status:        model.Status,
		WalletAddress: model.WalletAddress,
		TxHash:        model.TxHash,
		WebhookURL:    model.WebhookURL,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
		ExpiresAt:     model.ExpiresAt,
	}
}

func ToGORMPayment(payment *domain.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:            payment.ID,
		ServiceName:   payment.ServiceName,
		Description:   payment.Description,
		Amount:        payment.Amount,
		Chain:         string(payment.Chain),
		Status:        payment.Status,
		WalletAddress: payment.WalletAddress,
		TxHash:        payment.TxHash,
		WebhookURL:    payment.WebhookURL,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
		ExpiresAt:     payment.ExpiresAt,
	}
}
