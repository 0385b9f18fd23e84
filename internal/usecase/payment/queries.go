package usecase

import (
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

func (uc *DefaultPaymentUsecase) GetPaymentByID(paymentID string) (*domain.Payment, error) {
	return uc.PaymentRepo.GetPaymentByID(paymentID)
}

func (uc *DefaultPaymentUsecase) GetPaymentEvents(paymentID string) ([]*domain.PaymentEvent, error) {
	if _, err := uc.PaymentRepo.GetPaymentByID(paymentID); err != nil {
		return nil, err
	}
	return uc.EventRepo.GetEventsByPaymentID(paymentID)
}

func (uc *DefaultPaymentUsecase) GetPayments(filters domain.PaymentFilters, page, limit int64) ([]*domain.Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return uc.PaymentRepo.GetPayments(filters, page, limit)
}
