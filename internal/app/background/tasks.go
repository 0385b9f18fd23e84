package background

import (
	"context"
	"log"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

type BackgroundTasks struct {
	PaymentUsecase domain.PaymentUsecase
}

func NewBackgroundTasks(paymentUC domain.PaymentUsecase) *BackgroundTasks {
	return &BackgroundTasks{
		PaymentUsecase: paymentUC,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startPaymentExpiry(ctx)
}

func (bt *BackgroundTasks) startPaymentExpiry(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.PaymentUsecase.SweepExpired(ctx); err != nil {
				log.Printf("Payment expiry sweep error: %v\n", err)
			}
		}
	}
}
