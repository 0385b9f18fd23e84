package httpapi

import (
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

type CreatePaymentRequest struct {
	ServiceName string `json:"service_name" binding:"required"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"`
	WebhookURL  string `json:"webhook_url"`
	TTLMinutes  *int   `json:"ttl_minutes"`
}

type SettlePaymentRequest struct {
	Chain         string `json:"chain" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
}

type PaymentResponse struct {
	ID            string `json:"id"`
	ServiceName   string `json:"service_name"`
	Description   string `json:"description,omitempty"`
	Amount        string `json:"amount"`
	Chain         string `json:"chain,omitempty"`
	Status        string `json:"status"`
	WalletAddress string `json:"wallet_address,omitempty"`
	TxHash        string `json:"tx_hash,omitempty"`
	CreatedAt     string `json:"created_at"`
	ExpiresAt     string `json:"expires_at"`
}

type PaymentEventResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Data      string `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		ServiceName:   p.ServiceName,
		Description:   p.Description,
		Amount:        p.Amount.String(),
		Chain:         string(p.Chain),
		Status:        string(p.Status),
		WalletAddress: p.WalletAddress,
		TxHash:        p.TxHash,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		ExpiresAt:     p.ExpiresAt.Format(time.RFC3339),
	}
}

func toPaymentEventResponses(events []*domain.PaymentEvent) []PaymentEventResponse {
	out := make([]PaymentEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, PaymentEventResponse{
			ID:        e.ID,
			Type:      string(e.Type),
			Data:      e.Data,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
