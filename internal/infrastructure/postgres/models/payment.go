package models

import (
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/shopspring/decimal"
)

type PaymentModel struct {
	ID            string               `gorm:"primaryKey"`
	ServiceName   string               `gorm:"not null"`
	Description   string
	Amount        decimal.Decimal      `gorm:"type:numeric(20,6);not null"`
	Chain         string               `gorm:"index:idx_payments_chain"`
	Status        domain.PaymentStatus `gorm:"index:idx_payments_status_expires;not null"`
	WalletAddress string
	TxHash        string
	WebhookURL    string
	CreatedAt     time.Time `gorm:"index:idx_payments_created_at"`
	UpdatedAt     time.Time
	ExpiresAt     time.Time `gorm:"index:idx_payments_status_expires"`
}

func (PaymentModel) TableName() string { return "payments" }
