package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SweepAttemptModel rows are append-only; the table keeps the original
// auto_transfers name for continuity with the operational tooling.
type SweepAttemptModel struct {
	ID           string          `gorm:"primaryKey;type:uuid"`
	FromAddress  string          `gorm:"not null;index:idx_auto_transfers_from"`
	ToAddress    string          `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Chain        string          `gorm:"not null"`
	TxHash       string
	Success      bool   `gorm:"not null"`
	ErrorMessage string
	CreatedAt    time.Time `gorm:"not null"`
}

func (SweepAttemptModel) TableName() string { return "auto_transfers" }
