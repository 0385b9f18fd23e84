package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletBalanceModel struct {
	Address      string          `gorm:"primaryKey"`
	Chain        string          `gorm:"primaryKey"`
	TotalHandled decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	LastActivity time.Time
}

func (WalletBalanceModel) TableName() string { return "wallet_balances" }
