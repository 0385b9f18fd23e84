package models

import "time"

type PaymentEventModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	PaymentID string    `gorm:"not null;index:idx_payment_events_payment_id"`
	EventType string    `gorm:"not null"`
	Data      string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"not null"`
}

func (PaymentEventModel) TableName() string { return "payment_events" }
