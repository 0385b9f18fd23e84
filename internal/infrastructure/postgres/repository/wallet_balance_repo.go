package repository

import (
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/mappers"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultWalletBalanceRepository struct {
	DB *gorm.DB
}

func NewDefaultWalletBalanceRepository(db *gorm.DB) *DefaultWalletBalanceRepository {
	return &DefaultWalletBalanceRepository{DB: db}
}

func (r *DefaultWalletBalanceRepository) RecordActivity(address string, chain domain.Chain, amount decimal.Decimal, at time.Time) error {
	record := models.WalletBalanceModel{
		Address:      address,
		Chain:        string(chain),
		TotalHandled: amount,
		LastActivity: at,
	}

	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}, {Name: "chain"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_handled": gorm.Expr("wallet_balances.total_handled + ?", amount),
			"last_activity": at,
		}),
	}).Create(&record).Error
}

func (r *DefaultWalletBalanceRepository) ListWallets() ([]*domain.WalletBalanceRecord, error) {
	var walletModels []models.WalletBalanceModel
	if err := r.DB.Order("last_activity DESC").Find(&walletModels).Error; err != nil {
		return nil, err
	}

	wallets := make([]*domain.WalletBalanceRecord, len(walletModels))
	for i, walletModel := range walletModels {
		wallets[i] = mappers.ToDomainWalletBalance(&walletModel)
	}

	return wallets, nil
}
