package domain

import (
	"time"

	"github.com/shopspring/decimal" // Fixed-point money
)

// Starting balances of every newly registered account
var (
	InitialBalanceUSD   = decimal.NewFromInt(10000)
	InitialBalanceCoinX = decimal.Zero
)

// Account Model. Balances are mutated only by the trade executor.
type Account struct {
	ID           uint          `gorm:"primaryKey"`                     // Primary key
	UserID       uint          `gorm:"uniqueIndex;not null"`           // Foreign key to User
	BalanceUSD   Money         `gorm:"not null"`                       // USD balance
	BalanceCoinX Money         `gorm:"column:balance_coin_x;not null"` // Coin-X balance
	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE;"`   // Ledger entries of this account
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount returns an account seeded with the initial balances
func NewAccount(userID uint) *Account {
	return &Account{
		UserID:       userID,
		BalanceUSD:   NewMoney(InitialBalanceUSD),
		BalanceCoinX: NewMoney(InitialBalanceCoinX),
	}
}
