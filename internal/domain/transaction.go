package domain

import (
	"time"
)

// TradeType is the side of a trade
type TradeType string

const (
	TradeBuy  TradeType = "BUY"  // Spend USD to acquire Coin-X
	TradeSell TradeType = "SELL" // Spend Coin-X to acquire USD
)

// Valid reports whether t is BUY or SELL
func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

// Transaction Model. Immutable ledger entry of one executed trade.
type Transaction struct {
	ID          uint      `gorm:"primaryKey"`                    // Primary key
	AccountID   uint      `gorm:"index;not null"`                // Foreign key to Account
	Type        TradeType `gorm:"size:4;not null"`               // BUY or SELL
	CoinPrice   Money     `gorm:"not null"`                      // Price at execution
	AmountUSD   Money     `gorm:"not null"`                      // USD leg
	AmountCoinX Money     `gorm:"column:amount_coin_x;not null"` // Coin-X leg
	CreatedAt   time.Time `gorm:"index"`                         // Execution time
}
