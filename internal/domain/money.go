package domain

import (
	"github.com/shopspring/decimal" // Fixed-point money
	"gorm.io/gorm"                  // Dialect lookup
	"gorm.io/gorm/schema"           // Field metadata
)

// Storage limits of money columns, DECIMAL(20,8)
const (
	MoneyScale         = 8  // Fractional digits kept
	MoneyIntegerDigits = 12 // Integer digits that fit
)

// MoneyLimit is the smallest magnitude a money column cannot hold
var MoneyLimit = decimal.New(1, MoneyIntegerDigits)

// Money is a persisted fixed-point amount. SQLite keeps it as text so it is
// never coerced to a float; other databases use DECIMAL(20,8).
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d for persistence
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// GormDBDataType returns the column type for the connected dialect
func (Money) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text" // NUMERIC affinity would store REAL
	}
	return "decimal(20,8)"
}

// FitsMoney reports whether d can be stored in a money column without overflow
func FitsMoney(d decimal.Decimal) bool {
	return d.Abs().LessThan(MoneyLimit)
}
