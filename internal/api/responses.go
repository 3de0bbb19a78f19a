package api

import (
	"encoding/json" // json.Number keeps decimals exact on the wire
	"errors"        // Error classification
	"net/http"      // HTTP status codes
	"time"

	"coinx_trading/internal/domain"     // Domain models and errors
	"coinx_trading/internal/middleware" // Request scoped logger

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point money
)

// Display precision of amounts on the wire
const (
	usdPlaces   = 2
	coinPlaces  = 4
	pricePlaces = 2
)

// UserResponse is the public view of a user
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// BalanceResponse holds both balances of an account
type BalanceResponse struct {
	BalanceUSD   json.Number `json:"balanceUSD"`
	BalanceCoinX json.Number `json:"balanceCoinX"`
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	ID uint `json:"id"`
	BalanceResponse
}

// TransactionResponse is the public view of a ledger entry
type TransactionResponse struct {
	ID          uint        `json:"id"`
	Type        string      `json:"type"`
	CoinPrice   json.Number `json:"coinPrice"`
	AmountUSD   json.Number `json:"amountUSD"`
	AmountCoinX json.Number `json:"amountCoinX"`
	CreatedAt   string      `json:"createdAt"`
}

func fmtUSD(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(usdPlaces)) }
func fmtCoin(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(coinPlaces)) }
func fmtPrice(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(pricePlaces)) }

func toUser(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toBalance(usdBal, coinBal decimal.Decimal) BalanceResponse {
	return BalanceResponse{BalanceUSD: fmtUSD(usdBal), BalanceCoinX: fmtCoin(coinBal)}
}

func toAccount(a *domain.Account) AccountResponse {
	return AccountResponse{ID: a.ID, BalanceResponse: toBalance(a.BalanceUSD.Decimal, a.BalanceCoinX.Decimal)}
}

func toTransaction(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		CoinPrice:   fmtPrice(t.CoinPrice.Decimal),
		AmountUSD:   fmtUSD(t.AmountUSD.Decimal),
		AmountCoinX: fmtCoin(t.AmountCoinX.Decimal),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// respondError maps a service error to a status code and a structured body
func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
	case errors.Is(err, domain.ErrStalePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price out of range"})
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	default:
		middleware.Logger(c).WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal failure"})
	}
}
