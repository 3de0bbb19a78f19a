package api

import (
	"net/http" // HTTP status codes

	"coinx_trading/internal/domain"     // Domain models
	"coinx_trading/internal/middleware" // Session helpers
	"coinx_trading/internal/price"      // Price feed
	"coinx_trading/internal/trading"    // Trade executor

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Fixed-point money
)

// TradeRequest represents a trade request. Amount is USD for BUY and Coin-X for SELL.
type TradeRequest struct {
	UserID       *uint           `json:"userId"`
	Type         string          `json:"type" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
}

// TradeResponse is returned after a successful trade
type TradeResponse struct {
	Success     bool                `json:"success"`
	NewBalance  BalanceResponse     `json:"newBalance"`
	Transaction TransactionResponse `json:"transaction"`
}

// TradeHandler executes a BUY or SELL for the session user
func TradeHandler(ex *trading.Executor, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var req TradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The session decides whose account trades.
		if req.UserID != nil && *req.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		res, err := ex.Execute(c.Request.Context(), trading.TradeRequest{
			UserID: userID,
			Type:   domain.TradeType(req.Type),
			Amount: req.Amount,
			Price:  req.CurrentPrice,
		})
		if err != nil {
			respondError(c, err, "Account not found")
			return
		}
		invalidateAccount(c, rdb, userID)
		c.JSON(http.StatusOK, TradeResponse{
			Success:     true,
			NewBalance:  toBalance(res.BalanceUSD, res.BalanceCoinX),
			Transaction: toTransaction(&res.Transaction),
		})
	}
}

// PriceHandler returns a fresh simulated price and publishes it as the last quote
func PriceHandler(feed *price.Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := feed.Quote(c.Request.Context())
		if err != nil {
			// The quote is still usable for display.
			middleware.Logger(c).WithError(err).Warn("Failed to publish price quote")
		}
		c.JSON(http.StatusOK, gin.H{"price": fmtPrice(p)})
	}
}
