package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cookie and cache lifetimes

	"coinx_trading/internal/accounts"   // Account lifecycle service
	"coinx_trading/internal/middleware" // Session helpers
	"coinx_trading/internal/utils"      // JWT and cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"` // Login email
	Name  string `json:"name" binding:"required"`        // Display name
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"` // Login email
}

// UpdateRequest represents a rename request
type UpdateRequest struct {
	Name string `json:"name" binding:"required"`
}

// MeResponse is the cached account summary of the session user
type MeResponse struct {
	User         UserResponse          `json:"user"`
	Account      AccountResponse       `json:"account"`
	Transactions []TransactionResponse `json:"transactions"`
	Cached       bool                  `json:"cached"`
}

// SessionOptions controls the session cookie
type SessionOptions struct {
	Secret string        // JWT secret key
	TTL    time.Duration // Token and cookie lifetime
	Secure bool          // Send the cookie over HTTPS only
}

// RegisterHandler creates a user with a funded account
func RegisterHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email and a name are required"})
			return
		}
		user, err := svc.Register(c.Request.Context(), req.Email, req.Name)
		if err != nil {
			respondError(c, err, "User not found")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": toUser(user)})
	}
}

// LoginHandler resolves a user by email and opens a session
func LoginHandler(svc *accounts.Service, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
			return
		}
		ctx := c.Request.Context()
		user, err := svc.Login(ctx, req.Email)
		if err != nil {
			respondError(c, err, "User not found")
			return
		}
		account, err := svc.GetAccount(ctx, user.ID)
		if err != nil {
			respondError(c, err, "Account not found")
			return
		}
		token, err := utils.GenerateJWT(user.ID, opts.Secret, opts.TTL)
		if err != nil {
			respondError(c, err, "")
			return
		}
		setSessionCookie(c, token, int(opts.TTL.Seconds()), opts.Secure)
		middleware.Logger(c).WithField("user_id", user.ID).Info("User logged in")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"user":    toUser(user),
			"account": toAccount(account),
		})
	}
}

// LogoutHandler clears the session cookie
func LogoutHandler(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		setSessionCookie(c, "", -1, secure)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// MeHandler returns the session user, balances and trade history, newest first
func MeHandler(svc *accounts.Service, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		ctx := c.Request.Context()

		// Versioned so a summary loaded before a trade is never served after it
		version, verErr := utils.AccountCacheVersion(ctx, rdb, userID)
		cacheKey := utils.AccountCacheKey(userID, version)

		var resp MeResponse
		if verErr == nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
				resp.Cached = true
				c.JSON(http.StatusOK, resp)
				return
			}
		}

		sum, err := svc.Summary(ctx, userID)
		if err != nil {
			respondError(c, err, "User not found")
			return
		}
		resp = MeResponse{
			User:         toUser(&sum.User),
			Account:      toAccount(&sum.Account),
			Transactions: make([]TransactionResponse, 0, len(sum.Transactions)),
		}
		for i := range sum.Transactions {
			resp.Transactions = append(resp.Transactions, toTransaction(&sum.Transactions[i]))
		}
		if verErr == nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, ttl) // Cache the summary
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateHandler renames the session user
func UpdateHandler(svc *accounts.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		user, err := svc.Rename(c.Request.Context(), userID, req.Name)
		if err != nil {
			respondError(c, err, "User not found")
			return
		}
		invalidateAccount(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"success": true, "user": toUser(user)})
	}
}

// DeleteHandler removes the session user with its account and ledger
func DeleteHandler(svc *accounts.Service, rdb *redis.Client, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if err := svc.Delete(c.Request.Context(), userID); err != nil {
			respondError(c, err, "User not found")
			return
		}
		invalidateAccount(c, rdb, userID)
		setSessionCookie(c, "", -1, secure)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted"})
	}
}

// InitHandler makes sure the demo trader exists
func InitHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, account, err := svc.EnsureDemoUser(c.Request.Context())
		if err != nil {
			respondError(c, err, "User not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": toUser(user), "account": toAccount(account)})
	}
}

func setSessionCookie(c *gin.Context, value string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", secure, true)
}

// invalidateAccount drops the cached summary after a mutation
func invalidateAccount(c *gin.Context, rdb *redis.Client, userID uint) {
	// Detached so a cancelled request still clears the cache.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
	defer cancel()
	if err := utils.InvalidateAccountCache(ctx, rdb, userID); err != nil {
		middleware.Logger(c).WithError(err).WithField("user_id", userID).Warn("Failed to invalidate account cache")
	}
}
