// Package trading executes Coin-X trades against user accounts.
package trading

import (
	"context" // Cancellation of DB work
	"errors"  // Error classification
	"fmt"     // Error wrapping
	"time"    // Trade latency

	"coinx_trading/internal/domain" // Domain models and errors

	"github.com/shopspring/decimal" // Fixed-point money
	"github.com/sirupsen/logrus"    // Logrus for structured logging
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking
)

// QuoteSource exposes the last server-side price quote.
type QuoteSource interface {
	LastQuote(ctx context.Context) (decimal.Decimal, bool, error)
}

// Metrics records trade outcomes.
type Metrics interface {
	ObserveTrade(tradeType, outcome string, duration time.Duration)
}

// TradeResult carries the post-trade balances and the new ledger entry.
type TradeResult struct {
	BalanceUSD   decimal.Decimal    // USD balance after the trade
	BalanceCoinX decimal.Decimal    // Coin-X balance after the trade
	Transaction  domain.Transaction // Ledger entry just written
}

// Executor is the only writer of account balances.
type Executor struct {
	db      *gorm.DB        // Database handle
	locks   *accountLocks   // Per-account serialization
	quotes  QuoteSource     // Optional last quote for the price guard
	maxDev  decimal.Decimal // Allowed relative drift, 0 disables the guard
	metrics Metrics         // Optional trade recorder
}

// Option configures an Executor.
type Option func(*Executor)

// WithPriceGuard rejects caller prices deviating from the last quote by more than maxDeviation (a fraction).
func WithPriceGuard(quotes QuoteSource, maxDeviation decimal.Decimal) Option {
	return func(e *Executor) {
		e.quotes = quotes
		e.maxDev = maxDeviation
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor creates an executor over db.
func NewExecutor(db *gorm.DB, opts ...Option) *Executor {
	e := &Executor{db: db, locks: newAccountLocks()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute validates req, then reads, checks and rewrites the account balances and
// appends the ledger entry in a single database transaction.
func (e *Executor) Execute(ctx context.Context, req TradeRequest) (res *TradeResult, err error) {
	start := time.Now()
	defer func() { e.observe(req.Type, err, time.Since(start)) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := e.checkPrice(ctx, req.Price); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(req.UserID) // Taken before the DB transaction
	defer unlock()

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account domain.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}). // SELECT ... FOR UPDATE
			Where("user_id = ?", req.UserID).
			First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: account for user %d", domain.ErrNotFound, req.UserID)
		} else if err != nil {
			return fmt.Errorf("%w: load account: %w", domain.ErrPersistence, err)
		}

		s, err := Settle(account.BalanceUSD.Decimal, account.BalanceCoinX.Decimal, req)
		if err != nil {
			return err
		}

		if err := tx.Model(&account).Updates(map[string]any{
			"balance_usd":    s.BalanceUSD,
			"balance_coin_x": s.BalanceCoinX,
		}).Error; err != nil {
			return fmt.Errorf("%w: update balance: %w", domain.ErrPersistence, err)
		}

		entry := domain.Transaction{
			AccountID:   account.ID,
			Type:        req.Type,
			CoinPrice:   domain.NewMoney(req.Price),
			AmountUSD:   domain.NewMoney(s.AmountUSD),
			AmountCoinX: domain.NewMoney(s.AmountCoinX),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("%w: insert ledger entry: %w", domain.ErrPersistence, err)
		}

		res = &TradeResult{BalanceUSD: s.BalanceUSD, BalanceCoinX: s.BalanceCoinX, Transaction: entry}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrPersistence) && !isDomainError(err) {
			// Begin/commit failures surface from gorm unwrapped.
			err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		if errors.Is(err, domain.ErrPersistence) {
			logrus.WithFields(logrus.Fields{
				"user_id": req.UserID,
				"type":    req.Type,
				"amount":  req.Amount.String(),
				"price":   req.Price.String(),
				"error":   err.Error(),
			}).Error("Trade failed")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":        req.UserID,
		"transaction_id": res.Transaction.ID,
		"type":           req.Type,
		"price":          req.Price.String(),
		"amount_usd":     res.Transaction.AmountUSD.String(),
		"amount_coin_x":  res.Transaction.AmountCoinX.String(),
	}).Info("Trade executed")
	return res, nil
}

func (e *Executor) checkPrice(ctx context.Context, p decimal.Decimal) error {
	if e.quotes == nil || !e.maxDev.IsPositive() {
		return nil
	}
	last, ok, err := e.quotes.LastQuote(ctx)
	if err != nil {
		return fmt.Errorf("%w: read last quote: %w", domain.ErrPersistence, err)
	}
	if !ok {
		return nil
	}
	drift := p.Sub(last).Abs().Div(last)
	if drift.GreaterThan(e.maxDev) {
		return fmt.Errorf("%w: %s vs last quote %s", domain.ErrStalePrice, p, last)
	}
	return nil
}

func (e *Executor) observe(t domain.TradeType, err error, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveTrade(string(t), Outcome(err), d)
}

// Outcome maps an Execute error to a short metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrStalePrice):
		return "stale_price"
	default:
		return "error"
	}
}

func isDomainError(err error) bool {
	return Outcome(err) != "error"
}
