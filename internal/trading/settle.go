package trading

import (
	"fmt" // Error wrapping

	"coinx_trading/internal/domain" // Domain models and errors

	"github.com/shopspring/decimal" // Fixed-point money
)

// Scale is the number of fractional digits kept for persisted amounts.
const Scale = domain.MoneyScale

// TradeRequest is a trade intent for the account owned by UserID.
type TradeRequest struct {
	UserID uint             // Owner of the account that trades
	Type   domain.TradeType // BUY or SELL
	Amount decimal.Decimal  // USD for BUY, Coin-X for SELL
	Price  decimal.Decimal  // USD per Coin-X
}

// Settlement is the outcome of applying a trade to a pair of balances.
type Settlement struct {
	BalanceUSD   decimal.Decimal // USD balance after the trade
	BalanceCoinX decimal.Decimal // Coin-X balance after the trade
	AmountUSD    decimal.Decimal // USD leg of the ledger entry
	AmountCoinX  decimal.Decimal // Coin-X leg of the ledger entry
}

// Validate rejects malformed requests before anything is read.
func (r TradeRequest) Validate() error {
	if r.UserID == 0 {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: type must be BUY or SELL", domain.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if !r.Amount.Equal(r.Amount.Round(Scale)) || !r.Price.Equal(r.Price.Round(Scale)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", domain.ErrValidation, Scale)
	}
	if !domain.FitsMoney(r.Amount) || !domain.FitsMoney(r.Price) {
		return fmt.Errorf("%w: at most %d integer digits allowed", domain.ErrValidation, domain.MoneyIntegerDigits)
	}
	return nil
}

// Settle computes post-trade balances from the pre-trade ones.
// It fails with domain.ErrInsufficientFunds when the spent side cannot cover Amount,
// and with domain.ErrValidation when a leg rounds to zero or a result cannot be stored.
func Settle(usd, coin decimal.Decimal, r TradeRequest) (Settlement, error) {
	var s Settlement
	switch r.Type {
	case domain.TradeBuy:
		if usd.LessThan(r.Amount) {
			return s, fmt.Errorf("%w: need %s USD, have %s", domain.ErrInsufficientFunds, r.Amount, usd)
		}
		s.AmountUSD = r.Amount
		s.AmountCoinX = r.Amount.DivRound(r.Price, Scale) // Half-up at 8 digits
		s.BalanceUSD = usd.Sub(s.AmountUSD)
		s.BalanceCoinX = coin.Add(s.AmountCoinX)
	case domain.TradeSell:
		if coin.LessThan(r.Amount) {
			return s, fmt.Errorf("%w: need %s CX, have %s", domain.ErrInsufficientFunds, r.Amount, coin)
		}
		s.AmountCoinX = r.Amount
		s.AmountUSD = r.Amount.Mul(r.Price).Round(Scale)
		s.BalanceCoinX = coin.Sub(s.AmountCoinX)
		s.BalanceUSD = usd.Add(s.AmountUSD)
	default:
		return s, fmt.Errorf("%w: unknown trade type %q", domain.ErrValidation, r.Type)
	}
	if s.AmountUSD.IsZero() || s.AmountCoinX.IsZero() {
		return Settlement{}, fmt.Errorf("%w: amount too small to trade", domain.ErrValidation)
	}
	for _, v := range []decimal.Decimal{s.AmountUSD, s.AmountCoinX, s.BalanceUSD, s.BalanceCoinX} {
		if !domain.FitsMoney(v) {
			return Settlement{}, fmt.Errorf("%w: %s exceeds %d integer digits", domain.ErrValidation, v, domain.MoneyIntegerDigits)
		}
	}
	return s, nil
}
