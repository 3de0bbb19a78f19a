package accounts

import (
	"context"
	"testing"
	"time"

	"coinx_trading/internal/db"
	"coinx_trading/internal/domain"
	"coinx_trading/internal/trading"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	return NewService(gdb), gdb
}

func count(t *testing.T, gdb *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Count(&n).Error)
	return n
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		uname   string
		wantErr error
	}{
		{name: "Success", email: "alice@example.com", uname: "Alice"},
		{name: "NormalizesEmail", email: "  Bob@Example.COM ", uname: "Bob"},
		{name: "EmptyEmail", email: "", uname: "Carol", wantErr: domain.ErrValidation},
		{name: "MalformedEmail", email: "not-an-email", uname: "Carol", wantErr: domain.ErrValidation},
		{name: "BlankName", email: "carol@example.com", uname: "   ", wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, gdb := setupService(t)

			user, err := svc.Register(context.Background(), tt.email, tt.uname)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, count(t, gdb, &domain.User{}))
				assert.Zero(t, count(t, gdb, &domain.Account{}))
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, user.ID)

			account, err := svc.GetAccount(context.Background(), user.ID)
			require.NoError(t, err)
			assert.True(t, account.BalanceUSD.Equal(decimal.NewFromInt(10000)))
			assert.True(t, account.BalanceCoinX.IsZero())
		})
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	svc, gdb := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ALICE@example.com", "Impostor")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	assert.Equal(t, int64(1), count(t, gdb, &domain.User{}))
	assert.Equal(t, int64(1), count(t, gdb, &domain.Account{}))

	user, err := svc.Login(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
}

func TestService_Login(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	user, err := svc.Login(ctx, " Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Login(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Login(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_SummaryNewestFirst(t *testing.T) {
	svc, gdb := setupService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	ex := trading.NewExecutor(gdb)
	_, err = ex.Execute(ctx, trading.TradeRequest{UserID: user.ID, Type: domain.TradeBuy, Amount: decimal.NewFromInt(1000), Price: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = ex.Execute(ctx, trading.TradeRequest{UserID: user.ID, Type: domain.TradeSell, Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(600)})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sum.User.Email)
	assert.True(t, sum.Account.BalanceUSD.Equal(decimal.NewFromInt(9600)))
	assert.True(t, sum.Account.BalanceCoinX.Equal(decimal.NewFromInt(1)))
	require.Len(t, sum.Transactions, 2)
	assert.Equal(t, domain.TradeSell, sum.Transactions[0].Type)
	assert.Equal(t, domain.TradeBuy, sum.Transactions[1].Type)

	_, err = svc.Summary(ctx, user.ID+1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_SummaryOrdersByCreatedAt(t *testing.T) {
	svc, gdb := setupService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)
	account, err := svc.GetAccount(ctx, user.ID)
	require.NoError(t, err)

	now := time.Now()
	// Inserted out of order on purpose.
	for _, offset := range []time.Duration{-time.Hour, 0, -2 * time.Hour} {
		require.NoError(t, gdb.Create(&domain.Transaction{
			AccountID:   account.ID,
			Type:        domain.TradeBuy,
			CoinPrice:   domain.NewMoney(decimal.NewFromInt(500)),
			AmountUSD:   domain.NewMoney(decimal.NewFromInt(1)),
			AmountCoinX: domain.NewMoney(decimal.RequireFromString("0.002")),
			CreatedAt:   now.Add(offset),
		}).Error)
	}

	sum, err := svc.Summary(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sum.Transactions, 3)
	for i := 1; i < len(sum.Transactions); i++ {
		assert.False(t, sum.Transactions[i].CreatedAt.After(sum.Transactions[i-1].CreatedAt))
	}
}

func TestService_Rename(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, user.ID, "  Alice Cooper ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", renamed.Name)

	// Same name again is not an error.
	_, err = svc.Rename(ctx, user.ID, "Alice Cooper")
	assert.NoError(t, err)

	_, err = svc.Rename(ctx, user.ID, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Rename(ctx, user.ID+1, "Ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	account, err := svc.GetAccount(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, account.BalanceUSD.Equal(decimal.NewFromInt(10000)))
}

func TestService_DeleteCascades(t *testing.T) {
	svc, gdb := setupService(t)
	ctx := context.Background()
	alice, err := svc.Register(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	ex := trading.NewExecutor(gdb)
	for _, id := range []uint{alice.ID, alice.ID, bob.ID} {
		_, err := ex.Execute(ctx, trading.TradeRequest{UserID: id, Type: domain.TradeBuy, Amount: decimal.NewFromInt(100), Price: decimal.NewFromInt(500)})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(ctx, alice.ID))

	_, err = svc.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetAccount(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Summary(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(1), count(t, gdb, &domain.User{}))
	assert.Equal(t, int64(1), count(t, gdb, &domain.Account{}))
	assert.Equal(t, int64(1), count(t, gdb, &domain.Transaction{}))

	assert.ErrorIs(t, svc.Delete(ctx, alice.ID), domain.ErrNotFound)

	// The email is free again.
	_, err = svc.Register(ctx, "alice@example.com", "Alice Again")
	assert.NoError(t, err)
}

func TestService_EnsureDemoUserIsIdempotent(t *testing.T) {
	svc, gdb := setupService(t)
	ctx := context.Background()

	u1, a1, err := svc.EnsureDemoUser(ctx)
	require.NoError(t, err)
	u2, a2, err := svc.EnsureDemoUser(ctx)
	require.NoError(t, err)

	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, a1.ID, a2.ID)
	assert.Equal(t, DemoEmail, u1.Email)
	assert.True(t, a1.BalanceUSD.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, int64(1), count(t, gdb, &domain.User{}))
}
