package main

import (
	"context"

	"coinx_trading/internal/accounts"
	"coinx_trading/internal/config"
	"coinx_trading/internal/db"

	"github.com/sirupsen/logrus"
)

// Creates the demo trader if it does not exist yet
func main() {
	cfg := config.LoadConfig()

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	user, account, err := accounts.NewService(gdb).EnsureDemoUser(context.Background())
	if err != nil {
		logrus.Fatalf("failed to seed demo user: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"email":       user.Email,
		"balance_usd": account.BalanceUSD.StringFixed(2),
	}).Info("Demo user ready")
}
