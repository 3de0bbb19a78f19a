package db

import (
	"testing"

	"coinx_trading/internal/config"
	"coinx_trading/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory_CreatesSchema(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	for _, model := range Models {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasIndex(&domain.User{}, "Email"))
	assert.True(t, db.Migrator().HasIndex(&domain.Account{}, "UserID"))
}

func TestOpen_SQLiteFile(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: t.TempDir() + "/trading.db"}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	user := domain.User{Email: "a@example.com", Name: "A"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotZero(t, user.ID)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
