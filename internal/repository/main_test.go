package repository

import (
	"context"
	"testing"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(sqlite.Open("file::memory:"), &config.Config{Env: "test", DBDriver: config.DriverSQLite})
	require.NoError(t, err)
	store := NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func seedAccount(t *testing.T, s *Store, email string) *models.Account {
	t.Helper()
	a := &models.Account{Name: "Dev " + email, Email: email, Password: "hash", Avatar: "//avatar"}
	require.NoError(t, s.Accounts.Create(context.Background(), a))
	return a
}
