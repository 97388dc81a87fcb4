package service

import (
	"context"
	"testing"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/models"
	"devconnect/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(sqlite.Open("file::memory:"), &config.Config{Env: "test", DBDriver: config.DriverSQLite})
	require.NoError(t, err)
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func createAccount(t *testing.T, store *repository.Store, name string) *models.Account {
	t.Helper()
	a := &models.Account{Name: name, Email: name + "@example.com", Password: "x", Avatar: GravatarURL(name + "@example.com")}
	require.NoError(t, store.Accounts.Create(context.Background(), a))
	return a
}
