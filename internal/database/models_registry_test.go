package database

import (
	"testing"

	"devconnect/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPersistentModels(t *testing.T) {
	var account, profile, post bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.Account:
			account = true
		case *models.Profile:
			profile = true
		case *models.Post:
			post = true
		}
	}
	assert.True(t, account, "accounts table missing")
	assert.True(t, profile, "profiles table missing")
	assert.True(t, post, "posts table missing")
}
