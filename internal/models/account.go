// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a registered user of the network.
type Account struct {
	ID       string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Name     string    `gorm:"not null" json:"name" bson:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email" bson:"email"`
	Password string    `gorm:"not null" json:"-" bson:"password"`
	Avatar   string    `json:"avatar" bson:"avatar"`
	Date     time.Time `gorm:"not null" json:"date" bson:"date"`
}

// AccountRef is the public part of an Account embedded in other responses.
type AccountRef struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Ref returns the public reference for the account.
func (a *Account) Ref() *AccountRef {
	if a == nil {
		return nil
	}
	return &AccountRef{ID: a.ID, Name: a.Name, Avatar: a.Avatar}
}

// BeforeCreate assigns an id and timestamp when the caller did not.
func (a *Account) BeforeCreate(_ *gorm.DB) error {
	a.Prepare()
	return nil
}

// Prepare fills the generated fields shared by every store backend.
func (a *Account) Prepare() {
	if a.ID == "" {
		a.ID = NewID()
	}
	if a.Date.IsZero() {
		a.Date = time.Now().UTC()
	}
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// CanonicalID normalizes an identity so that ids coming from the token, the
// route and the store compare equal regardless of case or surrounding space.
func CanonicalID(id string) string {
	trimmed := strings.TrimSpace(id)
	if parsed, err := uuid.Parse(trimmed); err == nil {
		return parsed.String()
	}
	return trimmed
}

// SameID reports whether two identities refer to the same entity.
func SameID(a, b string) bool {
	ca, cb := CanonicalID(a), CanonicalID(b)
	return ca != "" && ca == cb
}
