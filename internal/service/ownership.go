// Package service holds the business rules for accounts, profiles and posts.
package service

import "devconnect/internal/models"

// EnsureOwner allows the call only when callerID names the same account as ownerID.
func EnsureOwner(ownerID, callerID string) error {
	if !models.SameID(ownerID, callerID) {
		return models.NewAuthError(models.ReasonNotAuthorized, "User not authorized")
	}
	return nil
}
