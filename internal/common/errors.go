// Package common defines shared constants and sentinel errors used across
// the MediNutri client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors raised before a mutation reaches the state store.
	ErrEmptyName       = errors.New("name must not be empty")
	ErrInvalidTime     = errors.New("time must be in HH:MM format")
	ErrInvalidMealType = errors.New("unknown meal type")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
