// Package apperr regroupe les erreurs sentinelles partagées entre le store,
// les services et les handlers. Utiliser errors.Is pour les comparer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// Record store
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidNamespace = errors.New("invalid namespace")

	// Entrées / routage
	ErrValidation       = errors.New("validation error")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrInternal         = errors.New("internal error")

	// Sessions
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNoSession          = fmt.Errorf("no session: %w", ErrUnauthenticated)
	ErrSessionExpired     = errors.New("session expired")

	// Panier / paiement
	ErrUnknownItem     = errors.New("unknown menu item")
	ErrCartNotFound    = fmt.Errorf("cart: %w", ErrNotFound)
	ErrItemNotInCart   = fmt.Errorf("cart item: %w", ErrNotFound)
	ErrEmptyCart       = errors.New("cart is empty")
	ErrPaymentDeclined = errors.New("payment declined")
)

// ValidationError porte le champ fautif et le message renvoyé au client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
