package database

import (
	"context"
	"fmt"
	"strings"

	"pizza_back_end/internal/apperr"
)

type Namespace string

const (
	Users  Namespace = "users"
	Tokens Namespace = "tokens"
	Orders Namespace = "orders"
)

var Namespaces = []Namespace{Users, Tokens, Orders}

func (n Namespace) Valid() bool {
	switch n {
	case Users, Tokens, Orders:
		return true
	}
	return false
}

// exclusiveCreate : seul "users" refuse d'écraser un enregistrement existant.
func (n Namespace) exclusiveCreate() bool {
	return n == Users
}

// Store est la persistance clé/valeur par namespace. Chaque valeur est un
// document JSON complet; une écriture est tout-ou-rien.
//
// Le store ne sérialise pas les séquences lecture-modification-écriture :
// les appelants les protègent avec KeyLock.
type Store interface {
	// Create échoue avec apperr.ErrAlreadyExists sur "users" si la clé existe,
	// écrase sur "tokens" et "orders".
	Create(ctx context.Context, ns Namespace, key string, value any) error
	// Read décode le document dans out, apperr.ErrNotFound s'il n'existe pas.
	Read(ctx context.Context, ns Namespace, key string, out any) error
	// Update n'écrit que si le document existe déjà, sinon apperr.ErrNotFound.
	Update(ctx context.Context, ns Namespace, key string, value any) error
	Delete(ctx context.Context, ns Namespace, key string) error
	Close() error
}

func checkArgs(ctx context.Context, ns Namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ns.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidNamespace, string(ns))
	}
	if strings.TrimSpace(key) == "" {
		return apperr.NewValidation("key", "empty record key")
	}
	return nil
}
