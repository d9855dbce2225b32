package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza_back_end/internal/apperr"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// runStoreContract vérifie le même contrat pour chaque backend.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("users create is exclusive", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, Users, "a@b.co", doc{Name: "first"}))

		err := s.Create(ctx, Users, "a@b.co", doc{Name: "second"})
		assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

		var got doc
		require.NoError(t, s.Read(ctx, Users, "a@b.co", &got))
		assert.Equal(t, doc{Name: "first"}, got)
	})

	t.Run("tokens and orders create overwrites", func(t *testing.T) {
		s := newStore(t)
		for _, ns := range []Namespace{Tokens, Orders} {
			require.NoError(t, s.Create(ctx, ns, "a@b.co", doc{Count: 1}))
			require.NoError(t, s.Create(ctx, ns, "a@b.co", doc{Count: 2}))

			var got doc
			require.NoError(t, s.Read(ctx, ns, "a@b.co", &got))
			assert.Equal(t, 2, got.Count, ns)
		}
	})

	t.Run("update never creates", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx, Orders, "ghost@b.co", doc{Count: 1})
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		var got doc
		assert.ErrorIs(t, s.Read(ctx, Orders, "ghost@b.co", &got), apperr.ErrNotFound)
	})

	t.Run("update replaces existing document", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, Orders, "a@b.co", doc{Name: "x", Count: 1}))
		require.NoError(t, s.Update(ctx, Orders, "a@b.co", doc{Name: "y", Count: 3}))

		var got doc
		require.NoError(t, s.Read(ctx, Orders, "a@b.co", &got))
		assert.Equal(t, doc{Name: "y", Count: 3}, got)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, Tokens, "a@b.co", doc{}))
		require.NoError(t, s.Delete(ctx, Tokens, "a@b.co"))
		assert.ErrorIs(t, s.Delete(ctx, Tokens, "a@b.co"), apperr.ErrNotFound)
	})

	t.Run("invalid namespace", func(t *testing.T) {
		s := newStore(t)
		var got doc
		assert.ErrorIs(t, s.Create(ctx, "checks", "k", doc{}), apperr.ErrInvalidNamespace)
		assert.ErrorIs(t, s.Read(ctx, "checks", "k", &got), apperr.ErrInvalidNamespace)
		assert.ErrorIs(t, s.Update(ctx, "checks", "k", doc{}), apperr.ErrInvalidNamespace)
		assert.ErrorIs(t, s.Delete(ctx, "checks", "k"), apperr.ErrInvalidNamespace)
	})

	t.Run("empty key is a validation error", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Create(ctx, Users, " ", doc{}), apperr.ErrValidation)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := s.Create(cctx, Orders, "a@b.co", doc{})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
