// Package blobtest checks a contract.BlobRepository implementation.
package blobtest

import (
	"context"
	"testing"

	"ship-framework-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises repo against the BlobRepository contract.
func Run(t *testing.T, repo contract.BlobRepository) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		got, err := repo.Get(ctx, uuid.New(), "absent")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("put then get", func(t *testing.T) {
		ws := uuid.New()
		require.NoError(t, repo.Put(ctx, ws, "k", []byte(`{"a":1}`)))
		got, err := repo.Get(ctx, ws, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(got))

		require.NoError(t, repo.Put(ctx, ws, "k", []byte(`{"a":2}`)))
		got, err = repo.Get(ctx, ws, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":2}`, string(got))
	})

	t.Run("workspaces are isolated", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		require.NoError(t, repo.Put(ctx, a, "k", []byte(`"a"`)))
		got, err := repo.Get(ctx, b, "k")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		ws := uuid.New()
		require.NoError(t, repo.Put(ctx, ws, "k", []byte(`[]`)))
		require.NoError(t, repo.Delete(ctx, ws, "k"))
		got, err := repo.Get(ctx, ws, "k")
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, repo.Delete(ctx, ws, "never-written"))
	})
}
