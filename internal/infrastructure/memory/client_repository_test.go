package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/client"
)

func TestClientRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(NewStore())

	alice := client.NewClient("Alice", "Smith", "Alice@Example.com", "")
	bob := client.NewClient("Bob", "Jones", "bob@example.com", "")
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	t.Run("メールアドレスの重複", func(t *testing.T) {
		dup := client.NewClient("Other", "", "alice@example.com", "")
		assert.ErrorIs(t, repo.Create(ctx, dup), client.ErrEmailAlreadyRegistered)

		bob.Email = "alice@example.com"
		assert.ErrorIs(t, repo.Update(ctx, bob), client.ErrEmailAlreadyRegistered)
		bob.Email = "bob@example.com"
	})

	t.Run("メールアドレスで取得", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, " ALICE@example.com ")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
	})

	t.Run("状態で絞り込み", func(t *testing.T) {
		require.NoError(t, bob.Deactivate())
		require.NoError(t, repo.Update(ctx, bob))

		active, err := repo.ListByStatus(ctx, client.StatusActive)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, alice.ID, active[0].ID)
	})

	t.Run("氏名検索", func(t *testing.T) {
		found, err := repo.SearchByName(ctx, "ice smi")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Alice", found[0].FirstName)
	})

	t.Run("存在しない顧客", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, client.ErrClientNotFound)
		assert.ErrorIs(t, repo.Update(ctx, &client.Client{ID: "missing"}), client.ErrClientNotFound)
	})
}
