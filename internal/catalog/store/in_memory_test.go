package store

import (
	"context"
	"testing"

	perrors "github.com/abgdnv/productstore/internal/catalog/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InMemoryStore_CreateAndFindByID(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()

	// when
	created, err := s.Create(ctx, "Pen", 10, "http://x/pen.png")
	require.NoError(t, err)
	found, err := s.FindByID(ctx, created.ID)

	// then
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, created, found)
	assert.False(t, created.CreatedAt.IsZero())
}

func Test_InMemoryStore_FindAll_KeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	names := []string{"Pen", "Pencil", "Eraser", "Ruler"}
	for _, n := range names {
		_, err := s.Create(ctx, n, 1, "http://x/"+n+".png")
		require.NoError(t, err)
	}

	list, err := s.FindAll(ctx)

	require.NoError(t, err)
	require.Len(t, list, len(names))
	for i, p := range list {
		assert.Equal(t, names[i], p.Name)
	}
}

func Test_InMemoryStore_FindAll_Empty(t *testing.T) {
	list, err := NewInMemoryStore().FindAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func Test_InMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name        string
		existing    bool
		expectError error
	}{
		{name: "Success - product updated", existing: true},
		{name: "Error - product not found", existing: false, expectError: perrors.ErrProductNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewInMemoryStore()
			id := uuid.New()
			if tc.existing {
				created, err := s.Create(ctx, "Pen", 10, "http://x/pen.png")
				require.NoError(t, err)
				id = created.ID
			}
			// when
			updated, err := s.Update(ctx, id, "Pen", 12, "http://x/pen.png")
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 12.0, updated.Price)
			found, err := s.FindByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, 12.0, found.Price)
		})
	}
}

func Test_InMemoryStore_DeleteByID(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	first, err := s.Create(ctx, "Pen", 10, "http://x/pen.png")
	require.NoError(t, err)
	second, err := s.Create(ctx, "Pencil", 5, "http://x/pencil.png")
	require.NoError(t, err)

	// when
	err = s.DeleteByID(ctx, first.ID)

	// then
	require.NoError(t, err)
	_, err = s.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
	list, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
	assert.ErrorIs(t, s.DeleteByID(ctx, first.ID), perrors.ErrProductNotFound)
}
