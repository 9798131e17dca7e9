package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemUserStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemUserStore()

	u := NewUser("u1@example.org")
	require.NoError(t, u.SetPassword("secret"))
	require.NoError(t, s.Add(ctx, u))

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	// Returned entities are copies; mutating them does not touch the store.
	got.Email = "mutated@example.org"
	again, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1@example.org", again.Email)

	_, err = s.Get(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Remove(ctx, u.ID))
	_, err = s.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, u.ID), ErrNotFound)
}

func TestMemUserStoreFindByEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemUserStore()

	a := NewUser("shared@example.org")
	b := NewUser("shared@example.org")
	c := NewUser("other@example.org")
	for _, u := range []*User{a, b, c} {
		require.NoError(t, s.Add(ctx, u))
	}

	out, err := s.FindByEmail(ctx, "shared@example.org")
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = s.FindByEmail(ctx, "nobody@example.org")
	require.NoError(t, err)
	assert.Empty(t, out)

	// Exact match only.
	out, err = s.FindByEmail(ctx, "Shared@example.org")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMemUserStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemUserStore()
	u := NewUser("u1@example.org")
	require.NoError(t, s.Add(ctx, u))

	require.NoError(t, s.Update(ctx, u.ID, map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
	}))
	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.DisplayName())

	// Passwords are hashed on the way in.
	require.NoError(t, s.Update(ctx, u.ID, map[string]string{"password": "secret"}))
	got, err = s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", got.PasswordHash)
	assert.True(t, got.ValidPassword("secret"))

	err = s.Update(ctx, u.ID, map[string]string{"is_admin": "true"})
	assert.ErrorIs(t, err, ErrUnknownField)

	err = s.Update(ctx, "no-such-id", map[string]string{"first_name": "Ada"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemUserSessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemUserSessionStore()

	us := NewUserSession("user-1", "token-1")
	require.NoError(t, s.Add(ctx, us))

	got, err := s.FindBySessionID(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, us.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)

	_, err = s.FindBySessionID(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Remove(ctx, us.ID))
	_, err = s.FindBySessionID(ctx, "token-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, us.ID), ErrNotFound)
}
