package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-tasks/internal/db/dbtest"
	"github.com/mind-engage/mindengage-tasks/internal/rbac"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

func TestUsers_CreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(dbtest.Open(t))

	u, err := users.Create(ctx, "alice", "correct horse", rbac.RoleUser)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.IsAdmin())

	got, err := users.Authenticate(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, rbac.RoleUser, got.Role)

	_, err = users.Authenticate(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = users.GetByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsers_CreateValidation(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(dbtest.Open(t))

	_, err := users.Create(ctx, "root", "long enough", rbac.RoleAdmin)
	require.NoError(t, err)

	cases := map[string]struct{ username, password, role string }{
		"duplicate":      {"root", "long enough", rbac.RoleUser},
		"empty username": {"", "long enough", rbac.RoleUser},
		"short password": {"bob", "short", rbac.RoleUser},
		"unknown role":   {"carol", "long enough", "teacher"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := users.Create(ctx, tc.username, tc.password, tc.role)
			require.Error(t, err)
			assert.True(t, validate.Is(err), "got %v", err)
		})
	}
}
