package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artflora/internal/constants"
	"artflora/internal/db"
	"artflora/internal/models"
)

type fakeAdmins struct {
	byID  map[int64]models.Admin
	err   error
	calls int
}

func (f *fakeAdmins) GetAdminByTelegramID(_ context.Context, id int64) (models.Admin, error) {
	f.calls++
	if f.err != nil {
		return models.Admin{}, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return models.Admin{}, db.ErrNotFound
	}
	return a, nil
}

func newFake() *fakeAdmins {
	return &fakeAdmins{byID: map[int64]models.Admin{
		1: {TelegramID: 1, Role: constants.ROLE_OWNER, IsActive: true},
		2: {TelegramID: 2, Role: constants.ROLE_ADMIN, IsActive: true},
		3: {TelegramID: 3, Role: constants.ROLE_MANAGER, IsActive: true},
		4: {TelegramID: 4, Role: constants.ROLE_OWNER, IsActive: false},
	}}
}

func TestGateDecisions(t *testing.T) {
	g := NewGate(newFake())
	ctx := context.Background()

	cases := []struct {
		id        int64
		admin     bool
		owner     bool
		themeRole bool
	}{
		{1, true, true, true},
		{2, true, false, true},
		{3, true, false, false},
		{4, false, false, false},
		{99, false, false, false},
	}
	for _, tc := range cases {
		isAdmin, err := g.IsAdmin(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.admin, isAdmin, "IsAdmin(%d)", tc.id)

		isOwner, err := g.IsOwner(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.owner, isOwner, "IsOwner(%d)", tc.id)
		if isOwner {
			assert.True(t, isAdmin, "owner implies admin")
		}

		hasRole, err := g.HasRole(ctx, tc.id, constants.ROLE_ADMIN)
		require.NoError(t, err)
		assert.Equal(t, tc.themeRole, hasRole, "HasRole(%d, admin)", tc.id)
	}
}

func TestGateZeroIDSkipsLookup(t *testing.T) {
	f := newFake()
	g := NewGate(f)
	ok, err := g.IsAdmin(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, f.calls)
}

func TestGateReportsStoreFailure(t *testing.T) {
	f := newFake()
	f.err = errors.New("connection refused")
	g := NewGate(f)

	ok, err := g.IsOwner(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, ok)
}
