package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bambufarm_v1_202608/internal/model"
)

// ==================== UserRepository ====================

func newTestUser(username string) *model.SysUser {
	return &model.SysUser{
		Username: username,
		Password: "$2a$10$fakehash",
		Role:     model.RoleUser,
		Status:   model.UserStatusActive,
	}
}

func TestUserRepoCreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	u := newTestUser("alice")
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepoNotFoundIsNilNil(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	got, err := repo.GetByUsername(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepoExistsAndLastLogin(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	u := newTestUser("bob")
	require.NoError(t, repo.Create(ctx, u))

	exists, err := repo.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.LastLoginAt.IsZero())
}
