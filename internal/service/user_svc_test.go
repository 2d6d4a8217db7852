package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bambufarm_v1_202608/internal/api/dto"
	"bambufarm_v1_202608/internal/model"
	"bambufarm_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupUserService(t *testing.T) (*UserService, repository.UserRepository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SysUser{}))

	repo := repository.NewUserRepository(db)
	return NewUserService(repo), repo, db
}

func signup(t *testing.T, svc *UserService, username, password string) *dto.UserInfo {
	info, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return info
}

// ==================== 注册 ====================

func TestSignupHashesPassword(t *testing.T) {
	svc, repo, _ := setupUserService(t)

	info := signup(t, svc, "alice", "secret-pass")
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, model.RoleUser, info.Role)

	// 密码不能以明文落库
	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pass", u.Password)
	assert.NotEmpty(t, u.Password)
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, _, _ := setupUserService(t)
	signup(t, svc, "alice", "secret-pass")

	_, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Username: "alice",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

// ==================== 登录 ====================

func TestLoginSuccess(t *testing.T) {
	svc, _, _ := setupUserService(t)
	signup(t, svc, "alice", "secret-pass")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := setupUserService(t)
	signup(t, svc, "alice", "secret-pass")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := setupUserService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledUser(t *testing.T) {
	svc, repo, db := setupUserService(t)
	signup(t, svc, "alice", "secret-pass")

	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	u.Status = model.UserStatusDisabled
	require.NoError(t, db.Save(u).Error)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "secret-pass",
	})
	assert.ErrorIs(t, err, ErrUserDisabled)
}

// ==================== Token 刷新 ====================

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, _, _ := setupUserService(t)
	signup(t, svc, "alice", "secret-pass")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := setupUserService(t)
	signup(t, svc, "alice", "secret-pass")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	// Access Token 不能用于换新
	_, err = svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.AccessToken,
	})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := setupUserService(t)

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: "not-a-jwt",
	})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
