package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bambufarm_v1_202608/internal/api/dto"
	"bambufarm_v1_202608/internal/middleware"
	"bambufarm_v1_202608/internal/model"
	"bambufarm_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserDisabled       = errors.New("账号已停用")
	ErrUsernameTaken      = errors.New("用户名已被注册")
	ErrInvalidToken       = errors.New("Token 无效")
	ErrUserNotFound       = errors.New("用户不存在")
)

// ==================== UserService 用户服务 ====================

// UserService 本地账号服务（注册/登录/会话刷新）
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ==================== 注册 ====================

// Signup 注册新账号
func (s *UserService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserInfo, error) {
	taken, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.SysUser{
		Username: req.Username,
		Password: string(hashed),
		Email:    req.Email,
		Role:     model.RoleUser,
		Status:   model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.toUserInfo(user), nil
}

// ==================== 认证相关 ====================

// Login 用户登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	// 更新最后登录时间（失败不阻断登录）
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
		User:         s.toUserInfo(user),
	}, nil
}

// RefreshToken 刷新本地会话 Token
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// 只有 Refresh Token 可以换新
	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// 确保用户仍然有效
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
	}, nil
}

// ==================== 辅助 ====================

func (s *UserService) toUserInfo(user *model.SysUser) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
