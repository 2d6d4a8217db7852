package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"bambufarm_v1_202608/internal/api/dto"
	"bambufarm_v1_202608/pkg/bambu"
)

// ==================== 错误定义 ====================

var (
	// ErrVerificationCodeRequired 云端要求邮箱验证码，前端引导用户补填后重试
	ErrVerificationCodeRequired = errors.New("云端要求二次验证，请提交邮箱验证码")
	// ErrNotLoggedIn 当前本地用户尚未登录云端账号
	ErrNotLoggedIn = errors.New("尚未登录云端账号")
	// ErrCloudDeviceNotFound 云端账号下没有该设备
	ErrCloudDeviceNotFound = errors.New("云端账号下没有该设备")
)

// ==================== CloudService 云端桥接服务 ====================

// CloudService 把 Bambu 云端账号桥接进农场后台
// 每个本地用户最多持有一个云端会话，进程内存态，重启后需重新登录
type CloudService struct {
	logger *zap.Logger
	opts   []bambu.Option // 透传给 bambu.Login（测试注入假传输层）

	mu       sync.RWMutex
	sessions map[int64]*bambu.Client // 本地用户 ID -> 云端会话
}

// NewCloudService 创建云端桥接服务
func NewCloudService(logger *zap.Logger, opts ...bambu.Option) *CloudService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudService{
		logger:   logger,
		opts:     opts,
		sessions: make(map[int64]*bambu.Client),
	}
}

// session 取当前用户的云端会话
func (s *CloudService) session(userID int64) (*bambu.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return c, nil
}

// ==================== 登录 ====================

// Login 登录云端账号
// 验证码走"先试后补"模式：请求未带 code 而云端要求验证码时，
// 返回 ErrVerificationCodeRequired（云端此时已发出验证码邮件），
// 前端拿到用户填的码后带 code 原样重试
func (s *CloudService) Login(ctx context.Context, userID int64, req *dto.CloudLoginRequest) (*dto.CloudLoginResponse, error) {
	var codes bambu.CodeProvider
	if req.Code != "" {
		code := req.Code
		codes = bambu.CodeProviderFunc(func(string) (string, error) { return code, nil })
	} else {
		codes = bambu.CodeProviderFunc(func(string) (string, error) {
			return "", ErrVerificationCodeRequired
		})
	}

	region := bambu.Region(req.Region)
	client, err := bambu.Login(ctx, region, req.Email, req.Password, codes, s.opts...)
	if err != nil {
		if errors.Is(err, ErrVerificationCodeRequired) {
			return nil, ErrVerificationCodeRequired
		}
		return nil, err
	}

	s.mu.Lock()
	s.sessions[userID] = client
	s.mu.Unlock()

	s.logger.Info("云端账号登录成功",
		zap.Int64("user_id", userID),
		zap.String("region", req.Region),
		zap.String("cloud_username", client.Token().Username))

	return &dto.CloudLoginResponse{
		Username: client.Token().Username,
		Region:   string(client.Region()),
		MQTTHost: client.MQTTHost(),
	}, nil
}

// Logout 丢弃当前用户的云端会话
func (s *CloudService) Logout(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// LoggedIn 当前用户是否持有云端会话
func (s *CloudService) LoggedIn(userID int64) bool {
	_, err := s.session(userID)
	return err == nil
}

// ==================== 云端数据 ====================

// Profile 云端账号主页信息
func (s *CloudService) Profile(ctx context.Context, userID int64) (*bambu.Account, error) {
	c, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	return c.GetProfile(ctx)
}

// Devices 云端账号绑定的打印机列表
func (s *CloudService) Devices(ctx context.Context, userID int64) ([]bambu.Device, error) {
	c, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	return c.GetDevices(ctx)
}

// Tasks 云端打印任务历史，deviceID 非空时按设备过滤
func (s *CloudService) Tasks(ctx context.Context, userID int64, deviceID string) ([]bambu.Task, error) {
	c, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	return c.GetTasks(ctx, deviceID)
}

// CameraURL 对指定云端设备执行摄像头握手
// 每次都重新拉取绑定列表按 dev_id 定位设备，避免持用过期快照
func (s *CloudService) CameraURL(ctx context.Context, userID int64, devID string) (*dto.CloudCameraResponse, error) {
	c, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	devices, err := c.GetDevices(ctx)
	if err != nil {
		return nil, err
	}
	var dev *bambu.Device
	for i := range devices {
		if devices[i].DevID == devID {
			dev = &devices[i]
			break
		}
	}
	if dev == nil {
		return nil, ErrCloudDeviceNotFound
	}

	url, err := c.GetCameraURL(ctx, dev)
	if err != nil {
		return nil, err
	}
	return &dto.CloudCameraResponse{URL: url}, nil
}

// MQTTHost 当前会话区域对应的云端 MQTT Broker 地址
func (s *CloudService) MQTTHost(userID int64) (string, error) {
	c, err := s.session(userID)
	if err != nil {
		return "", err
	}
	return c.MQTTHost(), nil
}
