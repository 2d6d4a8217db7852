package bambu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ==================== 外部依赖 ====================

// CodeProvider 获取邮箱二次验证码的外部依赖
// 生产环境通过带外渠道（邮件/短信）触达用户，这里只约定接口，
// 登录流程不做任何终端交互
type CodeProvider interface {
	VerificationCode(email string) (string, error)
}

// CodeProviderFunc 函数适配器
type CodeProviderFunc func(email string) (string, error)

func (f CodeProviderFunc) VerificationCode(email string) (string, error) { return f(email) }

// ==================== Client 云端客户端 ====================

// Client Bambu 云端客户端
// region 构造后不可变；token 只能由重新登录整体替换。
// 单个 Client 的并发复用取决于底层 Transport 是否并发安全，
// 需要并发调用时请自行串行化或每个调用方持有独立 Transport。
type Client struct {
	region    Region
	token     Token
	transport Transport
}

// Option 构造选项
type Option func(*Client)

// WithTransport 注入自定义传输层（测试用假实现，或外部定制的指纹客户端）
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// NewClient 用已有 Token 构造客户端（一般由 Login 调用，亦可用于持有外部凭证）
func NewClient(region Region, token Token, opts ...Option) *Client {
	c := &Client{region: region, token: token, transport: NewTransport()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Region 客户端绑定的区域
func (c *Client) Region() Region { return c.region }

// Token 当前持有的凭证
func (c *Client) Token() Token { return c.token }

// ==================== 登录 ====================

// Login 账号密码登录，必要时走二次验证分支
// 协议（顺序执行，单次尝试，不自动重试）：
//  1. POST {account, password} 到区域对应的登录端点
//  2. 若响应 loginType == "verifyCode"，向 codes 索要验证码，
//     再以 {account, code} 向同一端点发起第二次独立请求
//  3. 取最终响应中的 accessToken 构造 Token 与 Client
//
// 任何一步失败（网络、非 2xx、JSON 解析、缺 accessToken）都返回 AuthError，
// 不存在半成功状态，失败路径上不会构造出 Client
func Login(ctx context.Context, region Region, email, password string, codes CodeProvider, opts ...Option) (*Client, error) {
	c := &Client{region: region, transport: NewTransport()}
	for _, opt := range opts {
		opt(c)
	}

	loginURL := region.APIBaseURL() + "/v1/user-service/user/login"

	body, err := c.transport.Post(ctx, loginURL, nil, map[string]string{
		"account":  email,
		"password": password,
	})
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	var resp loginResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &AuthError{Err: err}
	}

	// 二次验证分支：以 {account, code} 重新请求同一端点，
	// 最终凭证以第二次响应为准
	if resp.LoginType == "verifyCode" {
		if codes == nil {
			return nil, &AuthError{Err: errors.New("verification code required but no code provider configured")}
		}
		code, err := codes.VerificationCode(email)
		if err != nil {
			return nil, &AuthError{Err: err}
		}

		body, err = c.transport.Post(ctx, loginURL, nil, map[string]string{
			"account": email,
			"code":    code,
		})
		if err != nil {
			return nil, &AuthError{Err: err}
		}
		resp = loginResp{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &AuthError{Err: err}
		}
	}

	if resp.AccessToken == "" {
		return nil, &AuthError{Err: errors.New("login response carries no accessToken")}
	}

	c.token = NewToken(resp.AccessToken)
	return c, nil
}

// ==================== 业务方法 ====================
// 每个方法一次 HTTP 往返 + 一次映射，凭证过期表现为 401 的 TransportError，
// 调用方检测到后重新走 Login 即可（没有自动刷新）

func (c *Client) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token.Raw}
}

// GetProfile 拉取账号主页信息
func (c *Client) GetProfile(ctx context.Context) (*Account, error) {
	body, err := c.transport.Get(ctx, c.region.APIBaseURL()+"/v1/user-service/my/profile", c.authHeaders(), nil)
	if err != nil {
		return nil, err
	}
	return mapProfile(body)
}

// GetDevices 拉取账号绑定的打印机列表
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	body, err := c.transport.Get(ctx, c.region.APIBaseURL()+"/v1/iot-service/api/user/bind", c.authHeaders(), nil)
	if err != nil {
		return nil, err
	}
	return mapDevices(body)
}

// GetTasks 拉取打印任务历史
// onlyDevice 非空时按设备过滤；为空时 deviceId 参数以空串传出
func (c *Client) GetTasks(ctx context.Context, onlyDevice string) ([]Task, error) {
	query := map[string]string{
		"limit":    "500",
		"deviceId": onlyDevice,
	}
	body, err := c.transport.Get(ctx, c.region.APIBaseURL()+"/v1/user-service/my/tasks", c.authHeaders(), query)
	if err != nil {
		return nil, err
	}
	_, tasks, err := mapTasks(body)
	return tasks, err
}

// GetCameraURL 执行摄像头握手，返回短时有效的取流地址
// 需要 user-id 请求头（取 Token 中解出的 username）；云端拒绝时返回 DeviceCameraError
func (c *Client) GetCameraURL(ctx context.Context, dev *Device) (string, error) {
	headers := c.authHeaders()
	headers["user-id"] = c.token.Username

	body, err := c.transport.Post(ctx, c.region.APIBaseURL()+"/v1/iot-service/api/user/ttcode", headers, map[string]string{
		"dev_id": dev.DevID,
	})
	if err != nil {
		return "", &DeviceCameraError{Err: err}
	}

	var resp ttcodeResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &DeviceCameraError{Err: err}
	}
	return fmt.Sprintf("bambu:///%s?authkey=%s&passwd=%s&region=%s",
		resp.TTCode, resp.AuthKey, resp.Passwd, resp.Region), nil
}

// MQTTHost 云端 MQTT Broker 地址，纯本地计算，不发网络请求
func (c *Client) MQTTHost() string { return c.region.MQTTHost() }
