package bambu

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== Transport 传输层 ====================

// Transport 发送 HTTP 请求的能力抽象
// 所有业务方法都经由它出网；测试注入假实现即可覆盖全部协议分支
type Transport interface {
	// Get 发送 GET 请求并返回响应体，非 2xx 一律返回 *TransportError
	Get(ctx context.Context, url string, headers map[string]string, query map[string]string) ([]byte, error)
	// Post 发送 POST 请求，body 序列化为 JSON
	Post(ctx context.Context, url string, headers map[string]string, body interface{}) ([]byte, error)
}

// browserHeaders 模拟常规浏览器指纹
// Bambu 云端前置了反自动化检查，默认的 Go UA 会被边缘节点直接拒绝
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Accept":          "application/json",
	"Accept-Language": "en-US,en;q=0.9",
	"Origin":          "https://bambulab.com",
}

// restyTransport Transport 的默认实现
// 统一超时 + 浏览器请求头，全客户端共用一个底层连接池
type restyTransport struct {
	client *resty.Client
}

// NewTransport 创建默认传输层
func NewTransport() Transport {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeaders(browserHeaders)
	return &restyTransport{client: client}
}

func (t *restyTransport) Get(ctx context.Context, url string, headers map[string]string, query map[string]string) ([]byte, error) {
	req := t.client.R().SetContext(ctx)
	if headers != nil {
		req.SetHeaders(headers)
	}
	if query != nil {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(url)
	return t.check(resp, err)
}

func (t *restyTransport) Post(ctx context.Context, url string, headers map[string]string, body interface{}) ([]byte, error) {
	req := t.client.R().SetContext(ctx).SetHeader("Content-Type", "application/json")
	if headers != nil {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	return t.check(resp, err)
}

func (t *restyTransport) check(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.IsError() {
		return nil, &TransportError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return resp.Body(), nil
}
