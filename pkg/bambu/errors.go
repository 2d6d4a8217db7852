package bambu

import "fmt"

// ==================== 错误类型 ====================
// 本包所有错误直接向调用方传播：不打日志、不重试、不吞错
// 翻译成面向用户的 HTTP 响应是上层（REST 层）的职责

// TransportError 网络失败或非 2xx 响应
// 纯网络错误时 Status 为 0；有响应时携带状态码与响应体便于排查
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bambu: transport error: %v", e.Err)
	}
	return fmt.Sprintf("bambu: unexpected status %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError 登录序列中任意一步失败
// 不存在半成功状态：返回该错误时一定没有构造出可用的 Client
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("bambu: login failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// SchemaError 响应缺少必需字段或字段类型不符
// 一个字段出错即整次映射失败，不返回部分结果
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("bambu: schema error: field %q %s", e.Field, e.Reason)
}

// DeviceCameraError 摄像头握手被云端拒绝
type DeviceCameraError struct {
	Err error
}

func (e *DeviceCameraError) Error() string {
	return fmt.Sprintf("bambu: camera handshake refused: %v", e.Err)
}

func (e *DeviceCameraError) Unwrap() error { return e.Err }
