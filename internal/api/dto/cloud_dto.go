package dto

// ==================== Bambu 云端桥接 ====================

// CloudLoginRequest 云端账号登录请求
// Code 为邮箱验证码：首次提交留空，云端要求二次验证时由前端引导用户补填后重试
type CloudLoginRequest struct {
	Region   string `json:"region" binding:"required,oneof=cn eu na ap other"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Code     string `json:"code"`
}

// CloudLoginResponse 云端登录响应
type CloudLoginResponse struct {
	Username string `json:"username"` // 云端 Token 中解出的身份，可能为空（"身份未知"）
	Region   string `json:"region"`
	MQTTHost string `json:"mqtt_host"`
}

// CloudCameraResponse 摄像头握手响应
type CloudCameraResponse struct {
	URL string `json:"url"` // bambu:///<ttcode>?authkey=..&passwd=..&region=..
}
