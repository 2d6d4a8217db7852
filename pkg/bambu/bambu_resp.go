package bambu

// ==========================================
// DTO: 接收 Bambu 云端返回的原始 JSON
// profile / devices / tasks 需要逐字段严格校验，见 mapper.go；
// 这里只放形状简单、宽松解码即可的响应
// ==========================================

// loginResp 登录接口响应
// POST /v1/user-service/user/login
type loginResp struct {
	AccessToken string `json:"accessToken"`
	// LoginType 为 "verifyCode" 时表示需要邮箱验证码二次确认
	LoginType string `json:"loginType"`
}

// ttcodeResp 摄像头握手响应
// POST /v1/iot-service/api/user/ttcode
type ttcodeResp struct {
	TTCode  string `json:"ttcode"`
	AuthKey string `json:"authkey"`
	Passwd  string `json:"passwd"`
	Region  string `json:"region"`
}
