package bambu

import (
	"github.com/golang-jwt/jwt/v5"
)

// ==================== Token 凭证 ====================

// Token 云端签发的 Bearer 凭证
// Username 从 JWT payload 中直接解出，不校验签名：签名校验是签发方的职责，
// 客户端只拿这个 claim 做展示和 user-id 请求头，不参与任何授权判断。
// 登录成功后整体创建，之后不再修改；重新登录时整体替换。
type Token struct {
	Raw      string // 原始 JWT 字符串
	Username string // username claim，尽力解析，失败时为空串
}

// NewToken 构造 Token 并尽力解出 username claim
// 任何解析失败（格式非法、claim 缺失）都不视为错误，只把 Username 置空，
// 调用方应把空 Username 理解为"身份未知"而非致命问题
func NewToken(raw string) Token {
	return Token{Raw: raw, Username: parseUsername(raw)}
}

func parseUsername(raw string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	if name, ok := claims["username"].(string); ok {
		return name
	}
	return ""
}
