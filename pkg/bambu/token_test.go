package bambu

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// makeJWT 拼一个未签名的 JWT（签名段留空），只用于解析测试
func makeJWT(t *testing.T, claims map[string]interface{}) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	if err != nil {
		t.Fatalf("构造 header 失败: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("构造 payload 失败: %v", err)
	}

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}

func TestNewTokenParsesUsername(t *testing.T) {
	raw := makeJWT(t, map[string]interface{}{"username": "alice"})

	token := NewToken(raw)
	assert.Equal(t, raw, token.Raw)
	assert.Equal(t, "alice", token.Username)
}

func TestNewTokenMissingClaim(t *testing.T) {
	// 缺 username claim：不报错，Username 置空
	raw := makeJWT(t, map[string]interface{}{"sub": "u_123"})

	token := NewToken(raw)
	assert.Equal(t, "", token.Username)
	assert.Equal(t, raw, token.Raw)
}

func TestNewTokenMalformed(t *testing.T) {
	// 完全不是 JWT 的字符串也不能 panic，凭证原文保留
	for _, raw := range []string{"", "not-a-jwt", "a.b", "a.!!!.c"} {
		token := NewToken(raw)
		assert.Equal(t, "", token.Username, "raw=%q", raw)
		assert.Equal(t, raw, token.Raw)
	}
}

func TestNewTokenNonStringClaim(t *testing.T) {
	raw := makeJWT(t, map[string]interface{}{"username": 42})

	token := NewToken(raw)
	assert.Equal(t, "", token.Username)
}
