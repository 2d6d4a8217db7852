package model

import "time"

// ==================== 用户状态 ====================

const (
	UserStatusDisabled = 0 // 停用
	UserStatusActive   = 1 // 正常
)

// 系统角色
const (
	RoleAdmin = "admin" // 管理员：打印机增删改
	RoleUser  = "user"  // 普通成员：查看与作业控制
)

// SysUser 系统用户账号
// 注意区分：这是本服务自己的账号体系（bcrypt 哈希 + 本地 JWT 会话），
// 与 Bambu 云端账号无关，云端登录走 pkg/bambu
type SysUser struct {
	BaseModel
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	Email    string `gorm:"size:100" json:"email"`

	Role   string `gorm:"size:20;default:'user'" json:"role"`
	Status int    `gorm:"default:1" json:"status"`

	LastLoginAt time.Time `json:"last_login_at"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
