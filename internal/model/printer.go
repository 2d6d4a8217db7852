package model

import (
	"time"

	"gorm.io/datatypes"
)

// Printer 农场注册的一台打印机（局域网直连信息）
// Serial 同时是本地 MQTT 主题里的设备标识；
// AccessCode 是机身屏幕上的局域网访问码，不是云端凭证
type Printer struct {
	BaseModel
	Name       string `gorm:"size:100;not null" json:"name"`
	IP         string `gorm:"size:64;not null" json:"ip"`
	AccessCode string `gorm:"size:32;not null" json:"access_code"`
	Serial     string `gorm:"size:32;uniqueIndex;not null" json:"serial"`
	Model      string `gorm:"size:50" json:"model"`

	// 最近一次本地上报的原始遥测（JSON 原文，排障用）
	LastReport datatypes.JSON `json:"last_report,omitempty"`
	LastSeenAt time.Time      `json:"last_seen_at"`
}

func (Printer) TableName() string {
	return "printers"
}

// GcodeFile G-code 文件库中的一个文件（对象存储里的元数据快照）
type GcodeFile struct {
	Key       string    `json:"key"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
