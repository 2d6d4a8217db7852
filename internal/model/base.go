package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 公共字段
type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
