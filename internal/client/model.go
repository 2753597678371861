package client

import "time"

// Client 是 clients 表的 GORM 模型（进口车客户）。
type Client struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:128;not null"`
	Phone     string    `gorm:"size:15"`
	Address   string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
