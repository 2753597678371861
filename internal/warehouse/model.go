package warehouse

import "time"

// Warehouse 是 warehouses 表的 GORM 模型。
// capacity 仅作展示，核心层不做容量校验。
type Warehouse struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;not null"`
	Location  string    `gorm:"size:255"`
	Capacity  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
