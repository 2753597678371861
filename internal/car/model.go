package car

import (
	"time"

	"github.com/shopspring/decimal"
)

// StorageStatus 车辆仓储状态枚举（持久化为字符串）。
type StorageStatus string

const (
	StorageSailing     StorageStatus = "sailing"      // 海运途中
	StorageInPort      StorageStatus = "in_port"      // 在港口
	StorageInWarehouse StorageStatus = "in_warehouse" // 在仓库
	StorageDelivered   StorageStatus = "delivered"    // 已交付客户（终态，普通级联不会回退）
)

// Title 产权归属位置。
type Title string

const (
	TitleOurs           Title = "ours"             // 在我们手里
	TitleWarehouse      Title = "warehouse"        // 在仓库
	TitleDelivered      Title = "delivered"        // 已交付客户
	TitleWaitingFromUSA Title = "waiting_from_usa" // 等待从美国寄出
)

// Procedure 海关手续类型。
type Procedure string

const (
	ProcedureTransit  Procedure = "transit"
	ProcedureReexport Procedure = "reexport"
	ProcedureImport   Procedure = "import"
	ProcedureExport   Procedure = "export"
)

// Car 是 cars 表的 GORM 模型。
//
// 四个成本分量（ths/sklad/days_cost/prof）与派生的 total 用精确小数存储，
// total 在每次写入前由成本台账重算，不允许出现与分量不一致的持久化值。
type Car struct {
	ID            string        `gorm:"primaryKey;size:36"`
	VIN           string        `gorm:"column:vin;uniqueIndex;size:17;not null"`
	Make          string        `gorm:"size:50"`
	ClientID      string        `gorm:"index;size:36"` // 可为空：未分配客户
	ContainerID   string        `gorm:"index;size:36"` // 可为空：未装箱
	Title         Title         `gorm:"type:varchar(20);not null;default:'ours'"`
	Procedure     Procedure     `gorm:"type:varchar(10);not null;default:'transit'"`
	StorageStatus StorageStatus `gorm:"type:varchar(20);index;not null"`
	DateStored    *time.Time    // 首次入库日期，只写一次

	// 成本分量（单位：USD）
	THS      decimal.Decimal `gorm:"column:ths;type:decimal(10,2);not null"`       // 集装箱运费分摊
	Sklad    decimal.Decimal `gorm:"column:sklad;type:decimal(10,2);not null"`     // 仓储固定费
	DaysCost decimal.Decimal `gorm:"column:days_cost;type:decimal(10,2);not null"` // 按天仓储费
	Prof     decimal.Decimal `gorm:"column:prof;type:decimal(10,2);not null"`      // 利润加成
	Total    decimal.Decimal `gorm:"column:total;type:decimal(10,2);not null"`     // 派生：四项之和

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ValidStorageStatus 判断是否为已知仓储状态。
func ValidStorageStatus(s StorageStatus) bool {
	switch s {
	case StorageSailing, StorageInPort, StorageInWarehouse, StorageDelivered:
		return true
	}
	return false
}
