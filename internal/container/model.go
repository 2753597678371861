package container

import (
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/car"
	"github.com/shopspring/decimal"
)

// Status 集装箱状态枚举（持久化为字符串）。
type Status string

const (
	StatusSailing   Status = "sailing"   // 海运途中
	StatusArrived   Status = "arrived"   // 已到港
	StatusUnloaded  Status = "unloaded"  // 已卸货
	StatusStored    Status = "stored"    // 已入库
	StatusDelivered Status = "delivered" // 已交付客户
)

// ValidStatus 判断是否为已知集装箱状态。
func ValidStatus(s Status) bool {
	switch s {
	case StatusSailing, StatusArrived, StatusUnloaded, StatusStored, StatusDelivered:
		return true
	}
	return false
}

// Container 是 containers 表的 GORM 模型。
// THS 是整箱运费（到港后按车均摊）；状态变更与对车辆的级联是一个事务单元。
type Container struct {
	ID          string           `gorm:"primaryKey;size:36"`
	Number      string           `gorm:"uniqueIndex;size:50;not null"`
	ArrivalDate time.Time        `gorm:"not null"`
	WarehouseID string           `gorm:"index;size:36"` // 可为空：未指定仓库
	Status      Status           `gorm:"type:varchar(20);index;not null"`
	THS         *decimal.Decimal `gorm:"column:ths;type:decimal(10,2)"` // 整箱运费，可为空

	Cars []car.Car `gorm:"foreignKey:ContainerID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// storageStatusFor 把集装箱状态映射为车辆仓储状态。
// 车辆侧的状态域与集装箱不同（没有 arrived/unloaded/stored），
// 级联时必须经过这层映射，不能原样照抄字符串。
func storageStatusFor(s Status) car.StorageStatus {
	switch s {
	case StatusSailing:
		return car.StorageSailing
	case StatusArrived, StatusUnloaded:
		return car.StorageInPort
	case StatusStored:
		return car.StorageInWarehouse
	case StatusDelivered:
		return car.StorageDelivered
	}
	return car.StorageSailing
}
