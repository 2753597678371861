package invoice

import (
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/car"
	"github.com/shopspring/decimal"
)

// Status 发票状态枚举。
type Status string

const (
	StatusUnpaid  Status = "unpaid"  // 未付
	StatusPaid    Status = "paid"    // 已付（终态，check_overdue 不会降级）
	StatusOverdue Status = "overdue" // 已逾期
)

// ValidStatus 判断是否为已知发票状态。
func ValidStatus(s Status) bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice 是 invoices 表的 GORM 模型。
// amount 是派生字段：永远等于关联车辆 total 之和，不允许手填。
type Invoice struct {
	ID        string          `gorm:"primaryKey;size:36"`
	ClientID  string          `gorm:"index;size:36;not null"`
	IssueDate time.Time       `gorm:"not null"`
	DueDate   time.Time       `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null"` // 派生：Σ car.total
	Status    Status          `gorm:"type:varchar(20);index;not null"`

	Cars []car.Car `gorm:"many2many:invoice_cars"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// SumCarTotals 计算关联车辆 total 之和（纯函数）。
func SumCarTotals(cars []car.Car) decimal.Decimal {
	sum := decimal.Zero
	for i := range cars {
		sum = sum.Add(cars[i].Total)
	}
	return sum
}

// MarkAsPaid 无条件置为已付。
func MarkAsPaid(inv *Invoice) {
	if inv == nil {
		return
	}
	inv.Status = StatusPaid
}

// CheckOverdue 逾期判定：只有 unpaid 且 due_date 早于 today 才流转到 overdue。
// 已付/已逾期的发票保持不动。返回是否发生了流转。
func CheckOverdue(inv *Invoice, today time.Time) bool {
	if inv == nil {
		return false
	}
	if inv.Status == StatusUnpaid && inv.DueDate.Before(today) {
		inv.Status = StatusOverdue
		return true
	}
	return false
}
