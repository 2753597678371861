package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status 付款状态枚举。由外部流程设置，台账不做自动流转。
type Status string

const (
	StatusPending Status = "pending" // 等待付款
	StatusPaid    Status = "paid"    // 已付款
	StatusOverdue Status = "overdue" // 已逾期
)

// Type 付款方式。
type Type string

const (
	TypeCash             Type = "cash"
	TypeTransfer         Type = "transfer"
	TypeMutualSettlement Type = "mutual_settlement"
)

// ValidStatus 判断是否为已知付款状态。
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// ValidType 判断是否为已知付款方式。
func ValidType(t Type) bool {
	switch t {
	case TypeCash, TypeTransfer, TypeMutualSettlement:
		return true
	}
	return false
}

// Payment 是 payments 表的 GORM 模型。
//
// 可以挂在车辆或集装箱上（最多一个有意义）。
// is_partial 是派生字段，任何写路径落库前必须经过 Normalize 重算，
// 与 status 相互独立维护。
type Payment struct {
	ID          string          `gorm:"primaryKey;size:36"`
	CarID       *string         `gorm:"index;size:36"`
	ContainerID *string         `gorm:"index;size:36"`
	AmountDue   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentDate time.Time       `gorm:"autoCreateTime"`
	DueDate     *time.Time      `gorm:"index"` // 付款期限，可为空
	Status      Status          `gorm:"type:varchar(20);index;not null"`
	PaymentType Type            `gorm:"type:varchar(20);not null"`
	IsPartial   bool            `gorm:"not null"` // 派生：amount_paid < amount_due

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Normalize 重算派生字段 is_partial。落库前的必经步骤。
func (p *Payment) Normalize() {
	if p == nil {
		return
	}
	p.IsPartial = p.AmountPaid.LessThan(p.AmountDue)
}

// Balance 剩余应付金额：amount_due - amount_paid。
// 多付时为负数，不做截断，由调用方决定如何呈现。
func (p *Payment) Balance() decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return p.AmountDue.Sub(p.AmountPaid)
}
