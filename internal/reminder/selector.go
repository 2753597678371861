package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/client"
	"github.com/CarLogiLine/CarLogiLine/internal/invoice"
	"github.com/CarLogiLine/CarLogiLine/internal/payment"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Selector 挑选有未清款项的客户。纯查询，不做任何修改。
type Selector struct {
	db *gorm.DB
}

func NewSelector(db *gorm.DB) *Selector {
	return &Selector{db: db}
}

// SelectOverdueClients 返回满足以下任一条件的客户（去重）：
//   - 存在 unpaid/overdue 且 due_date <= today 的发票；
//   - 名下车辆挂着 pending/overdue 且 due_date <= today 的付款单。
//
// 挂在集装箱上的付款单没有客户归属，不参与提醒。
func (s *Selector) SelectOverdueClients(ctx context.Context, today time.Time) ([]client.Client, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("selector not initialized")
	}

	var fromInvoices []client.Client
	err := s.db.WithContext(ctx).
		Model(&client.Client{}).
		Distinct("clients.*").
		Joins("JOIN invoices ON invoices.client_id = clients.id").
		Where("invoices.status IN ?", []string{string(invoice.StatusUnpaid), string(invoice.StatusOverdue)}).
		Where("invoices.due_date <= ?", today).
		Find(&fromInvoices).Error
	if err != nil {
		return nil, fmt.Errorf("select clients by invoices: %w", err)
	}

	var fromPayments []client.Client
	err = s.db.WithContext(ctx).
		Model(&client.Client{}).
		Distinct("clients.*").
		Joins("JOIN cars ON cars.client_id = clients.id").
		Joins("JOIN payments ON payments.car_id = cars.id").
		Where("payments.status IN ?", []string{string(payment.StatusPending), string(payment.StatusOverdue)}).
		Where("payments.due_date IS NOT NULL AND payments.due_date <= ?", today).
		Find(&fromPayments).Error
	if err != nil {
		return nil, fmt.Errorf("select clients by payments: %w", err)
	}

	seen := make(map[string]client.Client, len(fromInvoices)+len(fromPayments))
	for _, c := range fromInvoices {
		seen[c.ID] = c
	}
	for _, c := range fromPayments {
		seen[c.ID] = c
	}

	out := make([]client.Client, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Obligation 单个客户当前的未清款项汇总。
type Obligation struct {
	Invoices int             // 未清发票数
	Payments int             // 未清付款单数
	Amount   decimal.Decimal // 未清总额（发票金额 + 付款单余额）
}

// Cleared 是否已无未清款项。
func (o *Obligation) Cleared() bool {
	return o == nil || (o.Invoices == 0 && o.Payments == 0)
}

// OutstandingFor 汇总某客户截至 today 的未清款项。
// 发送提醒前要用它重查一次，避免批处理窗口内款项已清还继续打扰客户。
func (s *Selector) OutstandingFor(ctx context.Context, clientID string, today time.Time) (*Obligation, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("selector not initialized")
	}

	ob := &Obligation{Amount: decimal.Zero}

	var invoices []invoice.Invoice
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("status IN ?", []string{string(invoice.StatusUnpaid), string(invoice.StatusOverdue)}).
		Where("due_date <= ?", today).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	for i := range invoices {
		ob.Invoices++
		ob.Amount = ob.Amount.Add(invoices[i].Amount)
	}

	var payments []payment.Payment
	err = s.db.WithContext(ctx).
		Joins("JOIN cars ON cars.id = payments.car_id").
		Where("cars.client_id = ?", clientID).
		Where("payments.status IN ?", []string{string(payment.StatusPending), string(payment.StatusOverdue)}).
		Where("payments.due_date IS NOT NULL AND payments.due_date <= ?", today).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	for i := range payments {
		ob.Payments++
		ob.Amount = ob.Amount.Add(payments[i].Balance())
	}

	return ob, nil
}
