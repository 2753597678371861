package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service 付款台账：登记付款单、记账、查余额。
// 注意：台账不会把金额在集装箱的车辆间均摊，
// 均摊只是集装箱运费（ths）的特性，不适用于普通付款。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// CreatePaymentInput 登记付款单的入参。
type CreatePaymentInput struct {
	CarID       string
	ContainerID string
	AmountDue   decimal.Decimal
	AmountPaid  decimal.Decimal
	DueDate     *time.Time
	Status      Status
	PaymentType Type
}

func (s *Service) CreatePayment(ctx context.Context, in CreatePaymentInput) (*Payment, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	carID := strings.TrimSpace(in.CarID)
	containerID := strings.TrimSpace(in.ContainerID)
	if carID != "" && containerID != "" {
		return nil, fmt.Errorf("payment may reference a car or a container, not both")
	}
	if in.AmountDue.IsNegative() {
		return nil, fmt.Errorf("amount_due must not be negative")
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown payment status: %s", status)
	}
	ptype := in.PaymentType
	if ptype == "" {
		ptype = TypeTransfer
	}
	if !ValidType(ptype) {
		return nil, fmt.Errorf("unknown payment type: %s", ptype)
	}

	p := &Payment{
		ID:          uuid.NewString(),
		AmountDue:   in.AmountDue,
		AmountPaid:  in.AmountPaid,
		DueDate:     in.DueDate,
		Status:      status,
		PaymentType: ptype,
	}
	if carID != "" {
		p.CarID = &carID
	}
	if containerID != "" {
		p.ContainerID = &containerID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordPayment 记一笔实收：amount_paid 累加 delta，重算 is_partial 后落库。
// delta 可以为负（冲账），多付产生的负余额不截断，留给调用方提示操作员。
func (s *Service) RecordPayment(ctx context.Context, id string, delta decimal.Decimal) (*Payment, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AmountPaid = p.AmountPaid.Add(delta)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetAmounts 直接改写应付/实收金额（管理端编辑入口），派生字段随之重算。
func (s *Service) SetAmounts(ctx context.Context, id string, due, paid *decimal.Decimal) (*Payment, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if due != nil {
		p.AmountDue = *due
	}
	if paid != nil {
		p.AmountPaid = *paid
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetStatus 外部流程设置付款状态（台账自身不做自动流转）。
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Payment, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown payment status: %s", status)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, f ListFilter) ([]Payment, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}
