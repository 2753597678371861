package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleContainerInput 登记集装箱的入参。
type ScheduleContainerInput struct {
	Number      string
	ArrivalDate time.Time
	WarehouseID string
	Status      Status
	THS         *decimal.Decimal
}

// ScheduleContainer 登记一个新集装箱（默认状态 sailing）。
func (s *Service) ScheduleContainer(ctx context.Context, in ScheduleContainerInput) (*Container, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, &ValidationError{Field: "number", Reason: "required"}
	}
	status := in.Status
	if status == "" {
		status = StatusSailing
	}
	if !ValidStatus(status) {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", status)}
	}

	c := &Container{
		ID:          uuid.NewString(),
		Number:      number,
		ArrivalDate: in.ArrivalDate,
		WarehouseID: strings.TrimSpace(in.WarehouseID),
		Status:      status,
		THS:         in.THS,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateContainerInput 集装箱基础信息更新入参（nil 字段不修改）。
// 状态不在这里改，状态变更走 ApplyStatusChange。
type UpdateContainerInput struct {
	ArrivalDate *time.Time
	WarehouseID *string
	THS         *decimal.Decimal
}

func (s *Service) UpdateContainer(ctx context.Context, id string, in UpdateContainerInput) (*Container, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ArrivalDate != nil {
		c.ArrivalDate = *in.ArrivalDate
	}
	if in.WarehouseID != nil {
		c.WarehouseID = strings.TrimSpace(*in.WarehouseID)
	}
	if in.THS != nil {
		c.THS = in.THS
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetContainer(ctx context.Context, id string) (*Container, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListContainers(ctx context.Context, status Status, warehouseID string, offset, limit int) ([]Container, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, status, warehouseID, offset, limit)
}
