package car

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service 封装车辆领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// RegisterCarInput 登记车辆的入参。
type RegisterCarInput struct {
	VIN         string
	Make        string
	ClientID    string
	ContainerID string
	Title       Title
	Procedure   Procedure
	Status      StorageStatus
}

func (s *Service) RegisterCar(ctx context.Context, in RegisterCarInput) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	vin := strings.ToUpper(strings.TrimSpace(in.VIN))
	if vin == "" {
		return nil, fmt.Errorf("vin required")
	}
	status := in.Status
	if status == "" {
		status = StorageSailing
	}
	if !ValidStorageStatus(status) {
		return nil, fmt.Errorf("unknown storage status: %s", status)
	}
	title := in.Title
	if title == "" {
		title = TitleOurs
	}
	procedure := in.Procedure
	if procedure == "" {
		procedure = ProcedureTransit
	}

	c := &Car{
		ID:            uuid.NewString(),
		VIN:           vin,
		Make:          strings.TrimSpace(in.Make),
		ClientID:      strings.TrimSpace(in.ClientID),
		ContainerID:   strings.TrimSpace(in.ContainerID),
		Title:         title,
		Procedure:     procedure,
		StorageStatus: status,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCarInput 车辆基础信息更新入参（零值字段不修改）。
type UpdateCarInput struct {
	Make        *string
	ClientID    *string
	ContainerID *string
	Title       *Title
	Procedure   *Procedure
}

func (s *Service) UpdateCar(ctx context.Context, id string, in UpdateCarInput) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Make != nil {
		c.Make = strings.TrimSpace(*in.Make)
	}
	if in.ClientID != nil {
		c.ClientID = strings.TrimSpace(*in.ClientID)
	}
	if in.ContainerID != nil {
		c.ContainerID = strings.TrimSpace(*in.ContainerID)
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Procedure != nil {
		c.Procedure = *in.Procedure
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetCosts 成本台账入口：按命名分量更新成本，total 随之重算并落库。
func (s *Service) SetCosts(ctx context.Context, id string, in CostInput) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ApplyCosts(c, in)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Store 车辆入库（幂等，见 EnterStorage）。
func (s *Service) Store(ctx context.Context, id string, today time.Time) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	EnterStorage(c, today)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCar(ctx context.Context, id string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListCars(ctx context.Context, f ListFilter) ([]Car, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}
