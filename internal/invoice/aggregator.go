package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/car"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 发票聚合器：维护“amount = 关联车辆 total 之和”这条不变式。
//
// 约定：车辆成本变动后由调用方负责调用 UpdateAmount（核心层不订阅车辆变更）；
// 车辆集合的变更（AddCars/RemoveCars）则和重算金额在同一个事务里完成。
type Service struct {
	db   *gorm.DB
	repo *Repo
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, repo: NewRepo(db)}
}

func (s *Service) Repo() *Repo {
	if s == nil {
		return nil
	}
	return s.repo
}

// IssueInvoiceInput 开票入参。金额不在入参里：amount 永远是派生值。
type IssueInvoiceInput struct {
	ClientID  string
	IssueDate time.Time
	DueDate   time.Time
}

func (s *Service) IssueInvoice(ctx context.Context, in IssueInvoiceInput) (*Invoice, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return nil, fmt.Errorf("client_id required")
	}
	if in.DueDate.Before(in.IssueDate) {
		return nil, fmt.Errorf("due_date must not be before issue_date")
	}

	inv := &Invoice{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		IssueDate: in.IssueDate,
		DueDate:   in.DueDate,
		Status:    StatusUnpaid,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateAmount 重算发票金额：amount = Σ 关联车辆 total。
// 车辆集合或成员 total 变化后必须调用。
func (s *Service) UpdateAmount(ctx context.Context, id string) (*Invoice, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	var inv *Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := NewRepo(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		loaded.Amount = SumCarTotals(loaded.Cars)
		if err := tx.Model(&Invoice{}).Where("id = ?", loaded.ID).Update("amount", loaded.Amount).Error; err != nil {
			return err
		}
		inv = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// AddCars 往发票里追加车辆并在同一事务里重算金额。
// 只接受属于发票客户且已在库（in_warehouse）的车辆。
func (s *Service) AddCars(ctx context.Context, id string, carIDs []string) (*Invoice, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if len(carIDs) == 0 {
		return nil, fmt.Errorf("car ids required")
	}

	var inv *Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := NewRepo(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}

		var cars []car.Car
		if err := tx.Where("id IN ?", carIDs).Find(&cars).Error; err != nil {
			return err
		}
		if len(cars) != len(carIDs) {
			return fmt.Errorf("some cars not found")
		}
		for i := range cars {
			if cars[i].ClientID != loaded.ClientID {
				return fmt.Errorf("car %s does not belong to invoice client", cars[i].VIN)
			}
			if cars[i].StorageStatus != car.StorageInWarehouse {
				return fmt.Errorf("car %s is not in warehouse", cars[i].VIN)
			}
		}

		if err := tx.Model(loaded).Association("Cars").Append(&cars); err != nil {
			return err
		}

		// 重新读一遍关联集合再求和，避免重复追加造成的偏差
		reloaded, err := NewRepo(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		reloaded.Amount = SumCarTotals(reloaded.Cars)
		if err := tx.Model(&Invoice{}).Where("id = ?", reloaded.ID).Update("amount", reloaded.Amount).Error; err != nil {
			return err
		}
		inv = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RemoveCars 从发票里移除车辆并在同一事务里重算金额。
func (s *Service) RemoveCars(ctx context.Context, id string, carIDs []string) (*Invoice, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if len(carIDs) == 0 {
		return nil, fmt.Errorf("car ids required")
	}

	var inv *Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := NewRepo(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}

		var cars []car.Car
		if err := tx.Where("id IN ?", carIDs).Find(&cars).Error; err != nil {
			return err
		}
		if err := tx.Model(loaded).Association("Cars").Delete(&cars); err != nil {
			return err
		}

		reloaded, err := NewRepo(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		reloaded.Amount = SumCarTotals(reloaded.Cars)
		if err := tx.Model(&Invoice{}).Where("id = ?", reloaded.ID).Update("amount", reloaded.Amount).Error; err != nil {
			return err
		}
		inv = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Pay 把发票置为已付并落库。
func (s *Service) Pay(ctx context.Context, id string) (*Invoice, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	MarkAsPaid(inv)
	if err := s.db.WithContext(ctx).Model(&Invoice{}).Where("id = ?", inv.ID).Update("status", inv.Status).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// RefreshOverdue 按 today 做逾期判定，发生流转时落库。
func (s *Service) RefreshOverdue(ctx context.Context, id string, today time.Time) (*Invoice, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if CheckOverdue(inv, today) {
		if err := s.db.WithContext(ctx).Model(&Invoice{}).Where("id = ?", inv.ID).Update("status", inv.Status).Error; err != nil {
			return nil, err
		}
	}
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, clientID string, status Status, offset, limit int) ([]Invoice, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, clientID, status, offset, limit)
}
