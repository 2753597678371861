package payment

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, p *Payment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	p.Normalize()
	return db.Create(p).Error
}

// Save 落库前强制重算 is_partial，派生字段不允许和金额脱节。
func (r *Repo) Save(ctx context.Context, p *Payment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	p.Normalize()
	return db.Save(p).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Payment, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p Payment
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListFilter 查询条件。
type ListFilter struct {
	CarID       string
	ContainerID string
	Status      Status
	Offset      int
	Limit       int
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Payment, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&Payment{})
	if f.CarID != "" {
		q = q.Where("car_id = ?", f.CarID)
	}
	if f.ContainerID != "" {
		q = q.Where("container_id = ?", f.ContainerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payments []Payment
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
