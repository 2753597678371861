package car

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

func (r *Repo) Create(ctx context.Context, c *Car) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	RecomputeTotal(c)
	return db.Create(c).Error
}

// Save 落库前强制重算 total，派生字段与分量不一致的状态不允许持久化。
func (r *Repo) Save(ctx context.Context, c *Car) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	RecomputeTotal(c)
	return db.Save(c).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) GetByVIN(ctx context.Context, vin string) (*Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	if err := db.Where("vin = ?", vin).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListFilter 查询条件。
type ListFilter struct {
	ClientID    string
	ContainerID string
	Status      StorageStatus
	Offset      int
	Limit       int
}

// List 支持按客户/集装箱/仓储状态过滤 + 分页。
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Car, int64, error) {
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

	q := db.Model(&Car{})
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.ContainerID != "" {
		q = q.Where("container_id = ?", f.ContainerID)
	}
	if f.Status != "" {
		q = q.Where("storage_status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cars []Car
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&cars).Error; err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}
