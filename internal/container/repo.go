package container

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

func (r *Repo) Create(ctx context.Context, c *Container) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

func (r *Repo) Save(ctx context.Context, c *Container) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(c).Error
}

// GetByID 读取集装箱并预加载箱内车辆。
func (r *Repo) GetByID(ctx context.Context, id string) (*Container, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Container
	if err := db.Preload("Cars").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) GetByNumber(ctx context.Context, number string) (*Container, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Container
	if err := db.Preload("Cars").Where("number = ?", number).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List 支持按状态/仓库过滤 + 分页。
func (r *Repo) List(ctx context.Context, status Status, warehouseID string, offset, limit int) ([]Container, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&Container{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if warehouseID != "" {
		q = q.Where("warehouse_id = ?", warehouseID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var containers []Container
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&containers).Error; err != nil {
		return nil, 0, err
	}
	return containers, total, nil
}
