package container

import (
	"context"
	"fmt"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/car"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service 封装集装箱领域的核心用例，重点是状态变更向车辆的级联。
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

// ApplyStatusChange 对集装箱应用状态变更，并把结果级联到箱内所有车辆。
//
// 规则：
//   - arrived 必须已填且大于零的整箱运费，否则整个变更被拒绝，什么都不落库；
//   - sailing 强制箱内所有车辆回到 sailing（包括已交付的）；
//   - 其他状态只级联到未交付车辆，已交付车辆永不回退；
//   - stored 级联等价于车辆入库，首次入库日期只落一次；
//   - arrived 且有运费时，把运费按当前车数均摊写入每辆车的 ths 并重算 total，
//     箱内无车时均摊这步直接跳过。
//
// 状态写入与级联在同一个事务里完成：外部读到新状态时，车辆一定已反映级联。
// 返回本次实际被改写的车辆。
func (s *Service) ApplyStatusChange(ctx context.Context, containerID string, newStatus Status) ([]car.Car, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if !ValidStatus(newStatus) {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", newStatus)}
	}

	c, err := s.repo.GetByID(ctx, containerID)
	if err != nil {
		return nil, err
	}

	// 到港校验：运费必须已填且 > 0，校验失败时本次变更整体放弃
	if newStatus == StatusArrived {
		if c.THS == nil || !c.THS.IsPositive() {
			return nil, &ValidationError{Field: "ths", Reason: "must be set and positive before status can be arrived"}
		}
	}

	var affected []car.Car
	today := time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c.Status = newStatus
		if err := tx.Model(&Container{}).Where("id = ?", c.ID).Update("status", newStatus).Error; err != nil {
			return err
		}

		// 运费均摊：到港时按当前车数均分，商保留两位小数
		var share *decimal.Decimal
		if newStatus == StatusArrived && c.THS != nil && len(c.Cars) > 0 {
			q := c.THS.Div(decimal.NewFromInt(int64(len(c.Cars)))).Round(2)
			share = &q
		}

		target := storageStatusFor(newStatus)
		for i := range c.Cars {
			cr := &c.Cars[i]
			changed := false

			switch {
			case newStatus == StatusSailing:
				// 回到海运状态：无条件覆盖，已交付的也不例外
				if cr.StorageStatus != car.StorageSailing {
					cr.StorageStatus = car.StorageSailing
					changed = true
				}
			case cr.StorageStatus != car.StorageDelivered:
				if cr.StorageStatus != target || (target == car.StorageInWarehouse && cr.DateStored == nil) {
					if target == car.StorageInWarehouse {
						// stored 级联等价于入库，date_stored 只落一次
						car.EnterStorage(cr, today)
					} else {
						cr.StorageStatus = target
					}
					changed = true
				}
			}

			if share != nil {
				cr.THS = *share
				changed = true
			}

			if changed {
				car.RecomputeTotal(cr)
				if err := tx.Save(cr).Error; err != nil {
					return err
				}
				affected = append(affected, *cr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}
