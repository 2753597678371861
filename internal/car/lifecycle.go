package car

import "time"

// EnterStorage 车辆入库：置仓储状态为 in_warehouse。
// date_stored 只在首次入库时落下，重复调用不会改写（幂等）。
func EnterStorage(c *Car, today time.Time) {
	if c == nil {
		return
	}
	c.StorageStatus = StorageInWarehouse
	if c.DateStored == nil {
		t := today
		c.DateStored = &t
	}
}

// DaysInStorage 计算在库天数（整天）。
// 非在库状态或未落入库日期时返回 0；today 早于入库日期时收敛到 0。
func DaysInStorage(c *Car, today time.Time) int {
	if c == nil || c.StorageStatus != StorageInWarehouse || c.DateStored == nil {
		return 0
	}
	days := int(today.Sub(*c.DateStored).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
