package car

import "github.com/shopspring/decimal"

// CostInput 成本台账的更新入参。nil 表示该分量保持不变。
// SkladCombined 是管理端历史习惯的“sklad+利润”合并值：
// 设置它时 sklad 保持不变，差额写入 prof。
type CostInput struct {
	THS           *decimal.Decimal
	Sklad         *decimal.Decimal
	DaysCost      *decimal.Decimal
	Prof          *decimal.Decimal
	SkladCombined *decimal.Decimal
}

// RecomputeTotal 重算车辆总成本：total = ths + sklad + days_cost + prof。
// 纯函数，无错误分支；是每条写路径落库前的最后一步。
func RecomputeTotal(c *Car) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	c.Total = c.THS.Add(c.Sklad).Add(c.DaysCost).Add(c.Prof)
	return c.Total
}

// ApplyCosts 按命名分量更新成本并重算 total。
func ApplyCosts(c *Car, in CostInput) {
	if c == nil {
		return
	}
	if in.THS != nil {
		c.THS = *in.THS
	}
	if in.Sklad != nil {
		c.Sklad = *in.Sklad
	}
	if in.DaysCost != nil {
		c.DaysCost = *in.DaysCost
	}
	if in.Prof != nil {
		c.Prof = *in.Prof
	}
	if in.SkladCombined != nil {
		// 合并值拆分：prof = 合并值 - 当前 sklad
		c.Prof = in.SkladCombined.Sub(c.Sklad)
	}
	RecomputeTotal(c)
}
