package models

import (
	"time"
)

// Budget 用户预算（每个用户一行，首次访问时惰性创建）
type Budget struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	UserID        uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	MonthlyBudget float64 `json:"monthly_budget" gorm:"type:decimal(12,2);not null;default:0"`
	// TotalSpent 派生字段，始终等于该用户所有消费记录金额之和，由 Ledger 重算
	TotalSpent float64 `json:"total_spent" gorm:"type:decimal(12,2);not null;default:0"`
	// TotalSaved 已废弃：列保留但从不写入也不返回，已存金额以储蓄目标 current_amount 之和为准
	TotalSaved float64   `json:"-" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	User       User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// Remaining 本月剩余额度，超支时为负数
func (b *Budget) Remaining() float64 {
	return RoundAmount(b.MonthlyBudget - b.TotalSpent)
}
