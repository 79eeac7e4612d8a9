package models

import (
	"encoding/json"
	"time"
)

// SavingsGoal 储蓄目标，与预算和消费记录互不影响
type SavingsGoal struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	GoalName      string    `json:"goal_name" gorm:"size:255;not null"`
	TargetAmount  float64   `json:"target_amount" gorm:"type:decimal(12,2);not null"`
	CurrentAmount float64   `json:"current_amount" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	User          User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (SavingsGoal) TableName() string {
	return "savings_goals"
}

// Progress 完成百分比，允许超过 100
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return RoundAmount(g.CurrentAmount / g.TargetAmount * 100)
}

// IsCompleted 当前金额达到或超过目标
func (g *SavingsGoal) IsCompleted() bool {
	return g.TargetAmount > 0 && g.CurrentAmount >= g.TargetAmount
}

// MarshalJSON 在字段之外附带完成百分比与是否达成
func (g SavingsGoal) MarshalJSON() ([]byte, error) {
	type goal SavingsGoal
	return json.Marshal(struct {
		goal
		Progress  float64 `json:"progress"`
		Completed bool    `json:"completed"`
	}{goal(g), g.Progress(), g.IsCompleted()})
}
