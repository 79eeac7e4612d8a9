package models

import (
	"time"
)

// Expense 消费记录模型
type Expense struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index:idx_expenses_user_time,priority:1;not null"`
	Description string    `json:"description" gorm:"size:255"`
	Amount      float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Category    string    `json:"category" gorm:"size:100;not null"`
	ExpenseTime time.Time `json:"date" gorm:"index:idx_expenses_user_time,priority:2;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// CategoryOther 未指定类别时的默认值
const CategoryOther = "Other"

// Category 前端预置的消费类别，类别本身是自由文本，不做强校验
const (
	CategoryFood           = "Food"
	CategoryTransportation = "Transportation"
	CategoryShopping       = "Shopping"
	CategoryEntertainment  = "Entertainment"
	CategoryBills          = "Bills"
	CategoryHealth         = "Health"
)

// GetCategories 获取预置消费类别
func GetCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransportation,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryHealth,
		CategoryOther,
	}
}

// CategoryTotal 按类别汇总
type CategoryTotal struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}
