package service

import (
	"context"
	"errors"

	"smartbudget/models"

	"gorm.io/gorm"
)

// BudgetService 每用户唯一预算行的读取、惰性创建与月度额度更新
type BudgetService struct {
	db     *gorm.DB
	ledger *Ledger
}

// NewBudgetService 创建预算服务
func NewBudgetService(db *gorm.DB, ledger *Ledger) *BudgetService {
	return &BudgetService{db: db, ledger: ledger}
}

// GetOrCreate 按用户读取预算行，不存在时以全 0 创建
func (s *BudgetService) GetOrCreate(ctx context.Context, userID uint) (*models.Budget, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	db := s.db.WithContext(ctx)

	var budget models.Budget
	err := db.Where("user_id = ?", userID).First(&budget).Error
	if err == nil {
		return &budget, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageFault("failed to load budget", err)
	}

	budget = models.Budget{UserID: userID}
	if err := db.Create(&budget).Error; err != nil {
		// 并发请求已先行创建（user_id 唯一索引冲突），回读已有行
		var existing models.Budget
		if db.Where("user_id = ?", userID).First(&existing).Error == nil {
			return &existing, nil
		}
		return nil, storageFault("failed to create budget", err)
	}
	return &budget, nil
}

// Snapshot 返回 total_spent 已重算的预算
func (s *BudgetService) Snapshot(ctx context.Context, userID uint) (*models.Budget, error) {
	budget, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Refresh(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// SetMonthlyAllocation 设置月度预算，金额不能为负
func (s *BudgetService) SetMonthlyAllocation(ctx context.Context, userID uint, amount *float64) (*models.Budget, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	monthly, err := nonNegativeAmount("monthly_budget", amount)
	if err != nil {
		return nil, err
	}

	budget, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(budget).
		Where("user_id = ?", userID).
		Update("monthly_budget", monthly).Error; err != nil {
		return nil, storageFault("failed to update budget", err)
	}
	budget.MonthlyBudget = monthly

	if err := s.ledger.Refresh(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}
