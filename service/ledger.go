package service

import (
	"context"

	"smartbudget/logging"
	"smartbudget/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Ledger 维护 budgets.total_spent 与消费记录之和一致
//
// total_spent 从不增量维护：每次写消费记录之后、每次对外返回预算之前，
// 都以 SUM(amount) 全量重算并回写。该操作幂等，重复调用结果不变。
type Ledger struct {
	db *gorm.DB
}

// NewLedger 创建 Ledger
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// RecomputeSpent 重算用户消费总额并写回预算行，返回重算结果
// 无消费记录时为 0；预算行不存在时 UPDATE 不影响任何行
func (l *Ledger) RecomputeSpent(ctx context.Context, userID uint) (float64, error) {
	db := l.db.WithContext(ctx)

	var spent float64
	if err := db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&spent).Error; err != nil {
		return 0, storageFault("failed to sum expenses", err)
	}
	spent = models.RoundAmount(spent)

	if err := db.Model(&models.Budget{}).
		Where("user_id = ?", userID).
		Update("total_spent", spent).Error; err != nil {
		return 0, storageFault("failed to update budget", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"total_spent": spent,
	}).Debug("ledger recomputed")

	return spent, nil
}

// Refresh 重算并更新预算快照中的 total_spent，避免调用方再读一次
func (l *Ledger) Refresh(ctx context.Context, budget *models.Budget) error {
	spent, err := l.RecomputeSpent(ctx, budget.UserID)
	if err != nil {
		return err
	}
	budget.TotalSpent = spent
	return nil
}

// ReconcileAll 对所有预算行重算 total_spent，返回处理的用户数
// 用于修复绕过服务直接写库造成的不一致
func (l *Ledger) ReconcileAll(ctx context.Context) (int, error) {
	var userIDs []uint
	if err := l.db.WithContext(ctx).
		Model(&models.Budget{}).
		Order("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return 0, storageFault("failed to list budgets", err)
	}

	for i, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := l.RecomputeSpent(ctx, userID); err != nil {
			return i, err
		}
	}
	return len(userIDs), nil
}
