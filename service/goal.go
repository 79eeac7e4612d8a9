package service

import (
	"context"
	"errors"

	"smartbudget/models"

	"gorm.io/gorm"
)

// GoalService 储蓄目标增删改查，不影响预算和消费记录
type GoalService struct {
	db *gorm.DB
}

// NewGoalService 创建储蓄目标服务
func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

// Add 新建储蓄目标，当前金额从 0 开始
func (s *GoalService) Add(ctx context.Context, userID uint, name string, target *float64) (*models.SavingsGoal, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	name, targetAmount, err := validateGoalDetails(name, target)
	if err != nil {
		return nil, err
	}

	goal := models.SavingsGoal{
		UserID:       userID,
		GoalName:     name,
		TargetAmount: targetAmount,
	}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, storageFault("failed to insert goal", err)
	}
	return &goal, nil
}

// UpdateProgress 以调用方给出的绝对值覆盖当前金额（不是累加），允许超过目标
func (s *GoalService) UpdateProgress(ctx context.Context, goalID, userID uint, current *float64) (*models.SavingsGoal, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	amount, err := nonNegativeAmount("current_amount", current)
	if err != nil {
		return nil, err
	}

	goal, err := s.Get(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(goal).
		Where("user_id = ?", userID).
		Update("current_amount", amount).Error; err != nil {
		return nil, storageFault("failed to update goal", err)
	}
	goal.CurrentAmount = amount
	return goal, nil
}

// UpdateDetails 修改名称和目标金额，当前金额保持不变
func (s *GoalService) UpdateDetails(ctx context.Context, goalID, userID uint, name string, target *float64) (*models.SavingsGoal, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	name, targetAmount, err := validateGoalDetails(name, target)
	if err != nil {
		return nil, err
	}

	goal, err := s.Get(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(goal).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"goal_name":     name,
			"target_amount": targetAmount,
		}).Error; err != nil {
		return nil, storageFault("failed to update goal", err)
	}
	goal.GoalName = name
	goal.TargetAmount = targetAmount
	return goal, nil
}

// Delete 删除储蓄目标
func (s *GoalService) Delete(ctx context.Context, goalID, userID uint) error {
	if userID == 0 {
		return ErrMissingUser
	}
	if _, err := s.Get(ctx, goalID, userID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.SavingsGoal{})
	if result.Error != nil {
		return storageFault("failed to delete goal", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// Get 按ID读取当前用户的储蓄目标
func (s *GoalService) Get(ctx context.Context, goalID, userID uint) (*models.SavingsGoal, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	if goalID == 0 {
		return nil, ErrGoalNotFound
	}

	var goal models.SavingsGoal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, storageFault("failed to load goal", err)
	}
	return &goal, nil
}

// List 按创建时间倒序列出储蓄目标
func (s *GoalService) List(ctx context.Context, userID uint) ([]models.SavingsGoal, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}

	goals := make([]models.SavingsGoal, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&goals).Error; err != nil {
		return nil, storageFault("failed to list goals", err)
	}
	return goals, nil
}

// TotalSaved 所有储蓄目标当前金额之和，即“已存金额”的唯一来源
func TotalSaved(goals []models.SavingsGoal) float64 {
	var total float64
	for _, g := range goals {
		total += g.CurrentAmount
	}
	return models.RoundAmount(total)
}

func validateGoalDetails(name string, target *float64) (string, float64, error) {
	name, err := requiredText("goal_name", name, MaxGoalNameLength)
	if err != nil {
		return "", 0, err
	}
	amount, err := positiveAmount("target_amount", target)
	if err != nil {
		return "", 0, err
	}
	return name, amount, nil
}
