package service

import (
	"context"
	"errors"
	"time"

	"smartbudget/models"

	"gorm.io/gorm"
)

const (
	DefaultExpensePageSize = 50
	MaxExpensePageSize     = 100
)

// ExpenseInput 新增/更新消费记录的参数
// Amount 为指针以区分“未传”和“传了 0”；Time 为空时新增取当前时间、更新保留原值
type ExpenseInput struct {
	Description string
	Amount      *float64
	Category    string
	Time        *time.Time
}

// TimeRange 统计/导出的时间范围，Start/End 为空表示不限
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// ExpenseService 消费记录增删改查，每次写入后都重算 total_spent
type ExpenseService struct {
	db      *gorm.DB
	budgets *BudgetService
	ledger  *Ledger
	now     func() time.Time
}

// NewExpenseService 创建消费记录服务
func NewExpenseService(db *gorm.DB, budgets *BudgetService, ledger *Ledger) *ExpenseService {
	return &ExpenseService{db: db, budgets: budgets, ledger: ledger, now: time.Now}
}

// Add 新增消费记录，返回记录与重算后的预算
func (s *ExpenseService) Add(ctx context.Context, userID uint, in ExpenseInput) (*models.Expense, *models.Budget, error) {
	if userID == 0 {
		return nil, nil, ErrMissingUser
	}
	amount, err := positiveAmount("amount", in.Amount)
	if err != nil {
		return nil, nil, err
	}
	description, err := optionalText("description", in.Description, MaxDescriptionLength)
	if err != nil {
		return nil, nil, err
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, nil, err
	}
	expenseTime := s.now()
	if in.Time != nil {
		expenseTime = *in.Time
	}

	expense := models.Expense{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		Category:    category,
		ExpenseTime: expenseTime,
	}
	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, nil, storageFault("failed to insert expense", err)
	}

	budget, err := s.refreshedBudget(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return &expense, budget, nil
}

// Update 覆盖消费记录的描述、金额、类别和时间
func (s *ExpenseService) Update(ctx context.Context, expenseID, userID uint, in ExpenseInput) (*models.Expense, *models.Budget, error) {
	if userID == 0 {
		return nil, nil, ErrMissingUser
	}
	amount, err := positiveAmount("amount", in.Amount)
	if err != nil {
		return nil, nil, err
	}
	description, err := requiredText("description", in.Description, MaxDescriptionLength)
	if err != nil {
		return nil, nil, err
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, nil, err
	}

	expense, err := s.Get(ctx, expenseID, userID)
	if err != nil {
		return nil, nil, err
	}
	if in.Time != nil {
		expense.ExpenseTime = *in.Time
	}

	updates := map[string]interface{}{
		"description":  description,
		"amount":       amount,
		"category":     category,
		"expense_time": expense.ExpenseTime,
	}
	if err := s.db.WithContext(ctx).
		Model(expense).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return nil, nil, storageFault("failed to update expense", err)
	}
	expense.Description = description
	expense.Amount = amount
	expense.Category = category

	// 金额可能未变，但无法据此跳过重算
	budget, err := s.refreshedBudget(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, budget, nil
}

// Delete 删除消费记录，返回重算后的预算
func (s *ExpenseService) Delete(ctx context.Context, expenseID, userID uint) (*models.Budget, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	if _, err := s.Get(ctx, expenseID, userID); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", expenseID, userID).
		Delete(&models.Expense{})
	if result.Error != nil {
		return nil, storageFault("failed to delete expense", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrExpenseNotFound
	}

	return s.refreshedBudget(ctx, userID)
}

// Get 按ID读取当前用户的消费记录
func (s *ExpenseService) Get(ctx context.Context, expenseID, userID uint) (*models.Expense, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	if expenseID == 0 {
		return nil, ErrExpenseNotFound
	}

	var expense models.Expense
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", expenseID, userID).
		First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, storageFault("failed to load expense", err)
	}
	return &expense, nil
}

// List 按时间倒序分页列出消费记录
func (s *ExpenseService) List(ctx context.Context, userID uint, limit, offset int) ([]models.Expense, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	limit, offset = NormalizePage(limit, offset)

	expenses := make([]models.Expense, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expense_time DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error; err != nil {
		return nil, storageFault("failed to list expenses", err)
	}
	return expenses, nil
}

// Between 列出时间范围内的消费记录（用于导出）
func (s *ExpenseService) Between(ctx context.Context, userID uint, r TimeRange) ([]models.Expense, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}

	expenses := make([]models.Expense, 0)
	if err := applyRange(s.db.WithContext(ctx).Where("user_id = ?", userID), r).
		Order("expense_time DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, storageFault("failed to list expenses", err)
	}
	return expenses, nil
}

// CategoryStats 类别统计结果
type CategoryStats struct {
	TotalAmount float64                `json:"total_amount"`
	TotalCount  int64                  `json:"total_count"`
	Categories  []models.CategoryTotal `json:"category_stats"`
}

// CategoryTotals 按类别汇总金额与笔数，并计算占比；空类别归入 Other
func (s *ExpenseService) CategoryTotals(ctx context.Context, userID uint, r TimeRange) (*CategoryStats, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}

	const categoryExpr = "COALESCE(NULLIF(category, ''), 'Other')"
	rows := make([]models.CategoryTotal, 0)
	if err := applyRange(s.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", userID), r).
		Select(categoryExpr + " AS category, SUM(amount) AS total, COUNT(*) AS count").
		Group(categoryExpr).
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, storageFault("failed to aggregate expenses", err)
	}

	stats := &CategoryStats{Categories: rows}
	for i := range rows {
		rows[i].Total = models.RoundAmount(rows[i].Total)
		stats.TotalAmount += rows[i].Total
		stats.TotalCount += rows[i].Count
	}
	stats.TotalAmount = models.RoundAmount(stats.TotalAmount)
	for i := range rows {
		if stats.TotalAmount > 0 {
			rows[i].Percentage = models.RoundAmount(rows[i].Total / stats.TotalAmount * 100)
		}
	}
	return stats, nil
}

func (s *ExpenseService) refreshedBudget(ctx context.Context, userID uint) (*models.Budget, error) {
	budget, err := s.budgets.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Refresh(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func applyRange(q *gorm.DB, r TimeRange) *gorm.DB {
	if r.Start != nil {
		q = q.Where("expense_time >= ?", *r.Start)
	}
	if r.End != nil {
		q = q.Where("expense_time <= ?", *r.End)
	}
	return q
}

// NormalizePage 规范分页参数：limit 缺省 50、上限 100，offset 不小于 0
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultExpensePageSize
	}
	if limit > MaxExpensePageSize {
		limit = MaxExpensePageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
