package service

import (
	"context"

	"smartbudget/models"

	"golang.org/x/sync/errgroup"
)

// RecentExpenseCount 首页展示的最近消费笔数
const RecentExpenseCount = 6

// Dashboard 首页聚合数据
type Dashboard struct {
	Budget         *models.Budget         `json:"budget"`
	Expenses       []models.Expense       `json:"expenses"`
	CategoryTotals []models.CategoryTotal `json:"category_totals"`
	Goals          []models.SavingsGoal   `json:"goals"`
	Remaining      float64                `json:"remaining"`
	TotalSaved     float64                `json:"total_saved"`
}

// DashboardService 首页聚合
type DashboardService struct {
	budgets  *BudgetService
	expenses *ExpenseService
	goals    *GoalService
}

// NewDashboardService 创建首页聚合服务
func NewDashboardService(budgets *BudgetService, expenses *ExpenseService, goals *GoalService) *DashboardService {
	return &DashboardService{budgets: budgets, expenses: expenses, goals: goals}
}

// Get 先重算预算（首次访问时创建），再并发读取最近消费、类别汇总和储蓄目标
func (s *DashboardService) Get(ctx context.Context, userID uint) (*Dashboard, error) {
	budget, err := s.budgets.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Budget: budget}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		expenses, err := s.expenses.List(gctx, userID, RecentExpenseCount, 0)
		d.Expenses = expenses
		return err
	})
	g.Go(func() error {
		stats, err := s.expenses.CategoryTotals(gctx, userID, TimeRange{})
		if err == nil {
			d.CategoryTotals = stats.Categories
		}
		return err
	})
	g.Go(func() error {
		goals, err := s.goals.List(gctx, userID)
		d.Goals = goals
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// total_saved 列已废弃，以储蓄目标之和为准
	d.TotalSaved = TotalSaved(d.Goals)
	d.Remaining = budget.Remaining()
	return d, nil
}
