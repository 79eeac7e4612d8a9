package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, 45.5, RoundAmount(45.5))
	assert.Equal(t, 0.1, RoundAmount(0.1))
	assert.Equal(t, 12.35, RoundAmount(12.345000001))
	assert.Equal(t, 166.25, RoundAmount(45.50+120.75))
}

func TestBudget_Remaining(t *testing.T) {
	b := &Budget{MonthlyBudget: 1000, TotalSpent: 295.5}
	assert.Equal(t, 704.5, b.Remaining())

	// 超支为负数
	b2 := &Budget{MonthlyBudget: 100, TotalSpent: 250.5}
	assert.Equal(t, -150.5, b2.Remaining())
}

func TestSavingsGoal_Progress(t *testing.T) {
	g := &SavingsGoal{TargetAmount: 1000, CurrentAmount: 300}
	assert.Equal(t, 30.0, g.Progress())
	assert.False(t, g.IsCompleted())

	// 超额储蓄是允许的
	over := &SavingsGoal{TargetAmount: 200, CurrentAmount: 300}
	assert.Equal(t, 150.0, over.Progress())
	assert.True(t, over.IsCompleted())

	// 目标金额异常时不除零
	zero := &SavingsGoal{TargetAmount: 0, CurrentAmount: 10}
	assert.Equal(t, 0.0, zero.Progress())
	assert.False(t, zero.IsCompleted())
}

func TestSavingsGoal_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(SavingsGoal{ID: 3, GoalName: "Car", TargetAmount: 400, CurrentAmount: 100})
	assert.NoError(t, err)

	var m map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Car", m["goal_name"])
	assert.Equal(t, 25.0, m["progress"])
	assert.Equal(t, false, m["completed"])
	assert.NotContains(t, m, "User")
}

func TestGetCategories(t *testing.T) {
	cats := GetCategories()
	assert.Contains(t, cats, CategoryOther)
	assert.Contains(t, cats, CategoryTransportation)
	assert.Equal(t, CategoryOther, cats[len(cats)-1])
}
