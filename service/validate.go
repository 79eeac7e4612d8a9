package service

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"smartbudget/models"
)

const (
	// MaxAmount DECIMAL(12,2) 可表示的最大值
	MaxAmount            = 9999999999.99
	MaxDescriptionLength = 255
	MaxCategoryLength    = 100
	MaxGoalNameLength    = 255
)

// positiveAmount 校验必填且大于 0 的金额，缺失与 0 分开报错
func positiveAmount(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, invalidInput(field + " is required")
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, invalidInput(field + " must be a number")
	}
	amount := models.RoundAmount(*v)
	if amount <= 0 {
		return 0, invalidInput(field + " must be greater than 0")
	}
	if amount > MaxAmount {
		return 0, invalidInput(fmt.Sprintf("%s must not exceed %.2f", field, MaxAmount))
	}
	return amount, nil
}

// nonNegativeAmount 校验必填且不小于 0 的金额
func nonNegativeAmount(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, invalidInput(field + " is required")
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, invalidInput(field + " must be a number")
	}
	amount := models.RoundAmount(*v)
	if amount < 0 {
		return 0, invalidInput(field + " cannot be negative")
	}
	if amount > MaxAmount {
		return 0, invalidInput(fmt.Sprintf("%s must not exceed %.2f", field, MaxAmount))
	}
	return amount, nil
}

// requiredText 去除首尾空白后非空，且不超过最大长度
func requiredText(field, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalidInput(field + " is required")
	}
	return optionalText(field, v, max)
}

func optionalText(field, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > max {
		return "", invalidInput(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return v, nil
}

// normalizeCategory 空类别归为 Other
func normalizeCategory(v string) (string, error) {
	v, err := optionalText("category", v, MaxCategoryLength)
	if err != nil {
		return "", err
	}
	if v == "" {
		return models.CategoryOther, nil
	}
	return v, nil
}
