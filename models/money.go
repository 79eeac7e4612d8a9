package models

import "math"

// RoundAmount 金额保留两位小数（与 DECIMAL(12,2) 列一致）
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
