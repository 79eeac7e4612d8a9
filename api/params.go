package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"smartbudget/service"

	"github.com/gin-gonic/gin"
)

// 请求中可接受的时间格式
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

var errInvalidTime = errors.New("invalid time format, expected 2006-01-02 15:04:05, 2006-01-02 or RFC3339")

// parseTime 解析可选时间，空字符串返回 nil
func parseTime(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, errInvalidTime
}

// parseDay 解析日期；endOfDay 为 true 时取当天 23:59:59
func parseDay(v string, endOfDay bool) (*time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(v), time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

// pathID 解析路径中的ID，非法ID按不存在处理
func pathID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// queryInt 读取整型查询参数，缺省或非法时返回 def
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// parseRange 按 range_type 解析统计区间
//
//	all    不限时间（缺省）
//	month  year_month=2024-01
//	year   year=2024
//	custom start_time=2024-01-01&end_time=2024-12-31，两端均可省略
func parseRange(c *gin.Context) (service.TimeRange, string, error) {
	rangeType := c.DefaultQuery("range_type", "all")

	switch rangeType {
	case "all":
		return service.TimeRange{}, rangeType, nil

	case "month":
		yearMonth := c.Query("year_month")
		if yearMonth == "" {
			yearMonth = time.Now().Format("2006-01")
		}
		start, err := time.ParseInLocation("2006-01", yearMonth, time.Local)
		if err != nil {
			return service.TimeRange{}, rangeType, errors.New("year_month must look like 2024-01")
		}
		end := start.AddDate(0, 1, 0).Add(-time.Second)
		return service.TimeRange{Start: &start, End: &end}, rangeType, nil

	case "year":
		year := time.Now().Year()
		if v := c.Query("year"); v != "" {
			y, err := strconv.Atoi(v)
			if err != nil || y < 2000 || y > 2100 {
				return service.TimeRange{}, rangeType, errors.New("year must be a 4-digit year such as 2024")
			}
			year = y
		}
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
		end := time.Date(year, 12, 31, 23, 59, 59, 0, time.Local)
		return service.TimeRange{Start: &start, End: &end}, rangeType, nil

	case "custom":
		r, err := parseDayRange(c.Query("start_time"), c.Query("end_time"))
		return r, rangeType, err

	default:
		return service.TimeRange{}, rangeType, errors.New("range_type must be one of all, month, year, custom")
	}
}

// parseDayRange 解析 start_time/end_time（日期），结束日期包含当天
func parseDayRange(startStr, endStr string) (service.TimeRange, error) {
	var r service.TimeRange
	if startStr != "" {
		start, err := parseDay(startStr, false)
		if err != nil {
			return r, errors.New("start_time must look like 2024-01-01")
		}
		r.Start = start
	}
	if endStr != "" {
		end, err := parseDay(endStr, true)
		if err != nil {
			return r, errors.New("end_time must look like 2024-12-31")
		}
		r.End = end
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, errors.New("end_time must not be before start_time")
	}
	return r, nil
}
