package logplan

import (
	"fmt"
	"strings"
	"time"
)

// RollingInterval 文件 sink 的滚动周期
type RollingInterval int

const (
	RollingInfinite RollingInterval = iota // 从不按时间滚动
	RollingYear
	RollingMonth
	RollingDay
	RollingHour
	RollingMinute
)

var intervalNames = [...]string{
	RollingInfinite: "Infinite",
	RollingYear:     "Year",
	RollingMonth:    "Month",
	RollingDay:      "Day",
	RollingHour:     "Hour",
	RollingMinute:   "Minute",
}

func (r RollingInterval) String() string {
	if r >= RollingInfinite && r <= RollingMinute {
		return intervalNames[r]
	}
	return fmt.Sprintf("RollingInterval(%d)", int(r))
}

// ParseRollingInterval 解析滚动周期名称，不区分大小写，无法识别时返回 RollingDay
func ParseRollingInterval(s string) RollingInterval {
	name := strings.TrimSpace(s)
	for i, n := range intervalNames {
		if strings.EqualFold(n, name) {
			return RollingInterval(i)
		}
	}
	return RollingDay
}

// Layout 返回周期戳的时间格式，RollingInfinite 返回空串
func (r RollingInterval) Layout() string {
	switch r {
	case RollingYear:
		return "2006"
	case RollingMonth:
		return "200601"
	case RollingDay:
		return "20060102"
	case RollingHour:
		return "2006010215"
	case RollingMinute:
		return "200601021504"
	default:
		return ""
	}
}

// Truncate 返回 t 所在周期的起始时刻（按 t 自身的时区计算）
//
// RollingInfinite 只有一个周期，返回零值时间。
func (r RollingInterval) Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch r {
	case RollingYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case RollingMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case RollingDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case RollingHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case RollingMinute:
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	default:
		return time.Time{}
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (r RollingInterval) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (r *RollingInterval) UnmarshalText(text []byte) error {
	*r = ParseRollingInterval(string(text))
	return nil
}
