package cycle

import (
	"fmt"
	"time"
)

// 周期以运营方时区（固定 UTC+8）为准，与访问者本地时区无关
var referenceZone = time.FixedZone("UTC+8", 8*60*60)

// Cycle 表示一个周任务周期
// Anchor 为周期锚点（参考时区的最近一个周一 00:00）
// Locked 表示当前处于锁定窗口（参考时区的周日全天，不接受新提交）
// Target 为倒计时边界：锁定时为下周一 00:00，否则为本周日 00:00
// Week 为 ISO 周编号标签，格式 "2025-05"
type Cycle struct {
	Anchor time.Time `json:"anchor"`
	Target time.Time `json:"target"`
	Locked bool      `json:"locked"`
	Week   string    `json:"week"`
}

// Resolve 将 UTC 时刻解析为周期状态
// 纯函数：每次调用从头计算，固定时刻下秒级幂等，无副作用
func Resolve(nowUTC time.Time) Cycle {
	local := nowUTC.In(referenceZone)

	// 周一为 0，周日为 6
	offset := (int(local.Weekday()) + 6) % 7
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, referenceZone)
	anchor := midnight.AddDate(0, 0, -offset)

	locked := local.Weekday() == time.Sunday

	// 锁定窗口内展示下一周期的倒计时
	var target time.Time
	if locked {
		target = anchor.AddDate(0, 0, 7)
	} else {
		target = anchor.AddDate(0, 0, 6)
	}

	year, week := local.ISOWeek()
	return Cycle{
		Anchor: anchor,
		Target: target,
		Locked: locked,
		Week:   fmt.Sprintf("%d-%02d", year, week),
	}
}

// Countdown 返回距离倒计时边界的剩余时长，已过期时返回 0
func Countdown(nowUTC time.Time) time.Duration {
	c := Resolve(nowUTC)
	remaining := c.Target.Sub(nowUTC)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WeekLabel 计算 ISO 8601 周编号标签
// 返回格式: "2025-05" (表示2025年第5周)
func WeekLabel(t time.Time) string {
	year, week := t.In(referenceZone).ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}
