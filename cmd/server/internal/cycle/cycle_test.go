package cycle

import (
	"testing"
	"time"
)

// 2025-06-02 是周一（UTC+8）
var refZone = time.FixedZone("UTC+8", 8*60*60)

// TestResolve_Weekday 测试工作日解析
func TestResolve_Weekday(t *testing.T) {
	// 参考时区周二中午
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, refZone).UTC()
	c := Resolve(now)

	if c.Locked {
		t.Error("Expected cycle unlocked on Tuesday")
	}

	wantAnchor := time.Date(2025, 6, 2, 0, 0, 0, 0, refZone)
	if !c.Anchor.Equal(wantAnchor) {
		t.Errorf("Expected anchor %v, got %v", wantAnchor, c.Anchor)
	}

	// 未锁定时边界为本周日 00:00
	wantTarget := time.Date(2025, 6, 8, 0, 0, 0, 0, refZone)
	if !c.Target.Equal(wantTarget) {
		t.Errorf("Expected target %v, got %v", wantTarget, c.Target)
	}

	if c.Week != "2025-23" {
		t.Errorf("Expected week 2025-23, got %s", c.Week)
	}
}

// TestResolve_SundayLock 测试周日锁定窗口
func TestResolve_SundayLock(t *testing.T) {
	// 参考时区周日上午
	now := time.Date(2025, 6, 8, 9, 30, 0, 0, refZone).UTC()
	c := Resolve(now)

	if !c.Locked {
		t.Fatal("Expected cycle locked on Sunday")
	}

	// 锚点仍是本周一
	wantAnchor := time.Date(2025, 6, 2, 0, 0, 0, 0, refZone)
	if !c.Anchor.Equal(wantAnchor) {
		t.Errorf("Expected anchor %v, got %v", wantAnchor, c.Anchor)
	}

	// 锁定时边界为下周一 00:00
	wantTarget := time.Date(2025, 6, 9, 0, 0, 0, 0, refZone)
	if !c.Target.Equal(wantTarget) {
		t.Errorf("Expected target %v, got %v", wantTarget, c.Target)
	}
}

// TestResolve_ReferenceZoneNotViewerZone 测试锁定以参考时区为准
func TestResolve_ReferenceZoneNotViewerZone(t *testing.T) {
	// UTC 周六 23:00 = 参考时区周日 07:00，应当锁定
	now := time.Date(2025, 6, 7, 23, 0, 0, 0, time.UTC)
	if c := Resolve(now); !c.Locked {
		t.Error("Expected locked: instant is Sunday in the reference timezone")
	}

	// UTC 周日 20:00 = 参考时区周一 04:00，应当解锁且锚点为新周期
	now = time.Date(2025, 6, 8, 20, 0, 0, 0, time.UTC)
	c := Resolve(now)
	if c.Locked {
		t.Error("Expected unlocked: instant is Monday in the reference timezone")
	}
	wantAnchor := time.Date(2025, 6, 9, 0, 0, 0, 0, refZone)
	if !c.Anchor.Equal(wantAnchor) {
		t.Errorf("Expected anchor %v, got %v", wantAnchor, c.Anchor)
	}
}

// TestResolve_Idempotent 固定时刻下重复解析结果一致
func TestResolve_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 5, 17, 42, 3, 0, refZone).UTC()
	first := Resolve(now)
	for i := 0; i < 10; i++ {
		again := Resolve(now)
		if again != first {
			t.Fatalf("Resolve not idempotent: %+v vs %+v", first, again)
		}
	}
}

// TestResolve_MondayMidnightBoundary 周一零点整属于新周期
func TestResolve_MondayMidnightBoundary(t *testing.T) {
	now := time.Date(2025, 6, 9, 0, 0, 0, 0, refZone).UTC()
	c := Resolve(now)

	if c.Locked {
		t.Error("Expected unlocked at Monday midnight")
	}
	wantAnchor := time.Date(2025, 6, 9, 0, 0, 0, 0, refZone)
	if !c.Anchor.Equal(wantAnchor) {
		t.Errorf("Expected anchor %v, got %v", wantAnchor, c.Anchor)
	}
}

// TestCountdown 测试倒计时
func TestCountdown(t *testing.T) {
	// 周六 23:00，距周日 00:00 还剩 1 小时
	now := time.Date(2025, 6, 7, 23, 0, 0, 0, refZone).UTC()
	if got := Countdown(now); got != time.Hour {
		t.Errorf("Expected 1h countdown, got %s", got)
	}

	// 周日 23:00，距下周一 00:00 还剩 1 小时
	now = time.Date(2025, 6, 8, 23, 0, 0, 0, refZone).UTC()
	if got := Countdown(now); got != time.Hour {
		t.Errorf("Expected 1h countdown, got %s", got)
	}
}

// TestWeekLabel 测试周编号标签
func TestWeekLabel(t *testing.T) {
	got := WeekLabel(time.Date(2025, 1, 30, 12, 0, 0, 0, refZone))
	if got != "2025-05" {
		t.Errorf("Expected 2025-05, got %s", got)
	}
}
