package quota

import (
	"context"
	"testing"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/cycle"
)

var refZone = time.FixedZone("UTC+8", 8*60*60)

func unlockedCycle() cycle.Cycle {
	// 周三
	return cycle.Resolve(time.Date(2025, 6, 4, 12, 0, 0, 0, refZone).UTC())
}

func lockedCycle() cycle.Cycle {
	// 周日
	return cycle.Resolve(time.Date(2025, 6, 8, 12, 0, 0, 0, refZone).UTC())
}

// TestEligibility_RemainingNeverNegative 剩余量恒非负
func TestEligibility_RemainingNeverNegative(t *testing.T) {
	cat := catalog.Default()
	snap := UsageSnapshot{ShareCount: 99, TGCount: 99, SpeakingCount: 99, OriginalCount: 99}

	for key, status := range Eligibility(snap, unlockedCycle(), cat) {
		if status.Remaining < 0 {
			t.Errorf("Negative remaining for %s: %d", key, status.Remaining)
		}
		if status.CanSubmit {
			t.Errorf("Expected CanSubmit=false for exhausted %s", key)
		}
	}
}

// TestEligibility_Basic 基本剩余量计算
func TestEligibility_Basic(t *testing.T) {
	cat := catalog.Default()
	snap := UsageSnapshot{ShareCount: 2}

	result := Eligibility(snap, unlockedCycle(), cat)

	status := result[catalog.Key{Category: catalog.CategoryCommunication}]
	// 默认配额 5，已用 2
	if status.Remaining != 3 || !status.CanSubmit {
		t.Errorf("Unexpected communication status: %+v", status)
	}
	if status.PointValue != 10 {
		t.Errorf("Expected point value 10, got %d", status.PointValue)
	}
}

// TestEligibility_Locked 锁定周期内一律不可提交
func TestEligibility_Locked(t *testing.T) {
	cat := catalog.Default()
	snap := UsageSnapshot{}

	for key, status := range Eligibility(snap, lockedCycle(), cat) {
		if status.CanSubmit {
			t.Errorf("Expected CanSubmit=false during lock for %s", key)
		}
		if status.Remaining == 0 {
			t.Errorf("Lock must not consume quota for %s", key)
		}
	}
}

// TestEligibility_CommunityDualCap 双重上限：父配额耗尽时 speaking 被挡下
func TestEligibility_CommunityDualCap(t *testing.T) {
	cat := catalog.Default()

	// 父配额默认 3，tg 已用 3 → speaking 自身子配额（1）未占用仍不可提交
	snap := UsageSnapshot{TGCount: 3, SpeakingCount: 0}
	result := Eligibility(snap, unlockedCycle(), cat)

	speaking := result[catalog.Key{Category: catalog.CategoryCommunity, SubType: catalog.SubTypeSpeaking}]
	if speaking.Remaining != 1 {
		t.Errorf("Expected speaking sub-quota remaining 1, got %d", speaking.Remaining)
	}
	if speaking.CanSubmit {
		t.Error("Expected speaking blocked by exhausted parent community quota")
	}

	// 不对称：tg 只受自身子配额约束
	snap = UsageSnapshot{TGCount: 2, SpeakingCount: 1}
	result = Eligibility(snap, unlockedCycle(), cat)
	tg := result[catalog.Key{Category: catalog.CategoryCommunity, SubType: catalog.SubTypeTG}]
	if tg.Remaining != 1 {
		t.Errorf("Expected tg remaining 1, got %d", tg.Remaining)
	}

	// 父配额尚有余量且子配额未满时 speaking 可提交
	snap = UsageSnapshot{TGCount: 1, SpeakingCount: 0}
	result = Eligibility(snap, unlockedCycle(), cat)
	speaking = result[catalog.Key{Category: catalog.CategoryCommunity, SubType: catalog.SubTypeSpeaking}]
	if !speaking.CanSubmit {
		t.Error("Expected speaking submittable with parent quota headroom")
	}
}

// TestEligibility_DisabledCategory 停用类别不可提交
func TestEligibility_DisabledCategory(t *testing.T) {
	cat := catalog.Default()
	quota := 0
	// 远程配置将 original 配额降为 0
	applied := cat.ApplyRemote(context.Background(), fixedFetcher{catalog.OriginalOverride{Quota: &quota}})
	if !applied {
		t.Fatal("override not applied")
	}

	result := Eligibility(UsageSnapshot{}, unlockedCycle(), cat)
	original := result[catalog.Key{Category: catalog.CategoryOriginal}]
	if original.CanSubmit || original.Remaining != 0 {
		t.Errorf("Expected original disabled, got %+v", original)
	}
}

// TestSnapshotCount 测试计数访问器
func TestSnapshotCount(t *testing.T) {
	snap := UsageSnapshot{ShareCount: 1, TGCount: 2, SpeakingCount: 1, OriginalCount: 1}

	if got := snap.Count(catalog.CategoryCommunity, catalog.SubTypeNone); got != 3 {
		t.Errorf("Expected combined community count 3, got %d", got)
	}
	if got := snap.Count(catalog.CategoryCommunity, catalog.SubTypeSpeaking); got != 1 {
		t.Errorf("Expected speaking count 1, got %d", got)
	}
	if got := snap.Count(catalog.Category("bounty"), catalog.SubTypeNone); got != 0 {
		t.Errorf("Expected zero count for unknown category, got %d", got)
	}
}

type fixedFetcher struct {
	override catalog.OriginalOverride
}

func (f fixedFetcher) FetchOriginalConfig(_ context.Context) (catalog.OriginalOverride, error) {
	return f.override, nil
}
