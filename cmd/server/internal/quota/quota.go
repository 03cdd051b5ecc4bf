package quota

import (
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/cycle"
)

// OriginalRecord 当前周期内已登记的原创提交
// 在周期锁定前可通过编辑器修改，身份不变、内容被新版本取代
type OriginalRecord struct {
	RecordID    string    `json:"recordId"`
	ContentLink string    `json:"contentLink"`
	BrowseNum   int       `json:"browseNum"`
	LikeNum     int       `json:"likeNum"`
	CommentNum  int       `json:"commentNum"`
	ShareNum    int       `json:"shareNum"`
	EvidenceURL string    `json:"evidenceUrl"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UsageSnapshot 服务端上报的当前周期用量快照
// 引擎只读：唯一写入方是协调器的刷新调用，本地绝不乐观递增计数
type UsageSnapshot struct {
	ShareCount    int             `json:"shareCount"`    // communication 已占用
	TGCount       int             `json:"tgCount"`       // community/tg 已占用
	SpeakingCount int             `json:"speakingCount"` // community/speaking 已占用
	OriginalCount int             `json:"originalCount"` // original 已占用
	TotalPoints   int             `json:"totalPoints"`   // 累计积分
	Original      *OriginalRecord `json:"original,omitempty"`
	FetchedAt     time.Time       `json:"fetchedAt"`
}

// Count 返回指定类别/子类型的已占用数量
func (s UsageSnapshot) Count(category catalog.Category, subType catalog.SubType) int {
	switch category {
	case catalog.CategoryCommunication:
		return s.ShareCount
	case catalog.CategoryCommunity:
		switch subType {
		case catalog.SubTypeTG:
			return s.TGCount
		case catalog.SubTypeSpeaking:
			return s.SpeakingCount
		}
		return s.TGCount + s.SpeakingCount
	case catalog.CategoryOriginal:
		return s.OriginalCount
	}
	return 0
}

// Status 单个类别/子类型的本周期资格
type Status struct {
	Remaining  int  `json:"remaining"`
	CanSubmit  bool `json:"canSubmit"`
	PointValue int  `json:"pointValue"`
	Quota      int  `json:"quota"`
	Used       int  `json:"used"`
}

// Eligibility 根据用量快照、周期状态与任务目录计算各类别资格
//
// remaining = max(0, quota - used)，恒非负
// canSubmit = 未锁定 && 类别启用 && remaining > 0
//
// 双重上限规则：community/speaking 额外要求社区共享父配额仍有余量
// （父配额用量 = tg + speaking 合计）。即使 speaking 自身子配额未满，
// 父配额耗尽时也会被挡下。此不对称行为是既定产品策略，保持原样。
func Eligibility(snap UsageSnapshot, cyc cycle.Cycle, cat *catalog.Catalog) map[catalog.Key]Status {
	result := make(map[catalog.Key]Status, len(catalog.Keys()))

	communityUsed := snap.TGCount + snap.SpeakingCount
	communityRemaining := max0(cat.CommunityQuota() - communityUsed)

	for _, key := range catalog.Keys() {
		spec, err := cat.Describe(key.Category, key.SubType)
		if err != nil {
			continue
		}

		used := snap.Count(key.Category, key.SubType)
		remaining := max0(spec.Quota - used)

		canSubmit := !cyc.Locked && spec.Enabled && remaining > 0
		if key.Category == catalog.CategoryCommunity && key.SubType == catalog.SubTypeSpeaking {
			canSubmit = canSubmit && communityRemaining > 0
		}

		result[key] = Status{
			Remaining:  remaining,
			CanSubmit:  canSubmit,
			PointValue: spec.PointValue,
			Quota:      spec.Quota,
			Used:       used,
		}
	}

	return result
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
