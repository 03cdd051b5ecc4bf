package overview

import (
	"context"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/cycle"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/quota"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/submission"
)

// CycleView 周期的展示视图
type CycleView struct {
	Week             string    `json:"week"`
	Anchor           time.Time `json:"anchor"`
	Locked           bool      `json:"locked"`
	Target           time.Time `json:"target"`
	CountdownSeconds int64     `json:"countdownSeconds"`
}

// Model 总览读模型：配额资格 + 累计积分 + 周期状态 + 原创记录
type Model struct {
	Cycle       CycleView               `json:"cycle"`
	TotalPoints int                     `json:"totalPoints"`
	Categories  map[string]quota.Status `json:"categories"`
	Original    *quota.OriginalRecord   `json:"original,omitempty"`
	FetchedAt   time.Time               `json:"fetchedAt"`
}

// Aggregator 总览聚合器
// 每次构建都经由协调器重新拉取快照（协调器是快照的唯一写入方），
// 不持有任何跨请求缓存：会话内的旧状态一律不作数
type Aggregator struct {
	coordinator *submission.Coordinator
}

// NewAggregator 创建总览聚合器
func NewAggregator(coordinator *submission.Coordinator) *Aggregator {
	return &Aggregator{coordinator: coordinator}
}

// Build 拉取最新快照并合并为单一读模型
func (a *Aggregator) Build(ctx context.Context) (Model, error) {
	snap, err := a.coordinator.RefreshSnapshot(ctx, "mount")
	if err != nil {
		return Model{}, err
	}

	statuses, err := a.coordinator.Eligibility()
	if err != nil {
		return Model{}, err
	}

	cyc := a.coordinator.CurrentCycle()

	categories := make(map[string]quota.Status, len(statuses))
	for key, status := range statuses {
		categories[key.String()] = status
	}

	return Model{
		Cycle:       NewCycleView(cyc, time.Now()),
		TotalPoints: snap.TotalPoints,
		Categories:  categories,
		Original:    snap.Original,
		FetchedAt:   snap.FetchedAt,
	}, nil
}

// NewCycleView 构建周期展示视图
func NewCycleView(cyc cycle.Cycle, nowUTC time.Time) CycleView {
	remaining := cyc.Target.Sub(nowUTC)
	if remaining < 0 {
		remaining = 0
	}
	return CycleView{
		Week:             cyc.Week,
		Anchor:           cyc.Anchor,
		Locked:           cyc.Locked,
		Target:           cyc.Target,
		CountdownSeconds: int64(remaining.Seconds()),
	}
}
