package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/collab"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/cycle"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/quota"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/upload"
	"github.com/smallken/ff-pf-frondend-sub002/pkg/logger"
	"github.com/smallken/ff-pf-frondend-sub002/pkg/metrics"
)

// Registrar 登记协作方
type Registrar interface {
	Register(ctx context.Context, req collab.RegisterRequest) (string, error)
}

// UsageFetcher 总览查询协作方
type UsageFetcher interface {
	FetchUsage(ctx context.Context) (quota.UsageSnapshot, error)
}

// EvidenceUploader 证据上传器
type EvidenceUploader interface {
	UploadMany(ctx context.Context, category catalog.Category, files []upload.File) ([]string, error)
}

// Coordinator 提交协调器：驱动两阶段提交（上传 → 登记）的状态机
//
// 用量快照的唯一写入方。计数永远来自最近一次服务端读取，
// 本地绝不乐观递增，避免与异步审核结果漂移。
type Coordinator struct {
	catalog   *catalog.Catalog
	uploader  EvidenceUploader
	registrar Registrar
	usage     UsageFetcher

	refreshDelay time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu          sync.RWMutex
	snapshot    quota.UsageSnapshot
	hasSnapshot bool
}

// NewCoordinator 创建提交协调器
// refreshDelay 为登记成功后二次快照刷新的延迟（用于捕获异步审核结果）
func NewCoordinator(cat *catalog.Catalog, uploader EvidenceUploader, registrar Registrar, usage UsageFetcher, refreshDelay time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		catalog:      cat,
		uploader:     uploader,
		registrar:    registrar,
		usage:        usage,
		refreshDelay: refreshDelay,
		now:          time.Now,
		logger:       logger,
	}
}

// SetNowFunc 注入时间源，便于测试固定周期状态
func (c *Coordinator) SetNowFunc(f func() time.Time) {
	c.now = f
}

// CurrentCycle 返回当前周期状态
func (c *Coordinator) CurrentCycle() cycle.Cycle {
	return cycle.Resolve(c.now().UTC())
}

// Snapshot 返回最近一次成功读取的用量快照
func (c *Coordinator) Snapshot() (quota.UsageSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, c.hasSnapshot
}

// RefreshSnapshot 从总览协作方重新拉取用量快照
// trigger 用于指标归因：mount/post_submit/post_edit/delayed
func (c *Coordinator) RefreshSnapshot(ctx context.Context, trigger string) (quota.UsageSnapshot, error) {
	snap, err := c.usage.FetchUsage(ctx)
	if err != nil {
		metrics.RecordSnapshotRefresh(trigger, "failed")
		c.logger.Warn("usage snapshot refresh failed", "trigger", trigger, "error", err)
		return quota.UsageSnapshot{}, err
	}

	c.mu.Lock()
	c.snapshot = snap
	c.hasSnapshot = true
	c.mu.Unlock()

	metrics.RecordSnapshotRefresh(trigger, "success")
	return snap, nil
}

// Eligibility 基于当前快照与周期计算各类别资格
func (c *Coordinator) Eligibility() (map[catalog.Key]quota.Status, error) {
	snap, ok := c.Snapshot()
	if !ok {
		return nil, ErrNoSnapshot
	}
	return quota.Eligibility(snap, c.CurrentCycle(), c.catalog), nil
}

// Submit 驱动一次提交尝试走完整个状态机
//
// idle → validating → uploading → registering → succeeded
// failed 可从 validating/uploading/registering 到达
//
// 资格门禁在 idle 阶段短路：周期锁定或配额耗尽时不发生任何阶段转换。
// 返回的 error 与 attempt.Failure() 一致，便于调用方直接展示。
func (c *Coordinator) Submit(ctx context.Context, attempt *Attempt) error {
	// 资格门禁（idle 短路，不进入状态机）
	if err := c.gate(attempt); err != nil {
		return err
	}

	if attempt.Canceled() {
		return ErrAttemptCanceled
	}

	// idle → validating
	attempt.setPhase(PhaseValidating)

	// community 必须先选定且只选定一个子类型，校验才能继续
	if attempt.Category == catalog.CategoryCommunity &&
		attempt.SubType != catalog.SubTypeTG && attempt.SubType != catalog.SubTypeSpeaking {
		vErr := NewValidationError("请选择社区任务子类型")
		attempt.fail(vErr)
		metrics.RecordSubmission(string(attempt.Category), "failed")
		return vErr
	}

	spec, err := c.catalog.Describe(attempt.Category, attempt.SubType)
	if err != nil {
		vErr := NewValidationError("未知的任务类别")
		attempt.fail(vErr)
		metrics.RecordSubmission(string(attempt.Category), "failed")
		return vErr
	}
	if vErr := validateAttempt(attempt, spec); vErr != nil {
		// 校验失败不发出任何请求；已选文件保留在尝试上
		attempt.fail(vErr)
		metrics.RecordSubmission(string(attempt.Category), "failed")
		logger.LogAttemptPhase(c.logger, attempt.ID, string(attempt.Category), string(PhaseFailed), vErr.Message)
		return vErr
	}

	// validating → uploading
	if !attempt.setPhase(PhaseUploading) {
		return ErrAttemptCanceled
	}
	urls, err := c.uploader.UploadMany(ctx, attempt.Category, attempt.Files)
	if err != nil {
		uErr := NewUploadError(err)
		if attempt.fail(uErr) {
			metrics.RecordSubmission(string(attempt.Category), "failed")
			logger.LogAttemptPhase(c.logger, attempt.ID, string(attempt.Category), string(PhaseFailed), uErr.Message)
		}
		return uErr
	}

	// uploading → registering（已取消的尝试不得继续登记）
	if !attempt.setPhase(PhaseRegistering) {
		return ErrAttemptCanceled
	}
	submissionID, err := c.registrar.Register(ctx, buildRegisterRequest(attempt, urls))
	if err != nil {
		rErr := NewRegistrationError(err)
		if attempt.fail(rErr) {
			metrics.RecordSubmission(string(attempt.Category), "failed")
			logger.LogAttemptPhase(c.logger, attempt.ID, string(attempt.Category), string(PhaseFailed), rErr.Message)
		}
		return rErr
	}

	// registering → succeeded
	if !attempt.succeed(submissionID) {
		// 登记已经发生，但取消的尝试不再驱动状态；快照照常刷新
		c.logger.Info("registration landed for canceled attempt", "attempt_id", attempt.ID)
	} else {
		metrics.RecordSubmission(string(attempt.Category), "succeeded")
		logger.LogAttemptPhase(c.logger, attempt.ID, string(attempt.Category), string(PhaseSucceeded), "")
	}

	// 立即刷新 + 延迟二次刷新（异步审核可能稍后才反映到积分）
	if _, err := c.RefreshSnapshot(ctx, "post_submit"); err != nil {
		c.logger.Warn("post-submit snapshot refresh failed", "error", err)
	}
	c.scheduleDelayedRefresh()

	return nil
}

// gate 资格门禁：锁定、停用或配额耗尽时拒绝，尝试停留在 idle
func (c *Coordinator) gate(attempt *Attempt) error {
	cyc := c.CurrentCycle()
	if cyc.Locked {
		return ErrCycleLocked
	}

	snap, ok := c.Snapshot()
	if !ok {
		return ErrNoSnapshot
	}

	statuses := quota.Eligibility(snap, cyc, c.catalog)
	status, ok := statuses[catalog.Key{Category: attempt.Category, SubType: attempt.SubType}]
	if !ok {
		// 未知组合交给校验阶段给出具体原因
		return nil
	}

	if !status.CanSubmit {
		spec, err := c.catalog.Describe(attempt.Category, attempt.SubType)
		if err == nil && !spec.Enabled {
			return ErrCategoryDisabled
		}
		return ErrQuotaExhausted
	}
	return nil
}

// scheduleDelayedRefresh 安排延迟快照刷新（尽力而为的对账，非保证）
func (c *Coordinator) scheduleDelayedRefresh() {
	time.AfterFunc(c.refreshDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := c.RefreshSnapshot(ctx, "delayed"); err != nil {
			c.logger.Warn("delayed snapshot refresh failed", "error", err)
		}
	})
}

// validateAttempt 按类别规则做本地校验，失败时不触碰网络
func validateAttempt(a *Attempt, spec catalog.Spec) *EngineError {
	// community 必须先选定且只选定一个子类型
	if a.Category == catalog.CategoryCommunity {
		if a.SubType != catalog.SubTypeTG && a.SubType != catalog.SubTypeSpeaking {
			return NewValidationError("请选择社区任务子类型")
		}
	} else if a.SubType != catalog.SubTypeNone {
		return NewValidationError("该类别不支持子类型")
	}

	if spec.RequiresLink && a.ContentLink == "" {
		return NewValidationError("内容链接不能为空")
	}

	if len(a.Files) < spec.EvidenceMin {
		return NewValidationError(fmt.Sprintf("至少需要 %d 个证据文件", spec.EvidenceMin))
	}
	if spec.EvidenceMax > 0 && len(a.Files) > spec.EvidenceMax {
		return NewValidationError(fmt.Sprintf("最多允许 %d 个证据文件", spec.EvidenceMax))
	}

	// original 要求四项指标齐全且均为非负整数
	if spec.RequiresMetrics {
		if a.Metrics == nil {
			return NewValidationError("请填写浏览/点赞/评论/分享数据")
		}
		m := a.Metrics
		for _, v := range []struct {
			name  string
			value int
		}{
			{"浏览数", m.BrowseNum},
			{"点赞数", m.LikeNum},
			{"评论数", m.CommentNum},
			{"分享数", m.ShareNum},
		} {
			if v.value < 0 {
				return NewValidationError(v.name + "必须为非负整数")
			}
		}
	}

	return nil
}

// buildRegisterRequest 组装登记请求，证据 URL 保持上传顺序
func buildRegisterRequest(a *Attempt, urls []string) collab.RegisterRequest {
	req := collab.RegisterRequest{
		Category:     a.Category,
		SubType:      a.SubType,
		ContentLink:  a.ContentLink,
		EvidenceURLs: urls,
	}
	if a.Metrics != nil {
		req.BrowseNum = intPtr(a.Metrics.BrowseNum)
		req.LikeNum = intPtr(a.Metrics.LikeNum)
		req.CommentNum = intPtr(a.Metrics.CommentNum)
		req.ShareNum = intPtr(a.Metrics.ShareNum)
	}
	return req
}

func intPtr(v int) *int { return &v }
