package submission

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/upload"
)

// Phase 提交尝试所处阶段
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseValidating  Phase = "validating"
	PhaseUploading   Phase = "uploading"
	PhaseRegistering Phase = "registering"
	PhaseSucceeded   Phase = "succeeded"
	PhaseFailed      Phase = "failed"
)

// Metrics 原创类提交的四项数值指标
type Metrics struct {
	BrowseNum  int `json:"browseNum"`
	LikeNum    int `json:"likeNum"`
	CommentNum int `json:"commentNum"`
	ShareNum   int `json:"shareNum"`
}

// Attempt 一次进行中的提交尝试（瞬态值对象）
// 打开任务操作时创建，成功或显式取消后丢弃，不做持久化
type Attempt struct {
	ID          string
	Category    catalog.Category
	SubType     catalog.SubType
	ContentLink string
	Files       []upload.File
	Metrics     *Metrics

	mu           sync.Mutex
	phase        Phase
	failure      *EngineError
	submissionID string
	canceled     atomic.Bool
}

// NewAttempt 创建处于 idle 阶段的提交尝试
func NewAttempt(category catalog.Category, subType catalog.SubType) *Attempt {
	return &Attempt{
		ID:       uuid.NewString(),
		Category: category,
		SubType:  subType,
		phase:    PhaseIdle,
	}
}

// Phase 返回当前阶段
func (a *Attempt) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Failure 返回失败详情，未失败时为 nil
func (a *Attempt) Failure() *EngineError {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failure
}

// SubmissionID 返回登记成功后的提交 ID
func (a *Attempt) SubmissionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submissionID
}

// Cancel 取消本次尝试
// 不中断已发出的网络请求，但后续到达的结果一律被忽略，不再驱动状态
func (a *Attempt) Cancel() {
	a.canceled.Store(true)
}

// Canceled 返回是否已取消
func (a *Attempt) Canceled() bool {
	return a.canceled.Load()
}

// Reset 显式重置到 idle，仅允许从 failed（重试）或 succeeded（关闭弹窗）发起
// 校验失败后保留已选文件，用户修正后无需重新选择
func (a *Attempt) Reset() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != PhaseFailed && a.phase != PhaseSucceeded {
		return false
	}
	a.phase = PhaseIdle
	a.failure = nil
	return true
}

// setPhase 推进阶段；尝试已取消时不再应用任何状态变更
func (a *Attempt) setPhase(p Phase) bool {
	if a.canceled.Load() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.phase = p
	return true
}

// fail 标记失败并记录原因
func (a *Attempt) fail(err *EngineError) bool {
	if a.canceled.Load() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.phase = PhaseFailed
	a.failure = err
	return true
}

// succeed 标记成功并记录提交 ID
func (a *Attempt) succeed(submissionID string) bool {
	if a.canceled.Load() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.phase = PhaseSucceeded
	a.submissionID = submissionID
	return true
}
