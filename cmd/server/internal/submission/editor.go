package submission

import (
	"context"
	"log/slog"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/collab"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/cycle"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/quota"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/upload"
)

// OriginalUpdater 原创记录更新协作方
type OriginalUpdater interface {
	UpdateOriginal(ctx context.Context, recordID string, req collab.UpdateOriginalRequest) (quota.OriginalRecord, error)
}

// SingleUploader 单文件证据上传
type SingleUploader interface {
	Upload(ctx context.Context, category catalog.Category, f upload.File) (string, error)
}

// OriginalPatch 原创记录的部分更新
// 所有字段可选：nil 字段保持现值；Evidence 提供时显式替换证据文件
type OriginalPatch struct {
	ContentLink *string
	BrowseNum   *int
	LikeNum     *int
	CommentNum  *int
	ShareNum    *int
	Evidence    *upload.File
}

// Editor 原创任务编辑器
// 已登记的原创提交在周期锁定前可修改链接、指标与证据
type Editor struct {
	updater     OriginalUpdater
	uploader    SingleUploader
	coordinator *Coordinator
	now         func() time.Time
	logger      *slog.Logger
}

// NewEditor 创建原创任务编辑器
func NewEditor(updater OriginalUpdater, uploader SingleUploader, coordinator *Coordinator, logger *slog.Logger) *Editor {
	return &Editor{
		updater:     updater,
		uploader:    uploader,
		coordinator: coordinator,
		now:         time.Now,
		logger:      logger,
	}
}

// SetNowFunc 注入时间源，便于测试固定周期状态
func (e *Editor) SetNowFunc(f func() time.Time) {
	e.now = f
}

// Update 修改已登记的原创提交
//
// 周期锁定后整体拒绝，不调用任何协作方。
// 提供但非法的数值字段在任何网络调用前使整次更新失败（无部分修补）。
// 省略 Evidence 时保留现有证据引用。
func (e *Editor) Update(ctx context.Context, recordID string, patch OriginalPatch) (quota.OriginalRecord, error) {
	if cycle.Resolve(e.now().UTC()).Locked {
		return quota.OriginalRecord{}, ErrCycleLocked
	}

	// 数值字段逐项校验，快速失败
	for _, v := range []struct {
		name  string
		value *int
	}{
		{"浏览数", patch.BrowseNum},
		{"点赞数", patch.LikeNum},
		{"评论数", patch.CommentNum},
		{"分享数", patch.ShareNum},
	} {
		if v.value != nil && *v.value < 0 {
			return quota.OriginalRecord{}, NewValidationError(v.name + "必须为非负整数")
		}
	}

	req := collab.UpdateOriginalRequest{
		ContentLink: patch.ContentLink,
		BrowseNum:   patch.BrowseNum,
		LikeNum:     patch.LikeNum,
		CommentNum:  patch.CommentNum,
		ShareNum:    patch.ShareNum,
	}

	// 显式替换证据：先上传新文件，成功后以新 URL 覆盖
	if patch.Evidence != nil {
		url, err := e.uploader.Upload(ctx, catalog.CategoryOriginal, *patch.Evidence)
		if err != nil {
			return quota.OriginalRecord{}, NewUploadError(err)
		}
		req.EvidenceURL = &url
	}

	record, err := e.updater.UpdateOriginal(ctx, recordID, req)
	if err != nil {
		return quota.OriginalRecord{}, NewRegistrationError(err)
	}

	// 更新成功后刷新快照（尽力而为）
	if e.coordinator != nil {
		if _, err := e.coordinator.RefreshSnapshot(ctx, "post_edit"); err != nil {
			e.logger.Warn("post-edit snapshot refresh failed", "error", err)
		}
	}

	return record, nil
}
