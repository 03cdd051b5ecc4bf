package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/pkg/metrics"
)

// 错误定义
var (
	ErrNoFiles            = errors.New("NO_FILES")
	ErrFileTooLarge       = errors.New("FILE_TOO_LARGE")
	ErrFileTypeNotAllowed = errors.New("FILE_TYPE_NOT_ALLOWED")
)

// MaxFileSize 单个证据文件大小上限（10 MiB）
const MaxFileSize = 10 << 20

// 证据文件扩展名白名单
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".pdf":  true,
}

// File 一个待上传的证据文件（已读入内存）
type File struct {
	Name string
	Data []byte
}

// FileStore 文件存储协作方
type FileStore interface {
	UploadFile(ctx context.Context, category, filename string, content io.Reader) (string, error)
}

// Uploader 证据上传器
// 上传前做本地校验（类型白名单、大小上限）以便在无网络往返的情况下快速失败
// 上传失败不做静默重试，重试由用户重新发起整个提交
type Uploader struct {
	store  FileStore
	logger *slog.Logger
}

// NewUploader 创建证据上传器
func NewUploader(store FileStore, logger *slog.Logger) *Uploader {
	return &Uploader{store: store, logger: logger}
}

// Validate 本地校验单个文件，不产生网络调用
func (u *Uploader) Validate(f File) error {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %s（仅支持 jpg/jpeg/png/webp/gif/pdf）", ErrFileTypeNotAllowed, f.Name)
	}
	if len(f.Data) > MaxFileSize {
		return fmt.Errorf("%w: %s（%.1f MB，上限 10 MB）", ErrFileTooLarge, f.Name, float64(len(f.Data))/(1<<20))
	}
	return nil
}

// Upload 上传单个文件并返回稳定引用 URL
func (u *Uploader) Upload(ctx context.Context, category catalog.Category, f File) (string, error) {
	if err := u.Validate(f); err != nil {
		metrics.RecordEvidenceUpload(string(category), "rejected")
		return "", err
	}

	url, err := u.store.UploadFile(ctx, string(category), f.Name, bytes.NewReader(f.Data))
	if err != nil {
		metrics.RecordEvidenceUpload(string(category), "failed")
		return "", err
	}

	metrics.RecordEvidenceUpload(string(category), "success")
	return url, nil
}

// UploadMany 并发上传一组文件（扇出/扇入）
//
// 返回的 URL 顺序与输入文件顺序一致，与完成顺序无关。
// 全有或全无：任一文件失败则整批失败，不返回部分 URL 列表，
// 调用方不得假设部分成功。
func (u *Uploader) UploadMany(ctx context.Context, category catalog.Category, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	// 先整批本地校验，避免部分文件已上传后才发现非法文件
	for _, f := range files {
		if err := u.Validate(f); err != nil {
			metrics.RecordEvidenceUpload(string(category), "rejected")
			return nil, err
		}
	}

	start := time.Now()
	urls := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			url, err := u.store.UploadFile(gctx, string(category), f.Name, bytes.NewReader(f.Data))
			if err != nil {
				metrics.RecordEvidenceUpload(string(category), "failed")
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			metrics.RecordEvidenceUpload(string(category), "success")
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		u.logger.Warn("evidence batch upload failed", "category", category, "files", len(files), "error", err)
		return nil, err
	}

	metrics.RecordEvidenceUploadDuration(string(category), time.Since(start).Seconds())
	return urls, nil
}
