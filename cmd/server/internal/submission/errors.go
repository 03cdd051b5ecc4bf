package submission

import (
	"errors"
	"fmt"
)

// ErrorKind 表示提交失败的错误类型代码
type ErrorKind string

const (
	// KindValidation 本地校验失败，未发出任何网络请求，修正输入后可重试
	KindValidation ErrorKind = "VALIDATION"

	// KindUpload 证据上传失败（大小/类型/网络），重试即重新发起整个提交
	KindUpload ErrorKind = "UPLOAD"

	// KindRegistration 登记协作方拒绝（重复、业务规则、网络失败）
	KindRegistration ErrorKind = "REGISTRATION"
)

// 提交资格相关错误
var (
	// ErrCycleLocked 周期处于锁定窗口（参考时区周日）
	ErrCycleLocked = errors.New("CYCLE_LOCKED")

	// ErrQuotaExhausted 该类别本周期配额已用尽
	ErrQuotaExhausted = errors.New("QUOTA_EXHAUSTED")

	// ErrCategoryDisabled 该类别已被运营停用
	ErrCategoryDisabled = errors.New("CATEGORY_DISABLED")

	// ErrNoSnapshot 尚未获取用量快照，无法判定资格
	ErrNoSnapshot = errors.New("NO_USAGE_SNAPSHOT")

	// ErrAttemptCanceled 提交尝试已被用户取消
	ErrAttemptCanceled = errors.New("ATTEMPT_CANCELED")
)

// EngineError 表示一次提交尝试的失败
// Message 面向用户展示；协作方返回的拒绝原因原样保留在其中
type EngineError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error 实现 error 接口
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap 实现错误链支持
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewValidationError 创建本地校验错误
func NewValidationError(message string) *EngineError {
	return &EngineError{Kind: KindValidation, Message: message}
}

// NewUploadError 创建证据上传错误
// 固定提示语包裹协作方的原始错误信息
func NewUploadError(cause error) *EngineError {
	return &EngineError{Kind: KindUpload, Message: "证据上传失败：" + cause.Error(), Cause: cause}
}

// NewRegistrationError 创建登记错误，服务端信息原样透出
func NewRegistrationError(cause error) *EngineError {
	return &EngineError{Kind: KindRegistration, Message: cause.Error(), Cause: cause}
}
