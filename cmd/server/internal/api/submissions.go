package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/submission"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/upload"
	"github.com/smallken/ff-pf-frondend-sub002/pkg/logger"
)

// maxMultipartMemory 多文件表单的内存上限
const maxMultipartMemory = 32 << 20

// SubmissionResponse 提交成功响应
type SubmissionResponse struct {
	AttemptID    string `json:"attemptId"`
	SubmissionID string `json:"submissionId"`
	Phase        string `json:"phase"`
}

// HandleCreateSubmission POST /api/v1/submissions
// multipart 表单：category、subType、contentLink、浏览/点赞/评论/分享数，
// 证据文件放在 evidence 字段下，可多个
func HandleCreateSubmission(coordinator *submission.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			badRequestResponse(c, "invalid multipart form: "+err.Error())
			return
		}

		category := catalog.Category(c.PostForm("category"))
		subType := catalog.SubType(c.PostForm("subType"))
		if category == "" {
			badRequestResponse(c, "category is required")
			return
		}

		attempt := submission.NewAttempt(category, subType)
		attempt.ContentLink = c.PostForm("contentLink")

		metrics, err := parseMetrics(c)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		attempt.Metrics = metrics

		files, err := readEvidenceFiles(c)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		attempt.Files = files

		if err := coordinator.Submit(c.Request.Context(), attempt); err != nil {
			logger.L().Info("submission rejected",
				"member", currentMember(c),
				"attempt_id", attempt.ID,
				"category", string(category),
				"error", err,
			)
			engineErrorResponse(c, err)
			return
		}

		c.JSON(http.StatusCreated, SubmissionResponse{
			AttemptID:    attempt.ID,
			SubmissionID: attempt.SubmissionID(),
			Phase:        string(attempt.Phase()),
		})
	}
}

// parseMetrics 读取原创类的四项数值指标
// 四项全缺省视为未提供；只给出部分字段时整体拒绝，缺失项绝不默认为 0
func parseMetrics(c *gin.Context) (*submission.Metrics, error) {
	fields := []string{"browseNum", "likeNum", "commentNum", "shareNum"}
	values := make(map[string]int, len(fields))
	for _, field := range fields {
		raw := c.PostForm(field)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New(field + " must be an integer")
		}
		values[field] = v
	}
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) < len(fields) {
		return nil, errors.New("browseNum, likeNum, commentNum and shareNum must all be provided")
	}
	return &submission.Metrics{
		BrowseNum:  values["browseNum"],
		LikeNum:    values["likeNum"],
		CommentNum: values["commentNum"],
		ShareNum:   values["shareNum"],
	}, nil
}

// readEvidenceFiles 将 evidence 字段下的全部文件读入内存
func readEvidenceFiles(c *gin.Context) ([]upload.File, error) {
	form := c.Request.MultipartForm
	if form == nil {
		return nil, nil
	}
	headers := form.File["evidence"]
	files := make([]upload.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, errors.New("failed to open evidence file: " + err.Error())
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.New("failed to read evidence file: " + err.Error())
		}
		files = append(files, upload.File{Name: header.Filename, Data: data})
	}
	return files, nil
}

// engineErrorResponse 将引擎错误映射为 HTTP 状态码
// 资格门禁类冲突为 409，本地校验为 400，协作方失败为 502
func engineErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, submission.ErrCycleLocked):
		errorResponse(c, http.StatusConflict, "本周期已锁定，周日不可提交")
	case errors.Is(err, submission.ErrQuotaExhausted):
		errorResponse(c, http.StatusConflict, "该类别本周期配额已用尽")
	case errors.Is(err, submission.ErrCategoryDisabled):
		errorResponse(c, http.StatusConflict, "该类别已停用")
	case errors.Is(err, submission.ErrNoSnapshot):
		errorResponse(c, http.StatusServiceUnavailable, "用量数据尚未就绪，请稍后重试")
	case errors.Is(err, submission.ErrAttemptCanceled):
		errorResponse(c, http.StatusConflict, "提交已取消")
	default:
		var engErr *submission.EngineError
		if errors.As(err, &engErr) {
			switch engErr.Kind {
			case submission.KindValidation:
				badRequestResponse(c, engErr.Message)
			default:
				errorResponse(c, http.StatusBadGateway, engErr.Message)
			}
			return
		}
		internalErrorResponse(c, err)
	}
}
