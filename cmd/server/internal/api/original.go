package api

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/submission"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/upload"
	"github.com/smallken/ff-pf-frondend-sub002/pkg/logger"
)

// HandleUpdateOriginal PATCH /api/v1/original/:record_id
// multipart 表单，所有字段可选：contentLink、四项数值指标、evidence 单文件
// 缺省字段不参与更新
func HandleUpdateOriginal(editor *submission.Editor) gin.HandlerFunc {
	return func(c *gin.Context) {
		recordID := c.Param("record_id")
		if recordID == "" {
			badRequestResponse(c, "record_id is required")
			return
		}

		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			badRequestResponse(c, "invalid multipart form: "+err.Error())
			return
		}

		patch, err := parseOriginalPatch(c)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}

		record, err := editor.Update(c.Request.Context(), recordID, patch)
		if err != nil {
			logger.L().Info("original update rejected",
				"member", currentMember(c),
				"record_id", recordID,
				"error", err,
			)
			engineErrorResponse(c, err)
			return
		}

		successResponse(c, record)
	}
}

// parseOriginalPatch 仅收集表单中出现的字段
func parseOriginalPatch(c *gin.Context) (submission.OriginalPatch, error) {
	var patch submission.OriginalPatch

	if link, ok := c.GetPostForm("contentLink"); ok {
		patch.ContentLink = &link
	}

	for _, field := range []struct {
		name string
		dst  **int
	}{
		{"browseNum", &patch.BrowseNum},
		{"likeNum", &patch.LikeNum},
		{"commentNum", &patch.CommentNum},
		{"shareNum", &patch.ShareNum},
	} {
		raw, ok := c.GetPostForm(field.name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return submission.OriginalPatch{}, errors.New(field.name + " must be an integer")
		}
		*field.dst = &v
	}

	form := c.Request.MultipartForm
	if form != nil && len(form.File["evidence"]) > 0 {
		header := form.File["evidence"][0]
		f, err := header.Open()
		if err != nil {
			return submission.OriginalPatch{}, errors.New("failed to open evidence file: " + err.Error())
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return submission.OriginalPatch{}, errors.New("failed to read evidence file: " + err.Error())
		}
		patch.Evidence = &upload.File{Name: header.Filename, Data: data}
	}

	return patch, nil
}
