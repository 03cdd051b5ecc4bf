package api

import (
	"github.com/gin-gonic/gin"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/overview"
	"github.com/smallken/ff-pf-frondend-sub002/pkg/logger"
)

// HandleGetOverview GET /api/v1/overview
// 聚合视图：每次请求重新拉取快照，不使用跨请求缓存
func HandleGetOverview(agg *overview.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, err := agg.Build(c.Request.Context())
		if err != nil {
			logger.L().Warn("overview build failed",
				"member", currentMember(c),
				"error", err,
			)
			errorResponse(c, 502, "总览数据获取失败："+err.Error())
			return
		}
		successResponse(c, model)
	}
}
