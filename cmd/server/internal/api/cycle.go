package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/overview"
	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/submission"
)

// HandleGetCycle GET /api/v1/cycle
// 返回当前周期状态与锁定倒计时
func HandleGetCycle(coordinator *submission.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		cyc := coordinator.CurrentCycle()
		successResponse(c, overview.NewCycleView(cyc, time.Now().UTC()))
	}
}
