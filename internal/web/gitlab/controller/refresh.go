package controller

import (
	"net/http"
	"strconv"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/kb-refresh/internal/library/vault"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/dao"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/dto"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/service"
)

// TriggerRefresh runs one refresh synchronously and returns the audit row.
// Progress is logged at phase boundaries; a run already in flight yields 409.
func (c *Controller) TriggerRefresh(ctx *gin.Context) {
	agentID := ctx.Param("agent_id")
	logger := gmw.GetLogger(ctx).With(zap.String("agent_id", agentID))

	var lastPhase dto.Phase
	run, err := c.svc.Refresh(ctx.Request.Context(), agentID, func(p dto.Progress) {
		if p.Phase == lastPhase {
			return
		}
		lastPhase = p.Phase
		logger.Info("refresh progress",
			zap.String("phase", string(p.Phase)),
			zap.Int("total", p.Total))
	})
	if err != nil {
		switch {
		case errors.Is(err, dao.ErrConnectionNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no gitlab connection configured"})
		case errors.Is(err, service.ErrRefreshInProgress):
			ctx.JSON(http.StatusConflict, gin.H{"error": "a refresh is already running"})
		case errors.Is(err, vault.ErrIntegrity), errors.Is(err, vault.ErrNotConfigured):
			logger.Error("refresh credentials", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "stored credentials are unusable"})
		default:
			logger.Error("refresh failed", zap.Error(err))
			response := gin.H{"error": "refresh failed"}
			if run != nil {
				response["run"] = run
			}
			ctx.JSON(http.StatusInternalServerError, response)
		}
		return
	}

	ctx.JSON(http.StatusOK, run)
}

// ListRuns returns the agent's recent refresh audit rows.
func (c *Controller) ListRuns(ctx *gin.Context) {
	agentID := ctx.Param("agent_id")

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	runs, err := c.svc.ListRuns(ctx.Request.Context(), agentID, limit)
	if err != nil {
		gmw.GetLogger(ctx).Error("list runs", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "list runs failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"runs": runs})
}
