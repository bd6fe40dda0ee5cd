// Package controller exposes the gitlab admin REST surface.
package controller

import (
	"net/http"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/kb-refresh/internal/web/gitlab/dao"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/dto"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/model"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/service"
)

// Controller routes gitlab admin requests to the refresh service.
type Controller struct {
	svc *service.Service
}

// New creates the controller.
func New(svc *service.Service) *Controller {
	return &Controller{svc: svc}
}

// RegisterRoutes mounts the admin surface under group.
func (c *Controller) RegisterRoutes(group *gin.RouterGroup) {
	agents := group.Group("/agents/:agent_id/gitlab")
	agents.PUT("/connection", c.SaveConnection)
	agents.GET("/connection", c.GetConnection)
	agents.POST("/validate", c.ValidateConnection)
	agents.POST("/refresh", c.TriggerRefresh)
	agents.GET("/runs", c.ListRuns)
}

// SaveConnection upserts the agent's connection, encrypting the token.
func (c *Controller) SaveConnection(ctx *gin.Context) {
	agentID := ctx.Param("agent_id")

	var req dto.SaveConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := c.svc.SaveConnection(ctx.Request.Context(), agentID, req)
	if err != nil {
		gmw.GetLogger(ctx).Error("save connection", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "save connection failed"})
		return
	}

	ctx.JSON(http.StatusOK, connectionResponse(conn))
}

// GetConnection returns the stored connection with the token redacted.
func (c *Controller) GetConnection(ctx *gin.Context) {
	agentID := ctx.Param("agent_id")

	conn, err := c.svc.GetConnection(ctx.Request.Context(), agentID)
	if err != nil {
		if errors.Is(err, dao.ErrConnectionNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no gitlab connection configured"})
			return
		}
		gmw.GetLogger(ctx).Error("load connection", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "load connection failed"})
		return
	}

	ctx.JSON(http.StatusOK, connectionResponse(conn))
}

// ValidateConnection runs the advisory pre-save check.
func (c *Controller) ValidateConnection(ctx *gin.Context) {
	agentID := ctx.Param("agent_id")

	var req dto.ValidateConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.svc.Validate(ctx.Request.Context(), agentID, req)
	if err != nil {
		if errors.Is(err, dao.ErrConnectionNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no gitlab connection configured"})
			return
		}
		gmw.GetLogger(ctx).Error("validate connection", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "validate connection failed"})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func connectionResponse(conn *model.Connection) dto.ConnectionResponse {
	return dto.ConnectionResponse{
		AgentID:         conn.AgentID,
		RepoURL:         conn.RepoURL,
		Branch:          conn.Branch,
		PathFilter:      conn.PathFilter,
		FileExtensions:  conn.FileExtensions,
		ConvertAsciidoc: conn.ConvertAsciidoc,
		DocsBaseURL:     conn.DocsBaseURL,
		ProductContext:  conn.ProductContext,
		ProductMappings: conn.ProductMappings,
	}
}
