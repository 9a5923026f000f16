package handler

import (
	"errors"

	"github.com/boutique/storefront/internal/infrastructure/scheduler"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// JobHandler lets an external scheduler trigger batch jobs
type JobHandler struct {
	BaseHandler
	courierSync *scheduler.CourierSyncRunner
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(courierSync *scheduler.CourierSyncRunner) *JobHandler {
	return &JobHandler{courierSync: courierSync}
}

// RunCourierSync godoc
// @ID           runCourierSync
// @Summary      Sync every dispatched, non-terminal order with the courier
// @Description  Runs one batch and returns its counts. Overlapping runs are rejected with 409.
// @Tags         jobs
// @Produce      json
// @Success      200 {object} APIResponse[scheduler.CourierSyncResult]
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/jobs/courier-sync [post]
func (h *JobHandler) RunCourierSync(c *gin.Context) {
	result, err := h.courierSync.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrJobAlreadyRunning) {
			h.Error(c, dto.ErrCodeJobAlreadyRunning, "Courier sync is already running")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// LastCourierSync godoc
// @ID           getLastCourierSync
// @Summary      Result of the most recent courier sync in this process
// @Tags         jobs
// @Produce      json
// @Success      200 {object} APIResponse[scheduler.CourierSyncResult]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/jobs/courier-sync/last [get]
func (h *JobHandler) LastCourierSync(c *gin.Context) {
	result := h.courierSync.LastResult()
	if result == nil {
		h.Error(c, dto.ErrCodeNotFound, "Courier sync has not run yet")
		return
	}
	h.Success(c, result)
}
