package handler

import (
	"github.com/boutique/storefront/internal/application/dashboard"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the admin dashboard figures
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboard.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Revenue godoc
// @ID           getDashboardRevenue
// @Summary      All-time revenue of non-cancelled orders
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dto.RevenueResponse]
// @Security     BearerAuth
// @Router       /admin/dashboard/revenue [get]
func (h *DashboardHandler) Revenue(c *gin.Context) {
	summary, err := h.dashboardService.TotalRevenue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToRevenueResponse(summary))
}

// RevenueChart godoc
// @ID           getDashboardRevenueChart
// @Summary      Revenue of the last six months, oldest first
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[[]dto.MonthlyRevenueResponse]
// @Security     BearerAuth
// @Router       /admin/dashboard/revenue-chart [get]
func (h *DashboardHandler) RevenueChart(c *gin.Context) {
	months, err := h.dashboardService.RevenueChart(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToRevenueChartResponse(months))
}

// Performance godoc
// @ID           getDashboardPerformance
// @Summary      Fulfillment and cancellation rates
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dto.PerformanceResponse]
// @Security     BearerAuth
// @Router       /admin/dashboard/performance [get]
func (h *DashboardHandler) Performance(c *gin.Context) {
	perf, err := h.dashboardService.Performance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToPerformanceResponse(perf))
}

// Trends godoc
// @ID           getDashboardTrends
// @Summary      Last 30 days against the 30 days before
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dto.TrendsResponse]
// @Security     BearerAuth
// @Router       /admin/dashboard/trends [get]
func (h *DashboardHandler) Trends(c *gin.Context) {
	trends, err := h.dashboardService.Trends(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToTrendsResponse(trends))
}
