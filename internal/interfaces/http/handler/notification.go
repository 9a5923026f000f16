package handler

import (
	appnotification "github.com/boutique/storefront/internal/application/notification"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the admin notification inbox
type NotificationHandler struct {
	BaseHandler
	notificationService *appnotification.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *appnotification.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List godoc
// @ID           listNotifications
// @Summary      List admin notifications
// @Tags         admin
// @Produce      json
// @Param        unread query bool false "Only unread notifications"
// @Success      200 {object} APIResponse[[]dto.NotificationResponse]
// @Security     BearerAuth
// @Router       /admin/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var req dto.ListNotificationsRequest
	if !bindQuery(c, &req) {
		return
	}
	list, err := h.notificationService.List(c.Request.Context(), req.Unread)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, dto.ToNotificationResponses(list))
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark a notification as read
// @Tags         admin
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} APIResponse[dto.NotificationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.notificationService.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToNotificationResponse(n))
}
