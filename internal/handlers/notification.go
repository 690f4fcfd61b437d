package handlers

import (
	"net/http"

	"github.com/beerbuddy/beerbuddy/internal/middleware"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	logger              *logger.Logger
}

func NewNotificationHandler(notificationService *services.NotificationService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), middleware.GetViewer(c), query.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
