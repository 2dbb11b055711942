package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/orgtask-api/internal/dto"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/services"
	"github.com/yukikurage/orgtask-api/internal/utils"
)

type NotificationHandler struct {
	dispatcher *services.Dispatcher
}

func NewNotificationHandler(dispatcher *services.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

// Unread returns the caller's unread notifications and marks them read
func (h *NotificationHandler) Unread(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	notifications, total, err := h.dispatcher.UnreadNotifications(c.Request.Context(), actor.ID, params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Notifications retrieved successfully", gin.H{
		"notifications": notifications,
		"pagination":    params.Response(total),
	})
}

// RegisterToken stores a push token for the caller's device
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.FcmTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.dispatcher.RegisterFcmToken(c.Request.Context(), actor.ID, req.Token); err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, "FCM token saved successfully", nil)
}
