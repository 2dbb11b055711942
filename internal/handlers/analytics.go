package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetAnalytics reports task counters for ?filter=<period>, Today by default
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	period := services.Period(c.DefaultQuery("filter", string(services.PeriodToday)))

	report, err := h.analytics.GetAnalytics(c.Request.Context(), period)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Analytics retrieved successfully", gin.H{"analytics": report})
}
