// internal/api/history_handler.go
package api

import (
	"context"
	"net/http"
	"time"

	"healthtrack/treatment-tracker/internal/domain"
	"healthtrack/treatment-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	historyService service.HistoryService
	timeout        time.Duration
}

func NewHistoryHandler(historyService service.HistoryService, timeout time.Duration) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, timeout: timeout}
}

func (h *HistoryHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// GetTreatmentHistory godoc
// @Summary Get my treatment plans
// @Tags History
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.TreatmentPlan
// @Failure 502 {object} gin.H "Store unavailable"
// @Router /treatments [get]
func (h *HistoryHandler) GetTreatmentHistory(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify patient.")
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	plans, err := h.historyService.TreatmentHistory(ctx, ownerID)
	if err != nil {
		abortWithError(c, http.StatusBadGateway, "Failed to retrieve treatment history.")
		return
	}
	if plans == nil {
		plans = []domain.TreatmentPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// GetAssessmentHistory godoc
// @Summary Get my assessments
// @Tags History
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AssessmentView
// @Failure 502 {object} gin.H "Store unavailable"
// @Router /assessments [get]
func (h *HistoryHandler) GetAssessmentHistory(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify patient.")
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	views, err := h.historyService.AssessmentHistory(ctx, ownerID)
	if err != nil {
		abortWithError(c, http.StatusBadGateway, "Failed to retrieve assessment history.")
		return
	}
	if views == nil {
		views = []service.AssessmentView{}
	}
	c.JSON(http.StatusOK, views)
}
