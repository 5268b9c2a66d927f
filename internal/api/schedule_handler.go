// internal/api/schedule_handler.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"healthtrack/treatment-tracker/internal/adherence"
	"healthtrack/treatment-tracker/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	trackers *adherence.Registry
	timeout  time.Duration
	logger   *zap.Logger
}

func NewScheduleHandler(trackers *adherence.Registry, timeout time.Duration, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{trackers: trackers, timeout: timeout, logger: logger}
}

// --- DTOs ---

// ScheduleResponse is the tracker's consumer view.
type ScheduleResponse struct {
	State   adherence.State         `json:"state"`
	Entries []domain.ScheduleEntry  `json:"entries"`
	Summary domain.AdherenceSummary `json:"summary"`
	Error   string                  `json:"error,omitempty"` // Set when showing stale data
}

// UpdateCompletionRequest toggles a day. Completed is a pointer so a missing
// field is rejected instead of read as false.
type UpdateCompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// requestContext bounds store calls made for one request.
func (h *ScheduleHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func scheduleResponse(snap adherence.Snapshot) ScheduleResponse {
	resp := ScheduleResponse{
		State:   snap.State,
		Entries: snap.Entries,
		Summary: snap.Summary,
	}
	if snap.State == adherence.StateStale && snap.LastError != nil {
		resp.Error = "Showing previously loaded schedule, refresh failed."
	}
	return resp
}

// needsLoad is true when the tracker has nothing a toggle could match yet.
func needsLoad(snap adherence.Snapshot) bool {
	switch snap.State {
	case adherence.StateIdle, adherence.StateError:
		return true
	case adherence.StateLoading:
		return len(snap.Entries) == 0
	}
	return false
}

// GetSchedule godoc
// @Summary Get my treatment schedule
// @Description Reloads and returns the authenticated patient's day-by-day schedule.
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ScheduleResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 502 {object} gin.H "Store unavailable and nothing loaded"
// @Router /schedule [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify patient.")
		return
	}

	tracker := h.trackers.Tracker(ownerID)
	ctx, cancel := h.requestContext(c)
	defer cancel()

	err = tracker.Load(ctx, ownerID)
	snap := tracker.Snapshot()
	switch {
	case err == nil, errors.Is(err, adherence.ErrLoadSuperseded):
		// A newer load owns the collection, answer with what it has.
	case errors.Is(err, adherence.ErrTransportFailure):
		if snap.State != adherence.StateStale {
			abortWithError(c, http.StatusBadGateway, "Treatment schedule is unavailable.")
			return
		}
	default:
		h.logger.Error("Unexpected schedule load error", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to load treatment schedule.")
		return
	}

	c.JSON(http.StatusOK, scheduleResponse(snap))
}

// UpdateCompletion godoc
// @Summary Mark a schedule day complete or incomplete
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Schedule entry id"
// @Param request body UpdateCompletionRequest true "New completion state"
// @Success 200 {object} domain.ScheduleEntry
// @Failure 400 {object} gin.H "Invalid body"
// @Failure 404 {object} gin.H "Entry not in the patient's schedule"
// @Failure 502 {object} gin.H "Store unavailable"
// @Router /schedule/{entryId}/completion [patch]
func (h *ScheduleHandler) UpdateCompletion(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify patient.")
		return
	}

	var req UpdateCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Body must be {\"completed\": true|false}.")
		return
	}
	entryID := c.Param("entryId")

	tracker := h.trackers.Tracker(ownerID)
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if needsLoad(tracker.Snapshot()) {
		if err := tracker.Load(ctx, ownerID); err != nil && !errors.Is(err, adherence.ErrLoadSuperseded) {
			abortWithError(c, http.StatusBadGateway, "Treatment schedule is unavailable.")
			return
		}
	}

	err = tracker.ToggleCompletion(ctx, entryID, *req.Completed)
	switch {
	case err == nil:
	case errors.Is(err, adherence.ErrEntryNotFound):
		abortWithError(c, http.StatusNotFound, "Schedule entry not found.")
		return
	case errors.Is(err, adherence.ErrTransportFailure):
		abortWithError(c, http.StatusBadGateway, "Could not save completion, try again.")
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		abortWithError(c, http.StatusGatewayTimeout, "Timed out waiting for an earlier update of this day.")
		return
	default:
		h.logger.Error("Unexpected completion update error", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to update completion.")
		return
	}

	entry, ok := tracker.Entry(entryID)
	if !ok {
		// Reloaded away between the update and now.
		abortWithError(c, http.StatusNotFound, "Schedule entry not found.")
		return
	}
	c.JSON(http.StatusOK, entry)
}
