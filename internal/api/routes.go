package api

import (
	"net/http"
	"time"

	"healthtrack/treatment-tracker/internal/adherence"
	"healthtrack/treatment-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	logger *zap.Logger,
	trackers *adherence.Registry,
	historyService service.HistoryService,
	requestTimeout time.Duration,
) {
	scheduleHandler := NewScheduleHandler(trackers, requestTimeout, logger)
	historyHandler := NewHistoryHandler(historyService, requestTimeout)

	router.Use(RequestLogger(logger))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(AuthMiddleware(jwtSecret))
	{
		// GET /api/v1/schedule
		apiV1.GET("/schedule", scheduleHandler.GetSchedule)
		// PATCH /api/v1/schedule/{entryId}/completion
		apiV1.PATCH("/schedule/:entryId/completion", scheduleHandler.UpdateCompletion)

		apiV1.GET("/treatments", historyHandler.GetTreatmentHistory)
		apiV1.GET("/assessments", historyHandler.GetAssessmentHistory)
	}
}
