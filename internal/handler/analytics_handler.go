package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushub/campus-portal-api/internal/service"
	"github.com/campushub/campus-portal-api/pkg/response"
)

// AnalyticsHandler exposes the read-side projections.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// Achievements godoc
// @Summary Achievement analytics
// @Description Status breakdown and monthly decision trend for achievements
// @Tags Analytics
// @Produce json
// @Param months query int false "Trend window in months"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/achievements [get]
func (h *AnalyticsHandler) Achievements(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))
	result, cached, err := h.service.AchievementOverview(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"cached": cached})
}

// Reviewers godoc
// @Summary Reviewer activity
// @Description Per-reviewer decision counts across the achievement workflow
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/reviewers [get]
func (h *AnalyticsHandler) Reviewers(c *gin.Context) {
	activity, cached, err := h.service.Reviewers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil, map[string]interface{}{"cached": cached})
}

// InstituteRequests godoc
// @Summary Institute request analytics
// @Description Status breakdown and monthly decision trend for institute registrations
// @Tags Analytics
// @Produce json
// @Param months query int false "Trend window in months"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/institute-requests [get]
func (h *AnalyticsHandler) InstituteRequests(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))
	result, cached, err := h.service.InstituteRequests(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"cached": cached})
}

// ExportReviewHistory godoc
// @Summary Export a reviewer's decision log
// @Description Download a reviewer's review history as CSV or PDF
// @Tags Analytics
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Reviewer ID"
// @Param format query string false "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /analytics/reviewers/{id}/history/export [get]
func (h *AnalyticsHandler) ExportReviewHistory(c *gin.Context) {
	payload, contentType, filename, err := h.service.ReviewHistoryExport(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// System godoc
// @Summary System metrics snapshot
// @Description Aggregated process instrumentation for the admin dashboard
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.System(), nil)
}
