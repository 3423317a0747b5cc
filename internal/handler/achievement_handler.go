package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/campus-portal-api/internal/models"
	"github.com/campushub/campus-portal-api/internal/service"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
	"github.com/campushub/campus-portal-api/pkg/response"
)

// AchievementHandler wires HTTP endpoints to the achievement workflow.
type AchievementHandler struct {
	service *service.AchievementService
}

// NewAchievementHandler creates a new handler.
func NewAchievementHandler(svc *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{service: svc}
}

// Submit godoc
// @Summary Submit an achievement
// @Description Create a pending achievement owned by the calling student
// @Tags Achievements
// @Accept json
// @Produce json
// @Param payload body models.SubmitAchievementRequest true "Achievement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /achievements [post]
func (h *AchievementHandler) Submit(c *gin.Context) {
	var req models.SubmitAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid achievement payload"))
		return
	}

	achievement, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, achievement)
}

// Get godoc
// @Summary Get an achievement
// @Description Return one achievement visible to the caller
// @Tags Achievements
// @Produce json
// @Param id path string true "Achievement ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /achievements/{id} [get]
func (h *AchievementHandler) Get(c *gin.Context) {
	achievement, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, achievement, nil)
}

// Delete godoc
// @Summary Delete a pending achievement
// @Description Remove a still-pending achievement owned by the calling student
// @Tags Achievements
// @Produce json
// @Param id path string true "Achievement ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /achievements/{id} [delete]
func (h *AchievementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByStudent godoc
// @Summary List a student's achievements
// @Description Return every achievement owned by the student, visible to the student and its supervisors
// @Tags Achievements
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/achievements [get]
func (h *AchievementHandler) ListByStudent(c *gin.Context) {
	achievements, err := h.service.ListByStudent(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, achievements, nil)
}

// Review godoc
// @Summary Review a pending achievement
// @Description Apply a terminal Approved/Rejected decision; a comment is mandatory on rejection
// @Tags Achievements
// @Accept json
// @Produce json
// @Param achievementId path string true "Achievement ID"
// @Param payload body models.ReviewRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /achievements/review/{achievementId} [post]
func (h *AchievementHandler) Review(c *gin.Context) {
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	achievement, err := h.service.Review(c.Request.Context(), claimsFromContext(c), c.Param("achievementId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, achievement, nil)
}
