package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushub/campus-portal-api/internal/models"
	"github.com/campushub/campus-portal-api/internal/service"
	appErrors "github.com/campushub/campus-portal-api/pkg/errors"
	"github.com/campushub/campus-portal-api/pkg/response"
)

// InstituteHandler wires HTTP endpoints to the institute approval workflow.
type InstituteHandler struct {
	service *service.InstituteService
}

// NewInstituteHandler creates a new handler.
func NewInstituteHandler(svc *service.InstituteService) *InstituteHandler {
	return &InstituteHandler{service: svc}
}

// Register godoc
// @Summary Register an institute
// @Description File a public registration request; the record starts Pending and Inactive
// @Tags Institutes
// @Accept json
// @Produce json
// @Param payload body models.InstituteRegistrationRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /institutes/register [post]
func (h *InstituteHandler) Register(c *gin.Context) {
	var req models.InstituteRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	inst, err := h.service.SubmitRequest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, inst)
}

// List godoc
// @Summary List registration requests
// @Description Return the superadmin review queue, optionally filtered by approval status
// @Tags Institutes
// @Produce json
// @Param status query string false "Approval status filter" Enums(Pending, Approved, Rejected)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /institutes/requests [get]
func (h *InstituteHandler) List(c *gin.Context) {
	filter := models.InstituteRequestFilter{}
	if raw := c.Query("status"); raw != "" {
		status := models.ReviewStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown approval status"))
			return
		}
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, pagination)
}

// Approve godoc
// @Summary Approve a registration request
// @Description Activate a pending institute and mail generated credentials to the registrant
// @Tags Institutes
// @Accept json
// @Produce json
// @Param id path string true "Institute ID"
// @Param payload body models.InstituteRequestDecision true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /institutes/requests/{id}/approve [post]
func (h *InstituteHandler) Approve(c *gin.Context) {
	var req models.InstituteRequestDecision
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	inst, err := h.service.Approve(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, inst, nil)
}

// Reject godoc
// @Summary Reject a registration request
// @Description Decline a pending institute; the rationale comment is mandatory
// @Tags Institutes
// @Accept json
// @Produce json
// @Param id path string true "Institute ID"
// @Param payload body models.InstituteRequestDecision true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /institutes/requests/{id}/reject [post]
func (h *InstituteHandler) Reject(c *gin.Context) {
	var req models.InstituteRequestDecision
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	inst, err := h.service.Reject(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, inst, nil)
}
