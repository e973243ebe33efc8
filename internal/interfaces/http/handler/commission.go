package handler

import (
	"context"
	"net/http"

	"github.com/estatehub/backend/internal/application/crm"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommissionHandler handles commission endpoints
type CommissionHandler struct {
	BaseHandler
	commissionService *crm.CommissionService
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(commissionService *crm.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

// Create godoc
// @ID           createCommission
// @Summary      Record a manual commission on a won deal
// @Tags         commissions
// @Accept       json
// @Produce      json
// @Param        request body CreateCommissionRequest true "Request body"
// @Success      201 {object} ItemResponse[CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions [post]
func (h *CommissionHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateCommissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.commissionService.Create(c.Request.Context(), actor, crm.CreateCommissionInput{
		DealID:   req.DealID,
		MemberID: req.MemberID,
		Amount:   req.Amount,
		Rate:     req.Rate,
		Currency: req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toCommissionResponse(result))
}

// GetByID godoc
// @ID           getCommissionByID
// @Summary      Get a commission
// @Tags         commissions
// @Produce      json
// @Param        id path string true "Commission ID" format(uuid)
// @Success      200 {object} ItemResponse[CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions/{id} [get]
func (h *CommissionHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.commissionService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCommissionResponse(result))
}

// List godoc
// @ID           listCommissions
// @Summary      List commissions
// @Description  Agents only see their own commissions
// @Tags         commissions
// @Produce      json
// @Param        page query int false "Page number" default(1) minimum(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        search query string false "Free text search"
// @Param        status query string false "Filter by status" Enums(PENDING, APPROVED, PAID, CANCELLED)
// @Param        member_id query string false "Filter by member" format(uuid)
// @Param        deal_id query string false "Filter by deal" format(uuid)
// @Success      200 {object} PageResponse[CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions [get]
func (h *CommissionHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ListCommissionsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter, err := req.filter()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid filter")
		return
	}

	page, err := h.commissionService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, total, p, size := mapPage(page, toCommissionResponse)
	h.SuccessWithMeta(c, items, total, p, size)
}

// Summary godoc
// @ID           commissionSummary
// @Summary      Commission totals per status and currency
// @Tags         commissions
// @Produce      json
// @Param        member_id query string false "Restrict to one member" format(uuid)
// @Success      200 {object} ItemResponse[CommissionSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions/summary [get]
func (h *CommissionHandler) Summary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CommissionSummaryRequest
	if !h.bindQuery(c, &req) {
		return
	}
	memberID, err := parseOptionalUUID(req.MemberID)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid member_id")
		return
	}

	summary, err := h.commissionService.Summary(c.Request.Context(), actor, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCommissionSummaryResponse(summary))
}

// Approve godoc
// @ID           approveCommission
// @Summary      Approve a pending commission
// @Tags         commissions
// @Produce      json
// @Param        id path string true "Commission ID" format(uuid)
// @Success      200 {object} ItemResponse[CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions/{id}/approve [post]
func (h *CommissionHandler) Approve(c *gin.Context) {
	h.transition(c, h.commissionService.Approve)
}

// MarkPaid godoc
// @ID           payCommission
// @Summary      Mark an approved commission paid
// @Tags         commissions
// @Produce      json
// @Param        id path string true "Commission ID" format(uuid)
// @Success      200 {object} ItemResponse[CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions/{id}/pay [post]
func (h *CommissionHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.commissionService.MarkPaid)
}

// Cancel godoc
// @ID           cancelCommission
// @Summary      Cancel an unpaid commission
// @Tags         commissions
// @Accept       json
// @Produce      json
// @Param        id path string true "Commission ID" format(uuid)
// @Param        request body CancelCommissionRequest true "Request body"
// @Success      200 {object} ItemResponse[CommissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /commissions/{id}/cancel [post]
func (h *CommissionHandler) Cancel(c *gin.Context) {
	var req CancelCommissionRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	h.transition(c, func(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.CommissionResult, error) {
		return h.commissionService.Cancel(ctx, actor, id, req.Note)
	})
}

func (h *CommissionHandler) transition(c *gin.Context, apply func(context.Context, agency.Actor, uuid.UUID) (*crm.CommissionResult, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := apply(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCommissionResponse(result))
}
