package handler

import (
	"net/http"

	"github.com/estatehub/backend/internal/application/crm"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DealHandler handles deal endpoints
type DealHandler struct {
	BaseHandler
	dealService *crm.DealService
}

// NewDealHandler creates a new deal handler
func NewDealHandler(dealService *crm.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// Create godoc
// @ID           createDeal
// @Summary      Open a deal for a lead
// @Tags         deals
// @Accept       json
// @Produce      json
// @Param        request body CreateDealRequest true "Request body"
// @Success      201 {object} ItemResponse[DealResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /deals [post]
func (h *DealHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateDealRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.dealService.Create(c.Request.Context(), actor, crm.CreateDealInput{
		LeadID:            req.LeadID,
		PropertyID:        req.PropertyID,
		AgentID:           req.AgentID,
		Title:             req.Title,
		Amount:            req.Amount,
		Currency:          req.Currency,
		CommissionRate:    req.CommissionRate,
		ExpectedCloseDate: req.ExpectedCloseDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toDealResponse(result))
}

// GetByID godoc
// @ID           getDealByID
// @Summary      Get a deal
// @Tags         deals
// @Produce      json
// @Param        id path string true "Deal ID" format(uuid)
// @Success      200 {object} ItemResponse[DealResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /deals/{id} [get]
func (h *DealHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.dealService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDealResponse(result))
}

// List godoc
// @ID           listDeals
// @Summary      List deals
// @Tags         deals
// @Produce      json
// @Param        page query int false "Page number" default(1) minimum(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        search query string false "Free text search"
// @Param        stage query string false "Filter by stage"
// @Param        agent_id query string false "Filter by agent" format(uuid)
// @Param        lead_id query string false "Filter by lead" format(uuid)
// @Param        property_id query string false "Filter by property" format(uuid)
// @Success      200 {object} PageResponse[DealResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /deals [get]
func (h *DealHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ListDealsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter, err := req.filter()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid filter")
		return
	}

	page, err := h.dealService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, total, p, size := mapPage(page, toDealResponse)
	h.SuccessWithMeta(c, items, total, p, size)
}

// Update godoc
// @ID           updateDeal
// @Summary      Update a deal
// @Tags         deals
// @Accept       json
// @Produce      json
// @Param        id path string true "Deal ID" format(uuid)
// @Param        request body UpdateDealRequest true "Request body"
// @Success      200 {object} ItemResponse[DealResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /deals/{id} [put]
func (h *DealHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateDealRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.dealService.Update(c.Request.Context(), actor, id, crm.UpdateDealInput{
		Title:             req.Title,
		Amount:            req.Amount,
		CommissionRate:    req.CommissionRate,
		AgentID:           req.AgentID,
		PropertyID:        req.PropertyID,
		ExpectedCloseDate: req.ExpectedCloseDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDealResponse(result))
}

// Delete godoc
// @ID           deleteDeal
// @Summary      Delete a deal
// @Tags         deals
// @Produce      json
// @Param        id path string true "Deal ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /deals/{id} [delete]
func (h *DealHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.dealService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ChangeStage godoc
// @ID           changeDealStage
// @Summary      Move a deal to another stage
// @Description  Closing a deal as CLOSED_WON also creates its commission
// @Tags         deals
// @Accept       json
// @Produce      json
// @Param        id path string true "Deal ID" format(uuid)
// @Param        request body ChangeDealStageRequest true "Request body"
// @Success      200 {object} ItemResponse[DealResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /deals/{id}/stage [patch]
func (h *DealHandler) ChangeStage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ChangeDealStageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.dealService.ChangeStage(c.Request.Context(), actor, id, crm.ChangeStageInput{
		Stage:      req.Stage,
		LostReason: req.LostReason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDealResponse(result))
}
