package handler

import (
	"github.com/estatehub/backend/internal/application/agency"
	"github.com/gin-gonic/gin"
)

// AgencyHandler handles the caller's agency and its members
type AgencyHandler struct {
	BaseHandler
	agencyService *agency.AgencyService
}

// NewAgencyHandler creates a new agency handler
func NewAgencyHandler(agencyService *agency.AgencyService) *AgencyHandler {
	return &AgencyHandler{agencyService: agencyService}
}

// Create godoc
// @ID           createAgency
// @Summary      Create an agency
// @Description  Registers an agency with the caller as its first OWNER
// @Tags         agencies
// @Accept       json
// @Produce      json
// @Param        request body CreateAgencyRequest true "Request body"
// @Success      201 {object} ItemResponse[AgencyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agencies [post]
func (h *AgencyHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateAgencyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.agencyService.CreateAgency(c.Request.Context(), actor.UserID, agency.CreateAgencyInput{
		Name:       req.Name,
		Slug:       req.Slug,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		OwnerTitle: req.OwnerTitle,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAgencyResponse(result))
}

// GetCurrent godoc
// @ID           getCurrentAgency
// @Summary      Agency of the token
// @Tags         agencies
// @Produce      json
// @Success      200 {object} ItemResponse[AgencyResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agencies/current [get]
func (h *AgencyHandler) GetCurrent(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.agencyService.GetAgency(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAgencyResponse(result))
}

// UpdateCurrent godoc
// @ID           updateCurrentAgency
// @Summary      Update agency details
// @Tags         agencies
// @Accept       json
// @Produce      json
// @Param        request body UpdateAgencyRequest true "Request body"
// @Success      200 {object} ItemResponse[AgencyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agencies/current [put]
func (h *AgencyHandler) UpdateCurrent(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req UpdateAgencyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.agencyService.UpdateAgency(c.Request.Context(), actor, agency.UpdateAgencyInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAgencyResponse(result))
}

// ListMembers godoc
// @ID           listMembers
// @Summary      List agency members
// @Tags         agencies
// @Produce      json
// @Param        page query int false "Page number" default(1) minimum(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        search query string false "Free text search"
// @Param        role query string false "Filter by role" Enums(OWNER, ADMIN, AGENT)
// @Param        active query boolean false "Filter by active flag"
// @Success      200 {object} PageResponse[MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agencies/current/members [get]
func (h *AgencyHandler) ListMembers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ListMembersRequest
	if !h.bindQuery(c, &req) {
		return
	}

	filter := req.ToFilter()
	if req.Role != "" {
		filter = filter.With("role", upper(req.Role))
	}
	if req.Active != nil {
		filter = filter.With("active", *req.Active)
	}

	page, err := h.agencyService.ListMembers(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, total, p, size := mapPage(page, toMemberResponse)
	h.SuccessWithMeta(c, items, total, p, size)
}

// AddMember godoc
// @ID           addMember
// @Summary      Add a registered user to the agency
// @Tags         agencies
// @Accept       json
// @Produce      json
// @Param        request body AddMemberRequest true "Request body"
// @Success      201 {object} ItemResponse[MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agencies/current/members [post]
func (h *AgencyHandler) AddMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req AddMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.agencyService.AddMember(c.Request.Context(), actor, agency.AddMemberInput{
		Email: req.Email,
		Role:  req.Role,
		Title: req.Title,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMemberResponse(result))
}

// UpdateMember godoc
// @ID           updateMember
// @Summary      Change a member role, title or active flag
// @Description  The last active OWNER cannot be demoted or deactivated
// @Tags         agencies
// @Accept       json
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Param        request body UpdateMemberRequest true "Request body"
// @Success      200 {object} ItemResponse[MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agencies/current/members/{id} [put]
func (h *AgencyHandler) UpdateMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	memberID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.agencyService.UpdateMember(c.Request.Context(), actor, memberID, agency.UpdateMemberInput{
		Role:   req.Role,
		Title:  req.Title,
		Active: req.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMemberResponse(result))
}

// RemoveMember godoc
// @ID           removeMember
// @Summary      Remove a membership
// @Tags         agencies
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /agencies/current/members/{id} [delete]
func (h *AgencyHandler) RemoveMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	memberID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.agencyService.RemoveMember(c.Request.Context(), actor, memberID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
