package handler

import (
	listingapp "github.com/estatehub/backend/internal/application/listing"
	"github.com/gin-gonic/gin"
)

// POIHandler manages the points of interest used for walkability
type POIHandler struct {
	BaseHandler
	poiService *listingapp.POIService
}

// NewPOIHandler creates a new POI handler
func NewPOIHandler(poiService *listingapp.POIService) *POIHandler {
	return &POIHandler{poiService: poiService}
}

// List godoc
// @ID           listPOIs
// @Summary      List points of interest
// @Tags         pois
// @Produce      json
// @Param        page query int false "Page number" default(1) minimum(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        search query string false "Free text search"
// @Param        category query string false "Filter by category"
// @Success      200 {object} PageResponse[POIResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /pois [get]
func (h *POIHandler) List(c *gin.Context) {
	var req ListPOIsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter := req.ToFilter()
	if req.Category != "" {
		filter = filter.With("category", req.Category)
	}

	page, err := h.poiService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, total, p, size := mapPage(page, toPOIResponse)
	h.SuccessWithMeta(c, items, total, p, size)
}

// Create godoc
// @ID           createPOI
// @Summary      Add a point of interest
// @Tags         pois
// @Accept       json
// @Produce      json
// @Param        request body CreatePOIRequest true "Request body"
// @Success      201 {object} ItemResponse[POIResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /pois [post]
func (h *POIHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreatePOIRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.poiService.Create(c.Request.Context(), actor, listingapp.CreatePOIInput{
		Name:      req.Name,
		Category:  req.Category,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPOIResponse(result))
}

// Delete godoc
// @ID           deletePOI
// @Summary      Delete a point of interest
// @Tags         pois
// @Produce      json
// @Param        id path string true "POI ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /pois/{id} [delete]
func (h *POIHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.poiService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
