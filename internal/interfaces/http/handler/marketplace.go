package handler

import (
	"net/http"

	listingapp "github.com/estatehub/backend/internal/application/listing"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// MarketplaceHandler serves the public listing search, valuation and walkability
type MarketplaceHandler struct {
	BaseHandler
	marketplaceService *listingapp.MarketplaceService
}

// NewMarketplaceHandler creates a new marketplace handler
func NewMarketplaceHandler(marketplaceService *listingapp.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplaceService: marketplaceService}
}

// Search godoc
// @ID           searchMarketplace
// @Summary      Search ACTIVE listings
// @Tags         marketplace
// @Produce      json
// @Param        page query int false "Page number" default(1) minimum(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        search query string false "Free text search"
// @Param        city query string false "City"
// @Param        district query string false "District"
// @Param        deal_type query string false "Deal type"
// @Param        property_type query string false "Property type"
// @Param        min_price query string false "Minimum price"
// @Param        max_price query string false "Maximum price"
// @Param        min_area query number false "Minimum area in square meters" minimum(0)
// @Param        max_area query number false "Maximum area in square meters" minimum(0)
// @Param        min_bedrooms query int false "Minimum bedrooms" minimum(0)
// @Param        renovation query string false "Renovation state"
// @Param        building_class query string false "Building class"
// @Success      200 {object} PageResponse[PublicPropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /marketplace/properties [get]
func (h *MarketplaceHandler) Search(c *gin.Context) {
	var req SearchPropertiesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	criteria, err := req.criteria()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid price filter")
		return
	}

	page, err := h.marketplaceService.Search(c.Request.Context(), criteria, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, total, p, size := mapPage(page, toPublicPropertyResponse)
	h.SuccessWithMeta(c, items, total, p, size)
}

// GetByID godoc
// @ID           getMarketplaceProperty
// @Summary      Get an ACTIVE listing
// @Description  Each call counts as one view
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[PublicPropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /marketplace/properties/{id} [get]
func (h *MarketplaceHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.marketplaceService.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPublicPropertyResponse(result))
}

// Valuation godoc
// @ID           estimateValuation
// @Summary      Estimate the price of a described property
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        request body ValuationRequest true "Request body"
// @Success      200 {object} ItemResponse[ValuationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /marketplace/valuation [post]
func (h *MarketplaceHandler) Valuation(c *gin.Context) {
	var req ValuationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	valuation, err := h.marketplaceService.Valuation(c.Request.Context(), listingapp.ValuationInput{
		DealType:      req.DealType,
		PropertyType:  req.PropertyType,
		City:          req.City,
		District:      req.District,
		Area:          req.Area,
		Bedrooms:      req.Bedrooms,
		Renovation:    req.Renovation,
		BuildingClass: req.BuildingClass,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Currency:      req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toValuationResponse(valuation))
}

// ListingValuation godoc
// @ID           getListingValuation
// @Summary      Value a published listing
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[ValuationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /marketplace/properties/{id}/valuation [get]
func (h *MarketplaceHandler) ListingValuation(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	valuation, err := h.marketplaceService.ValuationForListing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toValuationResponse(valuation))
}

// Walkability godoc
// @ID           getWalkability
// @Summary      Walkability score of a coordinate
// @Tags         marketplace
// @Produce      json
// @Param        lat query number true "Latitude"
// @Param        lng query number true "Longitude"
// @Success      200 {object} ItemResponse[WalkabilityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /marketplace/walkability [get]
func (h *MarketplaceHandler) Walkability(c *gin.Context) {
	var req WalkabilityRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.marketplaceService.Walkability(c.Request.Context(), *req.Lat, *req.Lng)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWalkabilityResponse(result))
}

// ListingWalkability godoc
// @ID           getListingWalkability
// @Summary      Walkability score of a published listing
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[WalkabilityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /marketplace/properties/{id}/walkability [get]
func (h *MarketplaceHandler) ListingWalkability(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.marketplaceService.WalkabilityForListing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWalkabilityResponse(result))
}
