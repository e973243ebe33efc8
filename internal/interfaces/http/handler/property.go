package handler

import (
	"bufio"
	"context"
	"net/http"

	listingapp "github.com/estatehub/backend/internal/application/listing"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ImageFormField is the multipart field carrying a listing image
const ImageFormField = "image"

// sniffLen is how many bytes http.DetectContentType inspects
const sniffLen = 512

// PropertyHandler handles the agency's listings and their images
type PropertyHandler struct {
	BaseHandler
	listingService *listingapp.ListingService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(listingService *listingapp.ListingService) *PropertyHandler {
	return &PropertyHandler{listingService: listingService}
}

// Create godoc
// @ID           createProperty
// @Summary      Create a DRAFT listing
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        request body CreatePropertyRequest true "Request body"
// @Success      201 {object} ItemResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.listingService.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPropertyResponse(result))
}

// GetByID godoc
// @ID           getPropertyByID
// @Summary      Get a listing of the caller agency
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id} [get]
func (h *PropertyHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.listingService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPropertyResponse(result))
}

// List godoc
// @ID           listProperties
// @Summary      List agency listings in every status
// @Tags         properties
// @Produce      json
// @Param        page query int false "Page number" default(1) minimum(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        search query string false "Free text search"
// @Param        status query string false "Filter by status" Enums(DRAFT, ACTIVE, RESERVED, SOLD, ARCHIVED)
// @Param        agent_id query string false "Filter by agent" format(uuid)
// @Param        deal_type query string false "Filter by deal type"
// @Param        property_type query string false "Filter by property type"
// @Param        city query string false "Filter by city"
// @Success      200 {object} PageResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties [get]
func (h *PropertyHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ListPropertiesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter, err := req.filter()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid filter")
		return
	}

	page, err := h.listingService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, total, p, size := mapPage(page, toPropertyResponse)
	h.SuccessWithMeta(c, items, total, p, size)
}

// Update godoc
// @ID           updateProperty
// @Summary      Update a listing
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        request body UpdatePropertyRequest true "Request body"
// @Success      200 {object} ItemResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id} [put]
func (h *PropertyHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.listingService.Update(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPropertyResponse(result))
}

// Delete godoc
// @ID           deleteProperty
// @Summary      Delete a listing with its images
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id} [delete]
func (h *PropertyHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Publish godoc
// @ID           publishProperty
// @Summary      Publish a listing on the marketplace
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id}/publish [post]
func (h *PropertyHandler) Publish(c *gin.Context) {
	h.transition(c, h.listingService.Publish)
}

// Archive godoc
// @ID           archiveProperty
// @Summary      Archive a listing
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id}/archive [post]
func (h *PropertyHandler) Archive(c *gin.Context) {
	h.transition(c, h.listingService.Archive)
}

// MarkReserved godoc
// @ID           reserveProperty
// @Summary      Reserve a listing
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id}/reserve [post]
func (h *PropertyHandler) MarkReserved(c *gin.Context) {
	h.transition(c, h.listingService.MarkReserved)
}

// MarkSold godoc
// @ID           sellProperty
// @Summary      Mark a listing sold
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} ItemResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id}/sold [post]
func (h *PropertyHandler) MarkSold(c *gin.Context) {
	h.transition(c, h.listingService.MarkSold)
}

func (h *PropertyHandler) transition(c *gin.Context, apply func(context.Context, agency.Actor, uuid.UUID) (*listingapp.PropertyResult, error)) {
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

	h.Success(c, toPropertyResponse(result))
}

// UploadImage godoc
// @ID           uploadPropertyImage
// @Summary      Add an image to the gallery
// @Description  The content type is sniffed from the file, not taken from the client
// @Tags         properties
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        image formData file true "JPEG, PNG or WebP image"
// @Success      201 {object} ItemResponse[ImageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id}/images [post]
func (h *PropertyHandler) UploadImage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(ImageFormField)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "An image is required in the \"image\" field")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	body := bufio.NewReaderSize(file, sniffLen)
	head, _ := body.Peek(sniffLen)
	contentType := http.DetectContentType(head)

	result, err := h.listingService.UploadImage(c.Request.Context(), actor, id, listingapp.UploadImageInput{
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toImageResponse(result))
}

// DeleteImage godoc
// @ID           deletePropertyImage
// @Summary      Remove an image from the gallery
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        imageId path string true "Image ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id}/images/{imageId} [delete]
func (h *PropertyHandler) DeleteImage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.pathID(c, "imageId")
	if !ok {
		return
	}

	if err := h.listingService.DeleteImage(c.Request.Context(), actor, id, imageID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
