package handler

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/estatehub/backend/internal/application/crm"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LeadFormField is the multipart field carrying the CSV file
const LeadFormField = "file"

// LeadHandler handles lead endpoints
type LeadHandler struct {
	BaseHandler
	leadService *crm.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *crm.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// Create godoc
// @ID           createLead
// @Summary      Create a lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body CreateLeadRequest true "Request body"
// @Success      201 {object} ItemResponse[LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.leadService.Create(c.Request.Context(), actor, crm.CreateLeadInput{
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		Source:            req.Source,
		BudgetMin:         req.BudgetMin,
		BudgetMax:         req.BudgetMax,
		PreferredDistrict: req.PreferredDistrict,
		Notes:             req.Notes,
		PropertyID:        req.PropertyID,
		AssignedToID:      req.AssignedToID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toLeadResponse(result))
}

// GetByID godoc
// @ID           getLeadByID
// @Summary      Get a lead
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} ItemResponse[LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.leadService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toLeadResponse(result))
}

// List godoc
// @ID           listLeads
// @Summary      List leads
// @Description  Agents only see leads assigned to them
// @Tags         leads
// @Produce      json
// @Param        page query int false "Page number" default(1) minimum(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Param        search query string false "Free text search"
// @Param        status query string false "Filter by status"
// @Param        source query string false "Filter by source"
// @Param        assigned_to_id query string false "Filter by assignee" format(uuid)
// @Param        unassigned query boolean false "Only unassigned leads"
// @Param        property_id query string false "Filter by property of interest" format(uuid)
// @Param        preferred_district query string false "Filter by preferred district"
// @Success      200 {object} PageResponse[LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ListLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter, err := req.filter()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid filter")
		return
	}

	page, err := h.leadService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items, total, p, size := mapPage(page, toLeadResponse)
	h.SuccessWithMeta(c, items, total, p, size)
}

// Update godoc
// @ID           updateLead
// @Summary      Update a lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body UpdateLeadRequest true "Request body"
// @Success      200 {object} ItemResponse[LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.leadService.Update(c.Request.Context(), actor, id, crm.UpdateLeadInput{
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		Source:            req.Source,
		BudgetMin:         req.BudgetMin,
		BudgetMax:         req.BudgetMax,
		PreferredDistrict: req.PreferredDistrict,
		Notes:             req.Notes,
		PropertyID:        req.PropertyID,
		ClearProperty:     req.ClearProperty,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toLeadResponse(result))
}

// Delete godoc
// @ID           deleteLead
// @Summary      Delete a lead
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.leadService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ChangeStatus godoc
// @ID           changeLeadStatus
// @Summary      Move a lead to another status
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body ChangeLeadStatusRequest true "Request body"
// @Success      200 {object} ItemResponse[LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/status [patch]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ChangeLeadStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.leadService.ChangeStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toLeadResponse(result))
}

// Assign godoc
// @ID           assignLead
// @Summary      Assign a lead to a member
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body AssignLeadRequest true "Request body"
// @Success      200 {object} ItemResponse[LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/assign [post]
func (h *LeadHandler) Assign(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AssignLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.leadService.Assign(c.Request.Context(), actor, id, req.MemberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toLeadResponse(result))
}

// Import godoc
// @ID           importLeads
// @Summary      Import leads from CSV
// @Description  Rows that fail validation are reported back and the rest are created
// @Tags         leads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file with a header row"
// @Success      200 {object} ItemResponse[ImportResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/import [post]
func (h *LeadHandler) Import(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(LeadFormField)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "A CSV file is required in the \"file\" field")
		return
	}
	if !isCSVUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedMedia, "Only CSV files are supported")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.leadService.ImportCSV(c.Request.Context(), actor, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toImportResultResponse(result))
}

// Export godoc
// @ID           exportLeads
// @Summary      Export leads as CSV
// @Tags         leads
// @Produce      text/csv
// @Param        status query string false "Filter by status"
// @Param        source query string false "Filter by source"
// @Param        assigned_to_id query string false "Filter by assignee" format(uuid)
// @Param        unassigned query boolean false "Only unassigned leads"
// @Param        property_id query string false "Filter by property of interest" format(uuid)
// @Param        preferred_district query string false "Filter by preferred district"
// @Param        search query string false "Free text search"
// @Success      200 {file} file "CSV export"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/export [get]
func (h *LeadHandler) Export(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req ListLeadsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter, err := req.filter()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid filter")
		return
	}

	var buf bytes.Buffer
	count, err := h.leadService.ExportCSV(c.Request.Context(), actor, &buf, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Header("X-Total-Count", strconv.Itoa(count))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// isCSVUpload accepts a .csv extension or a CSV-ish content type
func isCSVUpload(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/csv", "application/csv", "application/vnd.ms-excel":
		return true
	}
	return false
}
