package handler

import (
	"time"

	"github.com/estatehub/backend/internal/application/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	csvimport "github.com/estatehub/backend/internal/infrastructure/import"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	FullName          string           `json:"full_name" binding:"required,min=1,max=200"`
	Email             string           `json:"email" binding:"omitempty,email,max=255"`
	Phone             string           `json:"phone" binding:"omitempty,max=50"`
	Source            string           `json:"source" binding:"omitempty,max=20"`
	BudgetMin         *decimal.Decimal `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax         *decimal.Decimal `json:"budget_max" binding:"omitempty,gte=0"`
	PreferredDistrict string           `json:"preferred_district" binding:"omitempty,max=100"`
	Notes             string           `json:"notes" binding:"omitempty,max=5000"`
	PropertyID        *uuid.UUID       `json:"property_id"`
	AssignedToID      *uuid.UUID       `json:"assigned_to_id"`
}

// UpdateLeadRequest represents the request body for updating a lead
type UpdateLeadRequest struct {
	FullName          *string          `json:"full_name" binding:"omitempty,min=1,max=200"`
	Email             *string          `json:"email" binding:"omitempty,max=255"`
	Phone             *string          `json:"phone" binding:"omitempty,max=50"`
	Source            *string          `json:"source" binding:"omitempty,max=20"`
	BudgetMin         *decimal.Decimal `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax         *decimal.Decimal `json:"budget_max" binding:"omitempty,gte=0"`
	PreferredDistrict *string          `json:"preferred_district" binding:"omitempty,max=100"`
	Notes             *string          `json:"notes" binding:"omitempty,max=5000"`
	PropertyID        *uuid.UUID       `json:"property_id"`
	ClearProperty     bool             `json:"clear_property"`
}

// ChangeLeadStatusRequest moves a lead to another status
type ChangeLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignLeadRequest assigns a lead; a null member_id unassigns it
type AssignLeadRequest struct {
	MemberID *uuid.UUID `json:"member_id"`
}

// ListLeadsRequest filters the lead list and export
type ListLeadsRequest struct {
	dto.ListRequest
	Status            string `form:"status"`
	Source            string `form:"source"`
	AssignedToID      string `form:"assigned_to_id" binding:"omitempty,uuid"`
	Unassigned        bool   `form:"unassigned"`
	PropertyID        string `form:"property_id" binding:"omitempty,uuid"`
	PreferredDistrict string `form:"preferred_district"`
}

// LeadResponse is the API view of a lead
type LeadResponse struct {
	ID                uuid.UUID        `json:"id"`
	AgencyID          uuid.UUID        `json:"agency_id"`
	AssignedToID      *uuid.UUID       `json:"assigned_to_id"`
	PropertyID        *uuid.UUID       `json:"property_id"`
	FullName          string           `json:"full_name"`
	Email             string           `json:"email,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	Source            string           `json:"source"`
	Status            string           `json:"status"`
	BudgetMin         *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax         *decimal.Decimal `json:"budget_max,omitempty"`
	PreferredDistrict string           `json:"preferred_district,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ImportResultResponse reports a CSV import
type ImportResultResponse struct {
	TotalRows int                  `json:"total_rows"`
	Created   int                  `json:"created"`
	Failed    int                  `json:"failed"`
	Errors    []csvimport.RowError `json:"errors"`
	Truncated bool                 `json:"truncated"`
}

func (r *ListLeadsRequest) filter() (shared.Filter, error) {
	f := r.ToFilter()
	if r.Status != "" {
		f = f.With("status", upper(r.Status))
	}
	if r.Source != "" {
		f = f.With("source", upper(r.Source))
	}
	if r.Unassigned {
		f = f.With("unassigned", true)
	} else if id, err := parseOptionalUUID(r.AssignedToID); err != nil {
		return f, err
	} else if id != nil {
		f = f.With("assigned_to_id", *id)
	}
	if id, err := parseOptionalUUID(r.PropertyID); err != nil {
		return f, err
	} else if id != nil {
		f = f.With("property_id", *id)
	}
	if r.PreferredDistrict != "" {
		f = f.With("preferred_district", r.PreferredDistrict)
	}
	return f, nil
}

func toLeadResponse(l *crm.LeadResult) LeadResponse {
	return LeadResponse{
		ID:                l.ID,
		AgencyID:          l.AgencyID,
		AssignedToID:      l.AssignedToID,
		PropertyID:        l.PropertyID,
		FullName:          l.FullName,
		Email:             l.Email,
		Phone:             l.Phone,
		Source:            string(l.Source),
		Status:            string(l.Status),
		BudgetMin:         l.BudgetMin,
		BudgetMax:         l.BudgetMax,
		PreferredDistrict: l.PreferredDistrict,
		Notes:             l.Notes,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func toImportResultResponse(r *crm.ImportResult) ImportResultResponse {
	errs := r.Errors
	if errs == nil {
		errs = []csvimport.RowError{}
	}
	return ImportResultResponse{
		TotalRows: r.TotalRows,
		Created:   r.Created,
		Failed:    r.Failed,
		Errors:    errs,
		Truncated: r.Truncated,
	}
}
