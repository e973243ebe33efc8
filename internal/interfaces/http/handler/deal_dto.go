package handler

import (
	"time"

	"github.com/estatehub/backend/internal/application/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDealRequest represents the request body for opening a deal
type CreateDealRequest struct {
	LeadID            uuid.UUID        `json:"lead_id" binding:"required"`
	PropertyID        *uuid.UUID       `json:"property_id"`
	AgentID           *uuid.UUID       `json:"agent_id"`
	Title             string           `json:"title" binding:"required,min=1,max=200"`
	Amount            decimal.Decimal  `json:"amount" binding:"gte=0"`
	Currency          string           `json:"currency" binding:"omitempty,len=3"`
	CommissionRate    *decimal.Decimal `json:"commission_rate" binding:"omitempty,gte=0,lte=100"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
}

// UpdateDealRequest represents the request body for updating a deal
type UpdateDealRequest struct {
	Title             *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Amount            *decimal.Decimal `json:"amount" binding:"omitempty,gte=0"`
	CommissionRate    *decimal.Decimal `json:"commission_rate" binding:"omitempty,gte=0,lte=100"`
	AgentID           *uuid.UUID       `json:"agent_id"`
	PropertyID        *uuid.UUID       `json:"property_id"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
}

// ChangeDealStageRequest moves a deal through the pipeline
type ChangeDealStageRequest struct {
	Stage      string `json:"stage" binding:"required"`
	LostReason string `json:"lost_reason" binding:"omitempty,max=1000"`
}

// ListDealsRequest filters the deal list
type ListDealsRequest struct {
	dto.ListRequest
	Stage      string `form:"stage"`
	AgentID    string `form:"agent_id" binding:"omitempty,uuid"`
	LeadID     string `form:"lead_id" binding:"omitempty,uuid"`
	PropertyID string `form:"property_id" binding:"omitempty,uuid"`
}

// DealResponse is the API view of a deal
type DealResponse struct {
	ID                uuid.UUID           `json:"id"`
	AgencyID          uuid.UUID           `json:"agency_id"`
	LeadID            uuid.UUID           `json:"lead_id"`
	PropertyID        *uuid.UUID          `json:"property_id"`
	AgentID           uuid.UUID           `json:"agent_id"`
	Title             string              `json:"title"`
	Amount            decimal.Decimal     `json:"amount"`
	Currency          string              `json:"currency"`
	Stage             string              `json:"stage"`
	CommissionRate    decimal.Decimal     `json:"commission_rate"`
	ExpectedCloseDate *time.Time          `json:"expected_close_date,omitempty"`
	ClosedAt          *time.Time          `json:"closed_at,omitempty"`
	LostReason        string              `json:"lost_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Commission        *CommissionResponse `json:"commission,omitempty"`
}

// CreateCommissionRequest represents the request body for a manual commission
type CreateCommissionRequest struct {
	DealID   uuid.UUID       `json:"deal_id" binding:"required"`
	MemberID uuid.UUID       `json:"member_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"gt=0"`
	Rate     decimal.Decimal `json:"rate" binding:"gte=0,lte=100"`
	Currency string          `json:"currency" binding:"omitempty,len=3"`
}

// CancelCommissionRequest carries the cancellation note
type CancelCommissionRequest struct {
	Note string `json:"note" binding:"omitempty,max=1000"`
}

// ListCommissionsRequest filters the commission list
type ListCommissionsRequest struct {
	dto.ListRequest
	Status   string `form:"status"`
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	DealID   string `form:"deal_id" binding:"omitempty,uuid"`
}

// CommissionSummaryRequest narrows the summary to one member
type CommissionSummaryRequest struct {
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
}

// CommissionResponse is the API view of a commission
type CommissionResponse struct {
	ID         uuid.UUID       `json:"id"`
	AgencyID   uuid.UUID       `json:"agency_id"`
	DealID     uuid.UUID       `json:"deal_id"`
	MemberID   uuid.UUID       `json:"member_id"`
	Amount     decimal.Decimal `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CommissionTotalResponse is the total for one status and currency
type CommissionTotalResponse struct {
	Status   string          `json:"status"`
	Currency string          `json:"currency"`
	Count    int64           `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

// CommissionSummaryResponse totals commissions per status. Outstanding and
// paid amounts are keyed by currency.
type CommissionSummaryResponse struct {
	MemberID    *uuid.UUID                 `json:"member_id,omitempty"`
	Totals      []CommissionTotalResponse  `json:"totals"`
	Outstanding map[string]decimal.Decimal `json:"outstanding"`
	Paid        map[string]decimal.Decimal `json:"paid"`
}

func (r *ListDealsRequest) filter() (shared.Filter, error) {
	f := r.ToFilter()
	if r.Stage != "" {
		f = f.With("stage", upper(r.Stage))
	}
	for key, raw := range map[string]string{
		"agent_id":    r.AgentID,
		"lead_id":     r.LeadID,
		"property_id": r.PropertyID,
	} {
		id, err := parseOptionalUUID(raw)
		if err != nil {
			return f, err
		}
		if id != nil {
			f = f.With(key, *id)
		}
	}
	return f, nil
}

func (r *ListCommissionsRequest) filter() (shared.Filter, error) {
	f := r.ToFilter()
	if r.Status != "" {
		f = f.With("status", upper(r.Status))
	}
	for key, raw := range map[string]string{
		"member_id": r.MemberID,
		"deal_id":   r.DealID,
	} {
		id, err := parseOptionalUUID(raw)
		if err != nil {
			return f, err
		}
		if id != nil {
			f = f.With(key, *id)
		}
	}
	return f, nil
}

func toDealResponse(d *crm.DealResult) DealResponse {
	resp := DealResponse{
		ID:                d.ID,
		AgencyID:          d.AgencyID,
		LeadID:            d.LeadID,
		PropertyID:        d.PropertyID,
		AgentID:           d.AgentID,
		Title:             d.Title,
		Amount:            d.Amount,
		Currency:          d.Currency,
		Stage:             string(d.Stage),
		CommissionRate:    d.CommissionRate,
		ExpectedCloseDate: d.ExpectedCloseDate,
		ClosedAt:          d.ClosedAt,
		LostReason:        d.LostReason,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.Commission != nil {
		commission := toCommissionResponse(d.Commission)
		resp.Commission = &commission
	}
	return resp
}

func toCommissionResponse(c *crm.CommissionResult) CommissionResponse {
	return CommissionResponse{
		ID:         c.ID,
		AgencyID:   c.AgencyID,
		DealID:     c.DealID,
		MemberID:   c.MemberID,
		Amount:     c.Amount,
		Rate:       c.Rate,
		Currency:   c.Currency,
		Status:     string(c.Status),
		ApprovedAt: c.ApprovedAt,
		PaidAt:     c.PaidAt,
		Note:       c.Note,
		CreatedAt:  c.CreatedAt,
	}
}

func toCommissionSummaryResponse(s *crm.CommissionSummary) CommissionSummaryResponse {
	totals := make([]CommissionTotalResponse, 0, len(s.Totals))
	for _, t := range s.Totals {
		totals = append(totals, CommissionTotalResponse{
			Status:   string(t.Status),
			Currency: t.Currency,
			Count:    t.Count,
			Amount:   t.Amount,
		})
	}
	return CommissionSummaryResponse{
		MemberID:    s.MemberID,
		Totals:      totals,
		Outstanding: s.Outstanding,
		Paid:        s.Paid,
	}
}
