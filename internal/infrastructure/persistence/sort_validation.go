package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC (the default)
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted "field DIR" clause. Rows tied on the field
// are ordered by id so OFFSET pages never overlap or skip.
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(orderBy, allowed, defaultField)
	clause := field + " " + ValidateSortOrder(orderDir)
	if field == "id" {
		return clause
	}
	return clause + ", id ASC"
}

// MemberSortFields contains allowed sort fields for members
var MemberSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"joined_at":  true,
	"role":       true,
	"title":      true,
}

// LeadSortFields contains allowed sort fields for leads
var LeadSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"full_name":  true,
	"email":      true,
	"status":     true,
	"source":     true,
	"budget_max": true,
}

// DealSortFields contains allowed sort fields for deals
var DealSortFields = map[string]bool{
	"created_at":          true,
	"updated_at":          true,
	"title":               true,
	"amount":              true,
	"stage":               true,
	"expected_close_date": true,
	"closed_at":           true,
}

// CommissionSortFields contains allowed sort fields for commissions
var CommissionSortFields = map[string]bool{
	"created_at":  true,
	"amount":      true,
	"status":      true,
	"approved_at": true,
	"paid_at":     true,
}

// TaskSortFields contains allowed sort fields for tasks
var TaskSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_at":     true,
	"priority":   true,
	"status":     true,
	"title":      true,
}

// PropertySortFields contains allowed sort fields for agency listings
var PropertySortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"price":        true,
	"area":         true,
	"status":       true,
	"title":        true,
	"published_at": true,
	"views":        true,
}

// MarketplaceSortFields contains allowed sort fields for public search
var MarketplaceSortFields = map[string]bool{
	"price":        true,
	"area":         true,
	"published_at": true,
}

// POISortFields contains allowed sort fields for points of interest
var POISortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"category":   true,
}
