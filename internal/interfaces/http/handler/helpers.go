package handler

import (
	"strings"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// parseOptionalUUID parses s, returning nil for an empty string
func parseOptionalUUID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseOptionalDecimal parses s, returning nil for an empty string
func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// mapItems converts a page of service results into response DTOs
func mapItems[T any, R any](items []T, convert func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, convert(&items[i]))
	}
	return out
}

// mapPage converts a paginated result, keeping its meta
func mapPage[T any, R any](page *shared.Paginated[T], convert func(*T) R) ([]R, int64, int, int) {
	return mapItems(page.Items, convert), page.Total, page.Page, page.PageSize
}

// upper normalizes an enum-like query value
func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
