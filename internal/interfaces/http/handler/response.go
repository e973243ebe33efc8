package handler

import "github.com/estatehub/backend/internal/interfaces/http/dto"

// PageResponse is the envelope of list endpoints: data holds the items and
// meta the pagination
type PageResponse[T any] struct {
	Success bool      `json:"success"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ItemResponse is the envelope of single-item endpoints
type ItemResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the envelope of failed requests
type ErrorResponse struct {
	Success bool          `json:"success"`
	Error   dto.ErrorInfo `json:"error"`
}
