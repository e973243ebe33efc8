package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSample struct {
	Email     string           `json:"email" binding:"required,email"`
	Slug      string           `json:"slug" binding:"omitempty,slug"`
	Price     decimal.Decimal  `json:"price" binding:"gte=0"`
	BudgetMax *decimal.Decimal `json:"budget_max" binding:"omitempty,gt=0"`
	Latitude  *float64         `json:"latitude" binding:"omitempty,latitude"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validationSample
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDetails(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	out := make(map[string]string)
	for _, d := range resp.Error.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	t.Run("valid body", func(t *testing.T) {
		w := postJSON(router, `{"email":"a@b.io","slug":"casa-azul","price":"250000.50","budget_max":10,"latitude":38.7}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("names fields by json tag", func(t *testing.T) {
		w := postJSON(router, `{"email":"nope","slug":"Casa Azul","price":"-1","budget_max":"0","latitude":123}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		details := decodeDetails(t, w)
		assert.Equal(t, "Invalid email format", details["email"])
		assert.Contains(t, details, "slug")
		assert.Equal(t, "Must be greater than or equal to 0", details["price"])
		assert.Equal(t, "Must be greater than 0", details["budget_max"])
		assert.Contains(t, details["latitude"], "latitude")
	})

	t.Run("malformed json has no details", func(t *testing.T) {
		w := postJSON(router, `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, decodeDetails(t, w))
	})
}

func TestSetupValidator_Idempotent(t *testing.T) {
	SetupValidator()
	SetupValidator()
	router := newValidationRouter()
	assert.Equal(t, http.StatusBadRequest, postJSON(router, `{}`).Code)
}

func TestGetValidationMessage(t *testing.T) {
	type sample struct {
		Required string `validate:"required"`
		Min      string `validate:"min=5"`
		Max      int    `validate:"max=10"`
		OneOf    string `validate:"oneof=BUY RENT"`
		UUID     string `validate:"uuid"`
	}

	v := validator.New()
	err := v.Struct(sample{Min: "ab", Max: 11, OneOf: "SWAP", UUID: "x"})
	require.Error(t, err)

	got := make(map[string]string)
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}
	assert.Equal(t, "This field is required", got["Required"])
	assert.Equal(t, "Must be at least 5 characters", got["Min"])
	assert.Equal(t, "Must be at most 10", got["Max"])
	assert.Equal(t, "Must be one of: BUY RENT", got["OneOf"])
	assert.Equal(t, "Invalid UUID format", got["UUID"])
}
