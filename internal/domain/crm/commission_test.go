package crm

import (
	"testing"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommission(t *testing.T) *Commission {
	t.Helper()
	c, err := NewCommission(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(1000), decimal.NewFromInt(2), "EUR")
	require.NoError(t, err)
	return c
}

func TestCommission_Lifecycle(t *testing.T) {
	c := newTestCommission(t)

	assert.ErrorIs(t, c.MarkPaid(), shared.ErrInvalidState)

	require.NoError(t, c.Approve())
	assert.Equal(t, CommissionStatusApproved, c.Status)
	assert.NotNil(t, c.ApprovedAt)

	assert.ErrorIs(t, c.Approve(), shared.ErrInvalidState)

	require.NoError(t, c.MarkPaid())
	assert.Equal(t, CommissionStatusPaid, c.Status)
	assert.NotNil(t, c.PaidAt)

	assert.ErrorIs(t, c.Cancel("too late"), shared.ErrInvalidState)
}

func TestCommission_Cancel(t *testing.T) {
	c := newTestCommission(t)
	require.NoError(t, c.Cancel("deal fell through"))
	assert.Equal(t, CommissionStatusCancelled, c.Status)
	assert.Equal(t, "deal fell through", c.Note)
}

func TestNewCommission_Validation(t *testing.T) {
	_, err := NewCommission(uuid.New(), uuid.New(), uuid.New(), decimal.Zero, decimal.Zero, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewCommission(uuid.New(), uuid.Nil, uuid.New(), decimal.NewFromInt(1), decimal.Zero, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
