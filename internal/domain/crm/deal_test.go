package crm

import (
	"testing"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeal(t *testing.T) *Deal {
	t.Helper()
	d, err := NewDeal(uuid.New(), uuid.New(), uuid.New(), "3BR on Main St", decimal.NewFromInt(250000), "usd")
	require.NoError(t, err)
	return d
}

func TestNewDeal(t *testing.T) {
	d := newTestDeal(t)
	assert.Equal(t, DealStageNew, d.Stage)
	assert.Equal(t, "USD", d.Currency)
	assert.True(t, d.CommissionRate.IsZero())

	_, err := NewDeal(uuid.New(), uuid.Nil, uuid.New(), "x", decimal.Zero, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewDeal(uuid.New(), uuid.New(), uuid.New(), "x", decimal.NewFromInt(-1), "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewDeal(uuid.New(), uuid.New(), uuid.New(), "x", decimal.Zero, "DOLLARS")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestDeal_ChangeStage(t *testing.T) {
	t.Run("closing won stamps closedAt and freezes the deal", func(t *testing.T) {
		d := newTestDeal(t)
		require.NoError(t, d.ChangeStage(DealStageNegotiation, ""))
		assert.Nil(t, d.ClosedAt)

		require.NoError(t, d.ChangeStage(DealStageClosedWon, ""))
		assert.NotNil(t, d.ClosedAt)
		assert.True(t, d.IsWon())

		err := d.ChangeStage(DealStageContract, "")
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		assert.ErrorIs(t, d.SetAmount(decimal.NewFromInt(1)), shared.ErrInvalidState)
	})

	t.Run("closing lost requires a reason", func(t *testing.T) {
		d := newTestDeal(t)
		assert.ErrorIs(t, d.ChangeStage(DealStageClosedLost, " "), shared.ErrInvalidInput)

		require.NoError(t, d.ChangeStage(DealStageClosedLost, "Buyer chose another property"))
		assert.Equal(t, "Buyer chose another property", d.LostReason)
		assert.NotNil(t, d.ClosedAt)
	})
}

func TestDeal_CommissionAmount(t *testing.T) {
	d := newTestDeal(t)
	require.NoError(t, d.SetCommissionRate(decimal.RequireFromString("2.5")))
	assert.True(t, decimal.NewFromInt(6250).Equal(d.CommissionAmount()))

	assert.ErrorIs(t, d.SetCommissionRate(decimal.NewFromInt(101)), shared.ErrInvalidInput)
}

func TestNewCommissionForDeal(t *testing.T) {
	t.Run("open deal is rejected", func(t *testing.T) {
		d := newTestDeal(t)
		_, err := NewCommissionForDeal(d)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("zero rate yields no commission", func(t *testing.T) {
		d := newTestDeal(t)
		require.NoError(t, d.ChangeStage(DealStageClosedWon, ""))
		c, err := NewCommissionForDeal(d)
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("won deal with rate yields pending commission", func(t *testing.T) {
		d := newTestDeal(t)
		require.NoError(t, d.SetCommissionRate(decimal.NewFromInt(3)))
		require.NoError(t, d.ChangeStage(DealStageClosedWon, ""))

		c, err := NewCommissionForDeal(d)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, CommissionStatusPending, c.Status)
		assert.Equal(t, d.AgentID, c.MemberID)
		assert.Equal(t, d.AgencyID, c.AgencyID)
		assert.True(t, decimal.NewFromInt(7500).Equal(c.Amount))
	})
}
