package crm

import (
	"context"
	"testing"

	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCommission(t *testing.T, memberID uuid.UUID) *crm.Commission {
	t.Helper()
	c, err := crm.NewCommission(testutil.TestAgencyID(), uuid.New(), memberID, decimal.NewFromInt(7500), decimal.NewFromInt(3), "USD")
	require.NoError(t, err)
	return c
}

func TestCommissionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("managers only", func(t *testing.T) {
		f := newCRMFixture()
		_, err := f.commissionService().Create(ctx, agent, CreateCommissionInput{})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("deal must be won", func(t *testing.T) {
		f := newCRMFixture()
		deal := newDeal(t, newLead(t, nil), agent.MemberID, 3)
		f.deals.On("FindByID", ctx, deal.ID).Return(deal, nil)

		_, err := f.commissionService().Create(ctx, manager, CreateCommissionInput{DealID: deal.ID, MemberID: agent.MemberID, Amount: decimal.NewFromInt(100)})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("records a commission and notifies the member", func(t *testing.T) {
		f := newCRMFixture()
		deal := newDeal(t, newLead(t, nil), agent.MemberID, 3)
		require.NoError(t, deal.ChangeStage(crm.DealStageClosedWon, ""))
		f.deals.On("FindByID", ctx, deal.ID).Return(deal, nil)
		f.expectMember(agent)
		f.commissions.On("Save", ctx, mock.AnythingOfType("*crm.Commission")).Return(nil)

		result, err := f.commissionService().Create(ctx, manager, CreateCommissionInput{
			DealID:   deal.ID,
			MemberID: agent.MemberID,
			Amount:   decimal.RequireFromString("1250.555"),
			Rate:     decimal.NewFromInt(1),
		})

		require.NoError(t, err)
		assert.Equal(t, "1250.56", result.Amount.StringFixed(2))
		assert.Equal(t, "USD", result.Currency)
		assert.Equal(t, []notification.Type{notification.TypeCommissionStatus}, f.notifier.types())
	})
}

func TestCommissionService_List_AgentSeesOwn(t *testing.T) {
	ctx := context.Background()
	f := newCRMFixture()
	own := newCommission(t, agent.MemberID)
	ownOnly := mock.MatchedBy(func(fl shared.Filter) bool { return fl.Filters["member_id"] == agent.MemberID })
	f.commissions.On("FindAllForAgency", ctx, agent.AgencyID, ownOnly).Return([]crm.Commission{*own}, nil)
	f.commissions.On("CountForAgency", ctx, agent.AgencyID, ownOnly).Return(int64(1), nil)

	page, err := f.commissionService().List(ctx, agent, shared.DefaultFilter().With("member_id", uuid.New()))

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, own.ID, page.Items[0].ID)
}

func TestCommissionService_Get_AgentScope(t *testing.T) {
	ctx := context.Background()
	f := newCRMFixture()
	c := newCommission(t, uuid.New())
	f.commissions.On("FindByID", ctx, c.ID).Return(c, nil)

	_, err := f.commissionService().Get(ctx, agent, c.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	result, err := f.commissionService().Get(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, result.ID)
}

func TestCommissionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newCRMFixture()
	c := newCommission(t, agent.MemberID)
	f.commissions.On("FindByID", ctx, c.ID).Return(c, nil)
	f.commissions.On("Save", ctx, c).Return(nil)
	f.expectMember(agent)
	svc := f.commissionService()

	_, err := svc.Approve(ctx, agent, c.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.MarkPaid(ctx, manager, c.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	result, err := svc.Approve(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.Equal(t, crm.CommissionStatusApproved, result.Status)
	assert.NotNil(t, result.ApprovedAt)

	result, err = svc.MarkPaid(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.Equal(t, crm.CommissionStatusPaid, result.Status)
	assert.NotNil(t, result.PaidAt)

	_, err = svc.Cancel(ctx, manager, c.ID, "duplicate")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	assert.Equal(t, []notification.Type{notification.TypeCommissionStatus, notification.TypeCommissionStatus}, f.notifier.types())
	assert.Contains(t, f.notifier.sent[1].Body, "7500.00 USD is now PAID")
}

func TestCommissionService_Approve_NotifiesManagerOfOwnCommission(t *testing.T) {
	ctx := context.Background()
	f := newCRMFixture()
	c := newCommission(t, manager.MemberID)
	f.commissions.On("FindByID", ctx, c.ID).Return(c, nil)
	f.commissions.On("Save", ctx, c).Return(nil)
	f.expectMember(manager)

	_, err := f.commissionService().Approve(ctx, manager, c.ID)

	require.NoError(t, err)
	assert.Equal(t, []notification.Type{notification.TypeCommissionStatus}, f.notifier.types())
	assert.Equal(t, "Commission APPROVED", f.notifier.sent[0].Title)
}

func TestCommissionService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newCRMFixture()
	c := newCommission(t, agent.MemberID)
	f.commissions.On("FindByID", ctx, c.ID).Return(c, nil)
	f.commissions.On("Save", ctx, c).Return(nil)
	f.expectMember(agent)

	result, err := f.commissionService().Cancel(ctx, manager, c.ID, "deal reversed")

	require.NoError(t, err)
	assert.Equal(t, crm.CommissionStatusCancelled, result.Status)
	assert.Equal(t, "deal reversed", result.Note)
}

func TestCommissionService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newCRMFixture()
	totals := []crm.CommissionTotals{
		{Status: crm.CommissionStatusPending, Currency: "EUR", Count: 1, Amount: decimal.NewFromInt(800)},
		{Status: crm.CommissionStatusPending, Currency: "USD", Count: 2, Amount: decimal.NewFromInt(3000)},
		{Status: crm.CommissionStatusApproved, Currency: "USD", Count: 1, Amount: decimal.NewFromInt(1500)},
		{Status: crm.CommissionStatusPaid, Currency: "USD", Count: 4, Amount: decimal.NewFromInt(12000)},
		{Status: crm.CommissionStatusCancelled, Currency: "USD", Count: 1, Amount: decimal.NewFromInt(900)},
	}
	own := agent.MemberID
	f.commissions.On("Totals", ctx, agent.AgencyID, &own).Return(totals, nil)
	f.commissions.On("Totals", ctx, manager.AgencyID, (*uuid.UUID)(nil)).Return(totals, nil)

	summary, err := f.commissionService().Summary(ctx, agent, nil)
	require.NoError(t, err)
	assert.Equal(t, agent.MemberID, *summary.MemberID)
	assert.True(t, decimal.NewFromInt(4500).Equal(summary.Outstanding["USD"]))
	assert.True(t, decimal.NewFromInt(12000).Equal(summary.Paid["USD"]))
	assert.True(t, decimal.NewFromInt(800).Equal(summary.Outstanding["EUR"]))
	assert.True(t, summary.Paid["EUR"].IsZero())
	assert.Len(t, summary.Outstanding, 2)

	summary, err = f.commissionService().Summary(ctx, manager, nil)
	require.NoError(t, err)
	assert.Nil(t, summary.MemberID)
}
