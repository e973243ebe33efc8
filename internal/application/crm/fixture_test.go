package crm

import (
	"context"
	"errors"
	"sync"
	"testing"

	notificationapp "github.com/estatehub/backend/internal/application/notification"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	manager = testutil.Actor(agency.RoleAdmin)
	agent   = testutil.Actor(agency.RoleAgent)
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notificationapp.NotifyInput
}

func (n *recordingNotifier) Notify(_ context.Context, input notificationapp.NotifyInput) (*notification.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, input)
	return notification.New(input.UserID, input.AgencyID, input.Type, input.Title, input.Body)
}

func (n *recordingNotifier) types() []notification.Type {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Type, 0, len(n.sent))
	for _, in := range n.sent {
		out = append(out, in.Type)
	}
	return out
}

type crmFixture struct {
	leads       *testutil.MockLeadRepository
	deals       *testutil.MockDealRepository
	commissions *testutil.MockCommissionRepository
	tasks       *testutil.MockTaskRepository
	members     *testutil.MockMemberRepository
	properties  *testutil.MockPropertyRepository
	notifier    *recordingNotifier
	logger      *zap.Logger
}

func newCRMFixture() *crmFixture {
	return &crmFixture{
		leads:       new(testutil.MockLeadRepository),
		deals:       new(testutil.MockDealRepository),
		commissions: new(testutil.MockCommissionRepository),
		tasks:       new(testutil.MockTaskRepository),
		members:     new(testutil.MockMemberRepository),
		properties:  new(testutil.MockPropertyRepository),
		notifier:    &recordingNotifier{},
		logger:      zap.NewNop(),
	}
}

func (f *crmFixture) leadService() *LeadService {
	return NewLeadService(f.leads, f.members, f.properties, f.notifier, f.logger)
}

func (f *crmFixture) dealService() *DealService {
	return NewDealService(f.deals, f.leads, f.properties, f.members, f.notifier, f.logger)
}

func (f *crmFixture) commissionService() *CommissionService {
	return NewCommissionService(f.commissions, f.deals, f.members, f.notifier, f.logger)
}

func (f *crmFixture) taskService() *TaskService {
	return NewTaskService(f.tasks, f.leads, f.deals, f.members, f.logger)
}

// expectMember registers a member lookup and returns the member
func (f *crmFixture) expectMember(a agency.Actor) *agency.Member {
	m := testutil.MemberFor(a)
	f.members.On("FindByID", context.Background(), m.ID).Return(m, nil)
	return m
}

func foreignMember(t *testing.T) *agency.Member {
	t.Helper()
	m, err := agency.NewMember(uuid.New(), uuid.New(), agency.RoleAgent, "")
	require.NoError(t, err)
	return m
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func ptr[T any](v T) *T { return &v }
