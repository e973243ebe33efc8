package agency

import (
	"testing"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActor(role Role) Actor {
	return Actor{
		UserID:   uuid.New(),
		AgencyID: uuid.New(),
		MemberID: uuid.New(),
		Role:     role,
	}
}

func TestActor_CanAccess(t *testing.T) {
	actor := newTestActor(RoleAgent)

	assert.NoError(t, actor.CanAccess(actor.AgencyID))

	err := actor.CanAccess(uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	var noAgency Actor
	noAgency.UserID = uuid.New()
	assert.ErrorIs(t, noAgency.CanAccess(uuid.New()), shared.ErrForbidden)
}

func TestActor_CanModify(t *testing.T) {
	agent := newTestActor(RoleAgent)
	admin := newTestActor(RoleAdmin)
	other := uuid.New()

	tests := []struct {
		name    string
		actor   Actor
		agency  uuid.UUID
		owner   *uuid.UUID
		allowed bool
	}{
		{name: "agent on own record", actor: agent, agency: agent.AgencyID, owner: &agent.MemberID, allowed: true},
		{name: "agent on unassigned record", actor: agent, agency: agent.AgencyID, owner: nil, allowed: true},
		{name: "agent on colleague record", actor: agent, agency: agent.AgencyID, owner: &other, allowed: false},
		{name: "admin on colleague record", actor: admin, agency: admin.AgencyID, owner: &other, allowed: true},
		{name: "admin on other agency", actor: admin, agency: uuid.New(), owner: nil, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor.CanModify(tt.agency, tt.owner)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrForbidden)
			}
		})
	}
}

func TestActor_RequireManager(t *testing.T) {
	assert.NoError(t, newTestActor(RoleOwner).RequireManager())
	assert.NoError(t, newTestActor(RoleAdmin).RequireManager())
	assert.ErrorIs(t, newTestActor(RoleAgent).RequireManager(), shared.ErrForbidden)
}

func TestNewAgency(t *testing.T) {
	a, err := NewAgency(" Prime Homes ", "Prime-Homes")
	require.NoError(t, err)
	assert.Equal(t, "Prime Homes", a.Name)
	assert.Equal(t, "prime-homes", a.Slug)

	_, err = NewAgency("X", "bad slug!")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewAgency("", "ok")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("boss")
	assert.Error(t, err)
}

func TestMember_IsActiveOwner(t *testing.T) {
	m, err := NewMember(uuid.New(), uuid.New(), RoleOwner, "")
	require.NoError(t, err)
	assert.True(t, m.IsActiveOwner())

	m.SetActive(false)
	assert.True(t, m.IsOwner())
	assert.False(t, m.IsActiveOwner())
}
