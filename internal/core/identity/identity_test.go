package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActor_Predicates(t *testing.T) {
	tests := []struct {
		name       string
		actor      Actor
		active     bool
		privileged bool
	}{
		{"active admin", Actor{Role: RoleAdmin, Status: StatusActive}, true, true},
		{"active manager", Actor{Role: RoleManager, Status: StatusActive}, true, true},
		{"active employee", Actor{Role: RoleEmployee, Status: StatusActive}, true, false},
		{"pending admin", Actor{Role: RoleAdmin, Status: StatusPending}, false, true},
		{"suspended employee", Actor{Role: RoleEmployee, Status: StatusSuspended}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, tt.actor.IsActive())
			assert.Equal(t, tt.privileged, tt.actor.IsAdminOrManager())
		})
	}
}

func TestRoleAndStatus_IsValid(t *testing.T) {
	assert.True(t, RoleEmployee.IsValid())
	assert.False(t, Role("Owner").IsValid())
	assert.True(t, StatusSuspended.IsValid())
	assert.False(t, Status("Banned").IsValid())
}

func TestMember_Actor(t *testing.T) {
	m := Member{ID: "m1", Name: "Dana", Role: RoleManager, Status: StatusActive}
	assert.Equal(t, Actor{ID: "m1", Role: RoleManager, Status: StatusActive}, m.Actor())
}
