// Package tests contains integration tests for the call lifecycle and analytics
package tests

import (
	"testing"

	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/stretchr/testify/assert"
)

func TestCallStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.CallStatus
		to      models.CallStatus
		allowed bool
	}{
		{"NewToInProgress", models.CallStatusNew, models.CallStatusInProgress, true},
		{"NewToUnattended", models.CallStatusNew, models.CallStatusUnattended, true},
		{"NewToCallback", models.CallStatusNew, models.CallStatusCallback, true},
		{"NewToCompleted", models.CallStatusNew, models.CallStatusCompleted, false},
		{"NewToCalled", models.CallStatusNew, models.CallStatusCalled, false},
		{"InProgressToCompleted", models.CallStatusInProgress, models.CallStatusCompleted, true},
		{"InProgressToCalled", models.CallStatusInProgress, models.CallStatusCalled, true},
		{"InProgressToUnattended", models.CallStatusInProgress, models.CallStatusUnattended, true},
		{"InProgressToCallback", models.CallStatusInProgress, models.CallStatusCallback, true},
		{"InProgressToNew", models.CallStatusInProgress, models.CallStatusNew, false},
		{"CalledRedial", models.CallStatusCalled, models.CallStatusInProgress, true},
		{"CalledToCompleted", models.CallStatusCalled, models.CallStatusCompleted, false},
		{"UnattendedRedial", models.CallStatusUnattended, models.CallStatusInProgress, true},
		{"CallbackRedial", models.CallStatusCallback, models.CallStatusInProgress, true},
		{"CompletedIsFinal", models.CallStatusCompleted, models.CallStatusInProgress, false},
		{"CompletedToCalled", models.CallStatusCompleted, models.CallStatusCalled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call := &models.Call{Status: tc.from}
			assert.Equal(t, tc.allowed, call.CanTransitionTo(tc.to))
		})
	}
}

func TestCallIsTerminal(t *testing.T) {
	for _, status := range []models.CallStatus{
		models.CallStatusNew,
		models.CallStatusInProgress,
		models.CallStatusCalled,
		models.CallStatusUnattended,
		models.CallStatusCallback,
	} {
		call := &models.Call{Status: status}
		assert.False(t, call.IsTerminal(), "status %s must not be terminal", status)
	}

	completed := &models.Call{Status: models.CallStatusCompleted}
	assert.True(t, completed.IsTerminal())
}

func TestCallStatusLabel(t *testing.T) {
	cases := map[models.CallStatus]string{
		models.CallStatusNew:        "New",
		models.CallStatusInProgress: "In Progress",
		models.CallStatusCalled:     "Called",
		models.CallStatusUnattended: "Unattended",
		models.CallStatusCallback:   "Callback",
		models.CallStatusCompleted:  "Purchased",
	}

	for status, label := range cases {
		call := &models.Call{Status: status}
		assert.Equal(t, label, call.StatusLabel())
	}

	// Unknown statuses fall back to the raw value
	odd := &models.Call{Status: models.CallStatus("weird")}
	assert.Equal(t, "weird", odd.StatusLabel())
}

func TestValidCallStatus(t *testing.T) {
	assert.True(t, models.ValidCallStatus(models.CallStatusCallback))
	assert.True(t, models.ValidCallStatus(models.CallStatusCompleted))
	assert.False(t, models.ValidCallStatus(models.CallStatus("purchased")))
	assert.False(t, models.ValidCallStatus(models.CallStatus("")))
}

func TestCallHasOrder(t *testing.T) {
	empty := &models.Call{}
	assert.False(t, empty.HasOrder())
	assert.False(t, empty.HasOriginalSnapshot())

	blankSKU := &models.Call{OrderSKU: utils.ToPtr("")}
	assert.False(t, blankSKU.HasOrder())

	withOrder := &models.Call{OrderSKU: utils.ToPtr("GL-500")}
	assert.True(t, withOrder.HasOrder())
	assert.False(t, withOrder.HasOriginalSnapshot())

	// A record whose current SKU was cleared still counts as ordered once the
	// upsell baseline exists
	withSnapshot := &models.Call{OriginalOrderSKU: utils.ToPtr("GL-500")}
	assert.True(t, withSnapshot.HasOrder())
	assert.True(t, withSnapshot.HasOriginalSnapshot())
}

func TestUserRoleHelpers(t *testing.T) {
	admin := &models.User{Role: models.UserRoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsAgent())

	agent := &models.User{Role: models.UserRoleAgent}
	assert.True(t, agent.IsAgent())
	assert.False(t, agent.IsAdmin())
}
