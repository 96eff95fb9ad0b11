package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	testCases := []struct {
		name       string
		actions    []Action
		expectErr  error
		expectHalt int
	}{
		{
			name: "valid plan",
			actions: []Action{
				{Timestamp: 0, Label: "C1", Kind: ActionSpawn},
				{Timestamp: 2, Label: "C1", Kind: ActionTerminate},
				{Timestamp: 3, Label: "EXIT", Kind: ActionHaltAll},
			},
			expectHalt: 3,
		},
		{
			name: "halt only",
			actions: []Action{
				{Timestamp: 0, Label: "EXIT", Kind: ActionHaltAll},
			},
			expectHalt: 0,
		},
		{
			name: "missing halt",
			actions: []Action{
				{Timestamp: 0, Label: "C1", Kind: ActionSpawn},
			},
			expectErr: ErrMissingHalt,
		},
		{
			name:      "empty script",
			actions:   nil,
			expectErr: ErrMissingHalt,
		},
		{
			name: "duplicate halt",
			actions: []Action{
				{Timestamp: 3, Label: "EXIT", Kind: ActionHaltAll},
				{Timestamp: 5, Label: "EXIT", Kind: ActionHaltAll},
			},
			expectErr: ErrDuplicateHalt,
		},
		{
			name: "negative timestamp",
			actions: []Action{
				{Timestamp: -1, Label: "C1", Kind: ActionSpawn},
				{Timestamp: 3, Label: "EXIT", Kind: ActionHaltAll},
			},
			expectErr: ErrNegativeTimestamp,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := NewPlan(tc.actions)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectHalt, plan.HaltTimestamp)
		})
	}
}

func TestPlanAt(t *testing.T) {
	plan, err := NewPlan([]Action{
		{Timestamp: 1, Label: "C2", Kind: ActionTerminate},
		{Timestamp: 1, Label: "C1", Kind: ActionSpawn},
		{Timestamp: 2, Label: "C3", Kind: ActionSpawn},
		{Timestamp: 4, Label: "EXIT", Kind: ActionHaltAll},
	})
	require.NoError(t, err)

	// ties apply in script order: terminate before spawn here
	at1 := plan.At(1)
	require.Len(t, at1, 2)
	assert.Equal(t, ActionTerminate, at1[0].Kind)
	assert.Equal(t, "C2", at1[0].Label)
	assert.Equal(t, ActionSpawn, at1[1].Kind)

	assert.Len(t, plan.At(0), 0)
	assert.Len(t, plan.At(2), 1)
	assert.Len(t, plan.At(3), 0)
	require.Len(t, plan.At(4), 1)
	assert.Equal(t, ActionHaltAll, plan.At(4)[0].Kind)
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "S", ActionSpawn.String())
	assert.Equal(t, "T", ActionTerminate.String())
	assert.Equal(t, "EXIT", ActionHaltAll.String())
}
