package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCyclesDetectedError(t *testing.T) {
	a := &testModule{name: "a"}
	b := &testModule{name: "b"}
	v := &testModule{name: "v", view: true}

	tests := []struct {
		name    string
		cycle   []SchedulingNode
		wantMsg string
	}{
		{
			name:    "verdict only",
			cycle:   nil,
			wantMsg: "cycles detected in network, unable to schedule",
		},
		{
			name:    "self loop",
			cycle:   []SchedulingNode{NewNode(a), NewNode(a)},
			wantMsg: "cycles detected in network, unable to schedule (a -> a)",
		},
		{
			name:    "two nodes through a view",
			cycle:   []SchedulingNode{NewNode(a), NewNode(b), NewViewNode(v, SegmentInitial), NewNode(a)},
			wantMsg: "cycles detected in network, unable to schedule (a -> b -> v[initial] -> a)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCyclesDetectedError(tt.cycle)

			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, errors.Is(err, ErrCyclesDetected), "Should unwrap to ErrCyclesDetected")

			wrapped := fmt.Errorf("schedule: %w", err)
			var cyclesErr *CyclesDetectedError
			assert.True(t, errors.As(wrapped, &cyclesErr))
			assert.Equal(t, tt.cycle, cyclesErr.Cycle)
		})
	}
}

func TestCyclesDetectedError_Modules(t *testing.T) {
	a := &testModule{name: "a"}
	v := &testModule{name: "v", view: true}

	err := NewCyclesDetectedError([]SchedulingNode{
		NewNode(a), NewViewNode(v, SegmentInitial), NewViewNode(v, SegmentFinal), NewNode(a),
	})

	assert.Equal(t, []Module{a, v}, err.Modules())
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("network")
		err.AddError("missing modules")

		assert.Equal(t, "validation error for network: missing modules", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.Len(t, err.Errors, 1, "Should have one error")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("network")
		err.AddError("duplicate module name")
		err.AddErrorf("connection %d references unknown module %q", 2, "x")

		assert.Equal(t, `validation errors for network: [duplicate module name connection 2 references unknown module "x"]`, err.Error())
		assert.Len(t, err.Errors, 2)
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("network")
		assert.False(t, err.HasErrors(), "Should not have errors")
	})

	t.Run("unwraps to invalid configuration", func(t *testing.T) {
		err := NewValidationError("network")
		err.AddError("bad")
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})
}
