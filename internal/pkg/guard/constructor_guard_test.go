package guard_test

import (
	"errors"
	"testing"

	"fulfillment/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("TransitionOrderCommand must be created via NewTransitionOrderCommand")

	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// When
		err := g.Validate(errNotConstructed)

		// Then
		require.NoError(t, err)
	})

	t.Run("constructed_guard_ignores_nil_error", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(errNotConstructed)

		// Then
		require.Error(t, err)
		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	type dropCommand struct {
		phase string
		guard guard.ConstructorGuard
	}

	errDropNotConstructed := errors.New("dropCommand must be created via newDropCommand")

	newDropCommand := func(phase string) (dropCommand, error) {
		if phase == "" {
			return dropCommand{}, errors.New("phase is required")
		}
		return dropCommand{phase: phase, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_command_is_valid", func(t *testing.T) {
		cmd, err := newDropCommand("production")

		require.NoError(t, err)
		require.NoError(t, cmd.guard.Validate(errDropNotConstructed))
		assert.Equal(t, "production", cmd.phase)
	})

	t.Run("zero_value_command_is_rejected", func(t *testing.T) {
		var cmd dropCommand

		err := cmd.guard.Validate(errDropNotConstructed)

		require.ErrorIs(t, err, errDropNotConstructed)
	})

	t.Run("guard_survives_copy_by_value", func(t *testing.T) {
		cmd, _ := newDropCommand("logistics")
		copied := cmd

		require.NoError(t, copied.guard.Validate(errDropNotConstructed))
	})
}
