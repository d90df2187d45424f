package authz_test

import (
	"testing"

	"fulfillment/internal/adapters/out/authz"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticPhaseAuthorizer_CanEditPhase(t *testing.T) {
	grants, err := authz.ParseGrants("ana=logistics|invoicing; lead=* ; *=exception")
	require.NoError(t, err)
	authorizer, err := authz.NewStaticPhaseAuthorizer(grants)
	require.NoError(t, err)

	cases := []struct {
		name    string
		actor   string
		phase   order.Phase
		allowed bool
	}{
		{"granted phase", "ana", order.PhaseLogistics, true},
		{"phase not granted", "ana", order.PhaseProduction, false},
		{"actor with every phase", "lead", order.PhaseProduction, true},
		{"phase granted to everyone", "bruno", order.PhaseException, true},
		{"unknown actor", "bruno", order.PhaseLogistics, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := authorizer.CanEditPhase(t.Context(), tc.actor, tc.phase)

			require.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestNewStaticPhaseAuthorizer(t *testing.T) {
	t.Run("should reject unknown phases", func(t *testing.T) {
		_, err := authz.NewStaticPhaseAuthorizer(map[string][]string{"ana": {"shipping"}})

		require.Error(t, err)
	})

	t.Run("should reject malformed grants", func(t *testing.T) {
		_, err := authz.ParseGrants("ana")

		require.Error(t, err)
	})
}
