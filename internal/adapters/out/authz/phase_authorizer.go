// Package authz answers phase edit questions from a static grant table read from
// configuration. Identity and its verification live outside this service.
package authz

import (
	"context"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// Wildcard grants every phase, or grants a phase to every actor.
const Wildcard = "*"

var _ ports.PhaseAuthorizer = (*StaticPhaseAuthorizer)(nil)

// StaticPhaseAuthorizer maps actors to the phases they may move orders into.
type StaticPhaseAuthorizer struct {
	grants map[string]map[string]struct{}
}

// NewStaticPhaseAuthorizer builds the authorizer from actor -> phases grants. Phase
// names are validated; Wildcard is accepted both as actor and as phase.
func NewStaticPhaseAuthorizer(grants map[string][]string) (*StaticPhaseAuthorizer, error) {
	a := &StaticPhaseAuthorizer{grants: make(map[string]map[string]struct{}, len(grants))}
	for actor, phases := range grants {
		actor = strings.TrimSpace(actor)
		set := make(map[string]struct{}, len(phases))
		for _, raw := range phases {
			raw = strings.TrimSpace(raw)
			if raw != Wildcard {
				if _, err := order.ParsePhase(raw); err != nil {
					return nil, fmt.Errorf("grant for %q: %w", actor, err)
				}
			}
			set[raw] = struct{}{}
		}
		a.grants[actor] = set
	}
	return a, nil
}

// ParseGrants reads "actor=phase|phase;actor=*" as produced by an environment variable.
func ParseGrants(raw string) (map[string][]string, error) {
	grants := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		actor, phases, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(actor) == "" {
			return nil, fmt.Errorf("malformed phase grant %q", entry)
		}
		grants[strings.TrimSpace(actor)] = append(grants[strings.TrimSpace(actor)], strings.Split(phases, "|")...)
	}
	return grants, nil
}

func (a *StaticPhaseAuthorizer) CanEditPhase(_ context.Context, actor string, phase order.Phase) (bool, error) {
	for _, who := range []string{actor, Wildcard} {
		set, ok := a.grants[who]
		if !ok {
			continue
		}
		if _, ok = set[Wildcard]; ok {
			return true, nil
		}
		if _, ok = set[string(phase)]; ok {
			return true, nil
		}
	}
	return false, nil
}
