package query

import (
	"context"
	"fmt"
	"strings"

	"factnet/pkg/common"
	"factnet/pkg/snapshot"
	"factnet/pkg/store"
)

// Service is the per-request façade over the fact store and the current
// snapshot. It holds no per-query state; a request loads the snapshot once
// and uses it for filtering, scoring, and canonicalization.
type Service struct {
	store     store.FactStorage
	snapshots *snapshot.Handle
	pipeline  Pipeline
	maxLimit  int
}

// NewService wires the query façade. maxLimit caps the result size a caller
// may request; scanCeiling bounds the per-query row scan.
func NewService(st store.FactStorage, snapshots *snapshot.Handle, maxLimit, scanCeiling int) *Service {
	return &Service{
		store:     st,
		snapshots: snapshots,
		pipeline:  Pipeline{ScanCeiling: scanCeiling},
		maxLimit:  maxLimit,
	}
}

// Query runs the bounded, proximity-ranked query: filter, score against the
// current snapshot, order ascending by relevance key, truncate to the
// requested limit. Returned facts carry canonical actor/target names.
func (s *Service) Query(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Limit > s.maxLimit {
		spec.Limit = s.maxLimit
	}

	snap := s.snapshots.Load()

	facts, err := s.store.ListFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}

	res := s.pipeline.Run(facts, spec, snap)
	res.Facts = canonicalize(res.Facts, snap)
	return &res, nil
}

// ActorFacts is the actor-scoped variant: expand the name to its full
// alias-equivalence set and return every fact with either raw endpoint in
// that set. The remaining filters apply, but there is no distance-based
// truncation: an actor-scoped view is complete by contract.
func (s *Service) ActorFacts(ctx context.Context, name string, spec Spec) (*ActorResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Reason: "entity name must not be empty"}
	}
	// The limit is unused here, but the shared filter validation still
	// applies to the list sizes and year range.
	spec.Limit = 1
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	snap := s.snapshots.Load()

	aliasSet := make(map[string]struct{})
	for _, n := range snap.Registry.AliasSet(name) {
		aliasSet[n] = struct{}{}
	}

	facts, err := s.store.ListFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}

	scoped := make([]common.Fact, 0)
	for _, f := range facts {
		if _, ok := aliasSet[f.Actor]; ok {
			scoped = append(scoped, f)
			continue
		}
		if _, ok := aliasSet[f.Target]; ok {
			scoped = append(scoped, f)
		}
	}

	res := s.pipeline.FilterOnly(scoped, spec, snap)
	return &ActorResult{
		Facts:             canonicalize(res.Facts, snap),
		CountBeforeFilter: len(scoped),
	}, nil
}

// canonicalize rewrites raw endpoint names to their canonical spelling for
// client display. The stored facts keep the raw names.
func canonicalize(facts []common.Fact, snap *snapshot.Snapshot) []common.Fact {
	out := make([]common.Fact, len(facts))
	for i, f := range facts {
		f.Actor = snap.Registry.Resolve(f.Actor)
		f.Target = snap.Registry.Resolve(f.Target)
		out[i] = f
	}
	return out
}
