package snapshot

import (
	"fmt"
	"sort"
	"time"

	"factnet/pkg/common"
	"factnet/pkg/graph"
	"factnet/pkg/logger"
	"factnet/pkg/registry"
)

// Config carries the tunables a rebuild needs. The disconnected sentinel is
// configurable; its only contractual property is sorting after every finite
// hop distance.
type Config struct {
	Principal     string
	Sentinel      int
	DropSelfLoops bool
}

// Snapshot is the immutable combination of registry, distance index, and
// cluster lookup that serves queries until the next rebuild. Once built it is
// never mutated, so any number of readers may share it without locking.
type Snapshot struct {
	Version     int64
	BuiltAt     time.Time
	Principal   string
	Sentinel    int
	Registry    *registry.Registry
	Distances   *graph.DistanceIndex
	Clusters    map[string][]string
	EntityCount int
	EdgeCount   int
}

// Empty returns the snapshot served before the first rebuild completes:
// identity registry, no distances, principal not found. Queries against it
// behave like an all-disconnected graph rather than failing.
func Empty(cfg Config) *Snapshot {
	reg, _ := registry.New(nil)
	return &Snapshot{
		Principal: cfg.Principal,
		Sentinel:  cfg.Sentinel,
		Registry:  reg,
		Distances: graph.ComputeDistances(graph.Adjacency{}, cfg.Principal, cfg.Sentinel),
		Clusters:  map[string][]string{},
	}
}

// Build constructs a complete snapshot from the authoritative tables: dedupe
// facts, validate the alias table, build the adjacency map, and run BFS from
// the principal. A chain in the alias table fails the build; the caller keeps
// serving the previous snapshot.
func Build(facts []common.Fact, aliases []common.AliasRecord, clusters []common.TagCluster, cfg Config) (*Snapshot, error) {
	reg, err := registry.New(aliases)
	if err != nil {
		return nil, fmt.Errorf("alias table integrity: %w", err)
	}

	deduped := DedupeFacts(facts)
	if dropped := len(facts) - len(deduped); dropped > 0 {
		logger.Debug("[Snapshot] Collapsed duplicate facts", "dropped", dropped)
	}

	adj := graph.BuildAdjacency(deduped, reg, graph.BuildOptions{DropSelfLoops: cfg.DropSelfLoops})
	dist := graph.ComputeDistances(adj, cfg.Principal, cfg.Sentinel)
	if !dist.PrincipalFound {
		logger.Warn("[Snapshot] Principal not present in graph, all distances are sentinel", "principal", cfg.Principal)
	}

	clusterMap := make(map[string][]string, len(clusters))
	for _, c := range clusters {
		clusterMap[c.ClusterID] = c.Tags
	}

	return &Snapshot{
		BuiltAt:     time.Now().UTC(),
		Principal:   cfg.Principal,
		Sentinel:    cfg.Sentinel,
		Registry:    reg,
		Distances:   dist,
		Clusters:    clusterMap,
		EntityCount: len(adj),
		EdgeCount:   adj.EdgeCount(),
	}, nil
}

// DedupeFacts collapses facts sharing the same (doc, timestamp, actor,
// action, target, location) to the one with the lowest ID. Duplicates would
// otherwise double-count edge weight and bias relevance.
func DedupeFacts(facts []common.Fact) []common.Fact {
	if len(facts) == 0 {
		return facts
	}

	byKey := make(map[string]common.Fact, len(facts))
	for _, f := range facts {
		key := f.DedupeKey()
		existing, ok := byKey[key]
		if !ok || f.ID < existing.ID {
			byKey[key] = f
		}
	}

	out := make([]common.Fact, 0, len(byKey))
	for _, f := range byKey {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RelevanceKey computes the proximity rank of a fact for this snapshot: the
// minimum hop distance of its two canonicalized endpoints.
func (s *Snapshot) RelevanceKey(f common.Fact) int {
	da := s.Distances.Distance(s.Registry.Resolve(f.Actor))
	db := s.Distances.Distance(s.Registry.Resolve(f.Target))
	if db < da {
		return db
	}
	return da
}
