package graph

import (
	"factnet/pkg/common"
	"factnet/pkg/registry"
)

// Adjacency is an undirected adjacency-set map over canonical entity names.
// Multi-edges between the same pair collapse to one entry; edge multiplicity
// is not tracked here.
type Adjacency map[string]map[string]struct{}

// BuildOptions controls adjacency construction. Self-loops (facts whose actor
// and target resolve to the same entity) are kept by default: they carry no
// distance information but still mark the entity as present in the graph.
type BuildOptions struct {
	DropSelfLoops bool
}

// BuildAdjacency resolves every fact endpoint through the registry and
// inserts an undirected edge between the two canonical names. Every canonical
// name that appears on either side of any fact gets an adjacency entry, even
// when all its facts are self-loops.
func BuildAdjacency(facts []common.Fact, reg *registry.Registry, opts BuildOptions) Adjacency {
	adj := make(Adjacency)

	ensure := func(name string) map[string]struct{} {
		set, ok := adj[name]
		if !ok {
			set = make(map[string]struct{})
			adj[name] = set
		}
		return set
	}

	for _, fact := range facts {
		actor := reg.Resolve(fact.Actor)
		target := reg.Resolve(fact.Target)

		if actor == target {
			if opts.DropSelfLoops {
				continue
			}
			ensure(actor)
			continue
		}

		ensure(actor)[target] = struct{}{}
		ensure(target)[actor] = struct{}{}
	}

	return adj
}

// EdgeCount returns the number of distinct undirected edges.
func (a Adjacency) EdgeCount() int {
	total := 0
	for _, neighbors := range a {
		total += len(neighbors)
	}
	return total / 2
}
