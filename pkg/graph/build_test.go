package graph

import (
	"reflect"
	"sort"
	"testing"

	"factnet/pkg/common"
	"factnet/pkg/registry"
)

func fact(actor, target string) common.Fact {
	return common.Fact{Actor: actor, Action: "met", Target: target, DocID: "doc-1"}
}

func testRegistry(t *testing.T, pairs ...[2]string) *registry.Registry {
	t.Helper()
	rows := make([]common.AliasRecord, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, common.AliasRecord{OriginalName: p[0], CanonicalName: p[1], CreatedBy: "test"})
	}
	reg, err := registry.New(rows)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	return reg
}

func neighbors(adj Adjacency, name string) []string {
	out := make([]string, 0, len(adj[name]))
	for n := range adj[name] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func TestBuildAdjacency(t *testing.T) {
	reg := testRegistry(t, [2]string{"Jeff E.", "Jeffrey Epstein"})

	facts := []common.Fact{
		fact("Jeff E.", "Ghislaine Maxwell"),
		fact("Jeffrey Epstein", "Ghislaine Maxwell"), // same edge after resolution
		fact("Ghislaine Maxwell", "Jeffrey Epstein"), // reversed direction, still same edge
		fact("Jeffrey Epstein", "Les Wexner"),
	}

	adj := BuildAdjacency(facts, reg, BuildOptions{})

	if got := neighbors(adj, "Jeffrey Epstein"); !reflect.DeepEqual(got, []string{"Ghislaine Maxwell", "Les Wexner"}) {
		t.Fatalf("unexpected neighbors for canonical actor: %v", got)
	}
	if got := neighbors(adj, "Ghislaine Maxwell"); !reflect.DeepEqual(got, []string{"Jeffrey Epstein"}) {
		t.Fatalf("multi-edge not collapsed: %v", got)
	}
	if _, ok := adj["Jeff E."]; ok {
		t.Fatal("raw alias leaked into adjacency map")
	}
	if got := adj.EdgeCount(); got != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", got)
	}
}

func TestBuildAdjacencySelfLoops(t *testing.T) {
	reg := testRegistry(t, [2]string{"Jeff E.", "Jeffrey Epstein"})

	// Actor and target resolve to the same entity.
	facts := []common.Fact{fact("Jeff E.", "Jeffrey Epstein")}

	t.Run("kept by default", func(t *testing.T) {
		adj := BuildAdjacency(facts, reg, BuildOptions{})
		set, ok := adj["Jeffrey Epstein"]
		if !ok {
			t.Fatal("self-loop entity missing from adjacency map")
		}
		if len(set) != 0 {
			t.Fatalf("self-loop must not add neighbors, got %v", set)
		}
	})

	t.Run("dropped on request", func(t *testing.T) {
		adj := BuildAdjacency(facts, reg, BuildOptions{DropSelfLoops: true})
		if len(adj) != 0 {
			t.Fatalf("expected empty adjacency, got %v", adj)
		}
	})
}

func TestBuildAdjacencyEveryEndpointPresent(t *testing.T) {
	reg := testRegistry(t)

	facts := []common.Fact{
		fact("A", "B"),
		fact("C", "C"),
	}

	adj := BuildAdjacency(facts, reg, BuildOptions{})
	for _, name := range []string{"A", "B", "C"} {
		if _, ok := adj[name]; !ok {
			t.Fatalf("entity %q missing from adjacency map", name)
		}
	}
}
