package graph

import (
	"testing"

	"factnet/pkg/common"
	"factnet/pkg/registry"
)

const testSentinel = 1000

func buildTestIndex(t *testing.T, principal string, edges [][2]string, isolated ...string) *DistanceIndex {
	t.Helper()
	reg, err := registry.New(nil)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}

	facts := make([]common.Fact, 0, len(edges)+len(isolated))
	for _, e := range edges {
		facts = append(facts, fact(e[0], e[1]))
	}
	for _, name := range isolated {
		facts = append(facts, fact(name, name))
	}

	adj := BuildAdjacency(facts, reg, BuildOptions{})
	return ComputeDistances(adj, principal, testSentinel)
}

func TestComputeDistances(t *testing.T) {
	// P-A, A-B, P-C; D isolated.
	idx := buildTestIndex(t, "P", [][2]string{{"P", "A"}, {"A", "B"}, {"P", "C"}}, "D")

	if !idx.PrincipalFound {
		t.Fatal("expected PrincipalFound")
	}

	want := map[string]int{
		"P": 0,
		"A": 1,
		"C": 1,
		"B": 2,
		"D": testSentinel,
	}
	for name, wantDist := range want {
		if got := idx.Distance(name); got != wantDist {
			t.Fatalf("Distance(%q) = %d, want %d", name, got, wantDist)
		}
	}
}

func TestComputeDistancesPrincipalAbsent(t *testing.T) {
	idx := buildTestIndex(t, "P", [][2]string{{"A", "B"}, {"B", "C"}})

	if idx.PrincipalFound {
		t.Fatal("PrincipalFound must be false when the principal is not in the graph")
	}
	for _, name := range []string{"A", "B", "C"} {
		if got := idx.Distance(name); got != testSentinel {
			t.Fatalf("Distance(%q) = %d, want sentinel %d", name, got, testSentinel)
		}
	}
}

func TestComputeDistancesNeighborBound(t *testing.T) {
	edges := [][2]string{
		{"P", "A"}, {"A", "B"}, {"B", "C"}, {"C", "D"}, {"P", "D"}, {"B", "E"},
	}
	idx := buildTestIndex(t, "P", edges)

	// BFS distance of directly connected entities may differ by at most one.
	for _, e := range edges {
		da, db := idx.Distance(e[0]), idx.Distance(e[1])
		diff := da - db
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			t.Fatalf("neighbors %q (%d) and %q (%d) differ by more than one hop", e[0], da, e[1], db)
		}
	}
}

func TestDistanceUnknownName(t *testing.T) {
	idx := buildTestIndex(t, "P", [][2]string{{"P", "A"}})
	if got := idx.Distance("never seen"); got != testSentinel {
		t.Fatalf("Distance(unknown) = %d, want sentinel", got)
	}
}
