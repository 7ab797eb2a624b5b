package graph

// DistanceIndex holds the hop distance of every canonical entity from the
// principal. Entities in a different connected component carry the sentinel,
// which is chosen to sort after every finite distance.
type DistanceIndex struct {
	Principal      string
	Sentinel       int
	PrincipalFound bool
	Distances      map[string]int
}

// ComputeDistances runs a single-source BFS over the adjacency map starting
// at the principal. Every entity in the map receives either its hop distance
// or the sentinel. When the principal is absent from the graph entirely, all
// entities are sentinel-distanced and PrincipalFound reports false, so
// callers can tell that state apart from "everything is close".
func ComputeDistances(adj Adjacency, principal string, sentinel int) *DistanceIndex {
	idx := &DistanceIndex{
		Principal: principal,
		Sentinel:  sentinel,
		Distances: make(map[string]int, len(adj)),
	}

	for name := range adj {
		idx.Distances[name] = sentinel
	}

	if _, ok := adj[principal]; !ok {
		return idx
	}
	idx.PrincipalFound = true

	idx.Distances[principal] = 0
	frontier := []string{principal}
	for len(frontier) > 0 {
		var next []string
		for _, node := range frontier {
			d := idx.Distances[node]
			for neighbor := range adj[node] {
				if idx.Distances[neighbor] != sentinel {
					continue
				}
				idx.Distances[neighbor] = d + 1
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return idx
}

// Distance returns the hop distance for a canonical name, or the sentinel for
// names the index has never seen.
func (d *DistanceIndex) Distance(name string) int {
	if dist, ok := d.Distances[name]; ok {
		return dist
	}
	return d.Sentinel
}
