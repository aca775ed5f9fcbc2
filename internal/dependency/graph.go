// Package dependency provides a small helper for structural dependency
// queries between registered modes. It answers "which declared dependencies
// are missing" and "who depends on this mode"; it does not resolve
// inter-mode business dependencies beyond presence checks.
package dependency

import "sort"

// ModeID is the unique identifier of a mode inside the graph. Kept as a
// string alias so callers can use their registry identifiers directly.
type ModeID string

// Node represents one registered mode together with its declared
// dependency list.
//
// The registry builds the graph once during startup composition; the graph
// is not thread-safe by itself and is treated as read-only afterwards.
type Node struct {
	ID           ModeID
	Dependencies []ModeID
	LoadPriority int
	Enabled      bool
}

// Graph answers dependency queries over the registered modes.
type Graph struct {
	nodes map[ModeID]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[ModeID]*Node)}
}

// AddNode adds (or replaces) a node in the graph.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[ModeID]*Node)
	}
	// Copy to avoid external mutations
	copied := n
	g.nodes[n.ID] = &copied
}

// Get returns the stored node or nil if it does not exist.
func (g *Graph) Get(id ModeID) *Node {
	return g.nodes[id]
}

// Missing returns the declared dependencies of id that are not present in
// the graph, in sorted order. An unknown id reports all of deps as missing.
func (g *Graph) Missing(id ModeID) []ModeID {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}

	var missing []ModeID
	for _, dep := range node.Dependencies {
		if _, present := g.nodes[dep]; !present {
			missing = append(missing, dep)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// Dependents returns all node IDs that declare a direct dependency on the
// given node, in sorted order. This is an O(n) walk, which is fine for the
// handful of modes a runtime registers.
func (g *Graph) Dependents(id ModeID) []ModeID {
	var res []ModeID
	for _, n := range g.nodes {
		for _, dep := range n.Dependencies {
			if dep == id {
				res = append(res, n.ID)
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// IDs returns every node id ordered by load priority (ascending), breaking
// ties lexically. This is the order modes are composed in at startup.
func (g *Graph) IDs() []ModeID {
	ids := make([]ModeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := g.nodes[ids[i]], g.nodes[ids[j]]
		if a.LoadPriority != b.LoadPriority {
			return a.LoadPriority < b.LoadPriority
		}
		return a.ID < b.ID
	})
	return ids
}
