package stpsim

// spanningtree.go is adapted from routes.go's shortest-path-tree
// machinery: where the teacher builds a gonum weighted graph to compute
// routes through a network, this module builds the same kind of graph
// out of a Topology's currently-Forwarding links and asks gonum whether
// that graph is a forest — which is exactly the invariant a converged
// spanning tree protocol is supposed to guarantee (no forwarding loop).

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// SpanningTreeEdges returns the subset of a Topology's edges that are
// currently part of the active forwarding topology: both endpoint ports
// are in the Forwarding state. A Blocking port on either end means the
// link is present physically but excluded from the tree.
func (t *Topology) SpanningTreeEdges() []Edge {
	var out []Edge
	for _, e := range t.edges {
		a, ok := t.bridges[e.BridgeA]
		if !ok {
			continue
		}
		b, ok := t.bridges[e.BridgeB]
		if !ok {
			continue
		}
		pa := portAt(a, e.PortA)
		pb := portAt(b, e.PortB)
		if pa == nil || pb == nil {
			continue
		}
		if pa.State() == Forwarding && pb.State() == Forwarding {
			out = append(out, e)
		}
	}
	return out
}

func portAt(b *Bridge, index int) *Port {
	ports := b.Ports()
	if index < 0 || index >= len(ports) {
		return nil
	}
	return ports[index]
}

// IsLoopFree reports whether the topology's current active forwarding
// edges (SpanningTreeEdges) form a forest — i.e. every connected
// component has exactly (nodes - 1) edges, the defining property of a
// tree, and gonum's graph/topo confirms no cycle joins them. An empty or
// single-bridge topology is trivially loop-free.
func (t *Topology) IsLoopFree() bool {
	edges := t.SpanningTreeEdges()

	ids := make(map[string]int64)
	nextID := int64(0)
	idFor := func(mac string) int64 {
		if id, ok := ids[mac]; ok {
			return id
		}
		id := nextID
		ids[mac] = id
		nextID++
		return id
	}

	g := simple.NewUndirectedGraph()
	for _, b := range t.Bridges() {
		g.AddNode(simple.Node(idFor(b.ID().MAC)))
	}
	for _, e := range edges {
		u := simple.Node(idFor(e.BridgeA))
		v := simple.Node(idFor(e.BridgeB))
		if g.HasEdgeBetween(u.ID(), v.ID()) {
			// A second forwarding link between the same pair of bridges
			// is itself a two-node cycle.
			return false
		}
		g.SetEdge(simple.Edge{F: u, T: v})
	}

	for _, component := range topo.ConnectedComponents(g) {
		if !isForest(g, component) {
			return false
		}
	}
	return true
}

// isForest reports whether the subgraph induced by nodes is a tree:
// exactly len(nodes)-1 edges among them, with the connectivity already
// established by construction (nodes came from a single connected
// component).
func isForest(g graph.Undirected, nodes []graph.Node) bool {
	edgeCount := 0
	seen := make(map[[2]int64]bool)
	for _, n := range nodes {
		to := g.From(n.ID())
		for to.Next() {
			m := to.Node().ID()
			key := [2]int64{n.ID(), m}
			if n.ID() > m {
				key = [2]int64{m, n.ID()}
			}
			if !seen[key] {
				seen[key] = true
				edgeCount++
			}
		}
	}
	return edgeCount == len(nodes)-1
}
