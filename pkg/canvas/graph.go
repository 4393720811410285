package canvas

// Graph is the authoritative node set of one canvas. Edges are not a
// first-class entity: an edge exists for every (node.ID, target) pair
// where target appears in node.ConnectedTo and resolves to a live node.
// Every mutation that adds a connected node pairs the node insertion
// with the edge insertion, so the adjacency lists never dangle.
//
// Graph is not safe for concurrent use; the owning session serializes
// access.
type Graph struct {
	order []string
	nodes map[string]*Node
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// NewGraphFrom builds a graph from an ordered node list, for example a
// project loaded from the hosting application. Edges referencing ids
// outside the list are dropped so the no-dangling-edges invariant holds
// from the first state onward.
func NewGraphFrom(nodes []*Node) *Graph {
	g := NewGraph()
	for _, n := range nodes {
		if n == nil || n.ID == "" {
			continue
		}
		if _, ok := g.nodes[n.ID]; ok {
			continue
		}
		g.order = append(g.order, n.ID)
		g.nodes[n.ID] = n
	}
	for _, n := range g.nodes {
		n.ConnectedTo = g.filterLive(n.ConnectedTo)
	}
	return g
}

// Len returns the node count
func (g *Graph) Len() int { return len(g.order) }

// Node returns the node with the given id, or nil
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Has reports whether a node with the given id exists
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the nodes in insertion order. The returned slice is
// owned by the caller; the nodes are shared.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Snapshot returns a deep copy of the node list, for handing across an
// ownership boundary (wire serialization, update callbacks).
func (g *Graph) Snapshot() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}

// Add inserts a node with no edges
func (g *Graph) Add(n *Node) error {
	if n == nil || n.ID == "" {
		return opError("Add", "node", "", ErrNodeNotFound)
	}
	if _, ok := g.nodes[n.ID]; ok {
		return opError("Add", "node", n.ID, ErrDuplicateNode)
	}
	g.order = append(g.order, n.ID)
	g.nodes[n.ID] = n
	return nil
}

// Connect is the single primitive that records a directed edge from
// source to target. All mutation sites go through it; adjacency lists
// are never spliced by hand.
func (g *Graph) Connect(sourceID, targetID string) error {
	if sourceID == targetID {
		return opError("Connect", "edge", sourceID, ErrSelfEdge)
	}
	src, ok := g.nodes[sourceID]
	if !ok {
		return opError("Connect", "node", sourceID, ErrNodeNotFound)
	}
	if _, ok := g.nodes[targetID]; !ok {
		return opError("Connect", "node", targetID, ErrNodeNotFound)
	}
	if src.ConnectedToID(targetID) {
		return nil
	}
	src.ConnectedTo = append(src.ConnectedTo, targetID)
	return nil
}

// AddConnected atomically inserts a node and records the edge from the
// source. On any failure the graph is left unchanged.
func (g *Graph) AddConnected(n *Node, sourceID string) error {
	if _, ok := g.nodes[sourceID]; !ok {
		return opError("AddConnected", "node", sourceID, ErrNodeNotFound)
	}
	if err := g.Add(n); err != nil {
		return err
	}
	if err := g.Connect(sourceID, n.ID); err != nil {
		g.removeFromOrder(n.ID)
		delete(g.nodes, n.ID)
		return err
	}
	return nil
}

// Delete removes a node and strips its id from every other node's
// adjacency list in the same mutation, so no dangling edges survive.
func (g *Graph) Delete(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return opError("Delete", "node", id, ErrNodeNotFound)
	}
	delete(g.nodes, id)
	g.removeFromOrder(id)
	for _, n := range g.nodes {
		n.ConnectedTo = removeID(n.ConnectedTo, id)
	}
	return nil
}

// DeleteAll removes a set of nodes in a single pass. Unknown ids are
// ignored. Returns the number of nodes removed.
func (g *Graph) DeleteAll(ids []string) int {
	doomed := make(map[string]bool, len(ids))
	removed := 0
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok && !doomed[id] {
			doomed[id] = true
			delete(g.nodes, id)
			removed++
		}
	}
	if removed == 0 {
		return 0
	}

	kept := g.order[:0]
	for _, id := range g.order {
		if !doomed[id] {
			kept = append(kept, id)
		}
	}
	g.order = kept

	for _, n := range g.nodes {
		filtered := n.ConnectedTo[:0]
		for _, target := range n.ConnectedTo {
			if !doomed[target] {
				filtered = append(filtered, target)
			}
		}
		n.ConnectedTo = filtered
	}
	return removed
}

// Edges enumerates the derived (source, target) pairs in stable order
func (g *Graph) Edges() [][2]string {
	var out [][2]string
	for _, id := range g.order {
		for _, target := range g.nodes[id].ConnectedTo {
			if _, ok := g.nodes[target]; ok {
				out = append(out, [2]string{id, target})
			}
		}
	}
	return out
}

// ResolveMerge overwrites a pending-merge node's title, content, and
// color and clears the pending state. The node's identity and existing
// edges are preserved; the transition is one-way.
func (g *Graph) ResolveMerge(id, title string, content []string, color Color) error {
	n, ok := g.nodes[id]
	if !ok {
		return opError("ResolveMerge", "node", id, ErrNodeNotFound)
	}
	if n.PendingMerge == nil {
		return opError("ResolveMerge", "node", id, ErrNotPending)
	}
	if _, err := ParseColor(string(color)); err != nil {
		color = ColorSlate
	}
	n.Title = title
	n.Content = append([]string(nil), content...)
	n.Color = color
	n.PendingMerge = nil
	return nil
}

func (g *Graph) removeFromOrder(id string) {
	g.order = removeID(g.order, id)
}

func (g *Graph) filterLive(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
