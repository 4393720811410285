package canvas

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// checkNoDanglingEdges verifies that every id in any node's adjacency
// list resolves to a live node
func checkNoDanglingEdges(g *Graph) bool {
	for _, n := range g.Nodes() {
		for _, target := range n.ConnectedTo {
			if !g.Has(target) {
				return false
			}
		}
	}
	return true
}

// TestGraphInvariants verifies graph invariants over random operation
// sequences. These properties must hold after every mutation.
func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// ops: 0 = add, 1 = connect, 2 = delete, 3 = add-connected
	genOps := gen.SliceOf(gen.IntRange(0, 3))
	genPicks := gen.SliceOf(gen.IntRange(0, 63))

	properties.Property("no dangling edges after any op sequence", prop.ForAll(
		func(ops []int, picks []int) bool {
			g := NewGraph()
			next := 0
			pick := func(i int) string {
				ids := g.Nodes()
				if len(ids) == 0 {
					return ""
				}
				if i >= len(picks) {
					return ids[0].ID
				}
				return ids[picks[i]%len(ids)].ID
			}

			for i, op := range ops {
				switch op {
				case 0:
					next++
					g.Add(&Node{ID: NewNodeID(), Title: "n", Color: ColorBlue})
				case 1:
					g.Connect(pick(i), pick(i+1))
				case 2:
					if id := pick(i); id != "" {
						g.Delete(id)
					}
				case 3:
					if src := pick(i); src != "" {
						g.AddConnected(&Node{ID: NewNodeID(), Color: ColorBlue}, src)
					}
				}
				if !checkNoDanglingEdges(g) {
					return false
				}
			}
			return true
		},
		genOps, genPicks,
	))

	properties.Property("create then delete leaves no trace", prop.ForAll(
		func(title string) bool {
			g := NewGraph()
			n := &Node{ID: NewNodeID(), Title: title, Color: ColorSlate}
			if err := g.Add(n); err != nil {
				return false
			}
			if err := g.Delete(n.ID); err != nil {
				return false
			}
			return !g.Has(n.ID) && g.Len() == 0
		},
		gen.AlphaString(),
	))

	properties.Property("selection toggle is an involution", prop.ForAll(
		func(ids []string, target string) bool {
			sel := NewSelection()
			sel.Union(ids)
			before := sel.Has(target)
			sel.Toggle(target)
			sel.Toggle(target)
			return sel.Has(target) == before
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
