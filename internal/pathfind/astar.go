package pathfind

import (
	"container/heap"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// AStar is the reference pathfinding policy: A* over the 4-connected grid
// with a Manhattan heuristic. Ties are broken by lowest f, then lowest
// remaining Manhattan distance to the goal, then lexicographic (x, y) order,
// so paths are reproducible across runs with identical inputs.
type AStar struct{}

// NewAStar creates the reference A* policy.
func NewAStar() *AStar { return &AStar{} }

func (a *AStar) Name() string { return "astar" }

type astarNode struct {
	cell   core.Cell
	g      int // steps so far
	h      int // Manhattan distance to goal
	parent *astarNode
	index  int // heap index
}

func (n *astarNode) f() int { return n.g + n.h }

type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f() != h[j].f() {
		return h[i].f() < h[j].f()
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	return h[i].cell.Less(h[j].cell)
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// NextStep returns the first cell on the shortest path from start to goal,
// or ok=false when the goal is unreachable. Occupied cells block for this
// call only; the goal cell itself counts as blocked when occupied, so a
// robot parked on the goal stalls the caller rather than erroring.
func (a *AStar) NextStep(env *core.Environment, start, goal core.Pos, occupied []core.Cell) (core.Cell, bool) {
	startCell := start.Cell()
	goalCell := goal.Cell()
	if startCell == goalCell {
		return goalCell, true
	}

	blocked := newBlockedSet(env, occupied)
	if !env.Free(startCell) || blocked.blocked(goalCell) {
		return core.Cell{}, false
	}

	open := &astarHeap{}
	heap.Init(open)
	heap.Push(open, &astarNode{cell: startCell, h: startCell.Manhattan(goalCell)})

	visited := map[core.Cell]struct{}{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)
		if current.cell == goalCell {
			return firstStep(current), true
		}
		if _, seen := visited[current.cell]; seen {
			continue
		}
		visited[current.cell] = struct{}{}

		for _, n := range neighbors4(current.cell) {
			if _, seen := visited[n]; seen {
				continue
			}
			if blocked.blocked(n) {
				continue
			}
			heap.Push(open, &astarNode{
				cell:   n,
				g:      current.g + 1,
				h:      n.Manhattan(goalCell),
				parent: current,
			})
		}
	}
	return core.Cell{}, false
}

// firstStep walks back to the node whose parent is the start.
func firstStep(n *astarNode) core.Cell {
	for n.parent != nil && n.parent.parent != nil {
		n = n.parent
	}
	return n.cell
}

// neighbors4 returns 4-connected neighbors in deterministic order.
func neighbors4(c core.Cell) [4]core.Cell {
	return [4]core.Cell{
		{X: c.X, Y: c.Y - 1},
		{X: c.X - 1, Y: c.Y},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
	}
}
