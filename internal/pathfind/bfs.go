package pathfind

import "github.com/elektrokombinacija/fleetsim/internal/core"

// BFS is a breadth-first-search policy over the 4-connected grid. It finds
// a shortest path in steps (all moves cost one) with a fixed expansion
// order, making it a cheap deterministic baseline against A*.
type BFS struct{}

// NewBFS creates the BFS policy.
func NewBFS() *BFS { return &BFS{} }

func (b *BFS) Name() string { return "bfs" }

// NextStep returns the first cell on a shortest path from start to goal, or
// ok=false when the goal is unreachable.
func (b *BFS) NextStep(env *core.Environment, start, goal core.Pos, occupied []core.Cell) (core.Cell, bool) {
	startCell := start.Cell()
	goalCell := goal.Cell()
	if startCell == goalCell {
		return goalCell, true
	}

	blocked := newBlockedSet(env, occupied)
	if !env.Free(startCell) || blocked.blocked(goalCell) {
		return core.Cell{}, false
	}

	type entry struct {
		cell  core.Cell
		first core.Cell // neighbor of start beginning this path
	}
	visited := map[core.Cell]struct{}{startCell: {}}
	var queue []entry

	for _, n := range neighbors4(startCell) {
		if blocked.blocked(n) {
			continue
		}
		if n == goalCell {
			return n, true
		}
		visited[n] = struct{}{}
		queue = append(queue, entry{cell: n, first: n})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range neighbors4(cur.cell) {
			if _, seen := visited[n]; seen {
				continue
			}
			if blocked.blocked(n) {
				continue
			}
			if n == goalCell {
				return cur.first, true
			}
			visited[n] = struct{}{}
			queue = append(queue, entry{cell: n, first: cur.first})
		}
	}
	return core.Cell{}, false
}
