package core

import "math"

// Pos is a continuous position. The origin is the top-left corner of the
// grid; X grows to the right and Y grows downward. Integer-valued positions
// coincide with grid cell origins.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cell is a discrete grid cell, addressed by column (X) and row (Y).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell returns the grid cell containing the position (floored coordinates).
func (p Pos) Cell() Cell {
	return Cell{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

// Distance returns the Euclidean distance to other.
func (p Pos) Distance(other Pos) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Near reports whether other is within eps Euclidean distance.
func (p Pos) Near(other Pos, eps float64) bool {
	return p.Distance(other) < eps
}

// Pos returns the cell origin as a continuous position.
func (c Cell) Pos() Pos {
	return Pos{X: float64(c.X), Y: float64(c.Y)}
}

// Manhattan returns the L1 distance to other.
func (c Cell) Manhattan(other Cell) int {
	return abs(c.X-other.X) + abs(c.Y-other.Y)
}

// Less orders cells lexicographically by (X, Y). Used for deterministic
// tie-breaking in pathfinding and iteration.
func (c Cell) Less(other Cell) bool {
	if c.X != other.X {
		return c.X < other.X
	}
	return c.Y < other.Y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
