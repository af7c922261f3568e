package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrOutOfBounds is returned by environment queries given a position outside
// the grid. Passing such positions is a caller contract violation, not a
// recoverable runtime path.
var ErrOutOfBounds = errors.New("position out of bounds")

// Metric selects how Environment.Distance measures between positions.
type Metric int

const (
	// Euclidean straight-line distance, ignoring obstacles.
	Euclidean Metric = iota
	// GridShortestPath is the 4-connected shortest-path length over free
	// cells; unreachable pairs measure +Inf.
	GridShortestPath
)

func (m Metric) String() string {
	return [...]string{"euclidean", "grid"}[m]
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "euclidean", "":
		return Euclidean, nil
	case "grid":
		return GridShortestPath, nil
	}
	return 0, fmt.Errorf("unknown distance metric %q", s)
}

// ZoneType classifies a named region of the environment.
type ZoneType string

const (
	ZoneInspection  ZoneType = "inspection"
	ZoneMaintenance ZoneType = "maintenance"
	ZoneLoading     ZoneType = "loading"
	ZoneRestricted  ZoneType = "restricted"
	ZoneCharging    ZoneType = "charging"
)

var knownZoneTypes = map[ZoneType]struct{}{
	ZoneInspection:  {},
	ZoneMaintenance: {},
	ZoneLoading:     {},
	ZoneRestricted:  {},
	ZoneCharging:    {},
}

// ParseZoneType validates a zone type string.
func ParseZoneType(s string) (ZoneType, error) {
	z := ZoneType(s)
	if _, ok := knownZoneTypes[z]; !ok {
		return "", fmt.Errorf("unknown zone type %q", s)
	}
	return z, nil
}

// Zone is a named, typed region covering one or more grid cells.
type Zone struct {
	Name  string
	Type  ZoneType
	cells map[Cell]struct{}
}

// NewZone builds a zone from its covered cells.
func NewZone(name string, typ ZoneType, cells []Cell) *Zone {
	z := &Zone{Name: name, Type: typ, cells: make(map[Cell]struct{}, len(cells))}
	for _, c := range cells {
		z.cells[c] = struct{}{}
	}
	return z
}

// Contains reports whether the zone covers the given cell.
func (z *Zone) Contains(c Cell) bool {
	_, ok := z.cells[c]
	return ok
}

// Cells returns the covered cells in deterministic (lexicographic) order.
func (z *Zone) Cells() []Cell {
	out := make([]Cell, 0, len(z.cells))
	for c := range z.cells {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

// Environment is the static geometry of a scenario: bounds, obstacle grid
// and named zones. It is immutable after construction; all queries are pure
// and safe to call concurrently.
type Environment struct {
	width, height int
	blocked       map[Cell]struct{}
	zones         map[string]*Zone
	metric        Metric
}

// NewEnvironment creates an empty environment with the given bounds.
func NewEnvironment(width, height int) (*Environment, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("environment bounds must be positive, got %dx%d", width, height)
	}
	return &Environment{
		width:   width,
		height:  height,
		blocked: make(map[Cell]struct{}),
		zones:   make(map[string]*Zone),
	}, nil
}

// Width returns the number of columns.
func (e *Environment) Width() int { return e.width }

// Height returns the number of rows.
func (e *Environment) Height() int { return e.height }

// SetMetric selects the distance metric. Construction-time only.
func (e *Environment) SetMetric(m Metric) { e.metric = m }

// InBounds reports whether the cell lies inside the grid.
func (e *Environment) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < e.width && c.Y >= 0 && c.Y < e.height
}

// Blocked reports whether the cell holds an obstacle.
func (e *Environment) Blocked(c Cell) bool {
	_, ok := e.blocked[c]
	return ok
}

// Free reports whether the cell is inside the grid and obstacle-free.
func (e *Environment) Free(c Cell) bool {
	return e.InBounds(c) && !e.Blocked(c)
}

// AddObstacle marks a cell as blocked. Construction-time only; duplicate
// obstacles are a no-op.
func (e *Environment) AddObstacle(c Cell) error {
	if !e.InBounds(c) {
		return fmt.Errorf("obstacle at (%d,%d): %w", c.X, c.Y, ErrOutOfBounds)
	}
	e.blocked[c] = struct{}{}
	return nil
}

// AddZone registers a named zone. Construction-time only. All zone cells
// must be in bounds; zone names must be unique; zones must not overlap.
func (e *Environment) AddZone(z *Zone) error {
	if _, exists := e.zones[z.Name]; exists {
		return fmt.Errorf("zone %q already exists", z.Name)
	}
	for c := range z.cells {
		if !e.InBounds(c) {
			return fmt.Errorf("zone %q cell (%d,%d): %w", z.Name, c.X, c.Y, ErrOutOfBounds)
		}
	}
	for _, other := range e.zones {
		for c := range z.cells {
			if other.Contains(c) {
				return fmt.Errorf("zone %q overlaps zone %q at (%d,%d)", z.Name, other.Name, c.X, c.Y)
			}
		}
	}
	e.zones[z.Name] = z
	return nil
}

// Zone returns the zone with the given name, or nil.
func (e *Environment) Zone(name string) *Zone {
	return e.zones[name]
}

// ZoneNames returns all zone names, sorted.
func (e *Environment) ZoneNames() []string {
	names := make([]string, 0, len(e.zones))
	for n := range e.zones {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Obstacles returns all blocked cells in deterministic order.
func (e *Environment) Obstacles() []Cell {
	out := make([]Cell, 0, len(e.blocked))
	for c := range e.blocked {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

// Distance measures between two positions using the configured metric.
// Under GridShortestPath an unreachable pair measures +Inf.
func (e *Environment) Distance(a, b Pos) (float64, error) {
	if !e.InBounds(a.Cell()) {
		return 0, fmt.Errorf("distance from (%g,%g): %w", a.X, a.Y, ErrOutOfBounds)
	}
	if !e.InBounds(b.Cell()) {
		return 0, fmt.Errorf("distance to (%g,%g): %w", b.X, b.Y, ErrOutOfBounds)
	}
	if e.metric == GridShortestPath {
		return e.gridDistance(a.Cell(), b.Cell()), nil
	}
	return a.Distance(b), nil
}

// IsPathFree reports whether a 4-connected path over free cells exists
// between the cells containing a and b.
func (e *Environment) IsPathFree(a, b Pos) (bool, error) {
	if !e.InBounds(a.Cell()) {
		return false, fmt.Errorf("path from (%g,%g): %w", a.X, a.Y, ErrOutOfBounds)
	}
	if !e.InBounds(b.Cell()) {
		return false, fmt.Errorf("path to (%g,%g): %w", b.X, b.Y, ErrOutOfBounds)
	}
	return !math.IsInf(e.gridDistance(a.Cell(), b.Cell()), 1), nil
}

// gridDistance is a plain BFS over free cells. The environment is immutable,
// so this remains a pure function of (a, b).
func (e *Environment) gridDistance(a, b Cell) float64 {
	if a == b {
		return 0
	}
	if e.Blocked(a) || e.Blocked(b) {
		return math.Inf(1)
	}
	type entry struct {
		cell Cell
		dist int
	}
	visited := map[Cell]struct{}{a: {}}
	queue := []entry{{cell: a}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.cell.neighbors4() {
			if _, seen := visited[n]; seen {
				continue
			}
			if !e.Free(n) {
				continue
			}
			if n == b {
				return float64(cur.dist + 1)
			}
			visited[n] = struct{}{}
			queue = append(queue, entry{cell: n, dist: cur.dist + 1})
		}
	}
	return math.Inf(1)
}

// neighbors4 returns the 4-connected neighbor cells in deterministic order.
func (c Cell) neighbors4() [4]Cell {
	return [4]Cell{
		{c.X, c.Y - 1},
		{c.X - 1, c.Y},
		{c.X + 1, c.Y},
		{c.X, c.Y + 1},
	}
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
}
