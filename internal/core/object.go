package core

// Object is a carryable payload. Its position is derived each tick: while
// carried it is recomputed from the carrying robot's position after the
// motion phase, so no live reference between object and robot exists.
type Object struct {
	ID        ObjectID `json:"id"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	CarriedBy RobotID  `json:"carried_by"`
	Goal      Cell     `json:"goal"`
	Delivered bool     `json:"delivered"`
}

// NewObject creates an uncarried object at the given cell.
func NewObject(id ObjectID, at, goal Cell) *Object {
	return &Object{
		ID:        id,
		X:         float64(at.X),
		Y:         float64(at.Y),
		CarriedBy: NoRobot,
		Goal:      goal,
	}
}

// Pos returns the object's continuous position.
func (o *Object) Pos() Pos {
	return Pos{X: o.X, Y: o.Y}
}

// Cell returns the grid cell containing the object.
func (o *Object) Cell() Cell {
	return o.Pos().Cell()
}

// Carried reports whether a robot currently carries the object.
func (o *Object) Carried() bool {
	return o.CarriedBy != NoRobot
}

// Release drops the object at the given cell and clears the carrier.
func (o *Object) Release(at Cell) {
	o.CarriedBy = NoRobot
	o.X = float64(at.X)
	o.Y = float64(at.Y)
}
