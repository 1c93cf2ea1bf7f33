package stagedef

import (
	stdmath "math"

	"github.com/Faultbox/stagedef/pkg/math"
)

// Vertices reconstructs the three world-space vertices of the triangle.
// Point 2 and point 3 are stored in the XY plane relative to point 1 and
// rotated into place by RotationFromXY (Y, then X, then Z).
func (t *CollisionTri) Vertices() [3]math.Vec3 {
	m := math.Translate(t.Point1).Mul(math.RotateYXZ(t.RotationFromXY))
	return [3]math.Vec3{
		t.Point1,
		m.TransformVec3(math.Vec3{X: t.Point2Delta.X, Y: t.Point2Delta.Y}),
		m.TransformVec3(math.Vec3{X: t.Point3Delta.X, Y: t.Point3Delta.Y}),
	}
}

// FaceNormal returns the unit normal of the reconstructed triangle, wound
// point 1, point 2, point 3. Degenerate triangles yield the zero vector.
func (t *CollisionTri) FaceNormal() math.Vec3 {
	v := t.Vertices()
	n := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
	l := n.Length()
	if l == 0 {
		return math.Vec3{}
	}
	return n.Scale(1 / l)
}

// CellCount returns the number of cells, or 0 for a malformed grid.
func (g *CollisionGrid) CellCount() int {
	if g.StepCount.X <= 0 || g.StepCount.Y <= 0 {
		return 0
	}
	return int(g.StepCount.Area())
}

// CellIndex returns the row-major index of cell (x, y), or -1 when the cell
// lies outside the grid.
func (g *CollisionGrid) CellIndex(x, y int) int {
	if x < 0 || y < 0 || x >= int(g.StepCount.X) || y >= int(g.StepCount.Y) {
		return -1
	}
	return y*int(g.StepCount.X) + x
}

// CellAt returns the cell containing the world XZ position pos.
func (g *CollisionGrid) CellAt(pos math.Vec2) (x, y int, ok bool) {
	if g.Step.X == 0 || g.Step.Y == 0 {
		return 0, 0, false
	}
	fx := stdmath.Floor(float64((pos.X - g.Start.X) / g.Step.X))
	fy := stdmath.Floor(float64((pos.Y - g.Start.Y) / g.Step.Y))
	if fx < 0 || fy < 0 || fx >= float64(g.StepCount.X) || fy >= float64(g.StepCount.Y) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}
