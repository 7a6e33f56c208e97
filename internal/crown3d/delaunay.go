package crown3d

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
)

// Incremental Bowyer-Watson tetrahedralization. The same structure backs
// both crown solids: the union of all tetrahedra is the convex hull, and the
// subset with circumradius <= alpha is the alpha shape, so the alpha volume
// can never exceed the hull volume.

type tetrahedron struct {
	v       [4]int
	center  r3.Vector
	radius2 float64 // +Inf for degenerate (flat) tetrahedra
}

type triangulation struct {
	vertices []r3.Vector // first four are the enclosing super tetrahedron
	tetras   []*tetrahedron
}

var errDegenerate = errors.New("crown3d: degenerate point set (fewer than 4 distinct non-coplanar points)")

// triangulate builds the Delaunay tetrahedralization of the given points.
// Returns errDegenerate when the points do not span a 3D volume.
func triangulate(points []r3.Vector) (*triangulation, error) {
	if len(points) < 4 {
		return nil, errDegenerate
	}

	tri := &triangulation{}
	tri.initSuperTetrahedron(points)

	for _, p := range points {
		tri.insert(p)
	}

	kept := tri.tetras[:0]
	for _, t := range tri.tetras {
		if t.v[0] < 4 || t.v[1] < 4 || t.v[2] < 4 || t.v[3] < 4 {
			continue // touches the super tetrahedron
		}
		kept = append(kept, t)
	}
	tri.tetras = kept

	if tri.volume() <= 0 {
		return nil, errDegenerate
	}
	return tri, nil
}

func (tri *triangulation) initSuperTetrahedron(points []r3.Vector) {
	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	c := min.Add(max).Mul(0.5)
	d := max.Sub(min).Norm()
	if d == 0 {
		d = 1
	}
	s := 20 * d

	tri.vertices = []r3.Vector{
		{X: c.X, Y: c.Y, Z: c.Z + s},
		{X: c.X - s, Y: c.Y - s, Z: c.Z - s},
		{X: c.X + s, Y: c.Y - s, Z: c.Z - s},
		{X: c.X, Y: c.Y + s, Z: c.Z - s},
	}
	tri.tetras = []*tetrahedron{tri.newTetrahedron(0, 1, 2, 3)}
}

type face struct {
	a, b, c int
}

func orderedFace(a, b, c int) face {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return face{a, b, c}
}

// insert adds one point, carving the cavity of tetrahedra whose
// circumsphere contains it and re-tetrahedralizing against the point.
func (tri *triangulation) insert(p r3.Vector) {
	idx := len(tri.vertices)
	tri.vertices = append(tri.vertices, p)

	var alive []*tetrahedron
	faceCount := make(map[face]int)
	for _, t := range tri.tetras {
		if t.contains(p) {
			for _, f := range t.faces() {
				faceCount[f]++
			}
		} else {
			alive = append(alive, t)
		}
	}
	if len(faceCount) == 0 {
		// outside every circumsphere; cannot happen inside the super
		// tetrahedron, but keep the structure consistent regardless
		return
	}

	tri.tetras = alive
	for f, n := range faceCount {
		if n != 1 {
			continue // interior cavity face
		}
		tri.tetras = append(tri.tetras, tri.newTetrahedron(f.a, f.b, f.c, idx))
	}
}

func (t *tetrahedron) contains(p r3.Vector) bool {
	if math.IsInf(t.radius2, 1) {
		return true // flat tetrahedra are always replaced
	}
	return p.Sub(t.center).Norm2() < t.radius2*(1+1e-12)
}

func (t *tetrahedron) faces() [4]face {
	return [4]face{
		orderedFace(t.v[0], t.v[1], t.v[2]),
		orderedFace(t.v[0], t.v[1], t.v[3]),
		orderedFace(t.v[0], t.v[2], t.v[3]),
		orderedFace(t.v[1], t.v[2], t.v[3]),
	}
}

func (tri *triangulation) newTetrahedron(a, b, c, d int) *tetrahedron {
	t := &tetrahedron{v: [4]int{a, b, c, d}}
	center, r2, ok := circumsphere(tri.vertices[a], tri.vertices[b], tri.vertices[c], tri.vertices[d])
	if !ok {
		t.radius2 = math.Inf(1)
		return t
	}
	t.center = center
	t.radius2 = r2
	return t
}

// circumsphere solves for the sphere through four points. ok is false when
// the points are (nearly) coplanar.
func circumsphere(p0, p1, p2, p3 r3.Vector) (center r3.Vector, radius2 float64, ok bool) {
	a := p1.Sub(p0)
	b := p2.Sub(p0)
	c := p3.Sub(p0)

	det := a.Dot(b.Cross(c))
	scale := a.Norm() * b.Norm() * c.Norm()
	if scale == 0 || math.Abs(det) < 1e-12*scale {
		return r3.Vector{}, 0, false
	}

	// Solve 2*M*x = rhs with rows a, b, c relative to p0.
	rhs := r3.Vector{X: a.Norm2(), Y: b.Norm2(), Z: c.Norm2()}
	x := b.Cross(c).Mul(rhs.X)
	x = x.Add(c.Cross(a).Mul(rhs.Y))
	x = x.Add(a.Cross(b).Mul(rhs.Z))
	offset := x.Mul(1 / (2 * det))

	center = p0.Add(offset)
	return center, offset.Norm2(), true
}

func tetraVolume(p0, p1, p2, p3 r3.Vector) float64 {
	return math.Abs(p1.Sub(p0).Dot(p2.Sub(p0).Cross(p3.Sub(p0)))) / 6
}

func triangleArea(p0, p1, p2 r3.Vector) float64 {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Norm() / 2
}

// volume sums all tetrahedra, i.e. the convex hull volume.
func (tri *triangulation) volume() float64 {
	var sum float64
	for _, t := range tri.tetras {
		sum += tetraVolume(tri.vertices[t.v[0]], tri.vertices[t.v[1]], tri.vertices[t.v[2]], tri.vertices[t.v[3]])
	}
	return sum
}

// surfaceArea sums the faces belonging to exactly one tetrahedron, i.e. the
// convex hull boundary.
func (tri *triangulation) surfaceArea() float64 {
	faceCount := make(map[face]int)
	for _, t := range tri.tetras {
		for _, f := range t.faces() {
			faceCount[f]++
		}
	}
	var sum float64
	for f, n := range faceCount {
		if n == 1 {
			sum += triangleArea(tri.vertices[f.a], tri.vertices[f.b], tri.vertices[f.c])
		}
	}
	return sum
}

// alphaVolume sums tetrahedra with circumradius not exceeding alpha.
func (tri *triangulation) alphaVolume(alpha float64) float64 {
	a2 := alpha * alpha
	var sum float64
	for _, t := range tri.tetras {
		if t.radius2 <= a2 {
			sum += tetraVolume(tri.vertices[t.v[0]], tri.vertices[t.v[1]], tri.vertices[t.v[2]], tri.vertices[t.v[3]])
		}
	}
	return sum
}
