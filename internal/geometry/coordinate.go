package geometry

// Coordinate represents a 3D coordinate in an arbitrary reference system.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}
