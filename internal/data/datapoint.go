package data

// Contains data of a height normalized Point Cloud Point, namely X,Y coords,
// Z height above ground, Intensity, ReturnNumber, Classification and the
// crown label assigned during segmentation (0 = unassigned)
type Point struct {
	X              float64
	Y              float64
	Z              float64
	Intensity      uint8
	ReturnNumber   uint8
	Classification uint8
	TreeID         int32
}

// Builds a new Point from the given coordinates, intensity, return number and classification values
func NewPoint(X, Y, Z float64, Intensity, ReturnNumber, Classification uint8) *Point {
	return &Point{
		X:              X,
		Y:              Y,
		Z:              Z,
		Intensity:      Intensity,
		ReturnNumber:   ReturnNumber,
		Classification: Classification,
	}
}
