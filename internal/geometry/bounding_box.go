package geometry

// Axis aligned bounding box of a point set or raster extent
type BoundingBox struct {
	Xmin float64
	Xmax float64
	Ymin float64
	Ymax float64
	Zmin float64
	Zmax float64
}

func NewBoundingBox(xmin, xmax, ymin, ymax, zmin, zmax float64) *BoundingBox {
	return &BoundingBox{
		Xmin: xmin,
		Xmax: xmax,
		Ymin: ymin,
		Ymax: ymax,
		Zmin: zmin,
		Zmax: zmax,
	}
}

// Extends the box to contain the given coordinate
func (b *BoundingBox) Extend(x, y, z float64) {
	if x < b.Xmin {
		b.Xmin = x
	}
	if x > b.Xmax {
		b.Xmax = x
	}
	if y < b.Ymin {
		b.Ymin = y
	}
	if y > b.Ymax {
		b.Ymax = y
	}
	if z < b.Zmin {
		b.Zmin = z
	}
	if z > b.Zmax {
		b.Zmax = z
	}
}

func (b *BoundingBox) GetAsArray() []float64 {
	return []float64{b.Xmin, b.Xmax, b.Ymin, b.Ymax, b.Zmin, b.Zmax}
}
