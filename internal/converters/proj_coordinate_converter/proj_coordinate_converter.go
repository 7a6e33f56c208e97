package proj_coordinate_converter

import (
	"fmt"
	"sync"

	"github.com/ctessum/geom/proj"

	"github.com/habitat-map/canopy_inventory/internal/converters"
	"github.com/habitat-map/canopy_inventory/internal/geometry"
)

// ProjCoordinateConverter reprojects tile coordinates to WGS84 longitude and
// latitude for the GeoJSON export. Transformers are built once per source
// SRID and cached.
type ProjCoordinateConverter struct {
	mu           sync.Mutex
	wgs84        *proj.SR
	transformers map[int]proj.Transformer
}

func NewProjCoordinateConverter() (converters.CoordinateConverter, error) {
	wgs84, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		return nil, err
	}
	return &ProjCoordinateConverter{
		wgs84:        wgs84,
		transformers: make(map[int]proj.Transformer),
	}, nil
}

func (c *ProjCoordinateConverter) ConvertToWGS84(sourceSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	transform, err := c.transformerFor(sourceSrid)
	if err != nil {
		return geometry.Coordinate{}, err
	}
	x, y, err := transform(coord.X, coord.Y)
	if err != nil {
		return geometry.Coordinate{}, err
	}
	return geometry.Coordinate{X: x, Y: y, Z: coord.Z}, nil
}

func (c *ProjCoordinateConverter) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transformers = make(map[int]proj.Transformer)
}

func (c *ProjCoordinateConverter) transformerFor(srid int) (proj.Transformer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.transformers[srid]; ok {
		return t, nil
	}
	projString, err := proj4StringFor(srid)
	if err != nil {
		return nil, err
	}
	source, err := proj.Parse(projString)
	if err != nil {
		return nil, fmt.Errorf("converters: parsing projection for SRID %d: %w", srid, err)
	}
	t, err := source.NewTransform(c.wgs84)
	if err != nil {
		return nil, fmt.Errorf("converters: building transform for SRID %d: %w", srid, err)
	}
	c.transformers[srid] = t
	return t, nil
}

// proj4StringFor covers the SRIDs survey tiles arrive in: geographic WGS84,
// web/world mercator and the UTM zones.
func proj4StringFor(srid int) (string, error) {
	switch {
	case srid == 4326:
		return "+proj=longlat +datum=WGS84 +no_defs", nil
	case srid == 3857:
		return "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +no_defs", nil
	case srid == 3395:
		return "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs", nil
	case srid >= 32601 && srid <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", srid-32600), nil
	case srid >= 32701 && srid <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", srid-32700), nil
	}
	return "", fmt.Errorf("converters: unsupported SRID %d", srid)
}
