package raster

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ESRI ASCII grid I/O. The format carries everything the pipeline needs from
// a CHM exchange raster: a float grid, the affine placement and a no-data
// sentinel. Header keys are case insensitive per the ESRI specification.

// WriteEsriAscii writes the grid to the given path.
func WriteEsriAscii(filePath string, g *Grid) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "ncols %d\n", g.Cols)
	fmt.Fprintf(w, "nrows %d\n", g.Rows)
	fmt.Fprintf(w, "xllcorner %f\n", g.Xmin)
	fmt.Fprintf(w, "yllcorner %f\n", g.Ymax-float64(g.Rows)*g.CellSize)
	fmt.Fprintf(w, "cellsize %f\n", g.CellSize)
	fmt.Fprintf(w, "NODATA_value %g\n", g.NoData)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%g", g.At(col, row))
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}

// WriteLabelsEsriAscii writes a label raster to the given path.
func WriteLabelsEsriAscii(filePath string, l *LabelGrid) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "ncols %d\n", l.Cols)
	fmt.Fprintf(w, "nrows %d\n", l.Rows)
	fmt.Fprintf(w, "xllcorner %f\n", l.Xmin)
	fmt.Fprintf(w, "yllcorner %f\n", l.Ymax-float64(l.Rows)*l.CellSize)
	fmt.Fprintf(w, "cellsize %f\n", l.CellSize)
	fmt.Fprintf(w, "NODATA_value 0\n")
	for row := 0; row < l.Rows; row++ {
		for col := 0; col < l.Cols; col++ {
			if col > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%d", l.At(col, row))
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}

// ReadEsriAscii parses a grid from the given path.
func ReadEsriAscii(filePath string) (*Grid, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	header := map[string]float64{}
	var values []float64
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		if len(fields) == 2 && isHeaderKey(key) {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("raster: bad header line %q: %w", line, err)
			}
			header[key] = v
			continue
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("raster: bad cell value %q: %w", f, err)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, required := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("raster: missing header field %q", required)
		}
	}
	cols := int(header["ncols"])
	rows := int(header["nrows"])
	cellSize := header["cellsize"]
	if len(values) != cols*rows {
		return nil, fmt.Errorf("raster: expected %d cells, found %d", cols*rows, len(values))
	}

	xll := header["xllcorner"]
	yll := header["yllcorner"]
	if v, ok := header["xllcenter"]; ok {
		xll = v - cellSize/2
	}
	if v, ok := header["yllcenter"]; ok {
		yll = v - cellSize/2
	}
	g := NewGrid(cols, rows, xll, yll+float64(rows)*cellSize, cellSize)
	if nd, ok := header["nodata_value"]; ok {
		g.NoData = nd
	}
	copy(g.Cells, values)
	return g, nil
}

// ReadLabelsEsriAscii parses a crown label raster written by
// WriteLabelsEsriAscii. Values are truncated to int32.
func ReadLabelsEsriAscii(filePath string) (*LabelGrid, error) {
	g, err := ReadEsriAscii(filePath)
	if err != nil {
		return nil, err
	}
	l := NewLabelGrid(g)
	for i, v := range g.Cells {
		l.Labels[i] = int32(v)
	}
	return l, nil
}

func isHeaderKey(key string) bool {
	switch key {
	case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}
