package crown3d

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// Opts tune the 3D crown geometry computation.
type Opts struct {
	Alpha     float64 // alpha shape parameter in meters, 0 = auto
	VoxelSize float64 // porosity voxel edge in meters
	Layers    int     // vertical profile layer count
	MaxPoints int     // deterministic subsample cap for the triangulation
}

func DefaultOpts() Opts {
	return Opts{Alpha: 0, VoxelSize: 0.5, Layers: 10, MaxPoints: 4000}
}

// Result is the outcome of one per tree geometry computation. Degenerate
// crowns are expected at scale, so failure is a value with a reason, not an
// error that unwinds the tile.
type Result struct {
	TreeID  int32
	Metrics *data.CrownMetrics
	Reason  string // empty on success
}

func (r Result) Failed() bool { return r.Reason != "" }

// Compute derives the 3D crown metrics of a single tree's point subset.
func Compute(treeID int32, points []*data.Point, opts Opts) Result {
	vecs := dedupe(points)
	if len(vecs) < 4 {
		return Result{TreeID: treeID, Metrics: data.NewCrownMetricsNaN(),
			Reason: "fewer than 4 distinct points"}
	}
	vecs = subsample(vecs, opts.MaxPoints)

	tri, err := triangulate(vecs)
	if err != nil {
		return Result{TreeID: treeID, Metrics: data.NewCrownMetricsNaN(),
			Reason: "degenerate geometry (collinear or coplanar points)"}
	}

	alpha := opts.Alpha
	if alpha <= 0 {
		alpha = autoAlpha(vecs)
	}

	hullVolume := tri.volume()
	alphaVolume := tri.alphaVolume(alpha)
	metrics := &data.CrownMetrics{
		HullVolume:      hullVolume,
		HullSurfaceArea: tri.surfaceArea(),
		AlphaVolume:     alphaVolume,
		Alpha:           alpha,
		Porosity:        porosity(vecs, opts.VoxelSize, hullVolume),
		Solidity:        alphaVolume / hullVolume,
		Profile:         verticalProfile(vecs, opts.Layers),
	}
	metrics.AsymmetryIndex, metrics.LeanDirection = asymmetry(vecs)
	return Result{TreeID: treeID, Metrics: metrics}
}

// ComputeBatch runs per tree geometry on a bounded worker pool. Trees share
// no mutable state, so results append through a single mutex guarded slice.
func ComputeBatch(groups map[int32][]*data.Point, opts Opts, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ids := make([]int32, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var mu sync.Mutex
	results := make([]Result, 0, len(ids))

	var g errgroup.Group
	g.SetLimit(workers)
	for _, id := range ids {
		id := id
		points := groups[id]
		g.Go(func() error {
			res := Compute(id, points, opts)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures are Result values

	sort.Slice(results, func(i, j int) bool { return results[i].TreeID < results[j].TreeID })
	return results
}

// asymmetry returns the horizontal apex displacement from the point centroid
// normalized by the mean horizontal radius, plus the lean bearing in degrees
// clockwise from north.
func asymmetry(points []r3.Vector) (index, bearing float64) {
	var cx, cy float64
	apex := points[0]
	for _, p := range points {
		cx += p.X
		cy += p.Y
		if p.Z > apex.Z {
			apex = p
		}
	}
	n := float64(len(points))
	cx /= n
	cy /= n

	var sumR float64
	for _, p := range points {
		sumR += math.Hypot(p.X-cx, p.Y-cy)
	}
	meanR := sumR / n
	if meanR == 0 {
		return math.NaN(), math.NaN()
	}

	dx, dy := apex.X-cx, apex.Y-cy
	index = math.Hypot(dx, dy) / meanR
	bearing = math.Atan2(dx, dy) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	return index, bearing
}

// autoAlpha derives the alpha parameter as twice the median nearest neighbor
// distance, balancing over fragmentation against hull equivalence. Distances
// come from a deterministic sample to keep large crowns cheap.
func autoAlpha(points []r3.Vector) float64 {
	sample := subsample(points, 512)
	if len(sample) < 2 {
		return 1
	}
	nearest := make([]float64, len(sample))
	for i, p := range sample {
		best := math.Inf(1)
		for j, q := range sample {
			if i == j {
				continue
			}
			if d2 := p.Sub(q).Norm2(); d2 < best {
				best = d2
			}
		}
		nearest[i] = math.Sqrt(best)
	}
	sort.Float64s(nearest)
	median := nearest[len(nearest)/2]
	if median == 0 {
		return 1
	}
	return 2 * median
}

func dedupe(points []*data.Point) []r3.Vector {
	seen := make(map[r3.Vector]struct{}, len(points))
	vecs := make([]r3.Vector, 0, len(points))
	for _, p := range points {
		v := r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vecs = append(vecs, v)
	}
	return vecs
}

// subsample keeps at most max points with a deterministic stride, preserving
// the first and the spread of the original ordering.
func subsample(points []r3.Vector, max int) []r3.Vector {
	if max <= 0 || len(points) <= max {
		return points
	}
	out := make([]r3.Vector, 0, max)
	stride := float64(len(points)) / float64(max)
	for i := 0; i < max; i++ {
		out = append(out, points[int(float64(i)*stride)])
	}
	return out
}
