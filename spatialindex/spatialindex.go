// Package spatialindex provides k-nearest-neighbor queries over a mutable
// point set. It backs the Initializer's greedy marker
// assignment, where consumed markers must be logically removed from future
// queries without disturbing the stable indices callers already hold.
package spatialindex

import (
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Neighbor is one result of a k-nearest query: the index of the point within
// the original cloud passed to Build, and its squared distance to the query.
// Squared distances are returned to avoid square roots on the hot path.
type Neighbor struct {
	Index           int
	SquaredDistance float64
}

// Index is a k-nearest-neighbor index over a Cloud. It supports logical
// deletion of points (RemovePoints) followed by an explicit rebuild, matching
// the Initializer's greedy consumption of markers.
type Index struct {
	points  []r3.Vector
	removed []bool
	tree    *kdtree.Tree
}

// Build constructs a new index over the given points. Original indices into
// points are preserved across KNearest/RemovePoints calls.
func Build(points []r3.Vector) *Index {
	idx := &Index{
		points:  points,
		removed: make([]bool, len(points)),
	}
	idx.Rebuild()
	return idx
}

// RemovePoints logically deletes the points at the given original indices.
// The index is not queryable correctly for those points until Rebuild is
// called.
func (idx *Index) RemovePoints(indices []int) {
	for _, i := range indices {
		idx.removed[i] = true
	}
}

// Rebuild reconstructs the underlying k-d tree from the currently live
// (non-removed) points. Call after RemovePoints before issuing further
// queries.
func (idx *Index) Rebuild() {
	live := make(indexedPoints, 0, len(idx.points))
	for i, p := range idx.points {
		if idx.removed[i] {
			continue
		}
		live = append(live, indexedPoint{pos: p, origIndex: i})
	}
	if len(live) == 0 {
		idx.tree = nil
		return
	}
	idx.tree = kdtree.New(live, true)
}

// KNearest returns the k points nearest to query, ordered by increasing
// squared distance, ties broken by ascending original index. If fewer than k
// live points remain, all remaining points are returned.
func (idx *Index) KNearest(query r3.Vector, k int) []Neighbor {
	if idx.tree == nil || k <= 0 {
		return nil
	}
	keeper := kdtree.NewNKeeper(k)
	idx.tree.NearestSet(keeper, indexedPoint{pos: query})

	out := make([]Neighbor, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		ip := cd.Comparable.(indexedPoint)
		out = append(out, Neighbor{Index: ip.origIndex, SquaredDistance: cd.Dist})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SquaredDistance != out[j].SquaredDistance {
			return out[i].SquaredDistance < out[j].SquaredDistance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// LivePoints returns the currently live (non-removed) points, in their
// original relative order. Used to hand the remaining candidate markers to
// an ICP engine as a target cloud during greedy initialization.
func (idx *Index) LivePoints() []r3.Vector {
	out := make([]r3.Vector, 0, len(idx.points))
	for i, p := range idx.points {
		if !idx.removed[i] {
			out = append(out, p)
		}
	}
	return out
}

// indexedPoint is a single point carrying its original cloud index, used as
// the kdtree.Comparable payload.
type indexedPoint struct {
	pos       r3.Vector
	origIndex int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	default:
		return p.pos.Z - q.pos.Z
	}
}

func (p indexedPoint) Dims() int { return 3 }

func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	d := p.pos.Sub(q.pos)
	return d.Dot(d)
}

// indexedPoints implements kdtree.Interface over a slice of indexedPoint.
type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p indexedPoints) Len() int                      { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// Pivot partitions p along dimension d and returns the index of the median
// element, as required to build a balanced k-d tree. Implemented as a direct
// sort along the axis rather than a linear-time selection: marker clouds in
// this domain are a handful to a few dozen points, so the asymptotic
// difference is immaterial and a full sort keeps the partition obviously
// correct.
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	sort.Sort(&axisSorter{indexedPoints: p, dim: d})
	return p.Len() / 2
}

type axisSorter struct {
	indexedPoints
	dim kdtree.Dim
}

func (s *axisSorter) Less(i, j int) bool {
	return s.indexedPoints[i].Compare(s.indexedPoints[j], s.dim) < 0
}

func (s *axisSorter) Swap(i, j int) {
	s.indexedPoints[i], s.indexedPoints[j] = s.indexedPoints[j], s.indexedPoints[i]
}
