/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package spatial

/*****************************************************************************************************************/

import (
	"math"
	"sort"

	"github.com/nightwatch/platesolve/pkg/geometry"
	"gonum.org/v1/gonum/spatial/vptree"
)

/*****************************************************************************************************************/

// point wraps a star's unit vector so it can be indexed by a vptree.Tree. index is the
// position of the star in the caller's original slice, carried through so radius queries can
// report which input star matched.
type point struct {
	vector geometry.Vector3
	index  int
}

/*****************************************************************************************************************/

// Distance satisfies vptree.Comparable using the chord length between unit vectors, which is
// monotonic in the great-circle angle and far cheaper to compute.
func (p point) Distance(c vptree.Comparable) float64 {
	o := c.(point)
	return p.vector.Sub(o.vector).Norm()
}

/*****************************************************************************************************************/

// Neighbor is one result of a radius query: the index of the matched star (into the slice
// originally passed to NewIndex) and its chord distance from the query vector.
type Neighbor struct {
	Index    int
	Distance float64
}

/*****************************************************************************************************************/

// Index is a spatial index over a fixed set of unit vectors, supporting fixed-radius
// neighbor queries on the unit sphere. The index is never mutated after construction; thinning
// passes that need a different point set build a fresh Index instead.
type Index struct {
	tree *vptree.Tree
}

/*****************************************************************************************************************/

// NewIndex builds an Index over vectors. The resulting Neighbor.Index values refer back into
// this slice by position.
func NewIndex(vectors []geometry.Vector3) (*Index, error) {
	comparables := make([]vptree.Comparable, len(vectors))

	for i, v := range vectors {
		comparables[i] = point{vector: v, index: i}
	}

	tree, err := vptree.New(comparables, 1, nil)
	if err != nil {
		return nil, err
	}

	return &Index{tree: tree}, nil
}

/*****************************************************************************************************************/

// Query returns every indexed vector within the great-circle angle radius (radians) of center,
// sorted by increasing distance. radius is converted to the equivalent unit-vector chord
// length before the tree search, since the tree is keyed on chord distance.
func (ix *Index) Query(center geometry.Vector3, radius float64) []Neighbor {
	chord := 2 * math.Sin(radius/2)

	keeper := vptree.NewDistKeeper(chord)

	ix.tree.NearestSet(keeper, point{vector: center})

	results := make([]Neighbor, 0, keeper.Heap.Len())

	for _, cd := range keeper.Heap {
		p := cd.Comparable.(point)
		results = append(results, Neighbor{Index: p.index, Distance: cd.Dist})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	return results
}

/*****************************************************************************************************************/
