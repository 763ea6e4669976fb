/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package solve

/*****************************************************************************************************************/

import (
	"context"
	"math"
	"testing"

	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/rotation"
)

/*****************************************************************************************************************/

// TestPoolSolveAllMatchesSequentialSolve checks that running several independent images through
// a Pool yields the same per-job results, in order, as solving each directly: Pool only adds
// bounded concurrency on top of Solver.Solve, not different semantics.
func TestPoolSolveAllMatchesSequentialSolve(t *testing.T) {
	db := buildSyntheticDatabase(t)

	truth := rotation.Reconstruct(rotation.Pointing{
		RA:   geometry.Radians(10),
		Dec:  geometry.Radians(5),
		Roll: geometry.Radians(20),
	})

	const height, width = 1000, 1000
	fov := geometry.Radians(20)

	centroids := make([]Centroid, len(db.Stars))
	for i, s := range db.Stars {
		imageVector := truth.Apply(s.Vector())
		y, x, err := geometry.PinholeProject(imageVector, height, width, fov)
		if err != nil {
			t.Fatalf("star %d projects behind the camera: %v", i, err)
		}
		centroids[i] = Centroid{Y: y, X: x}
	}

	solver, err := NewSolver(db, nil)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}

	opts := Options{FOVEstimate: fov}

	const jobCount = 5
	jobs := make([]Job, jobCount)
	for i := range jobs {
		jobs[i] = Job{Centroids: centroids, Height: height, Width: width, Options: opts}
	}

	pool := NewPool(solver, 3)
	results, err := pool.SolveAll(context.Background(), jobs)
	if err != nil {
		t.Fatalf("SolveAll: %v", err)
	}

	if len(results) != jobCount {
		t.Fatalf("got %d results, want %d", len(results), jobCount)
	}

	want := solver.Solve(centroids, height, width, opts)

	for i, got := range results {
		if math.IsNaN(got.RA) {
			t.Fatalf("job %d: expected a solution, got no-solution result", i)
		}
		if !almostEqual(got.RA, want.RA, 1e-9) || !almostEqual(got.Dec, want.Dec, 1e-9) || !almostEqual(got.Roll, want.Roll, 1e-9) {
			t.Errorf("job %d: got %+v, want %+v", i, got.Pointing, want.Pointing)
		}
	}
}

/*****************************************************************************************************************/
