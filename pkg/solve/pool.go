/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package solve

/*****************************************************************************************************************/

import (
	"context"

	"golang.org/x/sync/errgroup"
)

/*****************************************************************************************************************/

// Job is a single image's centroids and per-call options, queued for a Pool to solve
// concurrently against one shared, read-only Database.
type Job struct {
	Centroids     []Centroid
	Height, Width int
	Options       Options
}

/*****************************************************************************************************************/

// Pool solves many independent images against one Solver concurrently. The underlying
// Database is read-only after construction, so concurrent Solve calls share it freely; Pool
// only adds a bounded worker count on top of that.
type Pool struct {
	solver  *Solver
	workers int
}

/*****************************************************************************************************************/

// NewPool builds a Pool over solver with the given worker concurrency. workers <= 0 defaults
// to 1.
func NewPool(solver *Solver, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{solver: solver, workers: workers}
}

/*****************************************************************************************************************/

// SolveAll runs every job concurrently, bounded by the pool's worker count, and returns one
// Result per job in input order. It returns early with an error if ctx is canceled; no
// per-job failure is possible since Solver.Solve never itself returns an error (no-solution is
// a normal result, not an error).
func (p *Pool) SolveAll(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.solver.Solve(job.Centroids, job.Height, job.Width, job.Options)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

/*****************************************************************************************************************/
