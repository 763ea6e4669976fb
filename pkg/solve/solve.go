/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

// Package solve implements the online lost-in-space matcher: candidate pattern enumeration from
// image centroids, hash-table probing, Wahba/SVD pose estimation, and binomial mismatch
// verification.
package solve

/*****************************************************************************************************************/

import (
	"errors"
	"io"
	"log"
	"math"

	"github.com/nightwatch/platesolve/pkg/astrometry"
	"github.com/nightwatch/platesolve/pkg/catalogdb"
	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/spatial"
)

/*****************************************************************************************************************/

// ErrNoDatabase is returned by NewSolver when no loaded database is supplied: database faults
// are surfaced at construction time so solve calls never run in a "no database" state.
var ErrNoDatabase = errors.New("solve: no database loaded")

/*****************************************************************************************************************/

// Centroid is a single detected star position in (y, x) pixel coordinates. Inputs are assumed
// brightness-sorted, as produced by an upstream blob detector.
type Centroid struct {
	Y float64
	X float64
}

/*****************************************************************************************************************/

// Options configures a single solve call.
type Options struct {
	// PatternCheckingStars bounds how many of the brightest centroids participate in candidate
	// pattern enumeration. Defaults to 8 if zero.
	PatternCheckingStars int

	// FOVEstimate, in radians, seeds the trial FOV used for pinhole lift and gates FOV
	// refinement against FOVMaxError. Zero means "no estimate": the trial FOV is the midpoint
	// of the database's [min_fov, max_fov].
	FOVEstimate float64

	// FOVMaxError, in radians, is the maximum allowed deviation between FOVEstimate and a
	// candidate's refined FOV. Zero means "no bound".
	FOVMaxError float64

	// MatchRadius is the angular match tolerance as a fraction of the FOV. Defaults to 0.01.
	MatchRadius float64

	// MatchThreshold is the maximum acceptable mismatch probability. Defaults to 1e-9.
	MatchThreshold float64

	// CorrectReflection enables the det(R)=+1 reflection correction in the Wahba/SVD pose
	// solve. Off by default: mirrored candidates are then left with det(R)=-1 and rejected by
	// the pose parity gate. Either way a mirrored image does not solve; the flag only changes
	// where the rejection happens.
	CorrectReflection bool
}

/*****************************************************************************************************************/

const (
	defaultPatternCheckingStars = 8
	defaultMatchRadius          = 0.01
	defaultMatchThreshold       = 1e-9
)

/*****************************************************************************************************************/

func (o Options) withDefaults() Options {
	if o.PatternCheckingStars <= 0 {
		o.PatternCheckingStars = defaultPatternCheckingStars
	}
	if o.MatchRadius <= 0 {
		o.MatchRadius = defaultMatchRadius
	}
	if o.MatchThreshold <= 0 {
		o.MatchThreshold = defaultMatchThreshold
	}
	return o
}

/*****************************************************************************************************************/

// Result is the outcome of a solve call. On failure every astrometric field carries the
// astrometry "not-solved" sentinel; TSolveMS is always populated.
type Result struct {
	astrometry.Pointing

	RMSE     float64
	Matches  int
	Prob     float64
	TSolveMS float64
}

/*****************************************************************************************************************/

func unsolvedResult(elapsedMS float64) Result {
	return Result{Pointing: astrometry.Unsolved(), TSolveMS: elapsedMS, Prob: math.NaN()}
}

/*****************************************************************************************************************/

// Solver matches image centroids against a loaded database. A Solver's database is read-only
// after construction and safe to share across concurrently-running solves, the natural
// parallelization unit exercised by Pool.
type Solver struct {
	db     *catalogdb.Database
	index  *spatial.Index
	logger *log.Logger
}

/*****************************************************************************************************************/

// NewSolver builds a Solver over db, constructing the spatial index used for verification-star
// lookups once so it is shared read-only across concurrent Solve calls. logger receives
// diagnostic messages; a nil logger discards them.
func NewSolver(db *catalogdb.Database, logger *log.Logger) (*Solver, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	vectors := make([]geometry.Vector3, len(db.Stars))
	for i, s := range db.Stars {
		vectors[i] = s.Vector()
	}

	idx, err := spatial.NewIndex(vectors)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Solver{db: db, index: idx, logger: logger}, nil
}

/*****************************************************************************************************************/
