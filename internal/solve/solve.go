/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

// Package solve wires catalogdb.Load and pkg/solve.Solver into the online `solve` CLI
// subcommand: read centroids, solve, and report the astrometric result.
package solve

/*****************************************************************************************************************/

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/nightwatch/platesolve/pkg/catalogdb"
	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/solve"
	"github.com/spf13/cobra"
)

/*****************************************************************************************************************/

var (
	DatabaseFileLocation  string
	CentroidsFileLocation string
	OutputFileLocation    string
	Height                int
	Width                 int
	PatternCheckingStars  int
	FOVEstimate           float64
	FOVMaxError           float64
	MatchRadius           float64
	MatchThreshold        float64
	CorrectReflection     bool
)

/*****************************************************************************************************************/

var SolveCommand = &cobra.Command{
	Use:   "solve",
	Short: "solve",
	Long:  "solve performs a lost-in-space plate solve against a set of image centroids",
	Run: func(cmd *cobra.Command, args []string) {
		params := RunSolveParams{
			Database:             DatabaseFileLocation,
			Centroids:            CentroidsFileLocation,
			Output:               OutputFileLocation,
			Height:               Height,
			Width:                Width,
			PatternCheckingStars: PatternCheckingStars,
			FOVEstimate:          FOVEstimate,
			FOVMaxError:          FOVMaxError,
			MatchRadius:          MatchRadius,
			MatchThreshold:       MatchThreshold,
			CorrectReflection:    CorrectReflection,
		}

		if err := RunSolve(params); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	},
}

/*****************************************************************************************************************/

func init() {
	SolveCommand.Flags().StringVarP(&DatabaseFileLocation, "database", "d", "", "The pattern catalog database archive location")
	SolveCommand.MarkFlagRequired("database")

	SolveCommand.Flags().StringVarP(&CentroidsFileLocation, "centroids", "c", "", "A JSON file of brightness-sorted {x,y} pixel centroids")
	SolveCommand.MarkFlagRequired("centroids")

	SolveCommand.Flags().StringVarP(&OutputFileLocation, "output", "o", "", "Optional output file location to write the solved result as JSON")

	SolveCommand.Flags().IntVar(&Height, "height", 0, "The image height, in pixels")
	SolveCommand.MarkFlagRequired("height")

	SolveCommand.Flags().IntVar(&Width, "width", 0, "The image width, in pixels")
	SolveCommand.MarkFlagRequired("width")

	SolveCommand.Flags().IntVar(&PatternCheckingStars, "pattern-checking-stars", 8, "How many of the brightest centroids participate in candidate pattern enumeration")
	SolveCommand.Flags().Float64Var(&FOVEstimate, "fov-estimate", 0, "An approximate field of view, in degrees (0 means none)")
	SolveCommand.Flags().Float64Var(&FOVMaxError, "fov-max-error", 0, "The maximum allowed deviation between fov-estimate and a candidate's refined FOV, in degrees (0 means unbounded)")
	SolveCommand.Flags().Float64Var(&MatchRadius, "match-radius", 0.01, "The angular match tolerance, as a fraction of the field of view")
	SolveCommand.Flags().Float64Var(&MatchThreshold, "match-threshold", 1e-9, "The maximum acceptable mismatch probability")
	SolveCommand.Flags().BoolVar(&CorrectReflection, "correct-reflection", false, "Apply the det(R)=+1 reflection correction instead of rejecting reflected pose candidates outright")
}

/*****************************************************************************************************************/

// centroidRecord is the JSON shape of one entry of the centroids input file, as produced by
// an upstream centroid extractor.
type centroidRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

/*****************************************************************************************************************/

// RunSolveParams configures a single CLI solve invocation, angles in degrees to match the CLI
// surface.
type RunSolveParams struct {
	Database             string
	Centroids            string
	Output               string
	Height, Width        int
	PatternCheckingStars int
	FOVEstimate          float64
	FOVMaxError          float64
	MatchRadius          float64
	MatchThreshold       float64
	CorrectReflection    bool
}

/*****************************************************************************************************************/

// RunSolve loads the database and centroids named by params, runs the solve, and prints (and
// optionally writes) the result.
func RunSolve(params RunSolveParams) error {
	db, err := catalogdb.Load(params.Database)
	if err != nil {
		return fmt.Errorf("solve: loading database: %w", err)
	}

	fmt.Printf("Loaded database: %d stars, %d pattern slots\n", len(db.Stars), db.Patterns.Len())

	raw, err := os.ReadFile(params.Centroids)
	if err != nil {
		return fmt.Errorf("solve: reading centroids file: %w", err)
	}

	var records []centroidRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("solve: parsing centroids file: %w", err)
	}

	centroids := make([]solve.Centroid, len(records))
	for i, r := range records {
		centroids[i] = solve.Centroid{X: r.X, Y: r.Y}
	}

	logger := log.New(os.Stderr, "platesolve: ", log.LstdFlags)

	solver, err := solve.NewSolver(db, logger)
	if err != nil {
		return fmt.Errorf("solve: constructing solver: %w", err)
	}

	opts := solve.Options{
		PatternCheckingStars: params.PatternCheckingStars,
		MatchRadius:          params.MatchRadius,
		MatchThreshold:       params.MatchThreshold,
		CorrectReflection:    params.CorrectReflection,
	}
	if params.FOVEstimate > 0 {
		opts.FOVEstimate = geometry.Radians(params.FOVEstimate)
	}
	if params.FOVMaxError > 0 {
		opts.FOVMaxError = geometry.Radians(params.FOVMaxError)
	}

	result := solver.Solve(centroids, params.Height, params.Width, opts)

	if !result.IsSolved() {
		fmt.Printf("No solution found (%.2fms elapsed)\n", result.TSolveMS)
	} else {
		fmt.Printf("RA: %.6f°  Dec: %.6f°  Roll: %.6f°  FOV: %.6f°\n", result.RA, result.Dec, result.Roll, result.FOV)
		fmt.Printf("Matches: %d  RMSE: %.3f\"  Prob: %g  Solved in %.2fms\n", result.Matches, result.RMSE, result.Prob, result.TSolveMS)
	}

	if params.Output != "" {
		out, err := os.Create(params.Output)
		if err != nil {
			return fmt.Errorf("solve: creating output file: %w", err)
		}
		defer out.Close()

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "\t")
		if err := encoder.Encode(newResultRecord(result)); err != nil {
			return fmt.Errorf("solve: writing output file: %w", err)
		}
	}

	return nil
}

/*****************************************************************************************************************/

// resultRecord is the JSON shape of a written solve result. Astrometric fields are pointers so
// a no-solution result serializes its NaN sentinels as nulls, which encoding/json can actually
// emit.
type resultRecord struct {
	RA       *float64 `json:"ra"`
	Dec      *float64 `json:"dec"`
	Roll     *float64 `json:"roll"`
	FOV      *float64 `json:"fov"`
	RMSE     *float64 `json:"rmse"`
	Matches  int      `json:"matches"`
	Prob     *float64 `json:"prob"`
	TSolveMS float64  `json:"t_solve_ms"`
}

/*****************************************************************************************************************/

func newResultRecord(result solve.Result) resultRecord {
	record := resultRecord{Matches: result.Matches, TSolveMS: result.TSolveMS}

	if result.IsSolved() {
		record.RA = &result.RA
		record.Dec = &result.Dec
		record.Roll = &result.Roll
		record.FOV = &result.FOV
		record.RMSE = &result.RMSE
		record.Prob = &result.Prob
	}

	return record
}

/*****************************************************************************************************************/
