/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

// Package generate wires the catalog loader, density thinner, pattern enumerator, and
// persistence packages into the offline database-build pipeline behind the `generate` CLI
// subcommand.
package generate

/*****************************************************************************************************************/

import (
	"fmt"
	"sort"
	"time"

	"github.com/nightwatch/platesolve/pkg/catalog"
	"github.com/nightwatch/platesolve/pkg/catalogdb"
	"github.com/nightwatch/platesolve/pkg/density"
	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/pattern"
	"github.com/nightwatch/platesolve/pkg/star"
	"github.com/spf13/cobra"
)

/*****************************************************************************************************************/

var (
	CatalogFormat           string
	InputFileLocation       string
	OutputFileLocation      string
	MaxFOV                  float64
	MinFOV                  float64
	PatternStarsPerFOV      int
	VerificationStarsPerFOV int
	StarMaxMagnitude        float32
	PatternMaxError         float64
	SimplifyPattern         bool
	RangeRA                 []float64
	RangeDec                []float64
)

/*****************************************************************************************************************/

var GenerateCommand = &cobra.Command{
	Use:   "generate",
	Short: "generate",
	Long:  "generate builds a pattern catalog database from a star catalog file",
	Run: func(cmd *cobra.Command, args []string) {
		params := RunGenerateParams{
			Catalog:                 catalog.Format(CatalogFormat),
			Input:                   InputFileLocation,
			Output:                  OutputFileLocation,
			MaxFOV:                  MaxFOV,
			MinFOV:                  MinFOV,
			PatternStarsPerFOV:      PatternStarsPerFOV,
			VerificationStarsPerFOV: VerificationStarsPerFOV,
			StarMaxMagnitude:        StarMaxMagnitude,
			PatternMaxError:         PatternMaxError,
			SimplifyPattern:         SimplifyPattern,
			RangeRA:                 RangeRA,
			RangeDec:                RangeDec,
		}

		if err := RunGenerate(params); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	},
}

/*****************************************************************************************************************/

func init() {
	GenerateCommand.Flags().StringVarP(&CatalogFormat, "catalog", "c", string(catalog.BSC5), "The star catalog format: bsc5, hip_main, tyc_main, or generic")
	GenerateCommand.MarkFlagRequired("catalog")

	GenerateCommand.Flags().StringVarP(&InputFileLocation, "input", "i", "", "The star catalog input file location")
	GenerateCommand.MarkFlagRequired("input")

	GenerateCommand.Flags().StringVarP(&OutputFileLocation, "output", "o", "./default_database.db.gz", "The output database archive location")

	GenerateCommand.Flags().Float64Var(&MaxFOV, "max-fov", 20, "The maximum field of view a pattern may span, in degrees")
	GenerateCommand.Flags().Float64Var(&MinFOV, "min-fov", 0, "The minimum tiered field of view for a multi-scale database, in degrees (0 means single-scale, equal to max-fov)")

	GenerateCommand.Flags().IntVar(&PatternStarsPerFOV, "pattern-stars-per-fov", 10, "The target number of pattern stars per field of view")
	GenerateCommand.Flags().IntVar(&VerificationStarsPerFOV, "verification-stars-per-fov", 30, "The target number of verification stars per field of view")

	GenerateCommand.Flags().Float32Var(&StarMaxMagnitude, "star-max-magnitude", 7, "The dimmest apparent magnitude of stars admitted into the database")
	GenerateCommand.Flags().Float64Var(&PatternMaxError, "pattern-max-error", 0.005, "The maximum per-element edge-ratio error tolerated when matching patterns")
	GenerateCommand.Flags().BoolVar(&SimplifyPattern, "simplify-pattern", false, "Center patterns on the pivot star for a faster, less symmetric database")

	GenerateCommand.Flags().Float64SliceVar(&RangeRA, "range-ra", nil, "An optional min,max right ascension range to admit stars from, in degrees")
	GenerateCommand.Flags().Float64SliceVar(&RangeDec, "range-dec", nil, "An optional min,max declination range to admit stars from, in degrees")
}

/*****************************************************************************************************************/

// RunGenerateParams configures a single database build, fields given in degrees for angular
// quantities to match the CLI surface; radians are used internally.
type RunGenerateParams struct {
	Catalog                 catalog.Format
	Input                   string
	Output                  string
	MaxFOV                  float64
	MinFOV                  float64
	PatternStarsPerFOV      int
	VerificationStarsPerFOV int
	StarMaxMagnitude        float32
	PatternMaxError         float64
	SimplifyPattern         bool

	// RangeRA and RangeDec optionally restrict the admitted stars to a min,max range in
	// degrees; nil means unrestricted.
	RangeRA  []float64
	RangeDec []float64
}

/*****************************************************************************************************************/

// RunGenerate executes the full offline pipeline: catalog loading, epoch propagation, density
// thinning into nested pattern/verification subsets, multi-scale pattern enumeration,
// edge-ratio hashing, and persistence.
func RunGenerate(params RunGenerateParams) error {
	if len(params.RangeRA) != 0 && len(params.RangeRA) != 2 {
		return fmt.Errorf("generate: --range-ra wants exactly two values (min,max), got %d", len(params.RangeRA))
	}
	if len(params.RangeDec) != 0 && len(params.RangeDec) != 2 {
		return fmt.Errorf("generate: --range-dec wants exactly two values (min,max), got %d", len(params.RangeDec))
	}

	result, err := catalog.Load(params.Catalog, params.Input, params.StarMaxMagnitude)
	if err != nil {
		return fmt.Errorf("generate: loading catalog: %w", err)
	}

	fmt.Printf("Parsed %d catalog entries (%d skipped)\n", len(result.Entries), result.Skipped)

	epochYear := decimalYear(time.Now())

	stars := make([]star.Star, 0, len(result.Entries))
	for _, e := range result.Entries {
		ra, dec := catalog.PropagateToEpoch(e, epochYear)
		if len(params.RangeRA) == 2 {
			if deg := geometry.Degrees(ra); deg < params.RangeRA[0] || deg > params.RangeRA[1] {
				continue
			}
		}
		if len(params.RangeDec) == 2 {
			if deg := geometry.Degrees(dec); deg < params.RangeDec[0] || deg > params.RangeDec[1] {
				continue
			}
		}
		stars = append(stars, star.New(ra, dec, e.Mag))
	}

	star.SortByMagnitude(stars)

	maxFOV := geometry.Radians(params.MaxFOV)
	minFOV := geometry.Radians(params.MinFOV)
	if minFOV <= 0 || minFOV > maxFOV {
		minFOV = maxFOV
	}

	bins := pattern.Bins(params.PatternMaxError)

	tierFOVs := pattern.TierFOVs(minFOV, maxFOV)

	// Iterate tiers from the widest field of view down to the narrowest: each successive tier
	// shrinks the thinning threshold, admitting newly eligible stars into the pattern-star
	// subset before enumerating patterns at that tier.
	patternSelected := make([]bool, len(stars))
	if len(stars) > 0 {
		patternSelected[0] = true
	}

	var patternIdx []int
	seenPatterns := make(map[pattern.Pattern]bool)
	var rawPatterns []pattern.Pattern

	for tier := len(tierFOVs) - 1; tier >= 0; tier-- {
		tierFOV := tierFOVs[tier]

		separation := density.Threshold(params.PatternStarsPerFOV, tierFOV)
		patternIdx = density.ThinFrom(stars, separation, patternSelected)
		patternSelected = density.MaskFromIndices(len(stars), patternIdx)

		fmt.Printf("Tier FOV %.4f°: %d pattern stars\n", geometry.Degrees(tierFOV), len(patternIdx))

		tierPatterns := pattern.Enumerate(stars, patternIdx, pattern.EnumerateOptions{
			PatternFOV:      tierFOV,
			SimplifyPattern: params.SimplifyPattern,
		})

		for _, p := range tierPatterns {
			if !seenPatterns[p] {
				seenPatterns[p] = true
				rawPatterns = append(rawPatterns, p)
			}
		}
	}

	fmt.Printf("Found %d patterns in total\n", len(rawPatterns))

	verificationSeparation := density.Threshold(params.VerificationStarsPerFOV, minFOV)
	verificationIdx := density.ThinFrom(stars, verificationSeparation, patternSelected)

	fmt.Printf("Total stars for verification: %d\n", len(verificationIdx))

	remap := make(map[int]int, len(verificationIdx))
	finalStars := make([]star.Star, len(verificationIdx))
	for newIdx, oldIdx := range verificationIdx {
		remap[oldIdx] = newIdx
		finalStars[newIdx] = stars[oldIdx]
	}

	finalPatterns := make([]pattern.Pattern, 0, len(rawPatterns))
	for _, p := range rawPatterns {
		remapped := [4]int{remap[p[0]], remap[p[1]], remap[p[2]], remap[p[3]]}
		sort.Ints(remapped[:])
		finalPatterns = append(finalPatterns, pattern.Pattern(remapped))
	}

	table := pattern.NewTable(len(finalPatterns), bins)
	for _, p := range finalPatterns {
		vectors := [4]geometry.Vector3{
			finalStars[p[0]].Vector(),
			finalStars[p[1]].Vector(),
			finalStars[p[2]].Vector(),
			finalStars[p[3]].Vector(),
		}
		ratios, _ := pattern.EdgeRatios(vectors)
		key := pattern.Quantize(ratios, bins)
		if err := table.Insert(key, p); err != nil {
			return fmt.Errorf("generate: inserting pattern: %w", err)
		}
	}

	props := catalogdb.Properties{
		PatternMode:             "edge_ratio",
		PatternSize:             4,
		PatternBins:             bins,
		PatternMaxError:         params.PatternMaxError,
		MaxFOV:                  maxFOV,
		MinFOV:                  minFOV,
		StarCatalog:             string(params.Catalog),
		PatternStarsPerFOV:      params.PatternStarsPerFOV,
		VerificationStarsPerFOV: params.VerificationStarsPerFOV,
		StarMaxMagnitude:        params.StarMaxMagnitude,
		SimplifyPattern:         params.SimplifyPattern,
	}
	if len(params.RangeRA) == 2 {
		props.HasRangeRA = true
		props.RangeRA = [2]float32{float32(params.RangeRA[0]), float32(params.RangeRA[1])}
	}
	if len(params.RangeDec) == 2 {
		props.HasRangeDec = true
		props.RangeDec = [2]float32{float32(params.RangeDec[0]), float32(params.RangeDec[1])}
	}

	db := &catalogdb.Database{
		Stars:      finalStars,
		Patterns:   table,
		Properties: props,
	}

	if err := catalogdb.Save(db, params.Output, time.Now()); err != nil {
		return fmt.Errorf("generate: saving database: %w", err)
	}

	fmt.Printf("Database saved to: %s\n", params.Output)

	return nil
}

/*****************************************************************************************************************/

// decimalYear converts t to a decimal-year epoch (e.g. 2026.58), matching the representation
// catalog.Entry.Epoch and PropagateToEpoch use.
func decimalYear(t time.Time) float64 {
	year := t.Year()
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
	frac := float64(t.Sub(start)) / float64(end.Sub(start))
	return float64(year) + frac
}

/*****************************************************************************************************************/
