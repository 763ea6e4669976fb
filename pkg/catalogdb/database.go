/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

// Package catalogdb persists the star table, pattern catalog, and database properties produced
// by pattern catalog construction into a single gzip-compressed SQLite archive.
package catalogdb

/*****************************************************************************************************************/

import (
	"github.com/nightwatch/platesolve/pkg/pattern"
	"github.com/nightwatch/platesolve/pkg/star"
)

/*****************************************************************************************************************/

// Properties are the immutable database properties, fixed at generation time and carried
// unchanged through save/load.
type Properties struct {
	PatternMode             string
	PatternSize             int
	PatternBins             int
	PatternMaxError         float64
	MaxFOV                  float64
	MinFOV                  float64
	StarCatalog             string
	PatternStarsPerFOV      int
	VerificationStarsPerFOV int
	StarMaxMagnitude        float32
	SimplifyPattern         bool
	HasRangeRA              bool
	RangeRA                 [2]float32
	HasRangeDec             bool
	RangeDec                [2]float32

	// BuildID is a ULID stamped at generation time for provenance/logging.
	BuildID string
}

/*****************************************************************************************************************/

// Database is the in-memory unit a generator produces and a solver loads: the star table, the
// pattern catalog, and the properties record.
type Database struct {
	Stars      []star.Star
	Patterns   *pattern.Table
	Properties Properties
}

/*****************************************************************************************************************/
