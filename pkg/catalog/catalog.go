/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

// Package catalog parses the recognized star catalog input formats: the Yale Bright Star
// Catalog binary format (bsc5), the Hipparcos/Tycho pipe-delimited ASCII formats (hip_main,
// tyc_main), and a generic header-indexed delimited format for augmented sources.
package catalog

/*****************************************************************************************************************/

import "errors"

/*****************************************************************************************************************/

var (
	// ErrUnknownFormat is returned for a Format value with no registered loader.
	ErrUnknownFormat = errors.New("catalog: unknown format")

	// ErrCatalogFile wraps failures opening or reading a catalog file.
	ErrCatalogFile = errors.New("catalog: unable to read catalog file")

	// ErrMalformedEntry is returned by per-format parsers for a single corrupt record; loaders
	// count and skip these rather than aborting.
	ErrMalformedEntry = errors.New("catalog: malformed entry")
)

/*****************************************************************************************************************/

// Format identifies one of the recognized star catalog input formats.
type Format string

/*****************************************************************************************************************/

const (
	BSC5    Format = "bsc5"
	HipMain Format = "hip_main"
	TycMain Format = "tyc_main"
	Generic Format = "generic"
)

/*****************************************************************************************************************/

// Entry is a catalog record prior to epoch propagation: ra/dec in radians at Epoch, proper
// motion in radians/year, and magnitude.
type Entry struct {
	RA    float64
	Dec   float64
	Mag   float32
	PMRA  float64
	PMDec float64
	Epoch float64
}

/*****************************************************************************************************************/

// Result is the outcome of loading a catalog file: the parsed entries and a count of entries
// skipped for missing required fields.
type Result struct {
	Entries []Entry
	Skipped int
}

/*****************************************************************************************************************/

// Load dispatches to the parser for format, applying maxMagnitude as an inclusive brightness
// cutoff during parsing (entries fainter than maxMagnitude are dropped, not merely skipped).
func Load(format Format, path string, maxMagnitude float32) (Result, error) {
	switch format {
	case BSC5:
		return loadBSC5(path, maxMagnitude)
	case HipMain, TycMain:
		return loadHipparcosFormat(path, maxMagnitude)
	case Generic:
		return loadGenericCSV(path, maxMagnitude)
	default:
		return Result{}, ErrUnknownFormat
	}
}

/*****************************************************************************************************************/

// PropagateToEpoch returns e's position advanced to targetYear (a decimal year) by linear
// proper motion: ra + pmRA*(targetYear - epoch), likewise for dec.
func PropagateToEpoch(e Entry, targetYear float64) (ra, dec float64) {
	dt := targetYear - e.Epoch
	return e.RA + e.PMRA*dt, e.Dec + e.PMDec*dt
}

/*****************************************************************************************************************/
