/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package catalog

/*****************************************************************************************************************/

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

/*****************************************************************************************************************/

const genericCatalogEpoch = 2000

/*****************************************************************************************************************/

// genericColumns names the header columns loadGenericCSV requires; pmra/pmdec are optional and
// default to zero when absent.
var genericColumns = struct {
	ra, dec, mag, pmra, pmdec string
}{
	ra:    "ra",
	dec:   "dec",
	mag:   "mag",
	pmra:  "pmra",
	pmdec: "pmdec",
}

/*****************************************************************************************************************/

// loadGenericCSV parses a header-indexed delimited catalog: column positions are resolved from
// the header row by name rather than assumed, so augmented exports with extra columns load
// unchanged.
func loadGenericCSV(path string, maxMagnitude float32) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCatalogFile, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCatalogFile, err)
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	raIdx, ok := colIdx[genericColumns.ra]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing required column %q", ErrCatalogFile, genericColumns.ra)
	}
	decIdx, ok := colIdx[genericColumns.dec]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing required column %q", ErrCatalogFile, genericColumns.dec)
	}
	magIdx, ok := colIdx[genericColumns.mag]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing required column %q", ErrCatalogFile, genericColumns.mag)
	}
	pmraIdx, hasPMRA := colIdx[genericColumns.pmra]
	pmdecIdx, hasPMDec := colIdx[genericColumns.pmdec]

	var result Result

	for {
		record, err := reader.Read()
		if err != nil {
			break
		}

		ra, err := parseFloatField(record, raIdx)
		if err != nil {
			result.Skipped++
			continue
		}

		dec, err := parseFloatField(record, decIdx)
		if err != nil {
			result.Skipped++
			continue
		}

		mag, err := parseFloatField(record, magIdx)
		if err != nil {
			result.Skipped++
			continue
		}

		if float32(mag) > maxMagnitude {
			continue
		}

		var pmRA, pmDec float64
		if hasPMRA {
			if v, err := parseFloatField(record, pmraIdx); err == nil {
				pmRA = v
			}
		}
		if hasPMDec {
			if v, err := parseFloatField(record, pmdecIdx); err == nil {
				pmDec = v
			}
		}

		result.Entries = append(result.Entries, Entry{
			RA:    degreesToRadians(ra),
			Dec:   degreesToRadians(dec),
			Mag:   float32(mag),
			PMRA:  degreesToRadians(pmRA / 1000 / 60 / 60),
			PMDec: degreesToRadians(pmDec / 1000 / 60 / 60),
			Epoch: genericCatalogEpoch,
		})
	}

	return result, nil
}

/*****************************************************************************************************************/

func parseFloatField(record []string, idx int) (float64, error) {
	if idx < 0 || idx >= len(record) {
		return 0, ErrMalformedEntry
	}

	v := strings.TrimSpace(record[idx])
	if v == "" {
		return 0, ErrMalformedEntry
	}

	return strconv.ParseFloat(v, 64)
}

/*****************************************************************************************************************/
