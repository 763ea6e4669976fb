/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package catalog

/*****************************************************************************************************************/

import (
	"encoding/binary"
	"fmt"
	"os"
)

/*****************************************************************************************************************/

// bsc5HeaderLength and bsc5EntryCount are the fixed 28-byte header and 9,110-entry record count
// of the Yale Bright Star Catalog byte-format file.
const (
	bsc5HeaderLength = 28
	bsc5EntryCount   = 9110
	bsc5RecordEpoch  = 1950
)

/*****************************************************************************************************************/

// bsc5Record mirrors one 32-byte on-disk record of the BSC5 byte-format file: a float32 star
// ID, two float64 B1950 coordinates (already in radians), an int16 spectral type code, an int16
// magnitude (hundredths of a magnitude), and two float32 proper-motion rates in radians/year.
type bsc5Record struct {
	ID              float32
	RA1950          float64
	Dec1950         float64
	SpectralID      int16
	Mag             int16
	RAProperMotion  float32
	DecProperMotion float32
}

/*****************************************************************************************************************/

func loadBSC5(path string, maxMagnitude float32) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCatalogFile, err)
	}
	defer f.Close()

	if _, err := f.Seek(bsc5HeaderLength, 0); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCatalogFile, err)
	}

	result := Result{Entries: make([]Entry, 0, bsc5EntryCount)}

	for i := 0; i < bsc5EntryCount; i++ {
		rec, err := readBSC5Record(f)
		if err != nil {
			result.Skipped++
			continue
		}

		mag := float32(rec.Mag) / 100

		if mag > maxMagnitude {
			continue
		}

		if rec.RA1950 == 0 && rec.Dec1950 == 0 {
			result.Skipped++
			continue
		}

		result.Entries = append(result.Entries, Entry{
			RA:    rec.RA1950,
			Dec:   rec.Dec1950,
			Mag:   mag,
			PMRA:  float64(rec.RAProperMotion),
			PMDec: float64(rec.DecProperMotion),
			Epoch: bsc5RecordEpoch,
		})
	}

	return result, nil
}

/*****************************************************************************************************************/

func readBSC5Record(f *os.File) (bsc5Record, error) {
	var rec bsc5Record

	if err := binary.Read(f, binary.LittleEndian, &rec.ID); err != nil {
		return rec, err
	}
	if err := binary.Read(f, binary.LittleEndian, &rec.RA1950); err != nil {
		return rec, err
	}
	if err := binary.Read(f, binary.LittleEndian, &rec.Dec1950); err != nil {
		return rec, err
	}
	if err := binary.Read(f, binary.LittleEndian, &rec.SpectralID); err != nil {
		return rec, err
	}
	if err := binary.Read(f, binary.LittleEndian, &rec.Mag); err != nil {
		return rec, err
	}
	if err := binary.Read(f, binary.LittleEndian, &rec.RAProperMotion); err != nil {
		return rec, err
	}
	if err := binary.Read(f, binary.LittleEndian, &rec.DecProperMotion); err != nil {
		return rec, err
	}

	return rec, nil
}

/*****************************************************************************************************************/
