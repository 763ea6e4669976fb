/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package catalog

/*****************************************************************************************************************/

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

/*****************************************************************************************************************/

func writeBSC5Fixture(t *testing.T, entries int) string {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(make([]byte, bsc5HeaderLength))

	for i := 0; i < bsc5EntryCount; i++ {
		var rec bsc5Record
		if i < entries {
			rec = bsc5Record{
				ID:      float32(i),
				RA1950:  0.1 + float64(i)*0.01,
				Dec1950: 0.2 + float64(i)*0.01,
				Mag:     int16(250 + i*100),
			}
		}
		binary.Write(&buf, binary.LittleEndian, rec.ID)
		binary.Write(&buf, binary.LittleEndian, rec.RA1950)
		binary.Write(&buf, binary.LittleEndian, rec.Dec1950)
		binary.Write(&buf, binary.LittleEndian, rec.SpectralID)
		binary.Write(&buf, binary.LittleEndian, rec.Mag)
		binary.Write(&buf, binary.LittleEndian, rec.RAProperMotion)
		binary.Write(&buf, binary.LittleEndian, rec.DecProperMotion)
	}

	path := filepath.Join(t.TempDir(), "bsc5.dat")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

/*****************************************************************************************************************/

func TestLoadBSC5(t *testing.T) {
	path := writeBSC5Fixture(t, 3)

	result, err := Load(BSC5, path, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(result.Entries) != 3 {
		t.Fatalf("expected 3 entries (the rest are zeroed and skipped), got %d", len(result.Entries))
	}

	if result.Entries[0].Epoch != bsc5RecordEpoch {
		t.Errorf("expected epoch %v, got %v", bsc5RecordEpoch, result.Entries[0].Epoch)
	}
}

/*****************************************************************************************************************/

func TestLoadBSC5MagnitudeCutoff(t *testing.T) {
	path := writeBSC5Fixture(t, 3)

	// Entry 0 has mag 2.50, entry 1 has 3.50, entry 2 has 4.50.
	result, err := Load(BSC5, path, 3.0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry below the magnitude cutoff, got %d", len(result.Entries))
	}
}

/*****************************************************************************************************************/

func hipLine(mag, raDeg, decDeg, pmRAMas, pmDecMas string) string {
	fields := make([]string, hipMinFields)
	for i := range fields {
		fields[i] = "0"
	}
	fields[hipFieldMag] = mag
	fields[hipFieldRA] = raDeg
	fields[hipFieldDec] = decDeg
	fields[hipFieldPMRA] = pmRAMas
	fields[hipFieldPMDec] = pmDecMas
	return strings.Join(fields, "|")
}

/*****************************************************************************************************************/

func TestLoadHipMain(t *testing.T) {
	lines := []string{
		hipLine("2.50", "10.5", "-20.25", "15.0", "-3.0"),
		hipLine("", "11.0", "21.0", "1.0", "1.0"), // missing magnitude, must be skipped
		hipLine("9.90", "12.0", "22.0", "1.0", "1.0"),
	}

	path := filepath.Join(t.TempDir(), "hip_main.dat")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	result, err := Load(HipMain, path, 20)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 parsed entries, got %d", len(result.Entries))
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped entry, got %d", result.Skipped)
	}

	wantRA := 10.5 * math.Pi / 180
	if diff := result.Entries[0].RA - wantRA; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("RA = %v, want %v", result.Entries[0].RA, wantRA)
	}
	if result.Entries[0].Epoch != hipparcosEpoch {
		t.Errorf("epoch = %v, want %v", result.Entries[0].Epoch, hipparcosEpoch)
	}
}

/*****************************************************************************************************************/

func TestLoadHipMainMagnitudeCutoff(t *testing.T) {
	lines := []string{
		hipLine("2.50", "10.5", "-20.25", "15.0", "-3.0"),
		hipLine("9.90", "12.0", "22.0", "1.0", "1.0"),
	}

	path := filepath.Join(t.TempDir(), "hip_main.dat")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	result, err := Load(HipMain, path, 5.0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry below cutoff, got %d", len(result.Entries))
	}
}

/*****************************************************************************************************************/

func TestLoadGenericCSV(t *testing.T) {
	content := "ra,dec,mag,pmra,pmdec\n" +
		"10.0,20.0,3.5,5.0,-5.0\n" +
		"11.0,21.0,12.0,0,0\n" +
		",22.0,4.0,0,0\n"

	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	result, err := Load(Generic, path, 6.0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry (row 2 too faint, row 3 malformed), got %d", len(result.Entries))
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped malformed row, got %d", result.Skipped)
	}
}

/*****************************************************************************************************************/

func TestPropagateToEpoch(t *testing.T) {
	e := Entry{RA: 1.0, Dec: 0.5, PMRA: 0.01, PMDec: -0.02, Epoch: 2000}

	ra, dec := PropagateToEpoch(e, 2010)

	if got, want := ra, 1.0+0.01*10; got != want {
		t.Errorf("RA = %v, want %v", got, want)
	}
	if got, want := dec, 0.5-0.02*10; got != want {
		t.Errorf("Dec = %v, want %v", got, want)
	}
}

/*****************************************************************************************************************/

func TestLoadUnknownFormat(t *testing.T) {
	if _, err := Load(Format("nonsense"), "irrelevant", 10); err != ErrUnknownFormat {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

/*****************************************************************************************************************/
