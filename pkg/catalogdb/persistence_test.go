/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package catalogdb

/*****************************************************************************************************************/

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nightwatch/platesolve/pkg/pattern"
	"github.com/nightwatch/platesolve/pkg/star"
)

/*****************************************************************************************************************/

func sampleDatabase() *Database {
	stars := []star.Star{
		star.New(0, 0, 1.0),
		star.New(0.1, 0.1, 2.5),
		star.New(0.2, -0.1, 4.0),
	}

	table := pattern.NewTable(1, 10)
	if err := table.Insert([5]int{1, 2, 3, 4, 5}, pattern.Pattern{0, 1, 2, 3}); err != nil {
		panic(err)
	}

	return &Database{
		Stars:    stars,
		Patterns: table,
		Properties: Properties{
			PatternMode:             "edge_ratio",
			PatternSize:             4,
			PatternBins:             10,
			PatternMaxError:         0.001,
			MaxFOV:                  0.3,
			MinFOV:                  0.05,
			StarCatalog:             "bsc5",
			PatternStarsPerFOV:      10,
			VerificationStarsPerFOV: 20,
			StarMaxMagnitude:        6.0,
			SimplifyPattern:         false,
		},
	}
}

/*****************************************************************************************************************/

func TestSaveLoadRoundTrip(t *testing.T) {
	db := sampleDatabase()

	path := filepath.Join(t.TempDir(), "test.platesolve.db")
	if err := Save(db, path, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.Stars) != len(db.Stars) {
		t.Fatalf("star count = %d; want %d", len(loaded.Stars), len(db.Stars))
	}

	for i := range db.Stars {
		if diff := loaded.Stars[i].RA - db.Stars[i].RA; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("star %d RA = %v; want %v", i, loaded.Stars[i].RA, db.Stars[i].RA)
		}
	}

	if loaded.Properties.PatternMode != "edge_ratio" {
		t.Errorf("PatternMode = %q; want %q", loaded.Properties.PatternMode, "edge_ratio")
	}
	if loaded.Properties.StarCatalog != "bsc5" {
		t.Errorf("StarCatalog = %q; want %q", loaded.Properties.StarCatalog, "bsc5")
	}
	if loaded.Properties.VerificationStarsPerFOV != 20 {
		t.Errorf("VerificationStarsPerFOV = %d; want 20", loaded.Properties.VerificationStarsPerFOV)
	}
	if loaded.Properties.BuildID == "" {
		t.Error("expected a non-empty BuildID to be stamped on save")
	}

	results, err := loaded.Patterns.Probe([5]int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	found := false
	for _, p := range results {
		if p == (pattern.Pattern{0, 1, 2, 3}) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected reloaded table to contain the saved pattern, got %v", results)
	}
}

/*****************************************************************************************************************/

// TestSaveLoadPreservesSlotZero pins a pattern into slot 0 of the hash table: slot positions
// must survive the round trip exactly, including the zeroth, or reloaded probe sequences
// diverge from the generator's.
func TestSaveLoadPreservesSlotZero(t *testing.T) {
	db := sampleDatabase()

	table := pattern.NewTable(1, 10)
	table.Slots()[0] = pattern.Pattern{0, 1, 2, 3}
	db.Patterns = table

	path := filepath.Join(t.TempDir(), "slot0.platesolve.db")
	if err := Save(db, path, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := loaded.Patterns.Slots()[0]; got != (pattern.Pattern{0, 1, 2, 3}) {
		t.Errorf("slot 0 after round trip = %v; want {0 1 2 3}", got)
	}
}

/*****************************************************************************************************************/
