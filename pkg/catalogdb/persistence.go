/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package catalogdb

/*****************************************************************************************************************/

import (
	"compress/gzip"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nightwatch/platesolve/pkg/pattern"
	"github.com/nightwatch/platesolve/pkg/star"
	"github.com/oklog/ulid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*****************************************************************************************************************/

// ErrNoProperties is returned when an archive's props_packed table has no row.
var ErrNoProperties = errors.New("catalogdb: archive has no properties row")

/*****************************************************************************************************************/

// starRow is the gorm model backing star_table: one row per star, six float32 columns
// [ra, dec, x, y, z, mag], ra/dec in radians.
type starRow struct {
	ID  uint `gorm:"primaryKey"`
	RA  float32
	Dec float32
	X   float32
	Y   float32
	Z   float32
	Mag float32
}

/*****************************************************************************************************************/

func (starRow) TableName() string { return "star_table" }

/*****************************************************************************************************************/

// patternRow is the gorm model backing pattern_catalog: one row per occupied hash-table slot,
// four star-table indices per row.
type patternRow struct {
	ID uint `gorm:"primaryKey"`
	A  uint32
	B  uint32
	C  uint32
	D  uint32
}

/*****************************************************************************************************************/

func (patternRow) TableName() string { return "pattern_catalog" }

/*****************************************************************************************************************/

// propsRow is the gorm model backing props_packed, a single-row table of database properties.
type propsRow struct {
	ID                      uint   `gorm:"primaryKey"`
	PatternMode             string `gorm:"size:64"`
	PatternSize             int
	PatternBins             int
	PatternMaxError         float32
	MaxFOV                  float32
	MinFOV                  float32
	StarCatalog             string `gorm:"size:64"`
	PatternStarsPerFOV      uint16
	VerificationStarsPerFOV uint16
	StarMaxMagnitude        float32
	SimplifyPattern         bool
	HasRangeRA              bool
	RangeRAMin              float32
	RangeRAMax              float32
	HasRangeDec             bool
	RangeDecMin             float32
	RangeDecMax             float32
	BuildID                 string
}

/*****************************************************************************************************************/

func (propsRow) TableName() string { return "props_packed" }

/*****************************************************************************************************************/

// newBuildID stamps a generation-time ULID provenance identifier.
func newBuildID(t time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(t), rand.Reader)
	return id.String()
}

/*****************************************************************************************************************/

// Save writes db to path as a single gzip-compressed SQLite archive. Generation time is supplied
// by the caller and becomes the timestamp part of the BuildID ULID; the ULID's entropy part is
// drawn from crypto/rand, so two saves with the same timestamp still get different BuildIDs.
func Save(db *Database, path string, generatedAt time.Time) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "platesolve-db-*.sqlite")
	if err != nil {
		return fmt.Errorf("catalogdb: creating temp archive: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	gdb, err := gorm.Open(sqlite.Open(tmpPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("catalogdb: opening archive: %w", err)
	}

	if err := gdb.AutoMigrate(&starRow{}, &patternRow{}, &propsRow{}); err != nil {
		return fmt.Errorf("catalogdb: migrating schema: %w", err)
	}

	starRows := make([]starRow, len(db.Stars))
	for i, s := range db.Stars {
		starRows[i] = starRow{
			// gorm treats a zero-value primary key as "let the database assign one", so star
			// indices are offset by one on disk; order is preserved by sorting on id ascending.
			ID:  uint(i + 1),
			RA:  float32(s.RA),
			Dec: float32(s.Dec),
			X:   float32(s.X),
			Y:   float32(s.Y),
			Z:   float32(s.Z),
			Mag: s.Mag,
		}
	}
	if len(starRows) > 0 {
		if err := gdb.CreateInBatches(starRows, 500).Error; err != nil {
			return fmt.Errorf("catalogdb: writing star_table: %w", err)
		}
	}

	slots := db.Patterns.Slots()
	patternRows := make([]patternRow, 0, len(slots))
	for i, p := range slots {
		if p == (pattern.Pattern{}) {
			continue
		}
		// Slot indices are offset by one on disk for the same zero-primary-key reason as
		// star_table: slot 0 is a legal occupied position, but gorm would auto-assign an id of 0.
		patternRows = append(patternRows, patternRow{ID: uint(i + 1), A: uint32(p[0]), B: uint32(p[1]), C: uint32(p[2]), D: uint32(p[3])})
	}
	if len(patternRows) > 0 {
		if err := gdb.CreateInBatches(patternRows, 500).Error; err != nil {
			return fmt.Errorf("catalogdb: writing pattern_catalog: %w", err)
		}
	}

	props := db.Properties
	props.BuildID = newBuildID(generatedAt)

	row := propsRow{
		ID:                      1,
		PatternMode:             props.PatternMode,
		PatternSize:             props.PatternSize,
		PatternBins:             props.PatternBins,
		PatternMaxError:         float32(props.PatternMaxError),
		MaxFOV:                  float32(props.MaxFOV),
		MinFOV:                  float32(props.MinFOV),
		StarCatalog:             props.StarCatalog,
		PatternStarsPerFOV:      uint16(props.PatternStarsPerFOV),
		VerificationStarsPerFOV: uint16(props.VerificationStarsPerFOV),
		StarMaxMagnitude:        props.StarMaxMagnitude,
		SimplifyPattern:         props.SimplifyPattern,
		HasRangeRA:              props.HasRangeRA,
		RangeRAMin:              props.RangeRA[0],
		RangeRAMax:              props.RangeRA[1],
		HasRangeDec:             props.HasRangeDec,
		RangeDecMin:             props.RangeDec[0],
		RangeDecMax:             props.RangeDec[1],
		BuildID:                 props.BuildID,
	}
	if err := gdb.Create(&row).Error; err != nil {
		return fmt.Errorf("catalogdb: writing props_packed: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("catalogdb: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("catalogdb: closing archive: %w", err)
	}

	return compressFile(tmpPath, path)
}

/*****************************************************************************************************************/

// Load reads a gzip-compressed SQLite archive written by Save, reconstructing the star table,
// pattern catalog, and properties. The legacy property columns `catalog_stars_per_fov` and
// `star_min_magnitude` are honored when their current counterparts are absent.
func Load(path string) (*Database, error) {
	tmpFile, err := os.CreateTemp("", "platesolve-db-*.sqlite")
	if err != nil {
		return nil, fmt.Errorf("catalogdb: creating temp archive: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := decompressFile(path, tmpPath); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.Open(tmpPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("catalogdb: opening archive: %w", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var starRows []starRow
	if err := gdb.Order("id asc").Find(&starRows).Error; err != nil {
		return nil, fmt.Errorf("catalogdb: reading star_table: %w", err)
	}

	stars := make([]star.Star, len(starRows))
	for i, r := range starRows {
		s := star.New(float64(r.RA), float64(r.Dec), r.Mag)
		s.X, s.Y, s.Z = float64(r.X), float64(r.Y), float64(r.Z)
		stars[i] = s
	}

	var patternRows []patternRow
	if err := gdb.Order("id asc").Find(&patternRows).Error; err != nil {
		return nil, fmt.Errorf("catalogdb: reading pattern_catalog: %w", err)
	}

	props, err := loadProperties(gdb)
	if err != nil {
		return nil, err
	}

	// The fingerprint key that hashed each pattern to its slot isn't itself stored on disk (only
	// the resolved star indices are); a reloaded table's slots are populated directly by index so
	// Probe's quadratic-probe sequence still finds them from a freshly computed key.
	table := pattern.NewTable(len(patternRows), props.PatternBins)
	slots := table.Slots()
	for _, r := range patternRows {
		slot := int(r.ID) - 1
		if slot >= 0 && slot < len(slots) {
			slots[slot] = pattern.Pattern{int(r.A), int(r.B), int(r.C), int(r.D)}
		}
	}

	return &Database{Stars: stars, Patterns: table, Properties: props}, nil
}

/*****************************************************************************************************************/

func loadProperties(gdb *gorm.DB) (Properties, error) {
	rows, err := gdb.Table("props_packed").Limit(1).Rows()
	if err != nil {
		return Properties{}, fmt.Errorf("catalogdb: reading props_packed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Properties{}, fmt.Errorf("catalogdb: %w", err)
	}

	if !rows.Next() {
		return Properties{}, ErrNoProperties
	}

	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return Properties{}, fmt.Errorf("catalogdb: %w", err)
	}

	field := make(map[string]interface{}, len(columns))
	for i, col := range columns {
		field[col] = values[i]
	}

	var props Properties
	props.PatternMode, _ = field["pattern_mode"].(string)
	props.PatternSize = intField(field, "pattern_size")
	props.PatternBins = intField(field, "pattern_bins")
	props.PatternMaxError = float64Field(field, "pattern_max_error")
	props.MaxFOV = float64Field(field, "max_fov")
	props.MinFOV = float64Field(field, "min_fov")
	props.StarCatalog, _ = field["star_catalog"].(string)
	props.PatternStarsPerFOV = intField(field, "pattern_stars_per_fov")
	props.SimplifyPattern = boolField(field, "simplify_pattern")
	props.HasRangeRA = boolField(field, "has_range_ra")
	props.RangeRA = [2]float32{float32(float64Field(field, "range_ra_min")), float32(float64Field(field, "range_ra_max"))}
	props.HasRangeDec = boolField(field, "has_range_dec")
	props.RangeDec = [2]float32{float32(float64Field(field, "range_dec_min")), float32(float64Field(field, "range_dec_max"))}
	props.BuildID, _ = field["build_id"].(string)

	// Legacy column fallbacks: `catalog_stars_per_fov` → `verification_stars_per_fov`;
	// `star_min_magnitude` → `star_max_magnitude`.
	if v, ok := field["verification_stars_per_fov"]; ok && v != nil {
		props.VerificationStarsPerFOV = intField(field, "verification_stars_per_fov")
	} else {
		props.VerificationStarsPerFOV = intField(field, "catalog_stars_per_fov")
	}

	if v, ok := field["star_max_magnitude"]; ok && v != nil {
		props.StarMaxMagnitude = float32(float64Field(field, "star_max_magnitude"))
	} else {
		props.StarMaxMagnitude = float32(float64Field(field, "star_min_magnitude"))
	}

	return props, nil
}

/*****************************************************************************************************************/

func intField(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

/*****************************************************************************************************************/

func float64Field(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

/*****************************************************************************************************************/

func boolField(m map[string]interface{}, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	default:
		return false
	}
}

/*****************************************************************************************************************/

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("catalogdb: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("catalogdb: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		return fmt.Errorf("catalogdb: compressing archive: %w", err)
	}
	return gz.Close()
}

/*****************************************************************************************************************/

func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("catalogdb: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("catalogdb: not a gzip archive: %w", err)
	}
	defer gz.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("catalogdb: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, gz); err != nil {
		return fmt.Errorf("catalogdb: decompressing archive: %w", err)
	}
	return nil
}

/*****************************************************************************************************************/
