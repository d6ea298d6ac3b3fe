package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CatalogFile is the sqlite database kept in the data directory.
const CatalogFile = "runs.db"

// Catalog indexes persisted runs.
type Catalog struct {
	db   *sql.DB
	path string
}

// Entry is one catalog row.
type Entry struct {
	ID          string
	Timestamp   time.Time
	OutputDir   string
	Status      string
	Temperature float64
	Alpha       float64
	Steps       int
	FinalEnergy float64 // NaN when the run diverged
	FinalNorm   float64
}

// OpenCatalog opens or creates the catalog below dataDir.
func OpenCatalog(dataDir string) (*Catalog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(dataDir, CatalogFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// sweeps record from several goroutines
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs(
		id TEXT PRIMARY KEY,
		ts TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		status TEXT NOT NULL,
		t_param REAL NOT NULL,
		alpha REAL NOT NULL,
		steps INTEGER NOT NULL,
		final_energy REAL,
		final_norm REAL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init %s: %w", path, err)
	}

	return &Catalog{db: db, path: path}, nil
}

func (c *Catalog) Path() string { return c.path }

func (c *Catalog) Close() error { return c.db.Close() }

// Record inserts meta, replacing an earlier row with the same ID.
func (c *Catalog) Record(ctx context.Context, meta *RunMetadata) error {
	outputDir, err := filepath.Abs(meta.Config.OutputDir)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(id, ts, output_dir, status, t_param, alpha, steps, final_energy, final_norm)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		meta.ID,
		meta.Timestamp.UTC().Format(time.RFC3339Nano),
		outputDir,
		meta.Status,
		meta.Config.TParam,
		meta.Config.Alpha,
		meta.Steps,
		nullable(float64(meta.Summary.FinalEnergy)),
		nullable(float64(meta.Summary.FinalNorm)),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", meta.ID, err)
	}
	return nil
}

// List returns all entries, oldest first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, ts, output_dir, status, t_param, alpha, steps, final_energy, final_norm
		 FROM runs ORDER BY ts, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			ts     string
			energy sql.NullFloat64
			norm   sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &ts, &e.OutputDir, &e.Status,
			&e.Temperature, &e.Alpha, &e.Steps, &energy, &norm); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", e.ID, ts, err)
		}
		e.FinalEnergy = valueOrNaN(energy)
		e.FinalNorm = valueOrNaN(norm)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// sqlite has no NaN; non-finite values are stored as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func valueOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
