// Package history records decoded telemetry to a local database, one row
// per second, together with the decoder's discard counter. Purely an
// observability aid; the runtime never reads it back.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/mikkl/hwmond/internal/errors"
	"codeberg.org/mikkl/hwmond/internal/telemetry"
)

const defaultDirPerm = 0o755

// Sample is one recorded observation of the runtime state.
type Sample struct {
	Timestamp time.Time
	Telemetry telemetry.Record
	Live      bool
	Mode      string
	Discarded uint64
}

type Repository interface {
	Record(ctx context.Context, sample *Sample) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(dbPath string) (Repository, error) {
	errFactory := errors.New()

	if dbPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return nil, errFactory.Wrap(ErrStorageInit, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()

		return nil, err
	}

	return &sqliteRepository{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            timestamp INTEGER PRIMARY KEY,
            cpu INTEGER,
            gpu INTEGER,
            ram INTEGER,
            cpu_temp INTEGER,
            gpu_temp INTEGER,
            fps INTEGER,
            cpu_clk INTEGER,
            gpu_clk INTEGER,
            live INTEGER,
            mode TEXT,
            discarded INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}

func (r *sqliteRepository) Record(ctx context.Context, sample *Sample) error {
	errFactory := errors.New()

	if sample == nil {
		return errFactory.New(errors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hw := sample.Telemetry
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO samples (
            timestamp, cpu, gpu, ram, cpu_temp, gpu_temp,
            fps, cpu_clk, gpu_clk, live, mode, discarded
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            cpu = excluded.cpu,
            gpu = excluded.gpu,
            ram = excluded.ram,
            cpu_temp = excluded.cpu_temp,
            gpu_temp = excluded.gpu_temp,
            fps = excluded.fps,
            cpu_clk = excluded.cpu_clk,
            gpu_clk = excluded.gpu_clk,
            live = excluded.live,
            mode = excluded.mode,
            discarded = excluded.discarded
    `,
		sample.Timestamp.Unix(),
		hw.CPU, hw.GPU, hw.RAM,
		hw.CPUTemp, hw.GPUTemp,
		hw.FPS, hw.CPUClock, hw.GPUClock,
		boolToInt(sample.Live),
		sample.Mode,
		int64(sample.Discarded),
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
