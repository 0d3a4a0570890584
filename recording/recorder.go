// Package recording stores hop outcomes in a SQLite database so a run
// can optionally leave an inspectable record behind.
package recording

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/xfertest/harness"
)

// A SQLiteRecorder writes one row per hop into the hop_results table.
// Rows are buffered and flushed in batches; a flush is also registered
// to run at process exit.
type SQLiteRecorder struct {
	*sql.DB

	dbName    string
	runID     string
	batchSize int
	buffered  []harness.HopResult
}

// NewSQLiteRecorder creates a recorder that writes to path + ".sqlite3".
func NewSQLiteRecorder(path string) *SQLiteRecorder {
	r := &SQLiteRecorder{
		dbName:    path,
		runID:     xid.New().String(),
		batchSize: 64,
	}

	atexit.Register(func() { r.Flush() })

	return r
}

// RunID returns the identifier rows of this run are tagged with.
func (r *SQLiteRecorder) RunID() string {
	return r.runID
}

// Init establishes the database connection and creates the table.
func (r *SQLiteRecorder) Init() error {
	db, err := sql.Open("sqlite3", r.dbName+".sqlite3")
	if err != nil {
		return fmt.Errorf("opening hop database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS hop_results (
			run_id   TEXT,
			mode     TEXT,
			src      TEXT,
			dst      TEXT,
			src_addr INTEGER,
			dst_addr INTEGER,
			pass     INTEGER,
			err      TEXT
		)`)
	if err != nil {
		db.Close()
		return fmt.Errorf("creating hop table: %w", err)
	}

	r.DB = db
	return nil
}

// RecordHop buffers one hop result.
func (r *SQLiteRecorder) RecordHop(hop harness.HopResult) {
	r.buffered = append(r.buffered, hop)
	if len(r.buffered) >= r.batchSize {
		r.Flush()
	}
}

// Flush writes all buffered rows to the database.
func (r *SQLiteRecorder) Flush() {
	if r.DB == nil || len(r.buffered) == 0 {
		return
	}

	tx, err := r.Begin()
	if err != nil {
		panic(err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO hop_results
		(run_id, mode, src, dst, src_addr, dst_addr, pass, err)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}
	defer stmt.Close()

	for _, hop := range r.buffered {
		errText := ""
		if hop.Err != nil {
			errText = hop.Err.Error()
		}

		_, err := stmt.Exec(r.runID, hop.Mode, hop.SrcName, hop.DstName,
			int64(hop.SrcAddr), int64(hop.DstAddr), hop.Pass, errText)
		if err != nil {
			panic(err)
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	r.buffered = nil
}

// Close flushes and closes the database.
func (r *SQLiteRecorder) Close() error {
	r.Flush()
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
