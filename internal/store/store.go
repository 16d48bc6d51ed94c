// Package store persists simulation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/id"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Store is a SQLite-backed archive of simulation runs.
type Store struct {
	db *sql.DB
}

// PortfolioRecord is one portfolio's configuration and counters inside a run.
type PortfolioRecord struct {
	Name    string                 `json:"name"`
	Config  model.SimulationConfig `json:"config"`
	Metrics model.Metrics          `json:"metrics"`
}

// RunRecord describes a stored run. Request is the caller's original
// payload, kept verbatim so a window can be recomputed later.
type RunRecord struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Label      string            `json:"label,omitempty"`
	Exec       model.ExecMode    `json:"exec"`
	Request    json.RawMessage   `json:"request,omitempty"`
	Portfolios []PortfolioRecord `json:"portfolios"`
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores rec and the window results of each of its portfolios,
// keyed by portfolio name. An empty rec.ID is filled with a new ULID.
func (s *Store) SaveRun(ctx context.Context, rec *RunRecord, results map[string][]model.WindowResult) error {
	if rec.ID == "" {
		rec.ID = id.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var request any
	if len(rec.Request) > 0 {
		request = string(rec.Request)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO runs (run_id, created_at, label, exec_mode, request_json)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.Label, string(rec.Exec), request,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for pos, p := range rec.Portfolios {
		cfg, err := json.Marshal(p.Config)
		if err != nil {
			return err
		}
		metrics, err := json.Marshal(p.Metrics)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO portfolios (run_id, name, position, config_json, metrics_json)
			VALUES (?, ?, ?, ?, ?)`, rec.ID, p.Name, pos, string(cfg), string(metrics))
		if err != nil {
			return fmt.Errorf("insert portfolio %q: %w", p.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO windows
		(run_id, portfolio, anchor, start, xirr, volatility, invested, final_value, ledger_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, windows := range results {
		for _, w := range windows {
			var vol sql.NullFloat64
			if w.VolatilityPercent != nil {
				vol = sql.NullFloat64{Float64: *w.VolatilityPercent, Valid: true}
			}
			var ledger sql.NullString
			if len(w.Ledger) > 0 {
				b, err := json.Marshal(w.Ledger)
				if err != nil {
					return err
				}
				ledger = sql.NullString{String: string(b), Valid: true}
			}
			_, err := stmt.ExecContext(ctx,
				rec.ID, name, w.Anchor.Format(dateLayout), w.Start.Format(dateLayout),
				w.XIRR, vol, w.Invested, w.FinalValue, ledger,
			)
			if err != nil {
				return fmt.Errorf("insert window %s/%s: %w", name, w.Anchor.Format(dateLayout), err)
			}
		}
	}

	return tx.Commit()
}

// GetRun loads a run and its portfolio records.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, created_at, label, exec_mode, request_json
		FROM runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, config_json, metrics_json
		FROM portfolios WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var p PortfolioRecord
		var cfg, metrics string
		if err := rows.Scan(&p.Name, &cfg, &metrics); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cfg), &p.Config); err != nil {
			return nil, fmt.Errorf("decode config of %q: %w", p.Name, err)
		}
		if err := json.Unmarshal([]byte(metrics), &p.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics of %q: %w", p.Name, err)
		}
		rec.Portfolios = append(rec.Portfolios, p)
	}
	return rec, rows.Err()
}

// ListRuns returns the most recent runs first. Portfolios carry names only.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, created_at, label, exec_mode, NULL
		FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	for i := range out {
		names, err := s.db.QueryContext(ctx, `SELECT name FROM portfolios WHERE run_id = ? ORDER BY position`, out[i].ID)
		if err != nil {
			return nil, err
		}
		for names.Next() {
			var p PortfolioRecord
			if err := names.Scan(&p.Name); err != nil {
				_ = names.Close()
				return nil, err
			}
			out[i].Portfolios = append(out[i].Portfolios, p)
		}
		err = names.Err()
		_ = names.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var rec RunRecord
	var created, exec string
	var label, request sql.NullString
	if err := row.Scan(&rec.ID, &created, &label, &exec, &request); err != nil {
		return nil, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rec.Label = label.String
	rec.Exec = model.ExecMode(exec)
	if request.Valid && request.String != "" {
		rec.Request = json.RawMessage(request.String)
	}
	return &rec, nil
}

// ListWindows returns a portfolio's stored windows ordered by anchor date.
// Ledgers are decoded only when withLedger is set.
func (s *Store) ListWindows(ctx context.Context, runID, portfolio string, withLedger bool) ([]model.WindowResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT anchor, start, xirr, volatility, invested, final_value, ledger_json
		FROM windows WHERE run_id = ? AND portfolio = ? ORDER BY anchor`, runID, portfolio)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.WindowResult
	for rows.Next() {
		var w model.WindowResult
		var anchor, start string
		var vol sql.NullFloat64
		var ledger sql.NullString
		if err := rows.Scan(&anchor, &start, &w.XIRR, &vol, &w.Invested, &w.FinalValue, &ledger); err != nil {
			return nil, err
		}
		if w.Anchor, err = time.Parse(dateLayout, anchor); err != nil {
			return nil, fmt.Errorf("bad anchor %q: %w", anchor, err)
		}
		if w.Start, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("bad start %q: %w", start, err)
		}
		if vol.Valid {
			v := vol.Float64
			w.VolatilityPercent = &v
		}
		if withLedger && ledger.Valid {
			if err := json.Unmarshal([]byte(ledger.String), &w.Ledger); err != nil {
				return nil, fmt.Errorf("decode ledger %s: %w", anchor, err)
			}
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything stored under it.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RunCount returns the number of stored runs.
func (s *Store) RunCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
