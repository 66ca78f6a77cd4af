// catalog/sql.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/adr"
	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver
)

// Dialect identifies the SQL database a SQLStore talks to.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driver() (string, error) {
	switch d {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("%q: %w", string(d), ErrUnknownDialect)
	}
}

// placeholder returns the query placeholder for the n'th (1-based)
// argument.
func (d Dialect) placeholder(n int) string {
	return util.Select(d == DialectPostgres, "$"+strconv.Itoa(n), "?")
}

func (d Dialect) placeholders(start, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = d.placeholder(start + i)
	}
	return strings.Join(ph, ", ")
}

var sqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS adrs (
		region TEXT NOT NULL,
		id TEXT NOT NULL,
		dep TEXT NOT NULL,
		seq INTEGER NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (region, id)
	)`,
	`CREATE INDEX IF NOT EXISTS adrs_dep ON adrs (region, dep, seq)`,
	`CREATE TABLE IF NOT EXISTS adr_classes (
		region TEXT NOT NULL,
		id TEXT NOT NULL,
		class TEXT NOT NULL,
		PRIMARY KEY (region, id, class)
	)`,
	`CREATE TABLE IF NOT EXISTS procedures (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS procedure_airports (
		name TEXT NOT NULL,
		airport TEXT NOT NULL,
		PRIMARY KEY (name, airport)
	)`,
}

// SQLStore is a catalog kept in a SQLite or Postgres database. ADR
// records are stored as JSON along with the columns needed to select
// them.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	lg      *log.Logger
}

var _ adr.Catalog = (*SQLStore)(nil)

// OpenSQL opens the database and creates the catalog tables if needed.
// For SQLite, dsn is a file path.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, lg *log.Logger) (*SQLStore, error) {
	driver, err := dialect.driver()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	for _, stmt := range sqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLStore{db: db, dialect: dialect, lg: lg}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// Import replaces the contents of the database with the catalog in f.
func (s *SQLStore) Import(ctx context.Context, f *File) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"adrs", "adr_classes", "procedures", "procedure_airports"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	d := s.dialect
	insertADR := "INSERT INTO adrs (region, id, dep, seq, payload) VALUES (" + d.placeholders(1, 5) + ")"
	insertClass := "INSERT INTO adr_classes (region, id, class) VALUES (" + d.placeholders(1, 3) + ")"
	for _, region := range util.SortedMapKeys(f.Regions) {
		for seq, r := range f.Regions[region] {
			payload, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insertADR, region, r.Id, strings.ToUpper(r.Departure), seq, string(payload)); err != nil {
				return fmt.Errorf("ADR %s: %w", r.Id, err)
			}
			for _, class := range util.AppendUnique(nil, r.AircraftClasses...) {
				if _, err := tx.ExecContext(ctx, insertClass, region, r.Id, class); err != nil {
					return fmt.Errorf("ADR %s: %w", r.Id, err)
				}
			}
		}
	}

	insertProc := "INSERT INTO procedures (name, payload) VALUES (" + d.placeholders(1, 2) + ")"
	insertAirport := "INSERT INTO procedure_airports (name, airport) VALUES (" + d.placeholders(1, 2) + ")"
	for _, dp := range f.Procedures {
		payload, err := json.Marshal(dp)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertProc, dp.Procedure, string(payload)); err != nil {
			return fmt.Errorf("procedure %s: %w", dp.Procedure, err)
		}
		var airports []string
		for _, r := range dp.Routes {
			airports = util.AppendUnique(airports, util.MapSlice(r.Airports, strings.ToUpper)...)
		}
		for _, ap := range airports {
			if _, err := tx.ExecContext(ctx, insertAirport, dp.Procedure, ap); err != nil {
				return fmt.Errorf("procedure %s: %w", dp.Procedure, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.lg.Info("imported ADR catalog", slog.String("dialect", string(s.dialect)), slog.Int("adrs", f.NumADRs()),
		slog.Int("procedures", len(f.Procedures)))
	return nil
}

func (s *SQLStore) CandidateADRs(ctx context.Context, region, dep string, classes []string) ([]adr.ADR, error) {
	if len(classes) == 0 {
		return nil, nil
	}

	d := s.dialect
	query := `SELECT payload FROM adrs WHERE region = ` + d.placeholder(1) + ` AND dep = ` + d.placeholder(2) +
		` AND EXISTS (SELECT 1 FROM adr_classes c WHERE c.region = adrs.region AND c.id = adrs.id AND c.class IN (` +
		d.placeholders(3, len(classes)) + `)) ORDER BY seq`
	args := []any{strings.ToLower(region), strings.ToUpper(dep)}
	for _, c := range classes {
		args = append(args, c)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select ADRs: %w", err)
	}
	defer rows.Close()

	var adrs []adr.ADR
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		var r adr.Record
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			s.lg.Warn("undecodable ADR record", slog.String("region", region), slog.Any("error", err))
			continue
		}
		a, err := adr.NewADR(r)
		if err != nil {
			s.lg.Warn("skipping invalid ADR", slog.String("region", region), slog.Any("error", err))
			continue
		}
		adrs = append(adrs, a)
	}
	return adrs, rows.Err()
}

func (s *SQLStore) DepartureProcedures(ctx context.Context, airport string) ([]aviation.DepartureProcedure, error) {
	query := `SELECT p.payload FROM procedures p WHERE EXISTS (SELECT 1 FROM procedure_airports a WHERE a.name = p.name AND a.airport = ` +
		s.dialect.placeholder(1) + `) ORDER BY p.name`

	rows, err := s.db.QueryContext(ctx, query, strings.ToUpper(airport))
	if err != nil {
		return nil, fmt.Errorf("select procedures: %w", err)
	}
	defer rows.Close()

	var dps []aviation.DepartureProcedure
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var dp aviation.DepartureProcedure
		if err := json.Unmarshal([]byte(payload), &dp); err != nil {
			return nil, fmt.Errorf("procedure payload: %w", err)
		}
		dps = append(dps, dp)
	}
	return dps, rows.Err()
}

// Export returns the database's catalog.
func (s *SQLStore) Export(ctx context.Context) (*File, error) {
	f := &File{Regions: make(map[string][]adr.Record)}

	rows, err := s.db.QueryContext(ctx, `SELECT region, payload FROM adrs ORDER BY region, seq`)
	if err != nil {
		return nil, fmt.Errorf("select ADRs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var region, payload string
		if err := rows.Scan(&region, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var r adr.Record
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("ADR payload: %w", err)
		}
		f.Regions[region] = append(f.Regions[region], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx, `SELECT payload FROM procedures ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select procedures: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var payload string
		if err := prows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var dp aviation.DepartureProcedure
		if err := json.Unmarshal([]byte(payload), &dp); err != nil {
			return nil, fmt.Errorf("procedure payload: %w", err)
		}
		f.Procedures = append(f.Procedures, dp)
	}
	return f, prows.Err()
}
