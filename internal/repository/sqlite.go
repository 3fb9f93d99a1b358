package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"hcp-crm/internal/interaction"
)

// sqliteDriver is go-sqlite3 with a fold() SQL function that lower-cases
// with Go's Unicode rules; SQLite's own lower() only folds ASCII.
const sqliteDriver = "sqlite3_hcp"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// SQLite stores records in a single-file database.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open(sqliteDriver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &SQLite{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (db *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS hcp_interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hcp_name TEXT NOT NULL,
			attendees TEXT DEFAULT '',
			date TEXT NOT NULL,
			time TEXT DEFAULT '',
			interaction_type TEXT NOT NULL,
			topics TEXT DEFAULT '',
			materials_distributed TEXT DEFAULT '',
			outcomes TEXT DEFAULT '',
			follow_up TEXT DEFAULT '',
			summary TEXT DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hcp_interactions_hcp_name ON hcp_interactions(hcp_name)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}
	return nil
}

const selectColumns = `SELECT id, hcp_name, attendees, date, time, interaction_type, topics,
	materials_distributed, outcomes, follow_up, summary, created_at, updated_at
	FROM hcp_interactions`

func (db *SQLite) Create(ctx context.Context, rec *interaction.Record) error {
	if err := prepare(rec, db.now()); err != nil {
		return err
	}

	res, err := db.conn.ExecContext(ctx, `INSERT INTO hcp_interactions
		(hcp_name, attendees, date, time, interaction_type, topics, materials_distributed,
		 outcomes, follow_up, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')`,
		rec.HCPName, rec.Attendees, rec.Date, rec.Time, string(rec.InteractionType), rec.Topics,
		rec.MaterialsDistributed, rec.Outcomes, rec.FollowUp, rec.Summary, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get interaction id: %w", err)
	}
	rec.ID = id
	return nil
}

func (db *SQLite) List(ctx context.Context) ([]interaction.Record, error) {
	return db.query(ctx, selectColumns+` ORDER BY id ASC`)
}

func (db *SQLite) Get(ctx context.Context, id int64) (*interaction.Record, error) {
	return db.one(ctx, selectColumns+` WHERE id = ?`, id)
}

func (db *SQLite) FindByHCPName(ctx context.Context, name string) ([]interaction.Record, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(name))) + "%"
	return db.query(ctx, selectColumns+` WHERE fold(hcp_name) LIKE ? ESCAPE '\' ORDER BY id ASC`, pattern)
}

func (db *SQLite) MostRecent(ctx context.Context) (*interaction.Record, error) {
	return db.one(ctx, selectColumns+` ORDER BY id DESC LIMIT 1`)
}

func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) query(ctx context.Context, q string, args ...any) ([]interaction.Record, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	out := []interaction.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}
	return out, nil
}

func (db *SQLite) one(ctx context.Context, q string, args ...any) (*interaction.Record, error) {
	rec, err := scanRecord(db.conn.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*interaction.Record, error) {
	var (
		rec   interaction.Record
		iType string
	)
	err := s.Scan(&rec.ID, &rec.HCPName, &rec.Attendees, &rec.Date, &rec.Time, &iType, &rec.Topics,
		&rec.MaterialsDistributed, &rec.Outcomes, &rec.FollowUp, &rec.Summary, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan interaction: %w", err)
	}
	rec.InteractionType = interaction.Type(iType)
	return &rec, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
