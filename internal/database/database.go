package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	_ "github.com/mattn/go-sqlite3"
)

var ErrDatasetNotFound = errors.New("dataset not found")

type DatabaseConfig interface {
	DBUrl() string
}

type Dataset struct {
	Name   string           `json:"name"`
	Order  int              `json:"order"`
	Ranges []protocol.Range `json:"ranges"`
}

type Summary struct {
	Name   string `json:"name"`
	Order  int    `json:"order"`
	Ranges int    `json:"ranges"`
}

type DatabaseService interface {
	Close() error
	GetDataset(ctx context.Context, name string) (*Dataset, error)
	ListDatasets(ctx context.Context) ([]Summary, error)
	WriteDataset(ctx context.Context, d *Dataset) error
}

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	name TEXT PRIMARY KEY,
	hilbert_order INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ranges (
	dataset TEXT NOT NULL REFERENCES datasets (name) ON DELETE CASCADE,
	idx INTEGER NOT NULL,
	start INTEGER NOT NULL,
	length INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (dataset, idx)
);`

type service struct {
	url string
	db  *sql.DB
}

var dbInstance *service

func NewDatabaseService(cfg DatabaseConfig) DatabaseService {
	if dbInstance != nil {
		return dbInstance
	}

	s, err := open(cfg.DBUrl())
	if err != nil {
		panic(err)
	}
	dbInstance = s
	return dbInstance
}

// Open opens a store that is not shared with NewDatabaseService.
func Open(url string) (DatabaseService, error) {
	return open(url)
}

func open(url string) (*service, error) {
	db, err := sql.Open("sqlite3", url)
	if err != nil {
		return nil, fmt.Errorf("could not open database %w", err)
	}
	// a second connection would see a different :memory: database
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialise database %w", err)
	}
	return &service{url, db}, nil
}

func (s *service) Close() error {
	log.Printf("disconnected from database: %s", s.url)
	return s.db.Close()
}

func (s *service) GetDataset(ctx context.Context, name string) (*Dataset, error) {
	d := &Dataset{Name: name}
	err := s.db.QueryRowContext(ctx, "SELECT hilbert_order FROM datasets WHERE name=?", name).Scan(&d.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT start, length, name, color FROM ranges WHERE dataset=? ORDER BY idx", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var start, length int64
		var r protocol.Range
		if err := rows.Scan(&start, &length, &r.Name, &r.Color); err != nil {
			return nil, err
		}
		r.Start, r.Length = uint64(start), uint64(length)
		d.Ranges = append(d.Ranges, r)
	}
	return d, rows.Err()
}

func (s *service) ListDatasets(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT d.name, d.hilbert_order, COUNT(r.idx)
FROM datasets d LEFT JOIN ranges r ON r.dataset = d.name
GROUP BY d.name ORDER BY d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.Name, &sm.Order, &sm.Ranges); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// WriteDataset replaces the stored dataset of the same name.
func (s *service) WriteDataset(ctx context.Context, d *Dataset) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	err = writeDataset(ctx, tx, d)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeDataset(ctx context.Context, tx *sql.Tx, d *Dataset) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO datasets (name, hilbert_order) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET hilbert_order=?",
		d.Name, d.Order, d.Order)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM ranges WHERE dataset=?", d.Name); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO ranges (dataset, idx, start, length, name, color) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range d.Ranges {
		// positions stay below 4^31, so they fit sqlite's signed integers
		_, err = stmt.ExecContext(ctx, d.Name, i, int64(r.Start), int64(r.Length), r.Name, r.Color)
		if err != nil {
			return fmt.Errorf("range %d: %w", i, err)
		}
	}
	return nil
}
