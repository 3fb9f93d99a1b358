// Package repository persists logged HCP interactions.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hcp-crm/internal/interaction"
)

var ErrNotFound = errors.New("interaction not found")

// Repository stores interaction records. List and FindByHCPName return records
// in ascending id order.
type Repository interface {
	Create(ctx context.Context, rec *interaction.Record) error
	List(ctx context.Context) ([]interaction.Record, error)
	Get(ctx context.Context, id int64) (*interaction.Record, error)
	FindByHCPName(ctx context.Context, name string) ([]interaction.Record, error)
	MostRecent(ctx context.Context) (*interaction.Record, error)
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the backend for driver.
func Open(driver, dsn string) (Repository, error) {
	switch strings.ToLower(driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(dsn)
	case DriverPostgres:
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}

const timestampLayout = time.RFC3339

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// prepare validates rec and sets its creation time.
func prepare(rec *interaction.Record, now time.Time) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid interaction: %w", err)
	}
	rec.CreatedAt = stamp(now)
	rec.UpdatedAt = ""
	return nil
}
