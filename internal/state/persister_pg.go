package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGPersister stores the record in the app_state table.
type PGPersister struct {
	DB   *sql.DB
	Name string
}

// NewPGPersister keys the row by StoreName.
func NewPGPersister(db *sql.DB) *PGPersister {
	return &PGPersister{DB: db, Name: StoreName}
}

func (p *PGPersister) Load(ctx context.Context) (Record, error) {
	var payload []byte
	err := p.DB.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE name = $1`, p.Name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("select app_state: %w", err)
	}
	return decodeRecord(payload)
}

func (p *PGPersister) Save(ctx context.Context, rec Record) error {
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = p.DB.ExecContext(ctx, `
		INSERT INTO app_state (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, p.Name, payload)
	if err != nil {
		return fmt.Errorf("upsert app_state: %w", err)
	}
	return nil
}
