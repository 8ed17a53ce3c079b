package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Persister that holds no record yet.
var ErrNotFound = errors.New("state record not found")

// Persister stores the durable subset of AppState.
type Persister interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}

func encodeRecord(rec Record) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return payload, nil
}

func decodeRecord(payload []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("decode state: %w", err)
	}
	return rec, nil
}
