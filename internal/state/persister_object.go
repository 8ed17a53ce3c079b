package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"sentiment-dashboard/internal/shared/storage/object"
)

// ObjectPersister stores the record as a JSON document in an object store.
type ObjectPersister struct {
	Store object.ObjectStore
	Key   string
}

// NewObjectPersister keys the document as <StoreName>.json.
func NewObjectPersister(store object.ObjectStore) *ObjectPersister {
	return &ObjectPersister{Store: store, Key: StoreName + ".json"}
}

func (p *ObjectPersister) Load(ctx context.Context) (Record, error) {
	rc, err := p.Store.Open(ctx, p.Key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("open state object: %w", err)
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return Record{}, fmt.Errorf("read state object: %w", err)
	}
	return decodeRecord(payload)
}

func (p *ObjectPersister) Save(ctx context.Context, rec Record) error {
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if _, err := p.Store.Put(ctx, p.Key, "application/json", bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("put state object: %w", err)
	}
	return nil
}
