package state

import (
	"context"
	"sync"
)

// MemoryPersister keeps the encoded record in process memory.
type MemoryPersister struct {
	mu      sync.Mutex
	payload []byte
	saves   int
}

// NewMemoryPersister returns an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payload == nil {
		return Record{}, ErrNotFound
	}
	return decodeRecord(p.payload)
}

func (p *MemoryPersister) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payload = payload
	p.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
