package state

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// ValkeyPersister stores the record as a string value in Valkey.
type ValkeyPersister struct {
	Client valkey.Client
	Key    string
}

// NewValkeyPersister keys the value by StoreName.
func NewValkeyPersister(client valkey.Client) *ValkeyPersister {
	return &ValkeyPersister{Client: client, Key: StoreName}
}

func (p *ValkeyPersister) Load(ctx context.Context) (Record, error) {
	payload, err := p.Client.Do(ctx, p.Client.B().Get().Key(p.Key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("valkey get %s: %w", p.Key, err)
	}
	return decodeRecord(payload)
}

func (p *ValkeyPersister) Save(ctx context.Context, rec Record) error {
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	cmd := p.Client.B().Set().Key(p.Key).Value(valkey.BinaryString(payload)).Build()
	if err := p.Client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", p.Key, err)
	}
	return nil
}
