package kv

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"sentiment-dashboard/internal/shared/telemetry"
)

// Options configures the Valkey connection.
type Options struct {
	Address     string
	Password    string
	TLS         bool
	PingTimeout time.Duration
}

// ClientOption builds the valkey-go option set for opts.
func ClientOption(opts Options) (valkey.ClientOption, error) {
	addr := strings.TrimSpace(opts.Address)
	if addr == "" {
		return valkey.ClientOption{}, fmt.Errorf("valkey address is required")
	}
	out := valkey.ClientOption{
		InitAddress:      []string{addr},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if opts.TLS {
		out.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return out, nil
}

// Connect creates a Valkey client and verifies it with PING.
func Connect(ctx context.Context, opts Options) (valkey.Client, error) {
	clientOpts, err := ClientOption(opts)
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}

	telemetry.Info("valkey.connected", map[string]any{"address": clientOpts.InitAddress[0], "tls": opts.TLS})
	return client, nil
}
