package config

import "time"

// Fetch configures the one-shot remote catalog import that runs at startup.
type Fetch struct {
	Enabled bool   `env:"FETCH_ENABLED" envDefault:"true"`
	URL     string `env:"FETCH_URL" envDefault:"https://famme.no/products.json"`

	// Timeout bounds the whole HTTP request; the upstream may otherwise
	// stall the import indefinitely.
	Timeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`

	// MaxBodyBytes caps the response body so a misbehaving endpoint cannot
	// grow memory without bound.
	MaxBodyBytes int64 `env:"FETCH_MAX_BODY_BYTES" envDefault:"2097152"`

	// MaxProducts caps how many items of the remote payload are imported,
	// first in response order.
	MaxProducts int `env:"FETCH_MAX_PRODUCTS" envDefault:"50"`
}
