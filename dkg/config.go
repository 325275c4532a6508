package dkg

import (
	"crypto/rand"
	"io"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/f3rmion/fdkg/group"
)

// Config carries the collaborators of a session.
type Config struct {
	// Group provides scalar and point arithmetic. Required.
	Group group.Group
	// Rand is the secret and coefficient source. Defaults to crypto/rand.
	Rand io.Reader
	// Logger receives per-share and per-session events. Secret values are
	// never logged.
	Logger zerolog.Logger
	// Workers bounds parallel share verification in Consume.
	// Defaults to GOMAXPROCS.
	Workers int
	// Metrics is optional.
	Metrics *Metrics
}

func (c *Config) setDefaults() {
	if c.Rand == nil {
		c.Rand = rand.Reader
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}
