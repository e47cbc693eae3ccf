package kv

import "time"

type PersistenceStrategy string

const (
	Async PersistenceStrategy = "async"
	Sync  PersistenceStrategy = "sync"
)

var defaultPersistenceIntervals = 1 * time.Second

type Config struct {
	PersistenceStrategy       PersistenceStrategy
	TruncateFileWhenOpen      bool
	AsyncPersistenceIntervals time.Duration
	DisableAutoVacuum         bool
}

func (cfg *Config) applyDefaults() {
	if cfg.PersistenceStrategy == "" {
		cfg.PersistenceStrategy = Sync
	} else if cfg.PersistenceStrategy == Async && cfg.AsyncPersistenceIntervals == 0 {
		cfg.AsyncPersistenceIntervals = defaultPersistenceIntervals
	}
}

func resolveConfig(cfgs []*Config) *Config {
	cfg := &Config{}
	if len(cfgs) > 0 && cfgs[0] != nil {
		cp := *cfgs[0]
		cfg = &cp
	}

	cfg.applyDefaults()
	return cfg
}
