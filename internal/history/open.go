package history

import (
	mdwconfig "github.com/msto63/pnc/foundation/core/config"
)

// Open returns the store described by the history configuration.
// A disabled history yields a MemoryStore so callers never need a nil check.
func Open(cfg mdwconfig.HistoryConfig) (Store, error) {
	if !cfg.Enabled {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(SQLiteConfig{Path: cfg.Path})
}
