package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/sichgate/sichgate/internal/config"
)

const DefaultSQLitePath = "results/sichgate.db"

// Open creates a Store from configuration.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store: missing config")
	}

	storageType := strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if storageType == "" {
		storageType = "sqlite"
	}

	switch storageType {
	case "sqlite":
		path := strings.TrimSpace(cfg.Storage.Path)
		if path == "" {
			path = DefaultSQLitePath
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("store: unsupported type %q", storageType)
	}
}

func unixMilliUTC(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
