package config

import (
	"context"
	"fmt"
	"strings"

	"todoapi/app/store"

	"github.com/sirupsen/logrus"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

// OpenStore connects the configured backend, migrating its schema when
// enabled. The returned name labels the backend in metrics.
func OpenStore(ctx context.Context, cfg StoreConfig, logger *logrus.Logger) (store.Store, string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var (
		s    store.Store
		name = strings.ToLower(cfg.Driver)
	)
	switch name {
	case "memory":
		s = store.NewMemoryStore()
	case "neo4j":
		driver, err := InitNeo4j(cfg.Neo4j)
		if err != nil {
			return nil, "", fmt.Errorf("initialize neo4j: %w", err)
		}
		ns := store.NewNeo4jStore(driver, cfg.Neo4j.Database)
		if err := ns.Ping(ctx); err != nil {
			driver.Close(context.Background())
			return nil, "", err
		}
		s = ns
	default:
		ss, err := store.OpenSQLStore(ctx, name, cfg.DSN)
		if err != nil {
			return nil, "", err
		}
		s = ss
	}

	if m, ok := s.(migrator); ok && cfg.Migrate {
		if err := m.Migrate(ctx); err != nil {
			s.Close(context.Background())
			return nil, "", err
		}
		logger.WithField("driver", name).Info("store schema ready")
	}
	return s, name, nil
}
