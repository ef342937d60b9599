package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"products-api/internal/config"
	"products-api/internal/repository"
)

// Closer libera los recursos del almacenamiento
type Closer func(ctx context.Context)

// OpenStore construye el almacenamiento configurado. El cliente se crea una sola vez
// y se inyecta en el repositorio.
func OpenStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repository.ProductStore, Closer, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on exit")
		return repository.NewMemoryRepository(), func(context.Context) {}, nil

	case config.DriverMongo:
		client, err := Connect(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, nil, err
		}

		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		if err := EnsureIndexes(ctx, coll, cfg.Mongo.TextLanguage, log); err != nil {
			Disconnect(ctx, client, log)
			return nil, nil, err
		}

		store := repository.NewProductRepository(coll, repository.Timeouts{
			Query: cfg.Store.QueryTimeout,
			Write: cfg.Store.WriteTimeout,
		})
		return store, func(ctx context.Context) { Disconnect(ctx, client, log) }, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
