package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"products-api/internal/config"
	"products-api/internal/models"
	"products-api/internal/repository"
)

// Connect abre el cliente de MongoDB y verifica la conexión
func Connect(ctx context.Context, cfg config.MongoConfig, log *logrus.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.WithField("database", cfg.Database).Info("connected to MongoDB")
	return client, nil
}

// Disconnect cierra el cliente
func Disconnect(ctx context.Context, client *mongo.Client, log *logrus.Logger) {
	if err := client.Disconnect(ctx); err != nil {
		log.WithError(err).Error("error closing MongoDB connection")
		return
	}
	log.Info("MongoDB connection closed")
}

// textIndexFields fija el orden de los campos del índice de texto
var textIndexFields = []string{
	models.FieldTitle,
	models.FieldBrand,
	models.FieldCategory,
	models.FieldDescription,
}

// Indexes devuelve los índices de la colección de productos
func Indexes(language string) []mongo.IndexModel {
	keys := bson.D{}
	weights := bson.D{}
	for _, field := range textIndexFields {
		keys = append(keys, bson.E{Key: field, Value: "text"})
		weights = append(weights, bson.E{Key: field, Value: int32(repository.TextWeights[field])})
	}

	return []mongo.IndexModel{
		{
			Keys: keys,
			Options: options.Index().
				SetName("products_text").
				SetWeights(weights).
				SetDefaultLanguage(language),
		},
		{Keys: bson.D{{Key: models.FieldCategory, Value: 1}}},
		{Keys: bson.D{{Key: models.FieldPrice, Value: 1}}},
		{Keys: bson.D{{Key: models.FieldBrand, Value: 1}}},
		{Keys: bson.D{{Key: models.FieldCreatedAt, Value: -1}}},
		{Keys: bson.D{{Key: models.FieldRating, Value: -1}}},
	}
}

// EnsureIndexes crea los índices si no existen
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, language string, log *logrus.Logger) error {
	names, err := coll.Indexes().CreateMany(ctx, Indexes(language))
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	log.WithField("indexes", names).Debug("indexes ensured")
	return nil
}
