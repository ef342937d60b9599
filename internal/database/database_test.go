package database

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"products-api/internal/config"
	"products-api/internal/repository"
)

func TestIndexesTextWeights(t *testing.T) {
	indexes := Indexes("english")

	require.Len(t, indexes, 6)
	assert.Equal(t, bson.E{Key: "title", Value: "text"}, indexes[0].Keys.(bson.D)[0])
	weights := indexes[0].Options.Weights.(bson.D)
	assert.Equal(t, bson.D{
		{Key: "title", Value: int32(10)},
		{Key: "brand", Value: int32(5)},
		{Key: "category", Value: int32(3)},
		{Key: "description", Value: int32(1)},
	}, weights)
}

func TestOpenStoreMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}

	store, closeFn, err := OpenStore(context.Background(), cfg, logrus.New())

	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryRepository{}, store)
	closeFn(context.Background())
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	_, _, err := OpenStore(context.Background(), cfg, logrus.New())

	assert.Error(t, err)
}
