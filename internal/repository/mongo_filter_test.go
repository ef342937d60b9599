package repository

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"products-api/internal/models"
	"products-api/internal/query"
)

func TestFilterToBSONEmpty(t *testing.T) {
	assert.Equal(t, bson.D{}, FilterToBSON(query.Filter{}))
}

func TestFilterToBSONCategoryIsAnchored(t *testing.T) {
	plan := query.BuildList(url.Values{"category": {"a.b"}}, query.SearchBoth)

	got := FilterToBSON(plan.Filter)

	require.Len(t, got, 1)
	assert.Equal(t, models.FieldCategory, got[0].Key)
	assert.Equal(t, primitive.Regex{Pattern: `^a\.b$`, Options: "i"}, got[0].Value)
}

func TestFilterToBSONPriceRange(t *testing.T) {
	plan := query.BuildList(url.Values{"maxPrice": {"500"}}, query.SearchBoth)

	got := FilterToBSON(plan.Filter)

	require.Len(t, got, 1)
	assert.Equal(t, bson.D{{Key: "$gte", Value: 0.0}, {Key: "$lte", Value: 500.0}}, got[0].Value)
}

func TestFilterToBSONSkipsUnboundedRange(t *testing.T) {
	f := query.Filter{}
	f.Add(query.Range{Field: models.FieldPrice})

	assert.Empty(t, FilterToBSON(f))
}

func TestFilterToBSONSearchBoth(t *testing.T) {
	plan := query.BuildList(url.Values{"search": {"phone"}}, query.SearchBoth)

	got := FilterToBSON(plan.Filter)

	require.Len(t, got, 2)
	assert.Equal(t, "$text", got[0].Key)
	assert.Equal(t, bson.D{{Key: "$search", Value: "phone"}}, got[0].Value)
	assert.Equal(t, "$or", got[1].Key)
	assert.Len(t, got[1].Value, len(query.SearchFields))
}

func TestFilterToBSONTagsAndExclude(t *testing.T) {
	id := primitive.NewObjectID()
	f := query.Filter{}
	f.Add(query.AnyOf{Field: models.FieldTags, Values: []string{"a", "b"}})
	f.Add(query.ExcludeID{ID: id})

	got := FilterToBSON(f)

	require.Len(t, got, 2)
	assert.Equal(t, bson.D{{Key: "$in", Value: bson.A{
		primitive.Regex{Pattern: "a", Options: "i"},
		primitive.Regex{Pattern: "b", Options: "i"},
	}}}, got[0].Value)
	assert.Equal(t, bson.D{{Key: "$ne", Value: id}}, got[1].Value)
}

func TestSortToBSON(t *testing.T) {
	assert.Equal(t,
		bson.D{{Key: models.FieldPrice, Value: 1}, {Key: models.FieldID, Value: 1}},
		SortToBSON(query.Sort{Field: models.FieldPrice, Ascending: true}))
	assert.Equal(t,
		bson.D{{Key: models.FieldCreatedAt, Value: -1}, {Key: models.FieldID, Value: -1}},
		SortToBSON(query.Sort{}))
	assert.Equal(t, "score", SortToBSON(query.Sort{Relevance: true})[0].Key)
}

func TestPipelinesShape(t *testing.T) {
	group := groupStages(BrandPipeline)
	require.Len(t, group, 4)
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "totalValue", Value: -1}, {Key: "_id", Value: 1}}}}, group[2])
	assert.Equal(t, bson.D{{Key: "$limit", Value: 10}}, group[3])

	bucket := bucketStages(PriceBuckets)
	require.Len(t, bucket, 2)
	stage := bucket[0].(bson.D)[0].Value.(bson.D)
	assert.Equal(t, "boundaries", stage[1].Key)
	assert.Len(t, stage[1].Value, len(PriceBuckets.Boundaries))
	assert.Equal(t, bson.E{Key: "default", Value: "10000+"}, stage[2])

	assert.Len(t, overviewStages(), 2)
}

func TestSegmentStagesShape(t *testing.T) {
	stages := segmentStages(PriceTrendPipeline)
	require.Len(t, stages, 5)
	assert.Equal(t, bson.D{{Key: "$limit", Value: 5}}, stages[4])

	first := stages[1].(bson.D)[0].Value.(bson.D)
	id := first[0].Value.(bson.D)
	assert.Equal(t, "$category", id[0].Value)

	sw := id[1].Value.(bson.D)[0].Value.(bson.D)
	assert.Len(t, sw[0].Value, len(PriceTrendPipeline.Buckets.Labels))
	assert.Equal(t, bson.E{Key: "default", Value: "1000+"}, sw[1])

	top := groupStages(TopBrandsPipeline)
	assert.Equal(t, "count", top[2].(bson.D)[0].Value.(bson.D)[0].Key)
}
