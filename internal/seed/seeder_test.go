package seed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"products-api/internal/models"
	"products-api/internal/query"
	"products-api/internal/repository"
)

const payload = `{"products":[
 {"id":1,"title":"Essence Mascara","description":"mascara","category":"beauty","price":9.99,
  "discountPercentage":7.17,"rating":4.94,"stock":5,"tags":["beauty","mascara"],"brand":"Essence",
  "thumbnail":"https://cdn.test/1.png","images":["https://cdn.test/1a.png"]},
 {"id":2,"title":"Broken","price":-1},
 {"id":3,"title":"No Brand Apple","category":"groceries","price":1.99,"rating":4.19,"stock":9}
],"total":3,"skip":0,"limit":3}`

func TestSeederRun(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	store := repository.NewMemoryRepository()
	old := models.Product{Title: "stale"}
	require.NoError(t, store.Create(context.Background(), &old))

	res, err := NewSeeder(store, srv.Client(), srv.URL+"/products", 3, logrus.New()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "3", gotLimit)
	assert.Equal(t, Result{Fetched: 3, Skipped: 1, Inserted: 2}, res)

	items, err := store.Find(context.Background(), query.Filter{}, query.Sort{Field: models.FieldTitle, Ascending: true}, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Essence Mascara", items[0].Title)
	assert.Equal(t, models.CreatedBySeed, items[0].CreatedBy)
	assert.Equal(t, []string{"essence mascara", "essence", "beauty"}, items[0].SearchKeywords)
	assert.Equal(t, 7.17, items[0].DiscountPercentage)
	assert.Equal(t, "", items[1].Brand)
}

func TestSeederUpstreamFailureKeepsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := repository.NewMemoryRepository()
	old := models.Product{Title: "kept"}
	require.NoError(t, store.Create(context.Background(), &old))

	_, err := NewSeeder(store, srv.Client(), srv.URL, 0, logrus.New()).Run(context.Background())

	assert.ErrorContains(t, err, "unexpected status 502")
	total, _ := store.Count(context.Background(), query.Filter{})
	assert.Equal(t, int64(1), total)
}
