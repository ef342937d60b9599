package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"products-api/internal/config"
	"products-api/internal/handlers"
	"products-api/internal/models"
	"products-api/internal/query"
	"products-api/internal/repository"
	"products-api/internal/routes"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"requestId"`
	} `json:"metadata"`
}

type listData struct {
	Items      []models.Product       `json:"items"`
	Pagination query.Pagination       `json:"pagination"`
	Filters    map[string]interface{} `json:"filtersApplied"`
	Sort       map[string]string      `json:"sort"`
}

type ProductAPISuite struct {
	suite.Suite
	store  *repository.MemoryRepository
	router *gin.Engine
	ids    map[string]string
}

func TestProductAPISuite(t *testing.T) {
	suite.Run(t, new(ProductAPISuite))
}

func (s *ProductAPISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

// SetupTest carga los productos A, B y C en un almacenamiento nuevo
func (s *ProductAPISuite) SetupTest() {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s.store = repository.NewMemoryRepository()
	cfg := &config.Config{
		Environment: "test",
		Store:       config.StoreConfig{Driver: config.DriverMemory, SearchMode: query.SearchBoth},
	}
	s.router = routes.NewRouter(context.Background(), cfg, s.store, log)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seed := []models.Product{
		{Title: "A", Price: 10, Category: "x", Stock: 5, CreatedAt: base},
		{Title: "B", Price: 200, Category: "x", Stock: 0, CreatedAt: base.Add(time.Minute)},
		{Title: "C", Price: 50, Category: "y", Stock: 2, CreatedAt: base.Add(2 * time.Minute)},
	}
	_, err := s.store.ReplaceAll(context.Background(), seed)
	s.Require().NoError(err)

	s.ids = map[string]string{}
	for _, p := range seed {
		s.ids[p.Title] = p.ID.Hex()
	}
}

func (s *ProductAPISuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			s.Require().NoError(err)
			reader = bytes.NewBuffer(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (s *ProductAPISuite) list(path string) listData {
	w, env := s.do(http.MethodGet, path, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(env.Success)

	var data listData
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	return data
}

func titles(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func (s *ProductAPISuite) TestListByCategory() {
	data := s.list("/api/products?category=x")

	s.Len(data.Items, 2)
	for _, p := range data.Items {
		s.Equal("x", p.Category)
	}
	s.Equal(int64(2), data.Pagination.TotalProducts)
	s.Equal("x", data.Filters["category"])
}

func (s *ProductAPISuite) TestListInStock() {
	s.ElementsMatch([]string{"A", "C"}, titles(s.list("/api/products?inStock=true").Items))
}

func (s *ProductAPISuite) TestListPriceRange() {
	s.Equal([]string{"B"}, titles(s.list("/api/products?minPrice=20&maxPrice=300").Items))
}

func (s *ProductAPISuite) TestListSortByPrice() {
	data := s.list("/api/products?sort=price&order=asc")

	s.Equal([]string{"A", "C", "B"}, titles(data.Items))
	s.Equal(map[string]string{"by": "price", "order": "asc"}, data.Sort)
}

func (s *ProductAPISuite) TestListIsIdempotent() {
	first := s.list("/api/products?limit=2&page=2&sort=title")
	second := s.list("/api/products?limit=2&page=2&sort=title")

	s.Equal(first.Items, second.Items)
	s.Equal(first.Pagination, second.Pagination)
	s.Equal(2, first.Pagination.TotalPages)
	s.True(first.Pagination.HasPrevPage)
	s.False(first.Pagination.HasNextPage)
}

func (s *ProductAPISuite) TestListEmptyIsSuccess() {
	data := s.list("/api/products?category=nothing")

	s.NotNil(data.Items)
	s.Empty(data.Items)
	s.Equal(0, data.Pagination.TotalPages)
}

func (s *ProductAPISuite) TestListBadParamsFallBackToDefaults() {
	data := s.list("/api/products?page=abc&limit=-5&minPrice=cheap")

	s.Equal(1, data.Pagination.CurrentPage)
	s.Equal(1, data.Pagination.Limit)
	s.Len(data.Items, 1)
}

func (s *ProductAPISuite) TestListHugePageIsEmpty() {
	data := s.list("/api/products?page=9223372036854775807&limit=10")

	s.Empty(data.Items)
	s.Equal(query.MaxPage, data.Pagination.CurrentPage)
	s.False(data.Pagination.HasNextPage)
	s.Equal(int64(3), data.Pagination.TotalProducts)
}

func (s *ProductAPISuite) TestGetProductWithSimilar() {
	w, env := s.do(http.MethodGet, "/api/products/"+s.ids["A"], nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var data struct {
		Product models.Product   `json:"product"`
		Similar []models.Product `json:"similarProducts"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal("A", data.Product.Title)
	s.Equal([]string{"B"}, titles(data.Similar))
}

func (s *ProductAPISuite) TestGetProductErrors() {
	w, env := s.do(http.MethodGet, "/api/products/not-an-id", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(handlers.CodeInvalidInput, env.Error.Code)

	w, env = s.do(http.MethodGet, "/api/products/000000000000000000000000", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.False(env.Success)
	s.Equal(handlers.CodeNotFound, env.Error.Code)
}

func (s *ProductAPISuite) TestCreateProduct() {
	w, env := s.do(http.MethodPost, "/api/products", map[string]interface{}{
		"title": "  Desk Lamp ",
		"price": 35.5,
		"tags":  []string{"home", " "},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var p models.Product
	s.Require().NoError(json.Unmarshal(env.Data, &p))
	s.Equal("Desk Lamp", p.Title)
	s.Equal(models.DefaultCategory, p.Category)
	s.Equal([]string{"home"}, p.Tags)
	s.Equal(models.CreatedByAPI, p.CreatedBy)
	s.NotEmpty(env.Metadata.RequestID)

	total, err := s.store.Count(context.Background(), query.Filter{})
	s.NoError(err)
	s.Equal(int64(4), total)
}

func (s *ProductAPISuite) TestCreateProductValidation() {
	w, env := s.do(http.MethodPost, "/api/products", map[string]interface{}{
		"title": " ",
		"price": -3,
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(env.Error)
	s.Equal(handlers.CodeInvalidInput, env.Error.Code)
	s.Len(env.Error.Details["fields"], 2)

	w, _ = s.do(http.MethodPost, "/api/products", "{not json")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProductAPISuite) TestUpdateProduct() {
	w, env := s.do(http.MethodPatch, "/api/products/"+s.ids["C"], map[string]interface{}{
		"price":    75,
		"category": "z",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var p models.Product
	s.Require().NoError(json.Unmarshal(env.Data, &p))
	s.Equal(75.0, p.Price)
	s.Equal("z", p.Category)
	s.Contains(p.SearchKeywords, "z")
	s.False(p.UpdatedAt.Before(p.CreatedAt))

	w, _ = s.do(http.MethodPut, "/api/products/"+s.ids["C"], map[string]interface{}{})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPut, "/api/products/"+s.ids["C"], map[string]interface{}{"rating": 9})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProductAPISuite) TestDeleteProduct() {
	w, env := s.do(http.MethodDelete, "/api/products/"+s.ids["B"], nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var p models.Product
	s.Require().NoError(json.Unmarshal(env.Data, &p))
	s.Equal("B", p.Title)

	w, _ = s.do(http.MethodDelete, "/api/products/"+s.ids["B"], nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ProductAPISuite) TestCategories() {
	w, env := s.do(http.MethodGet, "/api/products/categories", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var data struct {
		Categories []models.CategoryCount `json:"categories"`
		Total      int                    `json:"total"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal([]models.CategoryCount{{Name: "x", Count: 2}, {Name: "y", Count: 1}}, data.Categories)
	s.Equal(2, data.Total)
}

func (s *ProductAPISuite) TestStats() {
	w, env := s.do(http.MethodGet, "/api/products/stats", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report struct {
		Overall struct {
			TotalProducts int64 `json:"totalProducts"`
		} `json:"overall"`
		ByCategory []struct {
			Name         string  `json:"name"`
			AveragePrice float64 `json:"averagePrice"`
		} `json:"byCategory"`
		PriceDistribution []struct {
			Percentage float64 `json:"percentage"`
		} `json:"priceDistribution"`
		TopBrands   []interface{} `json:"topBrands"`
		BestRated   []interface{} `json:"bestRatedAnalysis"`
		PriceTrends []struct {
			Category      string `json:"category"`
			TotalProducts int64  `json:"totalProducts"`
		} `json:"priceTrends"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &report))
	s.Equal(int64(3), report.Overall.TotalProducts)
	s.Equal("x", report.ByCategory[0].Name)
	s.Equal(105.0, report.ByCategory[0].AveragePrice)
	s.NotNil(report.TopBrands)
	s.NotNil(report.BestRated)
	s.Require().Len(report.PriceTrends, 2)
	s.Equal("x", report.PriceTrends[0].Category)
	s.Equal(int64(2), report.PriceTrends[0].TotalProducts)

	var sum float64
	for _, b := range report.PriceDistribution {
		sum += b.Percentage
	}
	s.InDelta(100, sum, 0.05)

	for _, path := range []string{"categories", "brands", "prices", "ratings"} {
		w, _ := s.do(http.MethodGet, "/api/products/stats/"+path, nil)
		s.Equal(http.StatusOK, w.Code, path)
	}
}

func (s *ProductAPISuite) TestAdvancedSearch() {
	w, env := s.do(http.MethodGet, "/api/products/search/advanced?category=x&sortBy=price&sortOrder=desc", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var data struct {
		Items []models.Product `json:"items"`
		Total int64            `json:"total"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal([]string{"B", "A"}, titles(data.Items))
	s.Equal(int64(2), data.Total)
}

func (s *ProductAPISuite) TestHealth() {
	w, env := s.do(http.MethodGet, "/health", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var data map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal("healthy", data["status"])
	s.Equal(float64(3), data["products"])
}
