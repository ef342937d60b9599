package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"products-api/internal/models"
	"products-api/internal/repository"
	"products-api/internal/validation"
)

// sourceProduct es un producto tal como lo entrega dummyjson
type sourceProduct struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Price              *float64 `json:"price"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock"`
	Tags               []string `json:"tags"`
	Brand              string   `json:"brand"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

type sourcePage struct {
	Products []sourceProduct `json:"products"`
}

// Result resume una ejecución del seed
type Result struct {
	Fetched  int
	Skipped  int
	Inserted int
}

type Seeder struct {
	store  repository.ProductStore
	client *http.Client
	source string
	limit  int
	log    *logrus.Logger
	now    func() time.Time
}

func NewSeeder(store repository.ProductStore, client *http.Client, source string, limit int, log *logrus.Logger) *Seeder {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Seeder{
		store:  store,
		client: client,
		source: source,
		limit:  limit,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run descarga los productos, descarta los inválidos y reemplaza la colección
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	products, err := s.fetch(ctx)
	if err != nil {
		return res, err
	}
	res.Fetched = len(products)
	s.log.WithField("count", res.Fetched).Info("products fetched")

	docs := make([]models.Product, 0, len(products))
	for i, sp := range products {
		input := toInput(sp)
		if err := validation.ValidateStruct(&input); err != nil {
			res.Skipped++
			s.log.WithFields(logrus.Fields{
				"index":  i,
				"title":  sp.Title,
				"fields": validation.FieldErrors(err),
			}).Warn("skipping invalid product")
			continue
		}
		docs = append(docs, models.NewProduct(input, models.CreatedBySeed, s.now()))
	}

	inserted, err := s.store.ReplaceAll(ctx, docs)
	if err != nil {
		return res, fmt.Errorf("replace products: %w", err)
	}
	res.Inserted = inserted
	s.log.WithFields(logrus.Fields{
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
	}).Info("seed completed")
	return res, nil
}

func (s *Seeder) fetch(ctx context.Context) ([]sourceProduct, error) {
	u, err := url.Parse(s.source)
	if err != nil {
		return nil, fmt.Errorf("invalid seed source: %w", err)
	}
	if s.limit > 0 {
		q := u.Query()
		q.Set("limit", strconv.Itoa(s.limit))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch products: unexpected status %d", resp.StatusCode)
	}

	var page sourcePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return page.Products, nil
}

func toInput(sp sourceProduct) models.ProductInput {
	return models.ProductInput{
		Title:              sp.Title,
		Description:        sp.Description,
		Price:              sp.Price,
		Category:           sp.Category,
		Brand:              sp.Brand,
		Stock:              sp.Stock,
		Rating:             sp.Rating,
		DiscountPercentage: sp.DiscountPercentage,
		Tags:               sp.Tags,
		ImageURL:           sp.Thumbnail,
		Thumbnail:          sp.Thumbnail,
		Images:             sp.Images,
	}
}
