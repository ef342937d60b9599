package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"products-api/internal/apperror"
	"products-api/internal/models"
	"products-api/internal/query"
)

// MemoryRepository implementa ProductStore en memoria con la misma semántica
// de filtros, orden y agregaciones que ProductRepository
type MemoryRepository struct {
	products map[primitive.ObjectID]models.Product
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryRepository crea un repositorio vacío
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products: make(map[primitive.ObjectID]models.Product),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func ctxErr(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return &apperror.StoreError{Op: op, Err: err, Timeout: errors.Is(err, context.DeadlineExceeded)}
	}
	return nil
}

// snapshot copia los productos bajo el lock de lectura
func (r *MemoryRepository) snapshot(filter query.Filter) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matches(&p, filter) {
			out = append(out, p)
		}
	}
	return out
}

func (r *MemoryRepository) Find(ctx context.Context, filter query.Filter, sort query.Sort, skip, limit int) ([]models.Product, error) {
	if err := ctxErr(ctx, "find"); err != nil {
		return nil, err
	}

	products := r.snapshot(filter)
	ts, hasText := filter.Text()
	if sort.Relevance && !hasText {
		sort = query.Sort{Field: models.FieldTitle, Ascending: true}
	}
	if sort.Relevance {
		for i := range products {
			products[i].Score = textScore(&products[i], ts.Term)
		}
	}
	sortProducts(products, sort)

	if skip < 0 || skip >= len(products) {
		return []models.Product{}, nil
	}
	products = products[skip:]
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (r *MemoryRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	if err := ctxErr(ctx, "count"); err != nil {
		return 0, err
	}
	return int64(len(r.snapshot(filter))), nil
}

func (r *MemoryRepository) Group(ctx context.Context, p GroupPipeline) ([]models.GroupRow, error) {
	if err := ctxErr(ctx, "group "+p.Field); err != nil {
		return nil, err
	}
	return groupProducts(r.snapshot(query.Filter{}), p), nil
}

func (r *MemoryRepository) Bucket(ctx context.Context, p BucketPipeline) ([]models.BucketRow, error) {
	if err := ctxErr(ctx, "bucket "+p.Field); err != nil {
		return nil, err
	}
	return bucketProducts(r.snapshot(query.Filter{}), p), nil
}

func (r *MemoryRepository) Segments(ctx context.Context, p SegmentPipeline) ([]models.SegmentRow, error) {
	if err := ctxErr(ctx, "segments "+p.GroupField); err != nil {
		return nil, err
	}
	return segmentProducts(r.snapshot(query.Filter{}), p), nil
}

func (r *MemoryRepository) Overview(ctx context.Context) (models.OverviewRow, error) {
	if err := ctxErr(ctx, "overview"); err != nil {
		return models.OverviewRow{}, err
	}
	return overview(r.snapshot(query.Filter{})), nil
}

func (r *MemoryRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	if err := ctxErr(ctx, "categories"); err != nil {
		return nil, err
	}
	return categoryCounts(r.snapshot(query.Filter{})), nil
}

func (r *MemoryRepository) Create(ctx context.Context, product *models.Product) error {
	if err := ctxErr(ctx, "insert"); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = primitive.NewObjectID()
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctxErr(ctx, "find one"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[objID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &product, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctxErr(ctx, "update"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[objID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	update.Apply(&product, r.now())
	r.products[objID] = product
	return &product, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := ctxErr(ctx, "delete"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[objID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	delete(r.products, objID)
	return &product, nil
}

func (r *MemoryRepository) ReplaceAll(ctx context.Context, products []models.Product) (int, error) {
	if err := ctxErr(ctx, "insert many"); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[primitive.ObjectID]models.Product, len(products))
	for i := range products {
		if products[i].ID.IsZero() {
			products[i].ID = primitive.NewObjectID()
		}
		r.products[products[i].ID] = products[i]
	}
	return len(r.products), nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctxErr(ctx, "ping")
}
