package repository

import (
	"context"
	"math"

	"products-api/internal/models"
	"products-api/internal/query"
)

// Un producto con stock entre 1 y este valor cuenta como stock bajo
const lowStockThreshold = 10

// GroupSort es el orden de las filas agrupadas
type GroupSort int

const (
	ByAvgPriceDesc GroupSort = iota
	ByTotalValueDesc
	ByCountDesc
)

// GroupPipeline describe una agrupación por un campo de texto no vacío
type GroupPipeline struct {
	Field string
	Sort  GroupSort
	Limit int
}

// BucketPipeline describe una distribución por tramos [b[i], b[i+1]).
// Los valores fuera de los límites o ausentes van al bucket por defecto.
type BucketPipeline struct {
	Field        string
	Boundaries   []float64
	Labels       []string
	DefaultLabel string
}

// SegmentPipeline reparte cada grupo de GroupField en los tramos de Buckets.
// Solo se devuelven los Limit grupos con más productos.
type SegmentPipeline struct {
	GroupField string
	Buckets    BucketPipeline
	Limit      int
}

// Pipelines usados por el reporte
var (
	CategoryPipeline  = GroupPipeline{Field: models.FieldCategory, Sort: ByAvgPriceDesc, Limit: 50}
	BrandPipeline     = GroupPipeline{Field: models.FieldBrand, Sort: ByTotalValueDesc, Limit: 10}
	TopBrandsPipeline = GroupPipeline{Field: models.FieldBrand, Sort: ByCountDesc, Limit: 10}

	PriceBuckets = BucketPipeline{
		Field:        models.FieldPrice,
		Boundaries:   []float64{0, 100, 500, 1000, 2000, 5000, 10000},
		Labels:       []string{"0-100", "100-500", "500-1000", "1000-2000", "2000-5000", "5000-10000"},
		DefaultLabel: "10000+",
	}
	// El último límite se desplaza para que un rating de exactamente 5 caiga en 4-5
	RatingBuckets = BucketPipeline{
		Field:        models.FieldRating,
		Boundaries:   []float64{0, 1, 2, 3, 4, math.Nextafter(5, 6)},
		Labels:       []string{"0-1", "1-2", "2-3", "3-4", "4-5"},
		DefaultLabel: "unrated",
	}
	PriceTrendPipeline = SegmentPipeline{
		GroupField: models.FieldCategory,
		Buckets: BucketPipeline{
			Field:        models.FieldPrice,
			Boundaries:   []float64{0, 100, 500, 1000},
			Labels:       []string{"0-100", "100-500", "500-1000"},
			DefaultLabel: "1000+",
		},
		Limit: 5,
	}
)

// Store es la capacidad de lectura que consumen el builder y el reporte
type Store interface {
	query.Finder
	Group(ctx context.Context, p GroupPipeline) ([]models.GroupRow, error)
	Bucket(ctx context.Context, p BucketPipeline) ([]models.BucketRow, error)
	Segments(ctx context.Context, p SegmentPipeline) ([]models.SegmentRow, error)
	Overview(ctx context.Context) (models.OverviewRow, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
}

// ProductStore agrega las operaciones de escritura de la API y del seed
type ProductStore interface {
	Store
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
	ReplaceAll(ctx context.Context, products []models.Product) (int, error)
	Ping(ctx context.Context) error
}
