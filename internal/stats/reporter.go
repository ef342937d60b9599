package stats

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"products-api/internal/apperror"
	"products-api/internal/models"
	"products-api/internal/query"
	"products-api/internal/repository"
)

// Nombres de etapa que aparecen en AggregationError
const (
	StageCategories  = "categories"
	StageBrands      = "brands"
	StageTopBrands   = "topBrands"
	StagePrices      = "priceDistribution"
	StageRatings     = "ratingDistribution"
	StageBestRated   = "bestRatedAnalysis"
	StagePriceTrends = "priceTrends"
	StageOverview    = "overview"
)

// Los productos de más de este precio entran en el top de mejor valorados
const (
	bestRatedMinPrice = 500
	bestRatedLimit    = 5
)

// Reporter calcula las estadísticas agregadas sobre toda la colección.
// Las sub-consultas se lanzan en paralelo sin snapshot común: se acepta read-skew.
type Reporter struct {
	store repository.Store
	log   *logrus.Logger
	now   func() time.Time
}

func NewReporter(store repository.Store, log *logrus.Logger) *Reporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reporter{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// stage ejecuta una sub-consulta dentro del grupo y etiqueta su error
func (r *Reporter) stage(ctx context.Context, g *errgroup.Group, name string, fn func(context.Context) error) {
	g.Go(func() error {
		start := time.Now()
		err := fn(ctx)
		r.log.WithFields(logrus.Fields{
			"stage":    name,
			"duration": time.Since(start).Milliseconds(),
		}).Debug("aggregation stage finished")
		if err != nil {
			return &apperror.AggregationError{Stage: name, Err: err}
		}
		return nil
	})
}

type raw struct {
	categories []models.GroupRow
	brands     []models.GroupRow
	topBrands  []models.GroupRow
	prices     []models.BucketRow
	ratings    []models.BucketRow
	bestRated  []models.Product
	trends     []models.SegmentRow
	overview   models.OverviewRow
}

func (r *Reporter) groupStage(ctx context.Context, g *errgroup.Group, name string, p repository.GroupPipeline, out *[]models.GroupRow) {
	r.stage(ctx, g, name, func(ctx context.Context) error {
		rows, err := r.store.Group(ctx, p)
		*out = rows
		return err
	})
}

func (r *Reporter) bucketStage(ctx context.Context, g *errgroup.Group, name string, p repository.BucketPipeline, out *[]models.BucketRow) {
	r.stage(ctx, g, name, func(ctx context.Context) error {
		rows, err := r.store.Bucket(ctx, p)
		*out = rows
		return err
	})
}

// BestRatedFilter selecciona los productos caros que tienen rating
func BestRatedFilter() query.Filter {
	var f query.Filter
	f.Add(query.Range{Field: models.FieldPrice, Lower: &query.Bound{Value: bestRatedMinPrice}})
	f.Add(query.Range{Field: models.FieldRating, Lower: &query.Bound{Value: 0, Inclusive: true}})
	return f
}

func (r *Reporter) bestRatedStage(ctx context.Context, g *errgroup.Group, out *[]models.Product) {
	r.stage(ctx, g, StageBestRated, func(ctx context.Context) error {
		items, err := r.store.Find(ctx, BestRatedFilter(), query.Sort{Field: models.FieldRating}, 0, bestRatedLimit)
		*out = items
		return err
	})
}

func (r *Reporter) segmentStage(ctx context.Context, g *errgroup.Group, name string, p repository.SegmentPipeline, out *[]models.SegmentRow) {
	r.stage(ctx, g, name, func(ctx context.Context) error {
		rows, err := r.store.Segments(ctx, p)
		*out = rows
		return err
	})
}

func (r *Reporter) overviewStage(ctx context.Context, g *errgroup.Group, out *models.OverviewRow) {
	r.stage(ctx, g, StageOverview, func(ctx context.Context) error {
		row, err := r.store.Overview(ctx)
		*out = row
		return err
	})
}

// Report ejecuta todas las agregaciones y falla con la primera etapa que falle
func (r *Reporter) Report(ctx context.Context) (*Report, error) {
	var data raw

	g, gctx := errgroup.WithContext(ctx)
	r.groupStage(gctx, g, StageCategories, repository.CategoryPipeline, &data.categories)
	r.groupStage(gctx, g, StageBrands, repository.BrandPipeline, &data.brands)
	r.groupStage(gctx, g, StageTopBrands, repository.TopBrandsPipeline, &data.topBrands)
	r.bucketStage(gctx, g, StagePrices, repository.PriceBuckets, &data.prices)
	r.bucketStage(gctx, g, StageRatings, repository.RatingBuckets, &data.ratings)
	r.bestRatedStage(gctx, g, &data.bestRated)
	r.segmentStage(gctx, g, StagePriceTrends, repository.PriceTrendPipeline, &data.trends)
	r.overviewStage(gctx, g, &data.overview)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// El total solo se conoce al terminar el overview, por eso los porcentajes van aparte
	total := data.overview.Count
	return &Report{
		Overall:            buildOverview(data.overview),
		ByCategory:         buildGroups(data.categories, total),
		ByBrand:            buildBrands(data.brands, total),
		TopBrands:          buildBrands(data.topBrands, total),
		PriceDistribution:  buildBuckets(data.prices, repository.PriceBuckets, total),
		RatingDistribution: buildBuckets(data.ratings, repository.RatingBuckets, total),
		BestRated:          buildRated(data.bestRated),
		PriceTrends:        buildTrends(data.trends, repository.PriceTrendPipeline.Buckets),
		GeneratedAt:        r.now(),
	}, nil
}

// Categories devuelve solo el desglose por categoría
func (r *Reporter) Categories(ctx context.Context) ([]GroupStats, error) {
	var rows []models.GroupRow
	var ov models.OverviewRow

	g, gctx := errgroup.WithContext(ctx)
	r.groupStage(gctx, g, StageCategories, repository.CategoryPipeline, &rows)
	r.overviewStage(gctx, g, &ov)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildGroups(rows, ov.Count), nil
}

// Brands devuelve el top de marcas por valor de inventario
func (r *Reporter) Brands(ctx context.Context) ([]BrandStats, error) {
	var rows []models.GroupRow
	var ov models.OverviewRow

	g, gctx := errgroup.WithContext(ctx)
	r.groupStage(gctx, g, StageBrands, repository.BrandPipeline, &rows)
	r.overviewStage(gctx, g, &ov)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildBrands(rows, ov.Count), nil
}

func (r *Reporter) PriceDistribution(ctx context.Context) ([]BucketStats, error) {
	return r.distribution(ctx, StagePrices, repository.PriceBuckets)
}

func (r *Reporter) RatingDistribution(ctx context.Context) ([]BucketStats, error) {
	return r.distribution(ctx, StageRatings, repository.RatingBuckets)
}

func (r *Reporter) distribution(ctx context.Context, name string, p repository.BucketPipeline) ([]BucketStats, error) {
	var rows []models.BucketRow
	var ov models.OverviewRow

	g, gctx := errgroup.WithContext(ctx)
	r.bucketStage(gctx, g, name, p, &rows)
	r.overviewStage(gctx, g, &ov)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildBuckets(rows, p, ov.Count), nil
}

// CategoryList lista las categorías distintas con su número de productos, por nombre
func (r *Reporter) CategoryList(ctx context.Context) ([]models.CategoryCount, error) {
	counts, err := r.store.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []models.CategoryCount{}
	}
	return counts, nil
}

func buildOverview(row models.OverviewRow) Overview {
	return Overview{
		TotalProducts:   row.Count,
		TotalCategories: row.DistinctCategories,
		TotalBrands:     row.DistinctBrands,
		AveragePrice:    money(row.AvgPrice),
		MaxPrice:        money(row.MaxPrice),
		MinPrice:        money(row.MinPrice),
		TotalStock:      row.TotalStock,
		TotalStockValue: money(row.TotalValue),
		AverageRating:   rating(row.AvgRating),
		InStock:         row.Count - row.OutOfStock,
		OutOfStock:      row.OutOfStock,
		LowStock:        row.LowStock,
	}
}

func buildGroup(row models.GroupRow, total int64) GroupStats {
	s := GroupStats{
		Name:               row.Key,
		TotalProducts:      row.Count,
		TotalStock:         row.TotalStock,
		TotalValue:         money(row.TotalValue),
		AveragePrice:       money(row.AvgPrice),
		MaxPrice:           money(row.MaxPrice),
		MinPrice:           money(row.MinPrice),
		PriceRange:         money(row.MaxPrice - row.MinPrice),
		AverageRating:      rating(row.AvgRating),
		MaxRating:          rating(row.MaxRating),
		MinRating:          rating(row.MinRating),
		DiscountedProducts: row.DiscountedCount,
		AverageDiscount:    moneyPtr(row.AvgDiscount),
		Percentage:         percentage(row.Count, total),
	}
	if row.Count > 0 {
		s.DiscountRate = percentage(row.DiscountedCount, row.Count)
		s.AverageValuePerProduct = money(row.TotalValue / float64(row.Count))
	}
	if row.AvgRating != nil {
		score := money(*row.AvgRating / 5 * math.Log10(float64(row.Count)+1))
		s.PerformanceScore = &score
	}
	return s
}

func buildGroups(rows []models.GroupRow, total int64) []GroupStats {
	out := make([]GroupStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildGroup(row, total))
	}
	return out
}

func buildBrands(rows []models.GroupRow, total int64) []BrandStats {
	out := make([]BrandStats, 0, len(rows))
	for _, row := range rows {
		g := buildGroup(row, total)
		out = append(out, BrandStats{GroupStats: g, MarketShare: g.Percentage})
	}
	return out
}

// buildBuckets lista todos los tramos en orden, incluidos los vacíos, y el de defecto al final
func buildBuckets(rows []models.BucketRow, p repository.BucketPipeline, total int64) []BucketStats {
	byLower := make(map[float64]models.BucketRow, len(rows))
	var fallback *models.BucketRow
	for i := range rows {
		if rows[i].Lower == nil {
			fallback = &rows[i]
			continue
		}
		byLower[*rows[i].Lower] = rows[i]
	}

	out := make([]BucketStats, 0, len(p.Labels)+1)
	for i, label := range p.Labels {
		row := byLower[p.Boundaries[i]]
		out = append(out, buildBucket(label, row, total, p.Field))
	}

	var row models.BucketRow
	if fallback != nil {
		row = *fallback
	}
	out = append(out, buildBucket(p.DefaultLabel, row, total, p.Field))
	return out
}

func buildBucket(label string, row models.BucketRow, total int64, field string) BucketStats {
	b := BucketStats{
		Range:         label,
		Count:         row.Count,
		Percentage:    percentage(row.Count, total),
		TotalStock:    row.TotalStock,
		CategoryCount: row.CategoryCount,
	}
	// La distribución de precios informa el rating medio y la de ratings el precio medio
	if field == models.FieldPrice {
		b.AverageRating = rating(row.AvgRating)
	} else {
		b.AveragePrice = moneyPtr(row.AvgPrice)
	}
	return b
}

func buildRated(products []models.Product) []RatedProduct {
	out := make([]RatedProduct, 0, len(products))
	for i := range products {
		p := &products[i]
		item := RatedProduct{
			ID:       p.ID.Hex(),
			Title:    p.Title,
			Category: p.Category,
			Brand:    p.Brand,
			Price:    money(p.Price),
		}
		if p.Rating != nil {
			item.Rating = *p.Rating
		}
		out = append(out, item)
	}
	return out
}

// buildTrends lista todos los tramos de cada categoría, incluidos los vacíos
func buildTrends(rows []models.SegmentRow, b repository.BucketPipeline) []PriceTrend {
	labels := append(append([]string{}, b.Labels...), b.DefaultLabel)

	out := make([]PriceTrend, 0, len(rows))
	for _, row := range rows {
		counts := make(map[string]int64, len(row.Segments))
		for _, seg := range row.Segments {
			counts[seg.Label] += seg.Count
		}

		trend := PriceTrend{
			Category:      row.Key,
			TotalProducts: row.Total,
			Segments:      make([]SegmentStats, 0, len(labels)),
		}
		for _, label := range labels {
			trend.Segments = append(trend.Segments, SegmentStats{
				Range:      label,
				Count:      counts[label],
				Percentage: percentage(counts[label], row.Total),
			})
		}
		out = append(out, trend)
	}
	return out
}

// SummarizePage resume una página del listado; nil si está vacía
func SummarizePage(products []models.Product) *PageStats {
	if len(products) == 0 {
		return nil
	}

	s := &PageStats{MinPrice: products[0].Price, MaxPrice: products[0].Price}
	categories := map[string]struct{}{}
	var sum float64
	for i := range products {
		p := &products[i]
		sum += p.Price
		s.MinPrice = math.Min(s.MinPrice, p.Price)
		s.MaxPrice = math.Max(s.MaxPrice, p.Price)
		s.TotalStock += int64(p.Stock)
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
	}
	s.MinPrice = money(s.MinPrice)
	s.MaxPrice = money(s.MaxPrice)
	s.AveragePrice = money(sum / float64(len(products)))
	s.DistinctCategories = len(categories)
	return s
}
