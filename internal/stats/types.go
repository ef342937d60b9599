package stats

import "time"

// GroupStats son las métricas de una categoría o marca ya redondeadas
type GroupStats struct {
	Name                   string   `json:"name"`
	TotalProducts          int64    `json:"totalProducts"`
	TotalStock             int64    `json:"totalStock"`
	TotalValue             float64  `json:"totalValue"`
	AveragePrice           float64  `json:"averagePrice"`
	MaxPrice               float64  `json:"maxPrice"`
	MinPrice               float64  `json:"minPrice"`
	PriceRange             float64  `json:"priceRange"`
	AverageRating          *float64 `json:"averageRating"`
	MaxRating              *float64 `json:"maxRating"`
	MinRating              *float64 `json:"minRating"`
	DiscountedProducts     int64    `json:"totalDiscountProducts"`
	DiscountRate           float64  `json:"discountRate"`
	AverageDiscount        *float64 `json:"averageDiscount"`
	AverageValuePerProduct float64  `json:"averageValuePerProduct"`
	PerformanceScore       *float64 `json:"performanceScore"`
	Percentage             float64  `json:"percentage"`
}

// BrandStats agrega la cuota de mercado por número de productos
type BrandStats struct {
	GroupStats
	MarketShare float64 `json:"marketShare"`
}

// BucketStats es un tramo de una distribución. Los tramos vacíos se listan con count 0.
type BucketStats struct {
	Range         string   `json:"range"`
	Count         int64    `json:"count"`
	Percentage    float64  `json:"percentage"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	AveragePrice  *float64 `json:"averagePrice,omitempty"`
	TotalStock    int64    `json:"totalStock"`
	CategoryCount int      `json:"categoryCount"`
}

// PriceTrend es el reparto por tramos de precio de una categoría.
// Los porcentajes son sobre el total de la propia categoría.
type PriceTrend struct {
	Category      string         `json:"category"`
	TotalProducts int64          `json:"totalProducts"`
	Segments      []SegmentStats `json:"priceSegments"`
}

type SegmentStats struct {
	Range      string  `json:"range"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RatedProduct es una entrada del top de productos caros mejor valorados
type RatedProduct struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
}

// Overview son los totales de la colección
type Overview struct {
	TotalProducts   int64    `json:"totalProducts"`
	TotalCategories int      `json:"totalCategories"`
	TotalBrands     int      `json:"totalBrands"`
	AveragePrice    float64  `json:"averagePrice"`
	MaxPrice        float64  `json:"maxPrice"`
	MinPrice        float64  `json:"minPrice"`
	TotalStock      int64    `json:"totalStock"`
	TotalStockValue float64  `json:"totalStockValue"`
	AverageRating   *float64 `json:"averageRating"`
	InStock         int64    `json:"inStock"`
	OutOfStock      int64    `json:"outOfStock"`
	LowStock        int64    `json:"lowStock"`
}

// Report es el resultado completo de GET /api/products/stats
type Report struct {
	Overall            Overview       `json:"overall"`
	ByCategory         []GroupStats   `json:"byCategory"`
	ByBrand            []BrandStats   `json:"byBrand"`
	TopBrands          []BrandStats   `json:"topBrands"`
	PriceDistribution  []BucketStats  `json:"priceDistribution"`
	RatingDistribution []BucketStats  `json:"ratingDistribution"`
	BestRated          []RatedProduct `json:"bestRatedAnalysis"`
	PriceTrends        []PriceTrend   `json:"priceTrends"`
	GeneratedAt        time.Time      `json:"generatedAt"`
}

// PageStats resume los productos de una página del listado
type PageStats struct {
	MinPrice           float64 `json:"minPrice"`
	MaxPrice           float64 `json:"maxPrice"`
	AveragePrice       float64 `json:"averagePrice"`
	TotalStock         int64   `json:"totalStock"`
	DistinctCategories int     `json:"distinctCategories"`
}
