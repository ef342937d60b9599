package models

// GroupRow es una fila de agrupación ($group) por categoría o marca, sin redondear
type GroupRow struct {
	Key             string   `bson:"_id"`
	Count           int64    `bson:"count"`
	TotalStock      int64    `bson:"totalStock"`
	TotalValue      float64  `bson:"totalValue"`
	AvgPrice        float64  `bson:"avgPrice"`
	MaxPrice        float64  `bson:"maxPrice"`
	MinPrice        float64  `bson:"minPrice"`
	AvgRating       *float64 `bson:"avgRating"`
	MaxRating       *float64 `bson:"maxRating"`
	MinRating       *float64 `bson:"minRating"`
	DiscountedCount int64    `bson:"discountedCount"`
	AvgDiscount     *float64 `bson:"avgDiscount"`
}

// BucketRow es una fila de distribución ($bucket). Lower es nil para el bucket por defecto.
type BucketRow struct {
	Lower         *float64
	Count         int64
	AvgRating     *float64
	AvgPrice      *float64
	TotalStock    int64
	CategoryCount int
}

// SegmentRow es un grupo repartido por tramos. Segments solo trae los tramos con productos.
type SegmentRow struct {
	Key      string         `bson:"_id"`
	Total    int64          `bson:"total"`
	Segments []SegmentCount `bson:"segments"`
}

type SegmentCount struct {
	Label string `bson:"label"`
	Count int64  `bson:"count"`
}

// OverviewRow contiene los totales globales de la colección
type OverviewRow struct {
	Count              int64    `bson:"count"`
	DistinctCategories int      `bson:"distinctCategories"`
	DistinctBrands     int      `bson:"distinctBrands"`
	AvgPrice           float64  `bson:"avgPrice"`
	MaxPrice           float64  `bson:"maxPrice"`
	MinPrice           float64  `bson:"minPrice"`
	TotalStock         int64    `bson:"totalStock"`
	TotalValue         float64  `bson:"totalValue"`
	AvgRating          *float64 `bson:"avgRating"`
	OutOfStock         int64    `bson:"outOfStock"`
	LowStock           int64    `bson:"lowStock"`
}

// CategoryCount es una categoría distinta con su número de productos
type CategoryCount struct {
	Name  string `json:"name" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}
