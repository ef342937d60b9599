package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"products-api/internal/models"
)

func fieldRef(field string) string { return "$" + field }

func ifNull(field string) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{fieldRef(field), 0}}}
}

func inventoryValue() bson.D {
	return bson.D{{Key: "$multiply", Value: bson.A{ifNull(models.FieldPrice), ifNull(models.FieldStock)}}}
}

func countIf(cond bson.D) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{cond, 1, 0}}}}}
}

// groupStages construye $match/$group/$sort/$limit para una agrupación
func groupStages(p GroupPipeline) bson.A {
	sortKey := "avgPrice"
	switch p.Sort {
	case ByTotalValueDesc:
		sortKey = "totalValue"
	case ByCountDesc:
		sortKey = "count"
	}

	stages := bson.A{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: p.Field, Value: bson.D{{Key: "$exists", Value: true}, {Key: "$nin", Value: bson.A{"", nil}}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: fieldRef(p.Field)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalStock", Value: bson.D{{Key: "$sum", Value: ifNull(models.FieldStock)}}},
			{Key: "totalValue", Value: bson.D{{Key: "$sum", Value: inventoryValue()}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: fieldRef(models.FieldPrice)}}},
			{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: fieldRef(models.FieldPrice)}}},
			{Key: "minPrice", Value: bson.D{{Key: "$min", Value: fieldRef(models.FieldPrice)}}},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: fieldRef(models.FieldRating)}}},
			{Key: "maxRating", Value: bson.D{{Key: "$max", Value: fieldRef(models.FieldRating)}}},
			{Key: "minRating", Value: bson.D{{Key: "$min", Value: fieldRef(models.FieldRating)}}},
			{Key: "discountedCount", Value: countIf(bson.D{
				{Key: "$gt", Value: bson.A{fieldRef(models.FieldDiscountPercentage), 0}},
			})},
			{Key: "avgDiscount", Value: bson.D{{Key: "$avg", Value: fieldRef(models.FieldDiscountPercentage)}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: sortKey, Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if p.Limit > 0 {
		stages = append(stages, bson.D{{Key: "$limit", Value: p.Limit}})
	}
	return stages
}

// bucketStages construye $bucket/$project para una distribución
func bucketStages(p BucketPipeline) bson.A {
	boundaries := make(bson.A, 0, len(p.Boundaries))
	for _, b := range p.Boundaries {
		boundaries = append(boundaries, b)
	}

	return bson.A{
		bson.D{{Key: "$bucket", Value: bson.D{
			{Key: "groupBy", Value: fieldRef(p.Field)},
			{Key: "boundaries", Value: boundaries},
			{Key: "default", Value: p.DefaultLabel},
			{Key: "output", Value: bson.D{
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: fieldRef(models.FieldRating)}}},
				{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: fieldRef(models.FieldPrice)}}},
				{Key: "totalStock", Value: bson.D{{Key: "$sum", Value: ifNull(models.FieldStock)}}},
				{Key: "categories", Value: bson.D{{Key: "$addToSet", Value: fieldRef(models.FieldCategory)}}},
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "count", Value: 1},
			{Key: "avgRating", Value: 1},
			{Key: "avgPrice", Value: 1},
			{Key: "totalStock", Value: 1},
			{Key: "categoryCount", Value: bson.D{{Key: "$size", Value: nonEmpty("$categories")}}},
		}}},
	}
}

// segmentLabel asigna la etiqueta del tramo [b[i], b[i+1]) o la de defecto
func segmentLabel(b BucketPipeline) bson.D {
	branches := make(bson.A, 0, len(b.Labels))
	for i, label := range b.Labels {
		branches = append(branches, bson.D{
			{Key: "case", Value: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$gte", Value: bson.A{fieldRef(b.Field), b.Boundaries[i]}}},
				bson.D{{Key: "$lt", Value: bson.A{fieldRef(b.Field), b.Boundaries[i+1]}}},
			}}}},
			{Key: "then", Value: label},
		})
	}
	return bson.D{{Key: "$switch", Value: bson.D{
		{Key: "branches", Value: branches},
		{Key: "default", Value: b.DefaultLabel},
	}}}
}

// segmentStages agrupa por (grupo, tramo) y luego junta los tramos de cada grupo
func segmentStages(p SegmentPipeline) bson.A {
	stages := bson.A{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: p.GroupField, Value: bson.D{{Key: "$exists", Value: true}, {Key: "$nin", Value: bson.A{"", nil}}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "key", Value: fieldRef(p.GroupField)},
				{Key: "label", Value: segmentLabel(p.Buckets)},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id.key"},
			{Key: "segments", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "label", Value: "$_id.label"},
				{Key: "count", Value: "$count"},
			}}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$count"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if p.Limit > 0 {
		stages = append(stages, bson.D{{Key: "$limit", Value: p.Limit}})
	}
	return stages
}

// overviewStages calcula los totales globales en un único grupo
func overviewStages() bson.A {
	stock := ifNull(models.FieldStock)
	return bson.A{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: fieldRef(models.FieldPrice)}}},
			{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: fieldRef(models.FieldPrice)}}},
			{Key: "minPrice", Value: bson.D{{Key: "$min", Value: fieldRef(models.FieldPrice)}}},
			{Key: "totalStock", Value: bson.D{{Key: "$sum", Value: stock}}},
			{Key: "totalValue", Value: bson.D{{Key: "$sum", Value: inventoryValue()}}},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: fieldRef(models.FieldRating)}}},
			{Key: "outOfStock", Value: countIf(bson.D{{Key: "$lte", Value: bson.A{stock, 0}}})},
			{Key: "lowStock", Value: countIf(bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$gt", Value: bson.A{stock, 0}}},
				bson.D{{Key: "$lte", Value: bson.A{stock, lowStockThreshold}}},
			}}})},
			{Key: "categories", Value: bson.D{{Key: "$addToSet", Value: fieldRef(models.FieldCategory)}}},
			{Key: "brands", Value: bson.D{{Key: "$addToSet", Value: fieldRef(models.FieldBrand)}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "count", Value: 1},
			{Key: "avgPrice", Value: 1},
			{Key: "maxPrice", Value: 1},
			{Key: "minPrice", Value: 1},
			{Key: "totalStock", Value: 1},
			{Key: "totalValue", Value: 1},
			{Key: "avgRating", Value: 1},
			{Key: "outOfStock", Value: 1},
			{Key: "lowStock", Value: 1},
			{Key: "distinctCategories", Value: bson.D{{Key: "$size", Value: nonEmpty("$categories")}}},
			{Key: "distinctBrands", Value: bson.D{{Key: "$size", Value: nonEmpty("$brands")}}},
		}}},
	}
}

func categoryCountStages() bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: models.FieldCategory, Value: bson.D{{Key: "$exists", Value: true}, {Key: "$nin", Value: bson.A{"", nil}}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: fieldRef(models.FieldCategory)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func nonEmpty(set string) bson.D {
	return bson.D{{Key: "$setDifference", Value: bson.A{set, bson.A{"", nil}}}}
}
