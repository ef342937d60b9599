package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"products-api/internal/apperror"
	"products-api/internal/models"
	"products-api/internal/query"
)

// Timeouts por operación
type Timeouts struct {
	Query time.Duration
	Write time.Duration
}

// ProductRepository implementa ProductStore sobre una colección de MongoDB
type ProductRepository struct {
	collection *mongo.Collection
	timeouts   Timeouts
}

func NewProductRepository(collection *mongo.Collection, timeouts Timeouts) *ProductRepository {
	if timeouts.Query <= 0 {
		timeouts.Query = 10 * time.Second
	}
	if timeouts.Write <= 0 {
		timeouts.Write = 5 * time.Second
	}
	return &ProductRepository{
		collection: collection,
		timeouts:   timeouts,
	}
}

// Find devuelve una página de productos que cumplen el filtro
func (r *ProductRepository) Find(ctx context.Context, filter query.Filter, sort query.Sort, skip, limit int) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Query)
	defer cancel()

	_, hasText := filter.Text()
	if sort.Relevance && !hasText {
		sort = query.Sort{Field: models.FieldTitle, Ascending: true}
	}

	findOptions := options.Find().SetSort(SortToBSON(sort))
	if sort.Relevance {
		findOptions.SetProjection(bson.D{{Key: scoreField, Value: bson.D{{Key: "$meta", Value: "textScore"}}}})
	}
	if skip > 0 {
		findOptions.SetSkip(int64(skip))
	}
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, FilterToBSON(filter), findOptions)
	if err != nil {
		return nil, wrap("find", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err = cursor.All(ctx, &products); err != nil {
		return nil, wrap("find", err)
	}
	return products, nil
}

// Count cuenta todos los productos que cumplen el filtro, sin ventana
func (r *ProductRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Query)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, FilterToBSON(filter))
	if err != nil {
		return 0, wrap("count", err)
	}
	return total, nil
}

// Group ejecuta una agrupación por categoría o marca
func (r *ProductRepository) Group(ctx context.Context, p GroupPipeline) ([]models.GroupRow, error) {
	rows := make([]models.GroupRow, 0)
	if err := r.aggregate(ctx, "group "+p.Field, groupStages(p), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type bucketDoc struct {
	ID            interface{} `bson:"_id"`
	Count         int64       `bson:"count"`
	AvgRating     *float64    `bson:"avgRating"`
	AvgPrice      *float64    `bson:"avgPrice"`
	TotalStock    int64       `bson:"totalStock"`
	CategoryCount int         `bson:"categoryCount"`
}

// Bucket ejecuta una distribución por tramos
func (r *ProductRepository) Bucket(ctx context.Context, p BucketPipeline) ([]models.BucketRow, error) {
	var docs []bucketDoc
	if err := r.aggregate(ctx, "bucket "+p.Field, bucketStages(p), &docs); err != nil {
		return nil, err
	}

	rows := make([]models.BucketRow, 0, len(docs))
	for _, d := range docs {
		row := models.BucketRow{
			Count:         d.Count,
			AvgRating:     d.AvgRating,
			AvgPrice:      d.AvgPrice,
			TotalStock:    d.TotalStock,
			CategoryCount: d.CategoryCount,
		}
		switch v := d.ID.(type) {
		case float64:
			row.Lower = &v
		case int32:
			f := float64(v)
			row.Lower = &f
		case int64:
			f := float64(v)
			row.Lower = &f
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Segments reparte los grupos más numerosos por tramos
func (r *ProductRepository) Segments(ctx context.Context, p SegmentPipeline) ([]models.SegmentRow, error) {
	rows := make([]models.SegmentRow, 0)
	if err := r.aggregate(ctx, "segments "+p.GroupField, segmentStages(p), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Overview calcula los totales globales; una colección vacía devuelve ceros
func (r *ProductRepository) Overview(ctx context.Context) (models.OverviewRow, error) {
	var rows []models.OverviewRow
	if err := r.aggregate(ctx, "overview", overviewStages(), &rows); err != nil {
		return models.OverviewRow{}, err
	}
	if len(rows) == 0 {
		return models.OverviewRow{}, nil
	}
	return rows[0], nil
}

// CategoryCounts lista las categorías distintas con su número de productos
func (r *ProductRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	counts := make([]models.CategoryCount, 0)
	if err := r.aggregate(ctx, "categories", categoryCountStages(), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *ProductRepository) aggregate(ctx context.Context, op string, pipeline bson.A, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Query)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return wrap(op, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return wrap(op, err)
	}
	return nil
}

// Create crea un nuevo producto
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	product.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, product)
	return wrap("insert", err)
}

// FindByID obtiene un producto por ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Query)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{models.FieldID: objID}).Decode(&product); err != nil {
		return nil, wrap("find one", err)
	}
	return &product, nil
}

// Update aplica una actualización parcial y devuelve el producto resultante
func (r *ProductRepository) Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	set := update.Apply(product, time.Now().UTC())
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{models.FieldID: product.ID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, wrap("update", err)
	}
	return &updated, nil
}

// Delete elimina definitivamente un producto y lo devuelve
func (r *ProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Write)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOneAndDelete(ctx, bson.M{models.FieldID: objID}).Decode(&product); err != nil {
		return nil, wrap("delete", err)
	}
	return &product, nil
}

// ReplaceAll vacía la colección e inserta los productos dados
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []models.Product) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Write*time.Duration(1+len(products)/100))
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return 0, wrap("delete many", err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(products))
	for i := range products {
		if products[i].ID.IsZero() {
			products[i].ID = primitive.NewObjectID()
		}
		docs = append(docs, products[i])
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, wrap("insert many", err)
	}
	return len(result.InsertedIDs), nil
}

// Ping verifica la conexión con el servidor
func (r *ProductRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeouts.Query)
	defer cancel()

	return wrap("ping", r.collection.Database().Client().Ping(ctx, readpref.Primary()))
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.InvalidInput("invalid product ID",
			apperror.FieldError{Field: "id", Message: "must be a 24-character hex ObjectId"})
	}
	return objID, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.ErrNotFound
	}
	return &apperror.StoreError{Op: op, Err: err, Timeout: mongo.IsTimeout(err)}
}
