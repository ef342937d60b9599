package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Nombres de campo en la colección
const (
	FieldID                 = "_id"
	FieldTitle              = "title"
	FieldDescription        = "description"
	FieldPrice              = "price"
	FieldCategory           = "category"
	FieldBrand              = "brand"
	FieldStock              = "stock"
	FieldRating             = "rating"
	FieldTags               = "tags"
	FieldImageURL           = "imageUrl"
	FieldThumbnail          = "thumbnail"
	FieldImages             = "images"
	FieldSpecifications     = "specifications"
	FieldDiscountPercentage = "discountPercentage"
	FieldSearchKeywords     = "searchKeywords"
	FieldCreatedAt          = "createdAt"
	FieldUpdatedAt          = "updatedAt"
)

const (
	DefaultCategory = "uncategorized"
	CreatedByAPI    = "api"
	CreatedBySeed   = "seed"
)

// Product representa un producto del catálogo
type Product struct {
	ID                 primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Title              string                 `json:"title" bson:"title"`
	Description        string                 `json:"description" bson:"description"`
	Price              float64                `json:"price" bson:"price"`
	Category           string                 `json:"category" bson:"category"`
	Brand              string                 `json:"brand" bson:"brand"`
	Stock              int                    `json:"stock" bson:"stock"`
	Rating             *float64               `json:"rating" bson:"rating"`
	DiscountPercentage float64                `json:"discountPercentage,omitempty" bson:"discountPercentage,omitempty"`
	Tags               []string               `json:"tags" bson:"tags"`
	ImageURL           string                 `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Thumbnail          string                 `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Images             []string               `json:"images,omitempty" bson:"images,omitempty"`
	Specifications     map[string]interface{} `json:"specifications,omitempty" bson:"specifications,omitempty"`
	CreatedBy          string                 `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	SearchKeywords     []string               `json:"searchKeywords,omitempty" bson:"searchKeywords,omitempty"`
	Score              float64                `json:"score,omitempty" bson:"score,omitempty"`
	CreatedAt          time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// InStock indica si queda stock disponible
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// NewProduct construye un producto a partir del cuerpo de creación ya validado
func NewProduct(in ProductInput, createdBy string, now time.Time) Product {
	p := Product{
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Category:       strings.TrimSpace(in.Category),
		Brand:          strings.TrimSpace(in.Brand),
		ImageURL:       strings.TrimSpace(in.ImageURL),
		Thumbnail:      strings.TrimSpace(in.Thumbnail),
		Images:         in.Images,
		Tags:           CleanTags(in.Tags),
		Rating:         in.Rating,
		Specifications: in.Specifications,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.DiscountPercentage != nil {
		p.DiscountPercentage = *in.DiscountPercentage
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Specifications == nil {
		p.Specifications = map[string]interface{}{}
	}
	p.SearchKeywords = SearchKeywords(p.Title, p.Brand, p.Category)
	return p
}

// SearchKeywords deriva las palabras clave en minúsculas usadas para la búsqueda
func SearchKeywords(title, brand, category string) []string {
	keywords := make([]string, 0, 3)
	for _, v := range []string{title, brand, category} {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			keywords = append(keywords, v)
		}
	}
	return keywords
}

// CleanTags recorta los tags y descarta los vacíos
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned
}
