package models

import (
	"strings"
	"time"
)

// ProductInput es el cuerpo aceptado en POST /api/products
type ProductInput struct {
	Title              string                 `json:"title" binding:"required,notblank"`
	Price              *float64               `json:"price" binding:"required,gte=0"`
	Description        string                 `json:"description"`
	Category           string                 `json:"category"`
	Brand              string                 `json:"brand"`
	Stock              *int                   `json:"stock" binding:"omitempty,gte=0"`
	Rating             *float64               `json:"rating" binding:"omitempty,gte=0,lte=5"`
	DiscountPercentage *float64               `json:"discountPercentage" binding:"omitempty,gte=0,lte=100"`
	Tags               []string               `json:"tags"`
	ImageURL           string                 `json:"imageUrl"`
	Thumbnail          string                 `json:"thumbnail"`
	Images             []string               `json:"images"`
	Specifications     map[string]interface{} `json:"specifications"`
}

// ProductUpdate representa los campos actualizables de un producto.
// Cualquier otro campo del cuerpo (id, createdAt, searchKeywords...) se ignora.
type ProductUpdate struct {
	Title              *string                `json:"title,omitempty" binding:"omitempty,notblank"`
	Description        *string                `json:"description,omitempty"`
	Price              *float64               `json:"price,omitempty" binding:"omitempty,gte=0"`
	Category           *string                `json:"category,omitempty"`
	Brand              *string                `json:"brand,omitempty"`
	Stock              *int                   `json:"stock,omitempty" binding:"omitempty,gte=0"`
	Rating             *float64               `json:"rating,omitempty" binding:"omitempty,gte=0,lte=5"`
	DiscountPercentage *float64               `json:"discountPercentage,omitempty" binding:"omitempty,gte=0,lte=100"`
	Tags               []string               `json:"tags,omitempty"`
	ImageURL           *string                `json:"imageUrl,omitempty"`
	Specifications     map[string]interface{} `json:"specifications,omitempty"`
}

// IsEmpty indica que el cuerpo no trae ningún campo actualizable
func (u *ProductUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil && u.Category == nil &&
		u.Brand == nil && u.Stock == nil && u.Rating == nil && u.DiscountPercentage == nil &&
		u.Tags == nil && u.ImageURL == nil && u.Specifications == nil
}

// Apply aplica la actualización sobre p y devuelve el documento $set resultante.
// updatedAt cambia siempre; searchKeywords se recalcula si cambia title, brand o category.
func (u *ProductUpdate) Apply(p *Product, now time.Time) map[string]interface{} {
	set := map[string]interface{}{}
	keywords := false

	if u.Title != nil {
		p.Title = strings.TrimSpace(*u.Title)
		set[FieldTitle] = p.Title
		keywords = true
	}
	if u.Description != nil {
		p.Description = strings.TrimSpace(*u.Description)
		set[FieldDescription] = p.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
		set[FieldPrice] = p.Price
	}
	if u.Category != nil {
		p.Category = strings.TrimSpace(*u.Category)
		if p.Category == "" {
			p.Category = DefaultCategory
		}
		set[FieldCategory] = p.Category
		keywords = true
	}
	if u.Brand != nil {
		p.Brand = strings.TrimSpace(*u.Brand)
		set[FieldBrand] = p.Brand
		keywords = true
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
		set[FieldStock] = p.Stock
	}
	if u.Rating != nil {
		r := *u.Rating
		p.Rating = &r
		set[FieldRating] = r
	}
	if u.DiscountPercentage != nil {
		p.DiscountPercentage = *u.DiscountPercentage
		set[FieldDiscountPercentage] = p.DiscountPercentage
	}
	if u.Tags != nil {
		p.Tags = CleanTags(u.Tags)
		set[FieldTags] = p.Tags
	}
	if u.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*u.ImageURL)
		set[FieldImageURL] = p.ImageURL
	}
	if u.Specifications != nil {
		p.Specifications = u.Specifications
		set[FieldSpecifications] = p.Specifications
	}

	if keywords {
		p.SearchKeywords = SearchKeywords(p.Title, p.Brand, p.Category)
		set[FieldSearchKeywords] = p.SearchKeywords
	}
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.UpdatedAt = now
	set[FieldUpdatedAt] = now
	return set
}
