package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"products-api/internal/models"
)

// SearchMode decide qué predicados genera el parámetro search
type SearchMode string

const (
	// SearchBoth adjunta la búsqueda de texto y el OR por subcadena a la vez
	SearchBoth SearchMode = "both"
	// SearchText usa solo el índice de texto
	SearchText SearchMode = "text"
	// SearchSubstring usa solo el OR por subcadena
	SearchSubstring SearchMode = "substring"
)

// ParseSearchMode valida el modo configurado
func ParseSearchMode(s string) (SearchMode, error) {
	switch m := SearchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SearchBoth, nil
	case SearchBoth, SearchText, SearchSubstring:
		return m, nil
	default:
		return "", fmt.Errorf("unknown search mode %q", s)
	}
}

const (
	defaultSortField   = models.FieldCreatedAt
	defaultSearchLimit = 20
	minRating          = 0
	maxRating          = 5
)

var sortFields = map[string]string{
	"price":     models.FieldPrice,
	"title":     models.FieldTitle,
	"name":      models.FieldTitle,
	"rating":    models.FieldRating,
	"created":   models.FieldCreatedAt,
	"createdAt": models.FieldCreatedAt,
	"stock":     models.FieldStock,
	"brand":     models.FieldBrand,
	"updated":   models.FieldUpdatedAt,
	"updatedAt": models.FieldUpdatedAt,
}

// SearchFields son los campos cubiertos por el OR de subcadena
var SearchFields = []string{
	models.FieldTitle,
	models.FieldDescription,
	models.FieldCategory,
	models.FieldBrand,
	models.FieldTags,
}

// Plan es el resultado del builder: predicado, orden y ventana
type Plan struct {
	Filter  Filter
	Sort    Sort
	Page    Page
	Applied map[string]interface{}
}

// BuildList traduce los parámetros de GET /api/products
func BuildList(values url.Values, mode SearchMode) Plan {
	s := Plan{
		Page:    ParsePage(values.Get("page"), values.Get("limit")),
		Applied: map[string]interface{}{},
	}

	// Categoría exacta sin distinguir mayúsculas
	if category := strings.TrimSpace(values.Get("category")); category != "" {
		s.Filter.Add(Equals{Field: models.FieldCategory, Value: category, FoldCase: true})
		s.Applied["category"] = category
	}

	if brand := strings.TrimSpace(values.Get("brand")); brand != "" {
		s.Filter.Add(Contains{Field: models.FieldBrand, Value: brand})
		s.Applied["brand"] = brand
	}

	s.addPriceRange(values.Get("minPrice"), values.Get("maxPrice"))

	switch values.Get("inStock") {
	case "true":
		s.Filter.Add(Range{Field: models.FieldStock, Lower: &Bound{Value: 0}})
		s.Applied["inStock"] = true
	case "false":
		s.Filter.Add(Range{Field: models.FieldStock, Upper: &Bound{Value: 0, Inclusive: true}})
		s.Applied["inStock"] = false
	}

	s.addMinRating(values.Get("rating"))
	s.addTags(values["tags"])

	if term := strings.TrimSpace(values.Get("search")); term != "" {
		if mode != SearchSubstring {
			s.Filter.Add(TextSearch{Term: term})
		}
		if mode != SearchText {
			s.Filter.Add(AnyFieldContains{Fields: SearchFields, Value: term})
		}
		s.Applied["search"] = term
	}

	field, ok := sortFields[values.Get("sort")]
	if !ok {
		field = defaultSortField
	}
	s.Sort = Sort{Field: field, Ascending: strings.EqualFold(values.Get("order"), "asc")}

	return s
}

// BuildAdvancedSearch traduce los parámetros de GET /api/products/search/advanced
func BuildAdvancedSearch(values url.Values) Plan {
	s := Plan{
		Page:    parsePage("", values.Get("limit"), defaultSearchLimit),
		Applied: map[string]interface{}{},
	}

	term := strings.TrimSpace(values.Get("query"))
	if term != "" {
		s.Filter.Add(TextSearch{Term: term})
		s.Applied["query"] = term
	}

	s.addPriceRange(values.Get("minPrice"), values.Get("maxPrice"))

	if category := strings.TrimSpace(values.Get("category")); category != "" {
		s.Filter.Add(Contains{Field: models.FieldCategory, Value: category})
		s.Applied["category"] = category
	}
	if brand := strings.TrimSpace(values.Get("brand")); brand != "" {
		s.Filter.Add(Contains{Field: models.FieldBrand, Value: brand})
		s.Applied["brand"] = brand
	}
	if values.Get("inStock") == "true" {
		s.Filter.Add(Range{Field: models.FieldStock, Lower: &Bound{Value: 0}})
		s.Applied["inStock"] = true
	}

	s.addMinRating(values.Get("minRating"))
	s.addTags(values["tags"])

	ascending := strings.EqualFold(values.Get("sortOrder"), "asc")
	switch sortBy := values.Get("sortBy"); {
	case sortBy == "price":
		s.Sort = Sort{Field: models.FieldPrice, Ascending: ascending}
	case sortBy == "rating":
		s.Sort = Sort{Field: models.FieldRating, Ascending: ascending}
	case sortBy == "newest":
		s.Sort = Sort{Field: models.FieldCreatedAt, Ascending: ascending}
	case term != "" && (sortBy == "" || sortBy == "relevance"):
		s.Sort = Sort{Relevance: true}
	default:
		s.Sort = Sort{Field: models.FieldTitle, Ascending: ascending}
	}

	return s
}

// addPriceRange agrega el rango de precio. Si solo llega el máximo el mínimo es 0.
func (s *Plan) addPriceRange(minRaw, maxRaw string) {
	lower, lowerOK := parseNonNegative(minRaw)
	upper, upperOK := parseNonNegative(maxRaw)
	if !lowerOK && !upperOK {
		return
	}

	r := Range{Field: models.FieldPrice, Lower: &Bound{Value: 0, Inclusive: true}}
	applied := map[string]float64{"min": 0}
	if lowerOK {
		r.Lower.Value = lower
		applied["min"] = lower
	}
	if upperOK {
		r.Upper = &Bound{Value: upper, Inclusive: true}
		applied["max"] = upper
	}
	s.Filter.Add(r)
	s.Applied["priceRange"] = applied
}

func (s *Plan) addMinRating(raw string) {
	v, ok := parseFloat(raw)
	if !ok || v < minRating || v > maxRating {
		return
	}
	s.Filter.Add(Range{Field: models.FieldRating, Lower: &Bound{Value: v, Inclusive: true}})
	s.Applied["minRating"] = v
}

func (s *Plan) addTags(raw []string) {
	var tags []string
	for _, v := range raw {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	if len(tags) == 0 {
		return
	}
	s.Filter.Add(AnyOf{Field: models.FieldTags, Values: tags})
	s.Applied["tags"] = tags
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseNonNegative(raw string) (float64, bool) {
	v, ok := parseFloat(raw)
	return v, ok && v >= 0
}
