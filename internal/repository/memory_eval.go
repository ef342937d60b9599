package repository

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"products-api/internal/models"
	"products-api/internal/query"
)

// TextWeights son los pesos del índice de texto; database.EnsureIndexes crea el índice con ellos
var TextWeights = map[string]float64{
	models.FieldTitle:       10,
	models.FieldBrand:       5,
	models.FieldCategory:    3,
	models.FieldDescription: 1,
}

func stringField(p *models.Product, field string) (string, bool) {
	switch field {
	case models.FieldTitle:
		return p.Title, true
	case models.FieldDescription:
		return p.Description, true
	case models.FieldCategory:
		return p.Category, true
	case models.FieldBrand:
		return p.Brand, true
	case models.FieldImageURL:
		return p.ImageURL, p.ImageURL != ""
	case models.FieldThumbnail:
		return p.Thumbnail, p.Thumbnail != ""
	}
	return "", false
}

// numberField devuelve false si el campo falta o es null, como en MongoDB
func numberField(p *models.Product, field string) (float64, bool) {
	switch field {
	case models.FieldPrice:
		return p.Price, true
	case models.FieldStock:
		return float64(p.Stock), true
	case models.FieldRating:
		if p.Rating == nil {
			return 0, false
		}
		return *p.Rating, true
	case models.FieldDiscountPercentage:
		// omitempty: un descuento 0 no se guarda
		return p.DiscountPercentage, p.DiscountPercentage != 0
	}
	return 0, false
}

func timeField(p *models.Product, field string) (time.Time, bool) {
	switch field {
	case models.FieldCreatedAt:
		return p.CreatedAt, true
	case models.FieldUpdatedAt:
		return p.UpdatedAt, true
	}
	return time.Time{}, false
}

// textValues devuelve los valores de un campo; los arreglos casan elemento a elemento
func textValues(p *models.Product, field string) []string {
	switch field {
	case models.FieldTags:
		return p.Tags
	case models.FieldImages:
		return p.Images
	case models.FieldSearchKeywords:
		return p.SearchKeywords
	}
	if v, ok := stringField(p, field); ok {
		return []string{v}
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContains(values []string, sub string) bool {
	for _, v := range values {
		if containsFold(v, sub) {
			return true
		}
	}
	return false
}

func matches(p *models.Product, f query.Filter) bool {
	for _, c := range f.Conditions {
		if !matchCondition(p, c) {
			return false
		}
	}
	return true
}

func matchCondition(p *models.Product, c query.Condition) bool {
	switch c := c.(type) {
	case query.Equals:
		for _, v := range textValues(p, c.Field) {
			if v == c.Value || (c.FoldCase && strings.EqualFold(v, c.Value)) {
				return true
			}
		}
		return false
	case query.Contains:
		return anyContains(textValues(p, c.Field), c.Value)
	case query.Range:
		if c.Lower == nil && c.Upper == nil {
			return true
		}
		v, ok := numberField(p, c.Field)
		if !ok {
			return false
		}
		if c.Lower != nil && (v < c.Lower.Value || (!c.Lower.Inclusive && v == c.Lower.Value)) {
			return false
		}
		if c.Upper != nil && (v > c.Upper.Value || (!c.Upper.Inclusive && v == c.Upper.Value)) {
			return false
		}
		return true
	case query.AnyOf:
		values := textValues(p, c.Field)
		for _, want := range c.Values {
			if anyContains(values, want) {
				return true
			}
		}
		return false
	case query.AnyFieldContains:
		for _, field := range c.Fields {
			if anyContains(textValues(p, field), c.Value) {
				return true
			}
		}
		return false
	case query.TextSearch:
		return textScore(p, c.Term) > 0
	case query.ExcludeID:
		return p.ID != c.ID
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// textScore aproxima la puntuación de $text: cada término que aparece como palabra
// en un campo indexado suma el peso del campo. Compara tokens exactos, sin stemming
// ni stop words: "phone" no casa con "Phones" aquí aunque sí lo haga en MongoDB.
func textScore(p *models.Product, term string) float64 {
	terms := tokenize(term)
	if len(terms) == 0 {
		return 0
	}

	var score float64
	for field, weight := range TextWeights {
		v, _ := stringField(p, field)
		words := map[string]struct{}{}
		for _, w := range tokenize(v) {
			words[w] = struct{}{}
		}
		for _, t := range terms {
			if _, ok := words[t]; ok {
				score += weight
			}
		}
	}
	return score
}

// compareField ordena como MongoDB: los valores ausentes van antes que cualquier número
func compareField(a, b *models.Product, field string) int {
	if ta, ok := timeField(a, field); ok {
		tb, _ := timeField(b, field)
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		}
		return 0
	}
	if sa, ok := stringField(a, field); ok {
		sb, _ := stringField(b, field)
		return strings.Compare(sa, sb)
	}

	va, okA := numberField(a, field)
	vb, okB := numberField(b, field)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	case va < vb:
		return -1
	case va > vb:
		return 1
	}
	return 0
}

func sortProducts(products []models.Product, s query.Sort) {
	if s.Relevance {
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].Score != products[j].Score {
				return products[i].Score > products[j].Score
			}
			return products[i].ID.Hex() < products[j].ID.Hex()
		})
		return
	}

	field := s.Field
	if field == "" {
		field = models.FieldCreatedAt
	}
	sort.SliceStable(products, func(i, j int) bool {
		cmp := compareField(&products[i], &products[j], field)
		if cmp == 0 {
			cmp = strings.Compare(products[i].ID.Hex(), products[j].ID.Hex())
		}
		if s.Ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}

type groupAcc struct {
	row       models.GroupRow
	prices    float64
	ratings   []float64
	discounts []float64
}

func groupProducts(products []models.Product, p GroupPipeline) []models.GroupRow {
	groups := map[string]*groupAcc{}
	for i := range products {
		prod := &products[i]
		key, _ := stringField(prod, p.Field)
		if key == "" {
			continue
		}

		acc, ok := groups[key]
		if !ok {
			acc = &groupAcc{row: models.GroupRow{Key: key, MinPrice: prod.Price, MaxPrice: prod.Price}}
			groups[key] = acc
		}
		acc.row.Count++
		acc.row.TotalStock += int64(prod.Stock)
		acc.row.TotalValue += prod.Price * float64(prod.Stock)
		acc.prices += prod.Price
		if prod.Price > acc.row.MaxPrice {
			acc.row.MaxPrice = prod.Price
		}
		if prod.Price < acc.row.MinPrice {
			acc.row.MinPrice = prod.Price
		}
		if prod.Rating != nil {
			acc.ratings = append(acc.ratings, *prod.Rating)
		}
		if d, ok := numberField(prod, models.FieldDiscountPercentage); ok {
			acc.discounts = append(acc.discounts, d)
			if d > 0 {
				acc.row.DiscountedCount++
			}
		}
	}

	rows := make([]models.GroupRow, 0, len(groups))
	for _, acc := range groups {
		acc.row.AvgPrice = acc.prices / float64(acc.row.Count)
		acc.row.AvgRating = average(acc.ratings)
		acc.row.MinRating, acc.row.MaxRating = extremes(acc.ratings)
		acc.row.AvgDiscount = average(acc.discounts)
		rows = append(rows, acc.row)
	}

	key := func(r models.GroupRow) float64 {
		switch p.Sort {
		case ByTotalValueDesc:
			return r.TotalValue
		case ByCountDesc:
			return float64(r.Count)
		}
		return r.AvgPrice
	}
	sort.Slice(rows, func(i, j int) bool {
		if ki, kj := key(rows[i]), key(rows[j]); ki != kj {
			return ki > kj
		}
		return rows[i].Key < rows[j].Key
	})

	if p.Limit > 0 && len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}
	return rows
}

// bucketIndex devuelve el tramo [b[i], b[i+1]) del valor, o -1 para el bucket por defecto
func bucketIndex(boundaries []float64, v float64, ok bool) int {
	if !ok {
		return -1
	}
	for i := 0; i+1 < len(boundaries); i++ {
		if v >= boundaries[i] && v < boundaries[i+1] {
			return i
		}
	}
	return -1
}

type bucketAcc struct {
	count      int64
	totalStock int64
	prices     []float64
	ratings    []float64
	categories map[string]struct{}
}

func bucketProducts(products []models.Product, p BucketPipeline) []models.BucketRow {
	accs := map[int]*bucketAcc{}
	for i := range products {
		prod := &products[i]
		v, ok := numberField(prod, p.Field)
		idx := bucketIndex(p.Boundaries, v, ok)

		acc, found := accs[idx]
		if !found {
			acc = &bucketAcc{categories: map[string]struct{}{}}
			accs[idx] = acc
		}
		acc.count++
		acc.totalStock += int64(prod.Stock)
		acc.prices = append(acc.prices, prod.Price)
		if prod.Rating != nil {
			acc.ratings = append(acc.ratings, *prod.Rating)
		}
		if prod.Category != "" {
			acc.categories[prod.Category] = struct{}{}
		}
	}

	// Igual que $bucket: solo tramos con documentos, en orden, y el de defecto al final
	rows := make([]models.BucketRow, 0, len(accs))
	for i := -1; i+1 < len(p.Boundaries); i++ {
		idx := i + 1
		if idx == len(p.Boundaries)-1 {
			idx = -1
		}
		acc, ok := accs[idx]
		if !ok {
			continue
		}
		row := models.BucketRow{
			Count:         acc.count,
			AvgRating:     average(acc.ratings),
			AvgPrice:      average(acc.prices),
			TotalStock:    acc.totalStock,
			CategoryCount: len(acc.categories),
		}
		if idx >= 0 {
			lower := p.Boundaries[idx]
			row.Lower = &lower
		}
		rows = append(rows, row)
	}
	return rows
}

func segmentProducts(products []models.Product, p SegmentPipeline) []models.SegmentRow {
	counts := map[string]map[string]int64{}
	for i := range products {
		prod := &products[i]
		key, _ := stringField(prod, p.GroupField)
		if key == "" {
			continue
		}

		v, ok := numberField(prod, p.Buckets.Field)
		label := p.Buckets.DefaultLabel
		if idx := bucketIndex(p.Buckets.Boundaries, v, ok); idx >= 0 {
			label = p.Buckets.Labels[idx]
		}
		if counts[key] == nil {
			counts[key] = map[string]int64{}
		}
		counts[key][label]++
	}

	labels := append(append([]string{}, p.Buckets.Labels...), p.Buckets.DefaultLabel)
	rows := make([]models.SegmentRow, 0, len(counts))
	for key, byLabel := range counts {
		row := models.SegmentRow{Key: key}
		for _, label := range labels {
			if n := byLabel[label]; n > 0 {
				row.Segments = append(row.Segments, models.SegmentCount{Label: label, Count: n})
				row.Total += n
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Key < rows[j].Key
	})
	if p.Limit > 0 && len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}
	return rows
}

func overview(products []models.Product) models.OverviewRow {
	var row models.OverviewRow
	if len(products) == 0 {
		return row
	}

	categories := map[string]struct{}{}
	brands := map[string]struct{}{}
	var prices float64
	var ratings []float64

	row.MinPrice, row.MaxPrice = products[0].Price, products[0].Price
	for i := range products {
		p := &products[i]
		row.Count++
		prices += p.Price
		if p.Price > row.MaxPrice {
			row.MaxPrice = p.Price
		}
		if p.Price < row.MinPrice {
			row.MinPrice = p.Price
		}
		row.TotalStock += int64(p.Stock)
		row.TotalValue += p.Price * float64(p.Stock)
		if p.Rating != nil {
			ratings = append(ratings, *p.Rating)
		}
		switch {
		case p.Stock <= 0:
			row.OutOfStock++
		case p.Stock <= lowStockThreshold:
			row.LowStock++
		}
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
		if p.Brand != "" {
			brands[p.Brand] = struct{}{}
		}
	}

	row.AvgPrice = prices / float64(row.Count)
	row.AvgRating = average(ratings)
	row.DistinctCategories = len(categories)
	row.DistinctBrands = len(brands)
	return row
}

func categoryCounts(products []models.Product) []models.CategoryCount {
	counts := map[string]int64{}
	for i := range products {
		if c := products[i].Category; c != "" {
			counts[c]++
		}
	}

	out := make([]models.CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// average es nil sin valores, como $avg sobre campos ausentes
func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

func extremes(values []float64) (min, max *float64) {
	for i := range values {
		v := values[i]
		if min == nil || v < *min {
			min = &v
		}
		if max == nil || v > *max {
			max = &v
		}
	}
	return min, max
}
