package query

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage mantiene (page-1)*limit dentro de int para cualquier limit permitido
	MaxPage = math.MaxInt / MaxLimit
)

// Page es la ventana de paginación ya validada
type Page struct {
	Number int
	Limit  int
}

// Skip devuelve cuántos documentos saltar
func (p Page) Skip() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage interpreta page y limit. Nunca falla: los valores no numéricos usan el valor por defecto.
func ParsePage(page, limit string) Page {
	return parsePage(page, limit, DefaultLimit)
}

func parsePage(page, limit string, defaultLimit int) Page {
	p := Page{Number: DefaultPage, Limit: defaultLimit}

	if n, err := strconv.Atoi(page); err == nil {
		p.Number = min(max(n, 1), MaxPage)
	}
	if n, err := strconv.Atoi(limit); err == nil {
		p.Limit = min(max(n, 1), MaxLimit)
	}
	return p
}

// Pagination son los metadatos de paginación de la respuesta
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	Limit         int   `json:"limit"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	NextPage      *int  `json:"nextPage"`
	PrevPage      *int  `json:"prevPage"`
}

// NewPagination calcula los metadatos a partir del total que casa con el filtro
func NewPagination(p Page, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))

	pg := Pagination{
		CurrentPage:   p.Number,
		TotalPages:    totalPages,
		TotalProducts: total,
		Limit:         p.Limit,
		HasNextPage:   p.Number < totalPages,
		HasPrevPage:   p.Number > 1,
	}
	if pg.HasNextPage {
		next := p.Number + 1
		pg.NextPage = &next
	}
	if pg.HasPrevPage {
		prev := p.Number - 1
		pg.PrevPage = &prev
	}
	return pg
}
