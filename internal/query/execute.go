package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"products-api/internal/models"
)

// Finder es la parte del almacenamiento que necesita una consulta de listado
type Finder interface {
	Find(ctx context.Context, filter Filter, sort Sort, skip, limit int) ([]models.Product, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Result son los productos de la página y el total que casa con el filtro
type Result struct {
	Items []models.Product
	Total int64
}

// Execute ejecuta el conteo y la página en paralelo. Cero resultados no es un error.
func Execute(ctx context.Context, store Finder, plan Plan) (Result, error) {
	var res Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := store.Count(gctx, plan.Filter)
		res.Total = total
		return err
	})
	g.Go(func() error {
		items, err := store.Find(gctx, plan.Filter, plan.Sort, plan.Page.Skip(), plan.Page.Limit)
		res.Items = items
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if res.Items == nil {
		res.Items = []models.Product{}
	}
	return res, nil
}
