package stats

import "github.com/shopspring/decimal"

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// money redondea importes a 2 decimales
func money(v float64) float64 { return round(v, 2) }

// rating redondea puntuaciones a 1 decimal; nil se mantiene
func rating(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v, 1)
	return &r
}

func moneyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := money(*v)
	return &r
}

// percentage es 100 × part / total con 2 decimales; 0 si total es 0
func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), 2).
		InexactFloat64()
}
