package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(v float64) float64 {
	return round(v, 2)
}

// RoundPercent rounds to one decimal place.
func RoundPercent(v float64) float64 {
	return round(v, 1)
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
