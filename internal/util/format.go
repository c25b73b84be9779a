package util

import "github.com/dustin/go-humanize"

// FormatBRL renders an amount the pt-BR way: "R$ 1.234,56".
func FormatBRL(v float64) string {
	return "R$ " + humanize.FormatFloat("#.###,##", v)
}

// FormatPercent renders one decimal place with a comma: "49,5%".
func FormatPercent(v float64) string {
	return humanize.FormatFloat("#.###,#", v) + "%"
}
