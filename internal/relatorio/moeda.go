package relatorio

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SemValor é o marcador de célula vazia no documento.
const SemValor = "—"

var impressoraBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatarBRL formata um valor em reais no padrão pt-BR (R$ 1.234,56).
func FormatarBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sinal := ""
	if d.IsNegative() {
		sinal = "-"
		d = d.Abs()
	}
	return sinal + "R$ " + impressoraBR.Sprintf("%.2f", d.InexactFloat64())
}

// textoOuTraco troca texto em branco pelo marcador de ausência.
func textoOuTraco(s string) string {
	if strings.TrimSpace(s) == "" {
		return SemValor
	}
	return strings.TrimSpace(s)
}
