package conciliacao

import (
	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// ToleranciaPadrao é usada quando nenhuma tolerância é configurada.
var ToleranciaPadrao = decimal.RequireFromString("0.01")

// LinhaPainel é um dia no painel de valores.
type LinhaPainel struct {
	Data         string  `json:"data"`
	QtdRef       int     `json:"qtd_ref"`
	QtdComp      int     `json:"qtd_comp"`
	TotalRef     float64 `json:"total_ref"`
	TotalComp    float64 `json:"total_comp"`
	Divergente   bool    `json:"divergente"`
	Diferenca    float64 `json:"diferenca"`
	TemDiferenca bool    `json:"tem_diferenca"`
}

// Painel resume os totais DE e PARA somados a partir dos agregados por data.
type Painel struct {
	TotalDE             float64       `json:"total_de"`
	TotalPARA           float64       `json:"total_para"`
	Diferenca           float64       `json:"diferenca"`
	DiferencaRelevante  bool          `json:"diferenca_relevante"`
	DEMaiorOuIgual      bool          `json:"de_maior_ou_igual"`
	DatasComDivergencia int           `json:"datas_com_divergencia"`
	TotalReferencia     int           `json:"total_referencia"`
	TotalComparacao     int           `json:"total_comparacao"`
	Ordenacao           string        `json:"ordenacao"`
	Linhas              []LinhaPainel `json:"linhas"`
}

// MontarPainel soma os totais em decimal para não acumular erro de ponto flutuante.
// Diferenças menores ou iguais à tolerância não são destacadas.
func MontarPainel(resumo models.Resumo, porData []models.PorData, criterio CriterioOrdenacao, tolerancia decimal.Decimal) Painel {
	if tolerancia.IsNegative() {
		tolerancia = ToleranciaPadrao
	}

	totalDE, totalPARA := decimal.Zero, decimal.Zero
	divergentes := 0
	for _, pd := range porData {
		totalDE = totalDE.Add(decimal.NewFromFloat(pd.TotalRef))
		totalPARA = totalPARA.Add(decimal.NewFromFloat(pd.TotalComp))
		if pd.Divergente {
			divergentes++
		}
	}
	diff := totalDE.Sub(totalPARA).Abs()

	ordenados := Ordenar(porData, criterio)
	linhas := make([]LinhaPainel, 0, len(ordenados))
	for _, pd := range ordenados {
		d := decimal.NewFromFloat(pd.TotalRef).Sub(decimal.NewFromFloat(pd.TotalComp)).Abs()
		linhas = append(linhas, LinhaPainel{
			Data:         pd.Data,
			QtdRef:       pd.QtdRef,
			QtdComp:      pd.QtdComp,
			TotalRef:     pd.TotalRef,
			TotalComp:    pd.TotalComp,
			Divergente:   pd.Divergente,
			Diferenca:    d.InexactFloat64(),
			TemDiferenca: d.GreaterThan(tolerancia),
		})
	}

	return Painel{
		TotalDE:             totalDE.InexactFloat64(),
		TotalPARA:           totalPARA.InexactFloat64(),
		Diferenca:           diff.InexactFloat64(),
		DiferencaRelevante:  diff.GreaterThan(tolerancia),
		DEMaiorOuIgual:      totalDE.GreaterThanOrEqual(totalPARA),
		DatasComDivergencia: divergentes,
		TotalReferencia:     resumo.TotalReferencia,
		TotalComparacao:     resumo.TotalComparacao,
		Ordenacao:           string(criterio),
		Linhas:              linhas,
	}
}
