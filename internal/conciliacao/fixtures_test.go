package conciliacao

import "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"

func ptr(f float64) *float64 { return &f }

func item(status models.StatusResultado, fornecedor string, valor float64, data string, comComparacao bool) models.ResultadoItem {
	it := models.ResultadoItem{
		Status:     status,
		Referencia: models.RegistroItem{Fornecedor: fornecedor, Valor: valor, Data: data},
	}
	if comComparacao {
		it.Comparacao = &models.RegistroItem{Fornecedor: fornecedor + " LTDA", Valor: valor, Data: data}
		it.ScoreNome = ptr(0.9)
		it.DiferencaValor = ptr(0)
	}
	return it
}

// respostaExemplo monta um envelope com os quatro status distribuídos em três dias.
func respostaExemplo() *models.RespostaConciliacao {
	d1 := []models.ResultadoItem{
		item(models.StatusOK, "ACME", 100, "2024-01-01", true),
		item(models.StatusDivergente, "Beta", 50, "2024-01-01", true),
	}
	d2 := []models.ResultadoItem{
		item(models.StatusOK, "Gama", 300, "2024-01-02", true),
	}
	d3 := []models.ResultadoItem{
		item(models.StatusNaoEncontrado, "Delta", 70, "2024-01-03", false),
		item(models.StatusInfoFaltante, "Epsilon", 10, "2024-01-03", false),
	}
	todos := append(append(append([]models.ResultadoItem{}, d1...), d2...), d3...)

	return &models.RespostaConciliacao{
		Resumo: models.Resumo{
			TotalReferencia: 5, TotalComparacao: 3, MatchesConfirmados: 2,
			Divergentes: 1, NaoEncontrados: 1, InfoFaltante: 1, TotalAlertasDiarios: 1,
		},
		Resultados:     todos,
		AlertasDiarios: []models.AlertaDiario{{Data: "2024-01-03", Mensagem: "Quantidade diferente"}},
		PorData: []models.PorData{
			{Data: "2024-01-01", QtdRef: 2, QtdComp: 2, TotalRef: 150, TotalComp: 160, Divergente: true, Resultados: d1},
			{Data: "2024-01-02", QtdRef: 1, QtdComp: 1, TotalRef: 300, TotalComp: 300, Divergente: false, Resultados: d2},
			{Data: "2024-01-03", QtdRef: 2, QtdComp: 0, TotalRef: 80, TotalComp: 0, Divergente: true, Resultados: d3},
		},
	}
}
