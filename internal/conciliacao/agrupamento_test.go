package conciliacao

import (
	"testing"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datas(pd []models.PorData) []string {
	out := make([]string, len(pd))
	for i, p := range pd {
		out[i] = p.Data
	}
	return out
}

func TestOrdenar(t *testing.T) {
	resp := respostaExemplo()
	antes := datas(resp.PorData)

	tests := []struct {
		criterio CriterioOrdenacao
		want     []string
	}{
		{OrdenarPorData, []string{"2024-01-01", "2024-01-02", "2024-01-03"}},
		{OrdenarPorValor, []string{"2024-01-02", "2024-01-01", "2024-01-03"}},
		{OrdenarPorDivergente, []string{"2024-01-01", "2024-01-03", "2024-01-02"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.criterio), func(t *testing.T) {
			assert.Equal(t, tt.want, datas(Ordenar(resp.PorData, tt.criterio)))
			assert.Equal(t, antes, datas(resp.PorData), "entrada não pode ser alterada")
		})
	}
}

func TestOrdenar_DivergenteEstavel(t *testing.T) {
	in := []models.PorData{
		{Data: "a", Divergente: false},
		{Data: "b", Divergente: true},
		{Data: "c", Divergente: false},
		{Data: "d", Divergente: true},
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, datas(Ordenar(in, OrdenarPorDivergente)))
	assert.Empty(t, Ordenar(nil, OrdenarPorValor))
}

func TestParseCriterio(t *testing.T) {
	c, err := ParseCriterio("")
	require.NoError(t, err)
	assert.Equal(t, OrdenarPorData, c)
	_, err = ParseCriterio("alfabetica")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAgrupar_DescartaDiasVazios(t *testing.T) {
	resp := respostaExemplo()

	grupos := Agrupar(resp.PorData, FiltroApenasDivergentes)
	require.Len(t, grupos, 2)
	assert.Equal(t, "2024-01-01", grupos[0].Data)
	assert.Len(t, grupos[0].Resultados, 1)
	assert.Equal(t, 1, grupos[0].ItensARevisar)
	assert.Equal(t, "2024-01-03", grupos[1].Data)
	assert.Equal(t, 2, grupos[1].ItensARevisar)

	assert.Len(t, Agrupar(resp.PorData, FiltroOK), 2)
	info := Agrupar(resp.PorData, FiltroInfoFaltante)
	require.Len(t, info, 1)
	assert.Equal(t, "Epsilon", info[0].Resultados[0].Referencia.Fornecedor)
}

func TestAgrupar_TodosMantemTudo(t *testing.T) {
	resp := respostaExemplo()
	resp.PorData = append(resp.PorData, models.PorData{Data: "2024-01-04"})

	grupos := Agrupar(resp.PorData, FiltroTodos)
	require.Len(t, grupos, 4)
	for i, g := range grupos {
		assert.Len(t, g.Resultados, len(resp.PorData[i].Resultados))
	}
	assert.NotNil(t, grupos[3].Resultados)
}

func TestAgrupar_EcoaAgregados(t *testing.T) {
	resp := respostaExemplo()
	// O agregado informado pelo serviço prevalece mesmo se não bater com as linhas.
	resp.PorData[0].QtdRef = 99
	resp.PorData[0].TotalRef = 1234.56

	for _, f := range Filtros() {
		for _, g := range Agrupar(resp.PorData, f) {
			var origem models.PorData
			for _, pd := range resp.PorData {
				if pd.Data == g.Data {
					origem = pd
				}
			}
			assert.Equal(t, origem.QtdRef, g.QtdRef)
			assert.Equal(t, origem.QtdComp, g.QtdComp)
			assert.Equal(t, origem.TotalRef, g.TotalRef)
			assert.Equal(t, origem.TotalComp, g.TotalComp)
			assert.Equal(t, origem.Divergente, g.Divergente)
		}
	}
}

func TestAgrupar_UniaoIgualAoFiltro(t *testing.T) {
	resp := respostaExemplo()
	for _, f := range Filtros() {
		var uniao []models.ResultadoItem
		for _, g := range Agrupar(resp.PorData, f) {
			uniao = append(uniao, g.Resultados...)
		}
		assert.ElementsMatch(t, Filtrar(f, resp.Resultados), uniao, "filtro %s", f)
	}
}

func TestMontarPainel(t *testing.T) {
	resp := respostaExemplo()
	p := MontarPainel(resp.Resumo, resp.PorData, OrdenarPorDivergente, decimal.RequireFromString("0.01"))

	assert.InDelta(t, 530.0, p.TotalDE, 1e-9)
	assert.InDelta(t, 460.0, p.TotalPARA, 1e-9)
	assert.InDelta(t, 70.0, p.Diferenca, 1e-9)
	assert.True(t, p.DiferencaRelevante)
	assert.True(t, p.DEMaiorOuIgual)
	assert.Equal(t, 2, p.DatasComDivergencia)
	assert.Equal(t, 5, p.TotalReferencia)

	require.Len(t, p.Linhas, 3)
	assert.Equal(t, "2024-01-01", p.Linhas[0].Data)
	assert.True(t, p.Linhas[0].TemDiferenca)
	assert.Equal(t, "2024-01-02", p.Linhas[2].Data)
	assert.False(t, p.Linhas[2].TemDiferenca)
}

func TestMontarPainel_Tolerancia(t *testing.T) {
	pd := []models.PorData{
		{Data: "a", TotalRef: 0.1, TotalComp: 0.09},
		{Data: "b", TotalRef: 0.2, TotalComp: 0.2},
	}
	p := MontarPainel(models.Resumo{}, pd, OrdenarPorData, decimal.RequireFromString("0.01"))
	assert.False(t, p.Linhas[0].TemDiferenca, "diferença igual à tolerância não é destacada")
	assert.False(t, p.DiferencaRelevante)
	assert.InDelta(t, 0.3, p.TotalDE, 1e-12)

	p = MontarPainel(models.Resumo{}, pd, OrdenarPorData, decimal.RequireFromString("0.001"))
	assert.True(t, p.Linhas[0].TemDiferenca)
}
