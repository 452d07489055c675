package conciliacao

import (
	"testing"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInclui(t *testing.T) {
	status := []models.StatusResultado{models.StatusOK, models.StatusDivergente, models.StatusNaoEncontrado, models.StatusInfoFaltante}

	tests := []struct {
		filtro FiltroStatus
		aceita map[models.StatusResultado]bool
	}{
		{FiltroTodos, map[models.StatusResultado]bool{models.StatusOK: true, models.StatusDivergente: true, models.StatusNaoEncontrado: true, models.StatusInfoFaltante: true}},
		{FiltroApenasDivergentes, map[models.StatusResultado]bool{models.StatusDivergente: true, models.StatusNaoEncontrado: true, models.StatusInfoFaltante: true}},
		{FiltroOK, map[models.StatusResultado]bool{models.StatusOK: true}},
		{FiltroDivergentes, map[models.StatusResultado]bool{models.StatusDivergente: true}},
		{FiltroNaoEncontrados, map[models.StatusResultado]bool{models.StatusNaoEncontrado: true}},
		{FiltroInfoFaltante, map[models.StatusResultado]bool{models.StatusInfoFaltante: true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filtro), func(t *testing.T) {
			for _, s := range status {
				assert.Equal(t, tt.aceita[s], Inclui(tt.filtro, models.ResultadoItem{Status: s}), "status %s", s)
			}
		})
	}
}

func TestInclui_StatusDesconhecido(t *testing.T) {
	estranho := models.ResultadoItem{Status: "pendente"}
	assert.True(t, Inclui(FiltroTodos, estranho))
	assert.False(t, Inclui(FiltroApenasDivergentes, estranho))
	assert.False(t, Inclui(FiltroStatus("qualquer"), estranho))
}

func TestFiltrar_PreservaOrdem(t *testing.T) {
	resp := respostaExemplo()
	got := Filtrar(FiltroApenasDivergentes, resp.Resultados)
	require.Len(t, got, 3)
	assert.Equal(t, "Beta", got[0].Referencia.Fornecedor)
	assert.Equal(t, "Delta", got[1].Referencia.Fornecedor)
	assert.Equal(t, "Epsilon", got[2].Referencia.Fornecedor)

	assert.Len(t, Filtrar(FiltroTodos, resp.Resultados), len(resp.Resultados))
	assert.Empty(t, Filtrar(FiltroOK, nil))
}

func TestParseFiltro(t *testing.T) {
	f, err := ParseFiltro("")
	require.NoError(t, err)
	assert.Equal(t, FiltroApenasDivergentes, f)

	for _, esperado := range Filtros() {
		f, err := ParseFiltro(string(esperado))
		require.NoError(t, err)
		assert.Equal(t, esperado, f)
		assert.NotEmpty(t, f.Label())
	}

	_, err = ParseFiltro("divergente")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestContagens_VemDaListaMesmoComResumoInconsistente(t *testing.T) {
	analise := respostaExemplo().AnalisePadrao()
	analise.Resumo = models.Resumo{Divergentes: 9, NaoEncontrados: 0, MatchesConfirmados: 0}

	c := Contagens(analise)
	for _, f := range Filtros() {
		assert.Equal(t, len(Filtrar(f, analise.Resultados)), c.ContagemDe(f), "chip %s", f)
	}
}

func TestContagens(t *testing.T) {
	resp := respostaExemplo()
	c := Contagens(resp.AnalisePadrao())

	assert.Equal(t, 5, c.Total)
	assert.Equal(t, 3, c.ApenasDivergentes)
	assert.Equal(t, 2, c.OK)
	assert.Equal(t, 1, c.ContagemDe(FiltroDivergentes))
	assert.Equal(t, 1, c.ContagemDe(FiltroNaoEncontrados))
	assert.Equal(t, 1, c.ContagemDe(FiltroInfoFaltante))
	assert.Equal(t, 5, c.ContagemDe(FiltroTodos))
	assert.Equal(t, 0, c.ContagemDe("x"))
}
