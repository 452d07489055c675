package conciliacao

import (
	"testing"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver(t *testing.T) {
	resp := respostaExemplo()

	t.Run("sem centro de custo cai na análise padrão", func(t *testing.T) {
		assert.Equal(t, Resolver(AnaliseValorData, resp), Resolver(AnaliseCentroCusto, resp))
	})

	t.Run("com centro de custo", func(t *testing.T) {
		cc := &models.AnaliseConciliacao{
			Resumo:     models.Resumo{TotalReferencia: 1, Divergentes: 1},
			Resultados: []models.ResultadoItem{resp.Resultados[1]},
			PorData:    []models.PorData{},
		}
		resp.AnaliseCentroCusto = cc
		assert.Equal(t, *cc, Resolver(AnaliseCentroCusto, resp))
		assert.Equal(t, resp.AnalisePadrao(), Resolver(AnaliseValorData, resp))
	})

	t.Run("envelope nulo", func(t *testing.T) {
		a := Resolver(AnaliseCentroCusto, nil)
		assert.Empty(t, a.Resultados)
	})
}

func TestSeletorAnalise(t *testing.T) {
	s := NovoSeletorAnalise()
	assert.Equal(t, AnaliseValorData, s.Atual())

	assert.True(t, s.Selecionar(AnaliseCentroCusto))
	assert.False(t, s.Selecionar(AnaliseCentroCusto), "seleção repetida não muda o estado")
	assert.Equal(t, AnaliseCentroCusto, s.Atual())

	// Sem a segunda análise o seletor continua permitido, mas resolve para a padrão.
	resp := respostaExemplo()
	assert.Equal(t, resp.AnalisePadrao(), s.Resolver(resp))
	assert.False(t, CentroCustoDisponivel(resp))

	assert.True(t, s.Selecionar(AnaliseValorData))
	assert.Equal(t, AnaliseValorData, s.Atual())
}

func TestParseTipoAnalise(t *testing.T) {
	tipo, err := ParseTipoAnalise("")
	require.NoError(t, err)
	assert.Equal(t, AnaliseValorData, tipo)

	tipo, err = ParseTipoAnalise("centro_custo")
	require.NoError(t, err)
	assert.Equal(t, "Data + Valor + Centro de Custo", tipo.Label())

	_, err = ParseTipoAnalise("fornecedor")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
