// Package conciliacao contém o motor de apresentação do resultado da conciliação DE → PARA:
// filtro por status, agrupamento por data, troca de análise e o estado efêmero da tela.
// Todas as operações são transformações puras sobre o envelope já carregado.
package conciliacao

import (
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// FiltroStatus é a seleção de status ativa na tela.
type FiltroStatus string

const (
	FiltroTodos             FiltroStatus = "todos"
	FiltroApenasDivergentes FiltroStatus = "apenas_divergentes"
	FiltroOK                FiltroStatus = "ok"
	FiltroDivergentes       FiltroStatus = "divergentes"
	FiltroNaoEncontrados    FiltroStatus = "nao_encontrados"
	FiltroInfoFaltante      FiltroStatus = "info_faltante"
)

// FiltroPadrao é a seleção inicial da tela de resultado.
const FiltroPadrao = FiltroApenasDivergentes

var filtros = []FiltroStatus{
	FiltroTodos,
	FiltroApenasDivergentes,
	FiltroOK,
	FiltroDivergentes,
	FiltroNaoEncontrados,
	FiltroInfoFaltante,
}

var filtroLabels = map[FiltroStatus]string{
	FiltroTodos:             "Todos",
	FiltroApenasDivergentes: "Apenas divergentes",
	FiltroOK:                "OK",
	FiltroDivergentes:       "Divergentes",
	FiltroNaoEncontrados:    "Não encontrados",
	FiltroInfoFaltante:      "Info faltante",
}

// Filtros lista todas as seleções na ordem dos chips.
func Filtros() []FiltroStatus {
	out := make([]FiltroStatus, len(filtros))
	copy(out, filtros)
	return out
}

// Label retorna o rótulo do chip.
func (f FiltroStatus) Label() string {
	return filtroLabels[f]
}

// ParseFiltro converte o valor recebido da interface. String vazia resulta no filtro padrão.
func ParseFiltro(s string) (FiltroStatus, error) {
	if s == "" {
		return FiltroPadrao, nil
	}
	f := FiltroStatus(s)
	if _, ok := filtroLabels[f]; !ok {
		return "", core.WrapErrorf(core.ErrInvalidInput, "filtro de status desconhecido %q", s)
	}
	return f, nil
}

// Inclui é o único predicado de pertinência usado pela auditoria, pela tabela e pelas exportações.
func Inclui(f FiltroStatus, item models.ResultadoItem) bool {
	switch f {
	case FiltroTodos:
		return true
	case FiltroApenasDivergentes:
		return item.Status.EhProblema()
	case FiltroOK:
		return item.Status == models.StatusOK
	case FiltroDivergentes:
		return item.Status == models.StatusDivergente
	case FiltroNaoEncontrados:
		return item.Status == models.StatusNaoEncontrado
	case FiltroInfoFaltante:
		return item.Status == models.StatusInfoFaltante
	default:
		return false
	}
}

// Filtrar devolve o subconjunto que passa no filtro, preservando a ordem de entrada.
func Filtrar(f FiltroStatus, resultados []models.ResultadoItem) []models.ResultadoItem {
	out := make([]models.ResultadoItem, 0, len(resultados))
	for _, r := range resultados {
		if Inclui(f, r) {
			out = append(out, r)
		}
	}
	return out
}

// ContagensFiltro são os números exibidos em cada chip de filtro.
// Todos vêm da lista da análise ativa pelo mesmo predicado da tela, nunca do resumo.
type ContagensFiltro struct {
	Total             int `json:"todos"`
	ApenasDivergentes int `json:"apenas_divergentes"`
	OK                int `json:"ok"`
	Divergentes       int `json:"divergentes"`
	NaoEncontrados    int `json:"nao_encontrados"`
	InfoFaltante      int `json:"info_faltante"`
}

// Contagens calcula os números dos chips para a análise ativa.
func Contagens(analise models.AnaliseConciliacao) ContagensFiltro {
	var c ContagensFiltro
	for _, r := range analise.Resultados {
		for _, f := range filtros {
			if Inclui(f, r) {
				*c.campo(f)++
			}
		}
	}
	return c
}

func (c *ContagensFiltro) campo(f FiltroStatus) *int {
	switch f {
	case FiltroApenasDivergentes:
		return &c.ApenasDivergentes
	case FiltroOK:
		return &c.OK
	case FiltroDivergentes:
		return &c.Divergentes
	case FiltroNaoEncontrados:
		return &c.NaoEncontrados
	case FiltroInfoFaltante:
		return &c.InfoFaltante
	default:
		return &c.Total
	}
}

// ContagemDe retorna o número do chip de uma seleção.
func (c ContagensFiltro) ContagemDe(f FiltroStatus) int {
	switch f {
	case FiltroTodos:
		return c.Total
	case FiltroApenasDivergentes:
		return c.ApenasDivergentes
	case FiltroOK:
		return c.OK
	case FiltroDivergentes:
		return c.Divergentes
	case FiltroNaoEncontrados:
		return c.NaoEncontrados
	case FiltroInfoFaltante:
		return c.InfoFaltante
	default:
		return 0
	}
}
