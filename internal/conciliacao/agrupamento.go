package conciliacao

import (
	"slices"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// CriterioOrdenacao define a ordem dos dias no painel.
type CriterioOrdenacao string

const (
	OrdenarPorData       CriterioOrdenacao = "data"
	OrdenarPorValor      CriterioOrdenacao = "valor"
	OrdenarPorDivergente CriterioOrdenacao = "divergente"
)

// ParseCriterio converte o valor recebido da interface. String vazia resulta em "data".
func ParseCriterio(s string) (CriterioOrdenacao, error) {
	switch CriterioOrdenacao(s) {
	case "", OrdenarPorData:
		return OrdenarPorData, nil
	case OrdenarPorValor:
		return OrdenarPorValor, nil
	case OrdenarPorDivergente:
		return OrdenarPorDivergente, nil
	default:
		return "", core.WrapErrorf(core.ErrInvalidInput, "critério de ordenação desconhecido %q", s)
	}
}

// Ordenar devolve uma cópia ordenada dos agregados; a entrada não é alterada.
// "data" mantém a ordem recebida, "valor" ordena pelo maior total do dia (decrescente)
// e "divergente" coloca os dias divergentes primeiro. A ordenação é estável.
func Ordenar(porData []models.PorData, criterio CriterioOrdenacao) []models.PorData {
	out := slices.Clone(porData)
	if out == nil {
		out = []models.PorData{}
	}
	switch criterio {
	case OrdenarPorValor:
		slices.SortStableFunc(out, func(a, b models.PorData) int {
			ma, mb := max(a.TotalRef, a.TotalComp), max(b.TotalRef, b.TotalComp)
			switch {
			case ma > mb:
				return -1
			case ma < mb:
				return 1
			default:
				return 0
			}
		})
	case OrdenarPorDivergente:
		slices.SortStableFunc(out, func(a, b models.PorData) int {
			switch {
			case a.Divergente == b.Divergente:
				return 0
			case a.Divergente:
				return -1
			default:
				return 1
			}
		})
	}
	return out
}

// GrupoData é um dia na auditoria agrupada. Contagens, totais e Divergente são os do serviço.
type GrupoData struct {
	Data       string                 `json:"data"`
	QtdRef     int                    `json:"qtd_ref"`
	QtdComp    int                    `json:"qtd_comp"`
	TotalRef   float64                `json:"total_ref"`
	TotalComp  float64                `json:"total_comp"`
	Divergente bool                   `json:"divergente"`
	Resultados []models.ResultadoItem `json:"resultados"`
	// ItensARevisar conta as linhas exibidas cujo status exige revisão.
	ItensARevisar int  `json:"itens_a_revisar"`
	Expandido     bool `json:"expandido"`
}

// Agrupar monta a auditoria por data. Com filtro diferente de "todos", dias sem nenhuma
// linha selecionada são descartados; com "todos", todo dia aparece com a lista completa.
func Agrupar(porData []models.PorData, filtro FiltroStatus) []GrupoData {
	grupos := make([]GrupoData, 0, len(porData))
	for _, pd := range porData {
		var linhas []models.ResultadoItem
		if filtro == FiltroTodos {
			linhas = slices.Clone(pd.Resultados)
			if linhas == nil {
				linhas = []models.ResultadoItem{}
			}
		} else {
			linhas = Filtrar(filtro, pd.Resultados)
			if len(linhas) == 0 {
				continue
			}
		}

		revisar := 0
		for _, r := range linhas {
			if r.Status.EhProblema() {
				revisar++
			}
		}

		grupos = append(grupos, GrupoData{
			Data:          pd.Data,
			QtdRef:        pd.QtdRef,
			QtdComp:       pd.QtdComp,
			TotalRef:      pd.TotalRef,
			TotalComp:     pd.TotalComp,
			Divergente:    pd.Divergente,
			Resultados:    linhas,
			ItensARevisar: revisar,
		})
	}
	return grupos
}
