package conciliacao

import "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"

// LinhaTabela é uma linha da lista plana. Indice aponta para a posição na lista completa
// da análise ativa, que é a chave usada nas confirmações manuais.
type LinhaTabela struct {
	Indice        int                  `json:"indice"`
	Item          models.ResultadoItem `json:"item"`
	StatusLabel   string               `json:"status_label"`
	Destacar      bool                 `json:"destacar"`
	PodeConfirmar bool                 `json:"pode_confirmar"`
	Confirmado    bool                 `json:"confirmado"`
}

// LinhasTabela aplica o filtro à lista completa preservando o índice original de cada linha.
func LinhasTabela(resultados []models.ResultadoItem, filtro FiltroStatus, confirmados *ConjuntoIndices) []LinhaTabela {
	linhas := make([]LinhaTabela, 0, len(resultados))
	for i, r := range resultados {
		if !Inclui(filtro, r) {
			continue
		}
		linhas = append(linhas, LinhaTabela{
			Indice:        i,
			Item:          r,
			StatusLabel:   r.Status.Label(),
			Destacar:      r.Status == models.StatusDivergente || r.Status == models.StatusNaoEncontrado,
			PodeConfirmar: PodeConfirmar(r),
			Confirmado:    confirmados != nil && confirmados.Contem(i),
		})
	}
	return linhas
}
