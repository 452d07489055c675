package conciliacao

import (
	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

const (
	MensagemFiltroVazio   = "Nenhum resultado para o filtro selecionado"
	MensagemSemPorData    = "Faça uma nova conciliação para ver a auditoria por data"
	MensagemSemResultado  = "Nenhum resultado de conciliação encontrado"
	AcaoNovaConciliacaoUI = "Nova conciliação"
)

// VisaoResultado é o modelo completo da tela de resultado.
type VisaoResultado struct {
	Analise               TipoAnalise           `json:"analise"`
	AnaliseLabel          string                `json:"analise_label"`
	CentroCustoDisponivel bool                  `json:"centro_custo_disponivel"`
	Filtro                FiltroStatus          `json:"filtro"`
	Aba                   Aba                   `json:"aba"`
	Ordenacao             CriterioOrdenacao     `json:"ordenacao"`
	Resumo                models.Resumo         `json:"resumo"`
	Contagens             ContagensFiltro       `json:"contagens"`
	TotalFiltrado         int                   `json:"total_filtrado"`
	AlertasDiarios        []models.AlertaDiario `json:"alertas_diarios"`
	Painel                *Painel               `json:"painel,omitempty"`
	Grupos                []GrupoData           `json:"grupos,omitempty"`
	Linhas                []LinhaTabela         `json:"linhas,omitempty"`
	Expandidos            []string              `json:"expandidos"`
	Confirmados           []int                 `json:"confirmados"`
	Vazio                 bool                  `json:"vazio"`
	Mensagem              string                `json:"mensagem,omitempty"`
}

// MontarVisao aplica a análise ativa, o filtro e a aba ao envelope.
// O painel só aparece quando a análise ativa traz agregados por data.
func MontarVisao(resp *models.RespostaConciliacao, estado *EstadoVisualizacao, tolerancia decimal.Decimal) VisaoResultado {
	if estado == nil {
		estado = NovoEstadoVisualizacao()
	}
	tipo := estado.Seletor.Atual()
	analise := Resolver(tipo, resp)

	alertas := []models.AlertaDiario{}
	if resp != nil && resp.AlertasDiarios != nil {
		alertas = resp.AlertasDiarios
	}

	v := VisaoResultado{
		Analise:               tipo,
		AnaliseLabel:          tipo.Label(),
		CentroCustoDisponivel: CentroCustoDisponivel(resp),
		Filtro:                estado.Filtro,
		Aba:                   estado.Aba,
		Ordenacao:             estado.Ordenacao,
		Resumo:                analise.Resumo,
		Contagens:             Contagens(analise),
		TotalFiltrado:         len(Filtrar(estado.Filtro, analise.Resultados)),
		AlertasDiarios:        alertas,
		Expandidos:            estado.Expandidos.Lista(),
		Confirmados:           estado.Confirmados.Lista(),
	}

	if len(analise.PorData) > 0 {
		p := MontarPainel(analise.Resumo, analise.PorData, estado.Ordenacao, tolerancia)
		v.Painel = &p
	}

	switch estado.Aba {
	case AbaLista:
		v.Linhas = LinhasTabela(analise.Resultados, estado.Filtro, estado.Confirmados)
		if len(v.Linhas) == 0 {
			v.Vazio, v.Mensagem = true, MensagemFiltroVazio
		}
	default:
		if len(analise.PorData) == 0 {
			v.Vazio, v.Mensagem = true, MensagemSemPorData
			break
		}
		v.Grupos = Agrupar(analise.PorData, estado.Filtro)
		for i := range v.Grupos {
			v.Grupos[i].Expandido = estado.Expandidos.Contem(v.Grupos[i].Data)
		}
		if len(v.Grupos) == 0 {
			v.Vazio, v.Mensagem = true, MensagemFiltroVazio
		}
	}
	return v
}
