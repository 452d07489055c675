package conciliacao

import (
	"sort"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// Aba é a forma de exibição da lista de resultados.
type Aba string

const (
	AbaAuditoria Aba = "auditoria"
	AbaLista     Aba = "lista"
)

// ParseAba converte o valor recebido da interface. String vazia resulta em "auditoria".
func ParseAba(s string) (Aba, error) {
	switch Aba(s) {
	case "", AbaAuditoria:
		return AbaAuditoria, nil
	case AbaLista:
		return AbaLista, nil
	default:
		return "", core.WrapErrorf(core.ErrInvalidInput, "aba desconhecida %q", s)
	}
}

// ConjuntoDatas guarda os dias expandidos na auditoria agrupada.
type ConjuntoDatas struct {
	datas map[string]struct{}
}

// NovoConjuntoDatas cria um conjunto vazio.
func NovoConjuntoDatas() *ConjuntoDatas {
	return &ConjuntoDatas{datas: make(map[string]struct{})}
}

// Alternar inverte a presença da data e retorna o novo estado.
func (c *ConjuntoDatas) Alternar(data string) bool {
	if _, ok := c.datas[data]; ok {
		delete(c.datas, data)
		return false
	}
	c.datas[data] = struct{}{}
	return true
}

// ExpandirTodos inclui todos os dias recebidos.
func (c *ConjuntoDatas) ExpandirTodos(porData []models.PorData) {
	for _, pd := range porData {
		c.datas[pd.Data] = struct{}{}
	}
}

// RecolherTodos esvazia o conjunto.
func (c *ConjuntoDatas) RecolherTodos() {
	c.datas = make(map[string]struct{})
}

func (c *ConjuntoDatas) Contem(data string) bool {
	_, ok := c.datas[data]
	return ok
}

// Lista devolve as datas em ordem lexicográfica.
func (c *ConjuntoDatas) Lista() []string {
	out := make([]string, 0, len(c.datas))
	for d := range c.datas {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ConjuntoIndices guarda as linhas confirmadas manualmente, pelo índice na lista da análise ativa.
type ConjuntoIndices struct {
	indices map[int]struct{}
}

// NovoConjuntoIndices cria um conjunto vazio.
func NovoConjuntoIndices() *ConjuntoIndices {
	return &ConjuntoIndices{indices: make(map[int]struct{})}
}

func (c *ConjuntoIndices) Contem(i int) bool {
	_, ok := c.indices[i]
	return ok
}

func (c *ConjuntoIndices) Limpar() {
	c.indices = make(map[int]struct{})
}

// Lista devolve os índices em ordem crescente.
func (c *ConjuntoIndices) Lista() []int {
	out := make([]int, 0, len(c.indices))
	for i := range c.indices {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// PodeConfirmar diz se uma linha aceita confirmação manual: status diferente de ok e com linha PARA.
func PodeConfirmar(item models.ResultadoItem) bool {
	return item.Status != models.StatusOK && item.TemComparacao()
}

// Confirmar registra a confirmação manual do índice. A confirmação é só de apresentação
// e nunca altera o envelope.
func (c *ConjuntoIndices) Confirmar(indice int, resultados []models.ResultadoItem) error {
	if indice < 0 || indice >= len(resultados) {
		return core.WrapErrorf(core.ErrInvalidInput, "índice %d fora da lista de %d resultados", indice, len(resultados))
	}
	if !PodeConfirmar(resultados[indice]) {
		return core.WrapErrorf(core.ErrValidation, "linha %d não pode ser confirmada (status %s)", indice, resultados[indice].Status)
	}
	c.indices[indice] = struct{}{}
	return nil
}

// EstadoVisualizacao é o estado efêmero da tela de resultado de uma sessão.
// Não é seguro para uso concorrente; quem o possui serializa o acesso.
type EstadoVisualizacao struct {
	Filtro      FiltroStatus
	Seletor     *SeletorAnalise
	Aba         Aba
	Ordenacao   CriterioOrdenacao
	Expandidos  *ConjuntoDatas
	Confirmados *ConjuntoIndices
}

// NovoEstadoVisualizacao cria o estado inicial da tela.
func NovoEstadoVisualizacao() *EstadoVisualizacao {
	return &EstadoVisualizacao{
		Filtro:      FiltroPadrao,
		Seletor:     NovoSeletorAnalise(),
		Aba:         AbaAuditoria,
		Ordenacao:   OrdenarPorData,
		Expandidos:  NovoConjuntoDatas(),
		Confirmados: NovoConjuntoIndices(),
	}
}

// SelecionarAnalise troca a análise ativa. As confirmações apontam para índices da
// lista anterior, então são descartadas quando a análise muda.
func (e *EstadoVisualizacao) SelecionarAnalise(tipo TipoAnalise) {
	if e.Seletor.Selecionar(tipo) {
		e.Confirmados.Limpar()
	}
}

// ParametrosVisao são os parâmetros opcionais enviados pela tela; campos vazios mantêm o estado.
type ParametrosVisao struct {
	Analise   string
	Filtro    string
	Aba       string
	Ordenacao string
}

// Aplicar valida todos os parâmetros antes de alterar qualquer coisa.
func (e *EstadoVisualizacao) Aplicar(p ParametrosVisao) error {
	var (
		tipo     TipoAnalise
		filtro   FiltroStatus
		aba      Aba
		criterio CriterioOrdenacao
		err      error
	)
	if p.Analise != "" {
		if tipo, err = ParseTipoAnalise(p.Analise); err != nil {
			return err
		}
	}
	if p.Filtro != "" {
		if filtro, err = ParseFiltro(p.Filtro); err != nil {
			return err
		}
	}
	if p.Aba != "" {
		if aba, err = ParseAba(p.Aba); err != nil {
			return err
		}
	}
	if p.Ordenacao != "" {
		if criterio, err = ParseCriterio(p.Ordenacao); err != nil {
			return err
		}
	}

	if tipo != "" {
		e.SelecionarAnalise(tipo)
	}
	if filtro != "" {
		e.Filtro = filtro
	}
	if aba != "" {
		e.Aba = aba
	}
	if criterio != "" {
		e.Ordenacao = criterio
	}
	return nil
}
