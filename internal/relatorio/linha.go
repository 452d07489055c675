package relatorio

import (
	"fmt"
	"math"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// ColunasRelatorio é o cabeçalho fixo da aba de dados, usado também quando não há linhas.
var ColunasRelatorio = []string{
	"Status", "Data", "Fornecedor DE", "Valor DE", "Centro Custo DE",
	"Fornecedor PARA", "Valor PARA", "Centro Custo PARA", "Score", "Diferença", "Alerta",
}

// LinhaRelatorio é a projeção de um resultado compartilhada pelos dois formatos.
// Os ponteiros são nil quando não há linha PARA ou o serviço não calculou o valor.
type LinhaRelatorio struct {
	Status          string
	Data            string
	FornecedorDE    string
	ValorDE         float64
	CentroCustoDE   string
	FornecedorPARA  string
	ValorPARA       *float64
	CentroCustoPARA string
	Score           string
	Diferenca       *float64
	Alerta          string
}

// Projetar converte um resultado na linha do relatório.
func Projetar(r models.ResultadoItem) LinhaRelatorio {
	l := LinhaRelatorio{
		Status:        r.Status.Label(),
		Data:          r.Referencia.Data,
		FornecedorDE:  r.Referencia.Fornecedor,
		ValorDE:       r.Referencia.Valor,
		CentroCustoDE: r.Referencia.CentroCusto,
		Alerta:        r.Alerta,
		Diferenca:     r.DiferencaValor,
	}
	if r.TemComparacao() {
		v := r.Comparacao.Valor
		l.FornecedorPARA = r.Comparacao.Fornecedor
		l.ValorPARA = &v
		l.CentroCustoPARA = r.Comparacao.CentroCusto
	}
	if r.ScoreNome != nil {
		l.Score = fmt.Sprintf("%d%%", int(math.Round(*r.ScoreNome*100)))
	}
	return l
}

// ProjetarTodos projeta a lista mantendo a ordem.
func ProjetarTodos(resultados []models.ResultadoItem) []LinhaRelatorio {
	out := make([]LinhaRelatorio, len(resultados))
	for i, r := range resultados {
		out[i] = Projetar(r)
	}
	return out
}

// Celulas devolve os valores na ordem de ColunasRelatorio; valores ausentes viram texto vazio.
func (l LinhaRelatorio) Celulas() []interface{} {
	return []interface{}{
		l.Status,
		l.Data,
		l.FornecedorDE,
		l.ValorDE,
		l.CentroCustoDE,
		l.FornecedorPARA,
		valorOuVazio(l.ValorPARA),
		l.CentroCustoPARA,
		l.Score,
		valorOuVazio(l.Diferenca),
		l.Alerta,
	}
}

func valorOuVazio(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
