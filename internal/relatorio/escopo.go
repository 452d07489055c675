// Package relatorio gera os relatórios de conciliação em planilha (xlsx) e documento (pdf).
package relatorio

import (
	"fmt"
	"time"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/conciliacao"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// Escopo define quais linhas entram no relatório.
type Escopo string

const (
	EscopoDivergentes Escopo = "divergentes"
	EscopoTotal       Escopo = "total"
)

// ParseEscopo valida o escopo pedido pela interface.
func ParseEscopo(s string) (Escopo, error) {
	switch Escopo(s) {
	case EscopoDivergentes:
		return EscopoDivergentes, nil
	case EscopoTotal:
		return EscopoTotal, nil
	default:
		return "", core.WrapErrorf(core.ErrInvalidInput, "escopo de relatório desconhecido %q", s)
	}
}

// Filtro mapeia o escopo para o filtro de status da tela, para que exportação e lista concordem.
func (e Escopo) Filtro() conciliacao.FiltroStatus {
	if e == EscopoDivergentes {
		return conciliacao.FiltroApenasDivergentes
	}
	return conciliacao.FiltroTodos
}

// NomeAba é o nome da aba de dados da planilha.
func (e Escopo) NomeAba() string {
	if e == EscopoDivergentes {
		return "Divergentes"
	}
	return "Todos"
}

// Descricao é o rótulo usado no cabeçalho do documento.
func (e Escopo) Descricao() string {
	if e == EscopoDivergentes {
		return "Apenas divergentes"
	}
	return "Total"
}

// FiltrarEscopo aplica o escopo com o mesmo predicado da tela.
func FiltrarEscopo(resultados []models.ResultadoItem, e Escopo) []models.ResultadoItem {
	return conciliacao.Filtrar(e.Filtro(), resultados)
}

// Formato é o tipo de arquivo gerado.
type Formato string

const (
	FormatoXLSX Formato = "xlsx"
	FormatoPDF  Formato = "pdf"
)

// ParseFormato valida o formato pedido pela interface.
func ParseFormato(s string) (Formato, error) {
	switch Formato(s) {
	case FormatoXLSX:
		return FormatoXLSX, nil
	case FormatoPDF:
		return FormatoPDF, nil
	default:
		return "", core.WrapErrorf(core.ErrInvalidInput, "formato de relatório desconhecido %q", s)
	}
}

func (f Formato) Extensao() string {
	return "." + string(f)
}

// ContentType é o tipo MIME do arquivo.
func (f Formato) ContentType() string {
	if f == FormatoPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// NomeArquivo segue o padrão conciliao_<escopo>_<AAAA-MM-DD>.<ext>, com a data em UTC.
func NomeArquivo(e Escopo, f Formato, agora time.Time) string {
	return fmt.Sprintf("conciliao_%s_%s%s", e, agora.UTC().Format("2006-01-02"), f.Extensao())
}

// DadosRelatorio é a entrada dos geradores: a análise ativa e os alertas do envelope.
type DadosRelatorio struct {
	Resultados     []models.ResultadoItem
	Resumo         models.Resumo
	AlertasDiarios []models.AlertaDiario
	PorData        []models.PorData
}

// DadosDaAnalise monta a entrada a partir da análise ativa. Os alertas diários sempre vêm do envelope.
func DadosDaAnalise(analise models.AnaliseConciliacao, alertas []models.AlertaDiario) DadosRelatorio {
	return DadosRelatorio{
		Resultados:     analise.Resultados,
		Resumo:         analise.Resumo,
		AlertasDiarios: alertas,
		PorData:        analise.PorData,
	}
}
