package relatorio

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
)

// Layout do documento, em milímetros (A4 paisagem).
const (
	margemPDF         = 14.0
	topoPDF           = 15.0
	limiteAlertasY    = 250.0
	fonteTabelaPt     = 8.0
	alturaLinhaPDF    = 3.6
	paddingCelulaPDF  = 1.5
	espacoAposTabela  = 10.0
	espacoTituloAlert = 6.0
)

var (
	cabecalhoPDF        = []string{"Status", "Data", "Fornecedor DE", "Valor DE", "Fornecedor PARA", "Valor PARA", "Alerta"}
	proporcoesPDF       = []float64{0.11, 0.09, 0.20, 0.11, 0.20, 0.11, 0.18}
	proporcoesAlertaPDF = []float64{0.15, 0.85}
	corCabecalhoPDF     = [3]int{20, 128, 120}
	corCabecalhoAlerta  = [3]int{251, 191, 36}
)

// LinhaPDF converte a projeção nas sete colunas do documento.
// Valor PARA e Alerta ausentes viram "—"; valores monetários saem em reais.
func LinhaPDF(l LinhaRelatorio) []string {
	valorPARA := SemValor
	if l.ValorPARA != nil {
		valorPARA = FormatarBRL(*l.ValorPARA)
	}
	return []string{
		l.Status,
		l.Data,
		l.FornecedorDE,
		FormatarBRL(l.ValorDE),
		l.FornecedorPARA,
		valorPARA,
		textoOuTraco(l.Alerta),
	}
}

// LinhaResumoPDF é a linha de resumo logo abaixo do título.
func LinhaResumoPDF(d DadosRelatorio) string {
	r := d.Resumo
	return fmt.Sprintf("Resumo: %d DE | %d PARA | OK: %d | Divergentes: %d | Não encontrados: %d",
		r.TotalReferencia, r.TotalComparacao, r.MatchesConfirmados, r.Divergentes, r.NaoEncontrados)
}

// LinhaEscopoPDF descreve o recorte do relatório e a quantidade de itens.
func LinhaEscopoPDF(e Escopo, itens int) string {
	return fmt.Sprintf("Relatório: %s (%d itens)", e.Descricao(), itens)
}

// GerarPDF escreve o documento em w e retorna o número de linhas de dados.
func GerarPDF(w io.Writer, dados DadosRelatorio, escopo Escopo) (int, error) {
	itens := FiltrarEscopo(dados.Resultados, escopo)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(margemPDF, topoPDF, margemPDF)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(TituloRelatorio, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	y := topoPDF
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(margemPDF, y, tr(TituloRelatorio))
	y += 8

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(margemPDF, y, tr(LinhaResumoPDF(dados)))
	y += 8
	pdf.Text(margemPDF, y, tr(LinhaEscopoPDF(escopo, len(itens))))
	y += 12

	larguraPagina, _ := pdf.GetPageSize()
	larguraTabela := larguraPagina - margemPDF*2

	corpo := make([][]string, len(itens))
	for i, it := range itens {
		corpo[i] = LinhaPDF(Projetar(it))
	}
	t := &tabelaPDF{pdf: pdf, tr: tr, cabecalho: cabecalhoPDF, larguras: larguras(larguraTabela, proporcoesPDF), cor: corCabecalhoPDF}
	y = t.desenhar(y, corpo) + espacoAposTabela

	if len(dados.AlertasDiarios) > 0 && y < limiteAlertasY {
		_, alturaPagina := pdf.GetPageSize()
		// Título e cabeçalho precisam caber juntos na página.
		if y+espacoTituloAlert+2*(alturaLinhaPDF+2*paddingCelulaPDF) > alturaPagina-margemPDF {
			pdf.AddPage()
			y = topoPDF
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.Text(margemPDF, y, tr("Alertas por data"))
		y += espacoTituloAlert

		alertas := make([][]string, len(dados.AlertasDiarios))
		for i, a := range dados.AlertasDiarios {
			alertas[i] = []string{a.Data, a.Mensagem}
		}
		ta := &tabelaPDF{pdf: pdf, tr: tr, cabecalho: []string{"Data", "Mensagem"}, larguras: larguras(larguraTabela, proporcoesAlertaPDF), cor: corCabecalhoAlerta}
		ta.desenhar(y, alertas)
	}

	if err := pdf.Error(); err != nil {
		return 0, core.WrapErrorf(core.ErrExport, "falha ao montar documento PDF: %v", err)
	}
	if err := pdf.Output(w); err != nil {
		return 0, core.WrapErrorf(core.ErrExport, "falha ao gravar documento PDF: %v", err)
	}
	return len(itens), nil
}

func larguras(total float64, proporcoes []float64) []float64 {
	out := make([]float64, len(proporcoes))
	for i, p := range proporcoes {
		out[i] = total * p
	}
	return out
}

// tabelaPDF desenha uma grade com quebra de linha dentro das células e
// repete o cabeçalho quando a tabela continua na página seguinte.
type tabelaPDF struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	cabecalho []string
	larguras  []float64
	cor       [3]int
}

// desenhar começa em y e retorna a posição vertical logo abaixo da última linha.
func (t *tabelaPDF) desenhar(y float64, corpo [][]string) float64 {
	_, alturaPagina := t.pdf.GetPageSize()
	limite := alturaPagina - margemPDF

	t.pdf.SetFont("Helvetica", "B", fonteTabelaPt)
	y = t.linha(y, t.cabecalho, true)

	t.pdf.SetFont("Helvetica", "", fonteTabelaPt)
	for _, celulas := range corpo {
		if y+t.altura(celulas) > limite {
			t.pdf.AddPage()
			t.pdf.SetFont("Helvetica", "B", fonteTabelaPt)
			y = t.linha(topoPDF, t.cabecalho, true)
			t.pdf.SetFont("Helvetica", "", fonteTabelaPt)
		}
		y = t.linha(y, celulas, false)
	}
	return y
}

// quebrar trabalha sobre os bytes já traduzidos para cp1252, que é o que as fontes padrão medem.
func (t *tabelaPDF) quebrar(texto string, largura float64) []string {
	partes := t.pdf.SplitLines([]byte(t.tr(texto)), largura-2*paddingCelulaPDF)
	if len(partes) == 0 {
		return []string{""}
	}
	linhas := make([]string, len(partes))
	for i, p := range partes {
		linhas[i] = string(p)
	}
	return linhas
}

func (t *tabelaPDF) altura(celulas []string) float64 {
	maxLinhas := 1
	for i, c := range celulas {
		if n := len(t.quebrar(c, t.larguras[i])); n > maxLinhas {
			maxLinhas = n
		}
	}
	return float64(maxLinhas)*alturaLinhaPDF + 2*paddingCelulaPDF
}

func (t *tabelaPDF) linha(y float64, celulas []string, cabecalho bool) float64 {
	h := t.altura(celulas)
	x := margemPDF
	for i, c := range celulas {
		w := t.larguras[i]
		estilo := "D"
		if cabecalho {
			t.pdf.SetFillColor(t.cor[0], t.cor[1], t.cor[2])
			t.pdf.SetTextColor(255, 255, 255)
			estilo = "FD"
		} else {
			t.pdf.SetTextColor(0, 0, 0)
		}
		t.pdf.SetDrawColor(200, 200, 200)
		t.pdf.Rect(x, y, w, h, estilo)
		for j, l := range t.quebrar(c, w) {
			// Text usa a linha de base; o deslocamento de 0.8 da altura centraliza a fonte na linha.
			t.pdf.Text(x+paddingCelulaPDF, y+paddingCelulaPDF+float64(j)*alturaLinhaPDF+alturaLinhaPDF*0.8, l)
		}
		x += w
	}
	t.pdf.SetTextColor(0, 0, 0)
	return y + h
}
