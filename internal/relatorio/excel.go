package relatorio

import (
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
)

const TituloRelatorio = "Relatório de Conciliação DE - PARA"

const (
	abaResumo  = "Resumo"
	abaAlertas = "Alertas"
	abaPorData = "Por data"
)

var (
	cabecalhoAlertas = []string{"Data", "Mensagem"}
	cabecalhoPorData = []string{"Data", "Qtd DE", "Qtd PARA", "Total DE", "Total PARA", "Divergente"}
)

// estilosPlanilha guarda os estilos criados uma vez por arquivo.
type estilosPlanilha struct {
	cabecalho int
	titulo    int
	moeda     int
}

func novosEstilos(f *excelize.File) (estilosPlanilha, error) {
	var e estilosPlanilha
	var err error
	e.cabecalho, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#148078"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11, Family: "Segoe UI"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    []excelize.Border{{Type: "bottom", Color: "FFFFFF", Style: 1}},
	})
	if err != nil {
		return e, err
	}
	e.titulo, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Family: "Segoe UI"}})
	if err != nil {
		return e, err
	}
	formato := `"R$" #,##0.00`
	e.moeda, err = f.NewStyle(&excelize.Style{CustomNumFmt: &formato})
	return e, err
}

// GerarExcel escreve a planilha em w e retorna o número de linhas de dados.
// Abas, na ordem: Resumo, Divergentes|Todos, Alertas (se houver) e Por data (se houver).
func GerarExcel(w io.Writer, dados DadosRelatorio, escopo Escopo) (int, error) {
	itens := FiltrarEscopo(dados.Resultados, escopo)

	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			appLogger.Errorf("Erro ao fechar arquivo XLSX: %v", err)
		}
	}()

	estilos, err := novosEstilos(xlsx)
	if err != nil {
		return 0, core.WrapErrorf(core.ErrExport, "falha ao criar estilos da planilha: %v", err)
	}

	// Excelize cria "Sheet1" por padrão; ela vira a aba de resumo.
	if err := xlsx.SetSheetName(xlsx.GetSheetName(0), abaResumo); err != nil {
		return 0, core.WrapErrorf(core.ErrExport, "falha ao renomear aba de resumo: %v", err)
	}
	if err := escreverResumo(xlsx, dados, estilos); err != nil {
		return 0, err
	}

	linhas := make([][]interface{}, len(itens))
	for i, it := range itens {
		linhas[i] = Projetar(it).Celulas()
	}
	if err := escreverTabela(xlsx, escopo.NomeAba(), ColunasRelatorio, linhas, estilos, []string{"D", "G", "J"}); err != nil {
		return 0, err
	}

	if len(dados.AlertasDiarios) > 0 {
		alertas := make([][]interface{}, len(dados.AlertasDiarios))
		for i, a := range dados.AlertasDiarios {
			alertas[i] = []interface{}{a.Data, a.Mensagem}
		}
		if err := escreverTabela(xlsx, abaAlertas, cabecalhoAlertas, alertas, estilos, nil); err != nil {
			return 0, err
		}
	}

	if len(dados.PorData) > 0 {
		dias := make([][]interface{}, len(dados.PorData))
		for i, g := range dados.PorData {
			divergente := "Não"
			if g.Divergente {
				divergente = "Sim"
			}
			dias[i] = []interface{}{g.Data, g.QtdRef, g.QtdComp, g.TotalRef, g.TotalComp, divergente}
		}
		if err := escreverTabela(xlsx, abaPorData, cabecalhoPorData, dias, estilos, []string{"D", "E"}); err != nil {
			return 0, err
		}
	}

	xlsx.SetActiveSheet(0)
	if err := xlsx.Write(w); err != nil {
		return 0, core.WrapErrorf(core.ErrExport, "falha ao gravar planilha: %v", err)
	}
	return len(itens), nil
}

func escreverResumo(xlsx *excelize.File, dados DadosRelatorio, estilos estilosPlanilha) error {
	r := dados.Resumo
	linhas := [][]interface{}{
		{TituloRelatorio},
		{},
		{"Resumo", ""},
		{"Total DE", r.TotalReferencia},
		{"Total PARA", r.TotalComparacao},
		{"Matches OK", r.MatchesConfirmados},
		{"Divergentes", r.Divergentes},
		{"Não encontrados", r.NaoEncontrados},
		{"Info faltante", r.InfoFaltante},
	}
	for i, linha := range linhas {
		if len(linha) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := xlsx.SetSheetRow(abaResumo, cell, &linha); err != nil {
			return core.WrapErrorf(core.ErrExport, "falha ao escrever resumo: %v", err)
		}
	}
	_ = xlsx.SetCellStyle(abaResumo, "A1", "A1", estilos.titulo)
	_ = xlsx.SetColWidth(abaResumo, "A", "A", 22)
	return nil
}

// escreverTabela cria a aba com cabeçalho estilizado e as linhas; colunasMoeda recebem formato monetário.
func escreverTabela(xlsx *excelize.File, aba string, cabecalho []string, linhas [][]interface{}, estilos estilosPlanilha, colunasMoeda []string) error {
	if _, err := xlsx.NewSheet(aba); err != nil {
		return core.WrapErrorf(core.ErrExport, "falha ao criar nova planilha '%s': %v", aba, err)
	}

	for colIdx, valor := range cabecalho {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := xlsx.SetCellValue(aba, cell, valor); err != nil {
			return core.WrapErrorf(core.ErrExport, "falha ao escrever cabeçalho em '%s': %v", aba, err)
		}
	}
	ultima, _ := excelize.CoordinatesToCellName(len(cabecalho), 1)
	_ = xlsx.SetCellStyle(aba, "A1", ultima, estilos.cabecalho)

	for rowIdx, linha := range linhas {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2) // +2 porque cabeçalho está na linha 1
		row := linha
		if err := xlsx.SetSheetRow(aba, cell, &row); err != nil {
			return core.WrapErrorf(core.ErrExport, "falha ao escrever linha %d em '%s': %v", rowIdx+1, aba, err)
		}
	}

	if len(linhas) > 0 {
		for _, col := range colunasMoeda {
			_ = xlsx.SetCellStyle(aba, col+"2", col+strconv.Itoa(len(linhas)+1), estilos.moeda)
		}
	}

	ultimaCol, _ := excelize.ColumnNumberToName(len(cabecalho))
	_ = xlsx.SetColWidth(aba, "A", ultimaCol, 18)
	return nil
}
