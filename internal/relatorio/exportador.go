package relatorio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
)

// Exportador gera relatórios para um io.Writer (download) ou para o diretório de exportação.
type Exportador struct {
	exportDir string
	agora     func() time.Time
}

// NovoExportador cria um exportador que grava arquivos em exportDir.
func NovoExportador(exportDir string) *Exportador {
	return &Exportador{exportDir: exportDir, agora: time.Now}
}

// NomeArquivo usa o relógio do exportador.
func (e *Exportador) NomeArquivo(escopo Escopo, formato Formato) string {
	return NomeArquivo(escopo, formato, e.agora())
}

// Gerar escreve o relatório em w e retorna o número de linhas de dados.
// O conteúdo é montado em memória antes de ir para w, para que uma falha não deixe download pela metade.
func (e *Exportador) Gerar(w io.Writer, dados DadosRelatorio, escopo Escopo, formato Formato) (int, error) {
	var buf bytes.Buffer
	var (
		n   int
		err error
	)
	switch formato {
	case FormatoXLSX:
		n, err = GerarExcel(&buf, dados, escopo)
	case FormatoPDF:
		n, err = GerarPDF(&buf, dados, escopo)
	default:
		return 0, core.WrapErrorf(core.ErrInvalidInput, "formato de relatório desconhecido %q", formato)
	}
	if err != nil {
		appLogger.WithFields(logrus.Fields{"escopo": escopo, "formato": formato}).Errorf("Falha ao gerar relatório: %v", err)
		return 0, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return 0, core.WrapErrorf(core.ErrExport, "falha ao enviar relatório: %v", err)
	}
	appLogger.WithFields(logrus.Fields{"escopo": escopo, "formato": formato, "linhas": n}).Info("Relatório gerado")
	return n, nil
}

// Salvar grava o relatório no diretório de exportação e retorna o caminho final.
// Um arquivo com o mesmo nome é preservado como backup.
func (e *Exportador) Salvar(dados DadosRelatorio, escopo Escopo, formato Formato) (string, int, error) {
	finalPath, err := resolveOutputPath(e.NomeArquivo(escopo, formato), e.exportDir, formato.Extensao())
	if err != nil {
		return "", 0, err
	}
	if fileExists(finalPath) {
		if err := createBackup(finalPath, e.agora()); err != nil {
			return "", 0, core.WrapErrorf(core.ErrExport, "falha ao criar backup de '%s': %v", finalPath, err)
		}
	}

	file, err := os.Create(finalPath)
	if err != nil {
		return "", 0, core.WrapErrorf(core.ErrExport, "falha ao criar arquivo '%s': %v", finalPath, err)
	}
	n, genErr := e.Gerar(file, dados, escopo, formato)
	closeErr := file.Close()
	if genErr != nil {
		_ = os.Remove(finalPath)
		return "", 0, genErr
	}
	if closeErr != nil {
		return "", 0, core.WrapErrorf(core.ErrExport, "falha ao fechar arquivo '%s': %v", finalPath, closeErr)
	}
	appLogger.Infof("Relatório exportado para %s", finalPath)
	return finalPath, n, nil
}

// --- Funções Utilitárias Internas ---

func resolveOutputPath(name string, defaultDir string, defaultExt string) (string, error) {
	p := filepath.Clean(name)
	if !filepath.IsAbs(p) {
		absDefaultDir, err := filepath.Abs(defaultDir)
		if err != nil {
			return "", core.WrapErrorf(core.ErrExport, "diretório de exportação inválido '%s': %v", defaultDir, err)
		}
		p = filepath.Join(absDefaultDir, p)
	}

	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return "", core.WrapErrorf(core.ErrExport, "não foi possível criar diretório de exportação '%s': %v", filepath.Dir(p), err)
	}

	if !strings.EqualFold(filepath.Ext(p), defaultExt) {
		p += defaultExt
	}
	return p, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func createBackup(path string, agora time.Time) error {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	backupPath := fmt.Sprintf("%s_backup_%s%s", base, agora.Format("20060102_150405"), ext)

	err := os.Rename(path, backupPath)
	if err == nil {
		appLogger.Infof("Backup criado: %s", backupPath)
	}
	return err
}
