package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/conciliacao"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/relatorio"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/sessao"
)

type chaveContexto int

const chaveIP chaveContexto = iota

// ContextoComIP anexa o endereço do cliente ao contexto para a trilha de auditoria.
func ContextoComIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, chaveIP, ip)
}

func ipDoContexto(ctx context.Context) *string {
	ip, _ := ctx.Value(chaveIP).(string)
	if ip == "" {
		return nil
	}
	return &ip
}

// Exportacao descreve o arquivo gerado por Exportar.
type Exportacao struct {
	NomeArquivo string
	ContentType string
	Itens       int
	// Caminho só é preenchido quando o relatório foi arquivado no servidor.
	Caminho string
}

// ConciliacaoService orquestra a conciliação externa, o estado da sessão e a exportação.
type ConciliacaoService interface {
	// Conciliar envia as planilhas ao serviço externo e guarda o envelope na sessão.
	Conciliar(ctx context.Context, s *sessao.Sessao, referencia, comparacao *ArquivoPlanilha) (*models.Resumo, error)
	// Visao aplica os parâmetros ao estado da sessão e monta a tela. Sem envelope retorna core.ErrSemResultado.
	Visao(ctx context.Context, s *sessao.Sessao, params conciliacao.ParametrosVisao) (conciliacao.VisaoResultado, error)
	AlternarGrupo(ctx context.Context, s *sessao.Sessao, data string) (bool, error)
	ExpandirTodos(ctx context.Context, s *sessao.Sessao) error
	RecolherTodos(ctx context.Context, s *sessao.Sessao) error
	ConfirmarMatch(ctx context.Context, s *sessao.Sessao, indice int) error
	// Exportar escreve o relatório da análise ativa em w.
	Exportar(ctx context.Context, s *sessao.Sessao, escopo relatorio.Escopo, formato relatorio.Formato, w io.Writer) (Exportacao, error)
	// Arquivar grava o relatório da análise ativa no diretório de exportação.
	Arquivar(ctx context.Context, s *sessao.Sessao, escopo relatorio.Escopo, formato relatorio.Formato) (Exportacao, error)
	NovaConciliacao(ctx context.Context, s *sessao.Sessao) error
	SairDoResultado(s *sessao.Sessao)
}

type conciliacaoServiceImpl struct {
	conciliador ConciliadorExterno
	gerenciador *sessao.Gerenciador
	exportador  *relatorio.Exportador
	auditoria   AuditLogService
	tolerancia  decimal.Decimal
}

// NewConciliacaoService cria o serviço. auditoria pode ser nil quando a trilha não é gravada.
func NewConciliacaoService(
	conciliador ConciliadorExterno,
	gerenciador *sessao.Gerenciador,
	exportador *relatorio.Exportador,
	auditoria AuditLogService,
	tolerancia decimal.Decimal,
) ConciliacaoService {
	if conciliador == nil || gerenciador == nil || exportador == nil {
		appLogger.Fatalf("dependências obrigatórias ausentes para NewConciliacaoService")
	}
	return &conciliacaoServiceImpl{
		conciliador: conciliador,
		gerenciador: gerenciador,
		exportador:  exportador,
		auditoria:   auditoria,
		tolerancia:  tolerancia,
	}
}

func (c *conciliacaoServiceImpl) Conciliar(ctx context.Context, s *sessao.Sessao, referencia, comparacao *ArquivoPlanilha) (*models.Resumo, error) {
	if err := ValidarArquivos(referencia, comparacao); err != nil {
		return nil, err
	}

	raw, err := c.conciliador.Conciliar(ctx, *referencia, *comparacao)
	if err != nil {
		c.auditar(ctx, s.ID, models.AuditLogEntry{
			Action:      models.AcaoConciliacaoFalhou,
			Description: MensagemParaUsuario(err),
			Severity:    "ERROR",
			Metadata:    models.JSONMetadata{"referencia": referencia.Nome, "comparacao": comparacao.Nome},
		})
		return nil, err
	}

	resp, err := models.DecodificarResposta(raw)
	if err != nil {
		appLogger.Errorf("Resposta do serviço de conciliação não pôde ser lida: %v", err)
		c.auditar(ctx, s.ID, models.AuditLogEntry{
			Action:      models.AcaoConciliacaoFalhou,
			Description: "Resposta inválida do serviço de conciliação",
			Severity:    "ERROR",
		})
		return nil, core.WrapErrorf(core.ErrUpstream, "%s: %v", MensagemErroProcessar, err)
	}

	if !models.ResumoConsistente(resp.Resumo, resp.Resultados) {
		appLogger.Warnf("Resumo da conciliação não confere com a lista de resultados (%d itens).", len(resp.Resultados))
	}

	if err := c.gerenciador.GuardarResultado(ctx, s, resp); err != nil {
		return nil, err
	}

	c.auditar(ctx, s.ID, models.AuditLogEntry{
		Action:      models.AcaoConciliacaoRecebida,
		Description: fmt.Sprintf("Conciliação recebida: %d resultados, %d divergentes", len(resp.Resultados), resp.Resumo.Divergentes),
		Severity:    "INFO",
		Metadata: models.JSONMetadata{
			"referencia":      referencia.Nome,
			"comparacao":      comparacao.Nome,
			"resultados":      len(resp.Resultados),
			"centro_custo":    resp.AnaliseCentroCusto != nil,
			"alertas":         len(resp.AlertasDiarios),
			"nao_encontrados": resp.Resumo.NaoEncontrados,
		},
	})
	resumo := resp.Resumo
	return &resumo, nil
}

func (c *conciliacaoServiceImpl) Visao(ctx context.Context, s *sessao.Sessao, params conciliacao.ParametrosVisao) (conciliacao.VisaoResultado, error) {
	var visao conciliacao.VisaoResultado
	err := c.gerenciador.ComResultado(ctx, s, func(resp *models.RespostaConciliacao, estado *conciliacao.EstadoVisualizacao) error {
		if err := estado.Aplicar(params); err != nil {
			return err
		}
		visao = conciliacao.MontarVisao(resp, estado, c.tolerancia)
		return nil
	})
	return visao, err
}

func (c *conciliacaoServiceImpl) AlternarGrupo(ctx context.Context, s *sessao.Sessao, data string) (bool, error) {
	var expandido bool
	err := c.gerenciador.ComResultado(ctx, s, func(resp *models.RespostaConciliacao, estado *conciliacao.EstadoVisualizacao) error {
		analise := estado.Seletor.Resolver(resp)
		for _, pd := range analise.PorData {
			if pd.Data == data {
				expandido = estado.Expandidos.Alternar(data)
				return nil
			}
		}
		return core.WrapErrorf(core.ErrNotFound, "data %q não existe na análise %s", data, estado.Seletor.Atual())
	})
	return expandido, err
}

func (c *conciliacaoServiceImpl) ExpandirTodos(ctx context.Context, s *sessao.Sessao) error {
	return c.gerenciador.ComResultado(ctx, s, func(resp *models.RespostaConciliacao, estado *conciliacao.EstadoVisualizacao) error {
		estado.Expandidos.ExpandirTodos(estado.Seletor.Resolver(resp).PorData)
		return nil
	})
}

func (c *conciliacaoServiceImpl) RecolherTodos(ctx context.Context, s *sessao.Sessao) error {
	return c.gerenciador.ComResultado(ctx, s, func(_ *models.RespostaConciliacao, estado *conciliacao.EstadoVisualizacao) error {
		estado.Expandidos.RecolherTodos()
		return nil
	})
}

func (c *conciliacaoServiceImpl) ConfirmarMatch(ctx context.Context, s *sessao.Sessao, indice int) error {
	return c.gerenciador.ComResultado(ctx, s, func(resp *models.RespostaConciliacao, estado *conciliacao.EstadoVisualizacao) error {
		return estado.Confirmados.Confirmar(indice, estado.Seletor.Resolver(resp).Resultados)
	})
}

func (c *conciliacaoServiceImpl) Exportar(ctx context.Context, s *sessao.Sessao, escopo relatorio.Escopo, formato relatorio.Formato, w io.Writer) (Exportacao, error) {
	return c.gerarRelatorio(ctx, s, escopo, formato, func(dados relatorio.DadosRelatorio) (Exportacao, error) {
		n, err := c.exportador.Gerar(w, dados, escopo, formato)
		if err != nil {
			return Exportacao{}, err
		}
		return Exportacao{
			NomeArquivo: c.exportador.NomeArquivo(escopo, formato),
			ContentType: formato.ContentType(),
			Itens:       n,
		}, nil
	})
}

func (c *conciliacaoServiceImpl) Arquivar(ctx context.Context, s *sessao.Sessao, escopo relatorio.Escopo, formato relatorio.Formato) (Exportacao, error) {
	return c.gerarRelatorio(ctx, s, escopo, formato, func(dados relatorio.DadosRelatorio) (Exportacao, error) {
		caminho, n, err := c.exportador.Salvar(dados, escopo, formato)
		if err != nil {
			return Exportacao{}, err
		}
		return Exportacao{
			NomeArquivo: filepath.Base(caminho),
			ContentType: formato.ContentType(),
			Itens:       n,
			Caminho:     caminho,
		}, nil
	})
}

// gerarRelatorio monta os dados da análise ativa sob o lock da sessão e audita o resultado.
func (c *conciliacaoServiceImpl) gerarRelatorio(
	ctx context.Context,
	s *sessao.Sessao,
	escopo relatorio.Escopo,
	formato relatorio.Formato,
	gerar func(relatorio.DadosRelatorio) (Exportacao, error),
) (Exportacao, error) {
	var (
		out     Exportacao
		analise conciliacao.TipoAnalise
	)
	err := c.gerenciador.ComResultado(ctx, s, func(resp *models.RespostaConciliacao, estado *conciliacao.EstadoVisualizacao) error {
		analise = estado.Seletor.Atual()
		var err error
		out, err = gerar(relatorio.DadosDaAnalise(estado.Seletor.Resolver(resp), resp.AlertasDiarios))
		return err
	})
	if err != nil {
		return Exportacao{}, err
	}

	acao := models.AcaoExportacaoXLSX
	if formato == relatorio.FormatoPDF {
		acao = models.AcaoExportacaoPDF
	}
	metadata := models.JSONMetadata{
		"arquivo": out.NomeArquivo,
		"escopo":  string(escopo),
		"analise": string(analise),
		"itens":   out.Itens,
	}
	if out.Caminho != "" {
		metadata["caminho"] = out.Caminho
	}
	c.auditar(ctx, s.ID, models.AuditLogEntry{
		Action:      acao,
		Description: fmt.Sprintf("Relatório %s exportado com %d itens", escopo.Descricao(), out.Itens),
		Severity:    "INFO",
		Metadata:    metadata,
	})
	return out, nil
}

func (c *conciliacaoServiceImpl) NovaConciliacao(ctx context.Context, s *sessao.Sessao) error {
	if err := c.gerenciador.NovaConciliacao(ctx, s); err != nil {
		return err
	}
	c.auditar(ctx, s.ID, models.AuditLogEntry{
		Action:      models.AcaoNovaConciliacao,
		Description: "Resultado descartado para nova conciliação",
		Severity:    "INFO",
	})
	return nil
}

func (c *conciliacaoServiceImpl) SairDoResultado(s *sessao.Sessao) {
	c.gerenciador.SairDoResultado(s)
}

// auditar grava a entrada sem propagar falhas para a ação do usuário.
func (c *conciliacaoServiceImpl) auditar(ctx context.Context, sessaoID string, entry models.AuditLogEntry) {
	if c.auditoria == nil {
		return
	}
	if entry.IPAddress == nil {
		entry.IPAddress = ipDoContexto(ctx)
	}
	if err := c.auditoria.LogAction(ctx, entry, sessaoID); err != nil {
		appLogger.Warnf("Falha ao registrar auditoria (Ação: %s): %v", entry.Action, err)
	}
}

// MensagemParaUsuario reduz um erro da conciliação a uma única mensagem exibível.
func MensagemParaUsuario(err error) string {
	var erroUpstream *ErroUpstream
	if errors.As(err, &erroUpstream) {
		return erroUpstream.Mensagem
	}
	var validacao *core.ValidationError
	if errors.As(err, &validacao) && strings.TrimSpace(validacao.Message) != "" {
		return validacao.Message
	}
	return MensagemErroProcessar
}
