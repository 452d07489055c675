package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
)

const (
	CampoArquivoReferencia = "arquivo_referencia"
	CampoArquivoComparacao = "arquivo_comparacao"

	MensagemArquivosAusentes = "Selecione os dois arquivos .xlsx"
	MensagemExtensaoInvalida = "Ambos os arquivos devem ser .xlsx"
	MensagemErroConciliacao  = "Erro na conciliação"
	MensagemErroProcessar    = "Erro ao processar"

	tamanhoMaximoResposta = 64 << 20
)

// ArquivoPlanilha é uma planilha enviada pelo usuário.
type ArquivoPlanilha struct {
	Nome     string
	Conteudo io.Reader
}

// ConciliadorExterno executa a conciliação DE → PARA no serviço externo e devolve o corpo JSON da resposta.
//
//go:generate mockgen -destination=mocks/mock_conciliador.go -source=conciliador_client.go ConciliadorExterno
type ConciliadorExterno interface {
	Conciliar(ctx context.Context, referencia, comparacao ArquivoPlanilha) ([]byte, error)
}

// ErroUpstream é a falha reportada pelo serviço de conciliação. Mensagem já está pronta para o usuário.
type ErroUpstream struct {
	Status   int
	Mensagem string
}

func (e *ErroUpstream) Error() string {
	return fmt.Sprintf("serviço de conciliação respondeu %d: %s", e.Status, e.Mensagem)
}

func (e *ErroUpstream) Unwrap() error {
	return core.ErrUpstream
}

// ValidarArquivos aplica as mesmas regras do formulário de envio.
func ValidarArquivos(referencia, comparacao *ArquivoPlanilha) error {
	if referencia == nil || comparacao == nil || referencia.Conteudo == nil || comparacao.Conteudo == nil {
		return core.NewValidationError(MensagemArquivosAusentes, nil)
	}
	if !ehXLSX(referencia.Nome) || !ehXLSX(comparacao.Nome) {
		return core.NewValidationError(MensagemExtensaoInvalida, nil)
	}
	return nil
}

func ehXLSX(nome string) bool {
	return strings.HasSuffix(strings.ToLower(nome), ".xlsx")
}

// ExtrairMensagemErro lê o corpo de erro do serviço: "detail" como texto, ou o "msg"
// do primeiro item quando "detail" é uma lista. Qualquer outra forma vira a mensagem genérica.
func ExtrairMensagemErro(body []byte) string {
	var corpo struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &corpo); err != nil || len(corpo.Detail) == 0 {
		return MensagemErroConciliacao
	}

	var texto string
	if err := json.Unmarshal(corpo.Detail, &texto); err == nil {
		return texto
	}
	var lista []struct {
		Msg *string `json:"msg"`
	}
	if err := json.Unmarshal(corpo.Detail, &lista); err == nil && len(lista) > 0 && lista[0].Msg != nil {
		return *lista[0].Msg
	}
	return MensagemErroConciliacao
}

// conciliadorHTTP fala com o serviço de conciliação por multipart/form-data.
type conciliadorHTTP struct {
	baseURL string
	client  *http.Client
}

// NovoConciliadorHTTP cria o cliente do serviço externo. Não há novas tentativas em caso de falha.
func NovoConciliadorHTTP(baseURL string, timeout time.Duration) ConciliadorExterno {
	return &conciliadorHTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *conciliadorHTTP) Conciliar(ctx context.Context, referencia, comparacao ArquivoPlanilha) ([]byte, error) {
	ctx, span := otel.Tracer("conciliacao/services").Start(ctx, "conciliador.conciliar")
	defer span.End()

	corpo, contentType, err := montarFormulario(referencia, comparacao)
	if err != nil {
		span.RecordError(err)
		return nil, core.WrapErrorf(core.ErrUpstream, "%s: %v", MensagemErroProcessar, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/conciliar", corpo)
	if err != nil {
		return nil, core.WrapErrorf(core.ErrUpstream, "%s: %v", MensagemErroProcessar, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	inicio := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "requisição falhou")
		appLogger.Errorf("Falha ao chamar serviço de conciliação: %v", err)
		return nil, core.WrapErrorf(core.ErrUpstream, "%s: %v", MensagemErroProcessar, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, tamanhoMaximoResposta))
	if err != nil {
		span.RecordError(err)
		return nil, core.WrapErrorf(core.ErrUpstream, "%s: %v", MensagemErroProcessar, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode), attribute.Int("resposta.bytes", len(raw)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ExtrairMensagemErro(raw)
		span.SetStatus(codes.Error, msg)
		appLogger.Warnf("Serviço de conciliação respondeu %d em %v: %s", resp.StatusCode, time.Since(inicio), msg)
		return nil, &ErroUpstream{Status: resp.StatusCode, Mensagem: msg}
	}

	appLogger.Infof("Serviço de conciliação respondeu em %v (%d bytes).", time.Since(inicio), len(raw))
	return raw, nil
}

func montarFormulario(referencia, comparacao ArquivoPlanilha) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, campo := range []struct {
		nome    string
		arquivo ArquivoPlanilha
	}{
		{CampoArquivoReferencia, referencia},
		{CampoArquivoComparacao, comparacao},
	} {
		part, err := mw.CreateFormFile(campo.nome, campo.arquivo.Nome)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, campo.arquivo.Conteudo); err != nil {
			return nil, "", fmt.Errorf("copiando %s: %w", campo.nome, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
