package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/conciliacao"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/relatorio"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/repositories"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/services"
)

const mensagemErroInterno = "Erro interno"

type handlers struct {
	conciliacao services.ConciliacaoService
	auditoria   services.AuditLogService
	obs         *Observability
}

type respostaErro struct {
	Erro string `json:"erro"`
}

// respostaVazia é o estado vazio da tela de resultado.
type respostaVazia struct {
	Vazio     bool   `json:"vazio"`
	Mensagem  string `json:"mensagem"`
	Acao      string `json:"acao"`
	AcaoLabel string `json:"acao_label"`
}

func escreverJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLogger.Errorf("Falha ao serializar resposta JSON: %v", err)
	}
}

// escreverErro traduz o erro para o status HTTP e uma única mensagem exibível.
func escreverErro(w http.ResponseWriter, r *http.Request, err error) {
	var validacao *core.ValidationError
	switch {
	case errors.As(err, &validacao):
		escreverJSON(w, http.StatusBadRequest, respostaErro{Erro: validacao.Message})
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInvalidInput):
		escreverJSON(w, http.StatusBadRequest, respostaErro{Erro: err.Error()})
	case errors.Is(err, core.ErrSemResultado):
		escreverJSON(w, http.StatusNotFound, respostaErro{Erro: conciliacao.MensagemSemResultado})
	case errors.Is(err, core.ErrNotFound):
		escreverJSON(w, http.StatusNotFound, respostaErro{Erro: err.Error()})
	case errors.Is(err, core.ErrUpstream):
		escreverJSON(w, http.StatusBadGateway, respostaErro{Erro: services.MensagemParaUsuario(err)})
	default:
		appLogger.Errorf("Erro não tratado em %s %s: %v", r.Method, r.URL.Path, err)
		escreverJSON(w, http.StatusInternalServerError, respostaErro{Erro: mensagemErroInterno})
	}
}

func lerArquivo(r *http.Request, campo string) (*services.ArquivoPlanilha, func(), error) {
	f, h, err := r.FormFile(campo)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return &services.ArquivoPlanilha{Nome: h.Filename, Conteudo: f}, func() { _ = f.Close() }, nil
}

func (h *handlers) conciliar(w http.ResponseWriter, r *http.Request) {
	s := sessaoDe(r)
	r.Body = http.MaxBytesReader(w, r.Body, tamanhoMaximoUpload)
	if err := r.ParseMultipartForm(tamanhoMaximoUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		escreverJSON(w, http.StatusBadRequest, respostaErro{Erro: services.MensagemArquivosAusentes})
		return
	}
	if r.MultipartForm != nil {
		defer func(form *multipart.Form) { _ = form.RemoveAll() }(r.MultipartForm)
	}

	ref, fecharRef, err := lerArquivo(r, services.CampoArquivoReferencia)
	defer fecharRef()
	if err != nil {
		escreverJSON(w, http.StatusBadRequest, respostaErro{Erro: services.MensagemArquivosAusentes})
		return
	}
	comp, fecharComp, err := lerArquivo(r, services.CampoArquivoComparacao)
	defer fecharComp()
	if err != nil {
		escreverJSON(w, http.StatusBadRequest, respostaErro{Erro: services.MensagemArquivosAusentes})
		return
	}

	resumo, err := h.conciliacao.Conciliar(r.Context(), s, ref, comp)
	if err != nil {
		escreverErro(w, r, err)
		return
	}
	escreverJSON(w, http.StatusCreated, map[string]interface{}{
		"resumo":       resumo,
		"redirecionar": "/resultado",
	})
}

func (h *handlers) visao(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.responderVisao(w, r, conciliacao.ParametrosVisao{
		Analise:   q.Get("analise"),
		Filtro:    q.Get("filtro"),
		Aba:       q.Get("aba"),
		Ordenacao: q.Get("ordenar"),
	})
}

// responderVisao devolve a tela atual; sem resultado na sessão responde o estado vazio.
func (h *handlers) responderVisao(w http.ResponseWriter, r *http.Request, params conciliacao.ParametrosVisao) {
	v, err := h.conciliacao.Visao(r.Context(), sessaoDe(r), params)
	if errors.Is(err, core.ErrSemResultado) {
		escreverJSON(w, http.StatusOK, respostaVazia{
			Vazio:     true,
			Mensagem:  conciliacao.MensagemSemResultado,
			Acao:      "/",
			AcaoLabel: conciliacao.AcaoNovaConciliacaoUI,
		})
		return
	}
	if err != nil {
		escreverErro(w, r, err)
		return
	}
	escreverJSON(w, http.StatusOK, v)
}

func (h *handlers) alternarGrupo(w http.ResponseWriter, r *http.Request) {
	if _, err := h.conciliacao.AlternarGrupo(r.Context(), sessaoDe(r), chi.URLParam(r, "data")); err != nil {
		escreverErro(w, r, err)
		return
	}
	h.responderVisao(w, r, conciliacao.ParametrosVisao{})
}

func (h *handlers) expandirTodos(w http.ResponseWriter, r *http.Request) {
	if err := h.conciliacao.ExpandirTodos(r.Context(), sessaoDe(r)); err != nil {
		escreverErro(w, r, err)
		return
	}
	h.responderVisao(w, r, conciliacao.ParametrosVisao{})
}

func (h *handlers) recolherTodos(w http.ResponseWriter, r *http.Request) {
	if err := h.conciliacao.RecolherTodos(r.Context(), sessaoDe(r)); err != nil {
		escreverErro(w, r, err)
		return
	}
	h.responderVisao(w, r, conciliacao.ParametrosVisao{})
}

func (h *handlers) confirmar(w http.ResponseWriter, r *http.Request) {
	indice, err := strconv.Atoi(chi.URLParam(r, "indice"))
	if err != nil {
		escreverErro(w, r, core.WrapErrorf(core.ErrInvalidInput, "índice inválido %q", chi.URLParam(r, "indice")))
		return
	}
	if err := h.conciliacao.ConfirmarMatch(r.Context(), sessaoDe(r), indice); err != nil {
		escreverErro(w, r, err)
		return
	}
	h.responderVisao(w, r, conciliacao.ParametrosVisao{})
}

func parametrosRelatorio(r *http.Request) (relatorio.Escopo, relatorio.Formato, error) {
	q := r.URL.Query()
	escopo, err := relatorio.ParseEscopo(q.Get("escopo"))
	if err != nil {
		return "", "", err
	}
	formato, err := relatorio.ParseFormato(q.Get("formato"))
	if err != nil {
		return "", "", err
	}
	return escopo, formato, nil
}

func (h *handlers) exportar(w http.ResponseWriter, r *http.Request) {
	escopo, formato, err := parametrosRelatorio(r)
	if err != nil {
		escreverErro(w, r, err)
		return
	}

	var buf bytes.Buffer
	exp, err := h.conciliacao.Exportar(r.Context(), sessaoDe(r), escopo, formato, &buf)
	if err != nil {
		escreverErro(w, r, err)
		return
	}
	h.obs.RegistrarExportacao(string(escopo), string(formato))

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exp.NomeArquivo))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		appLogger.Warnf("Download de %s interrompido: %v", exp.NomeArquivo, err)
	}
}

// arquivar grava uma cópia do relatório no diretório de exportação do servidor.
func (h *handlers) arquivar(w http.ResponseWriter, r *http.Request) {
	escopo, formato, err := parametrosRelatorio(r)
	if err != nil {
		escreverErro(w, r, err)
		return
	}
	exp, err := h.conciliacao.Arquivar(r.Context(), sessaoDe(r), escopo, formato)
	if err != nil {
		escreverErro(w, r, err)
		return
	}
	h.obs.RegistrarExportacao(string(escopo), string(formato))
	escreverJSON(w, http.StatusCreated, map[string]interface{}{
		"arquivo": exp.NomeArquivo,
		"itens":   exp.Itens,
	})
}

func (h *handlers) novaConciliacao(w http.ResponseWriter, r *http.Request) {
	if err := h.conciliacao.NovaConciliacao(r.Context(), sessaoDe(r)); err != nil {
		escreverErro(w, r, err)
		return
	}
	escreverJSON(w, http.StatusOK, map[string]string{"redirecionar": "/"})
}

func (h *handlers) sair(w http.ResponseWriter, r *http.Request) {
	h.conciliacao.SairDoResultado(sessaoDe(r))
	w.WriteHeader(http.StatusNoContent)
}

// auditoriaSessao lista a trilha de auditoria da própria sessão.
func (h *handlers) auditoriaSessao(w http.ResponseWriter, r *http.Request) {
	if h.auditoria == nil {
		escreverJSON(w, http.StatusNotFound, respostaErro{Erro: "auditoria desabilitada"})
		return
	}
	q := r.URL.Query()
	filtro := repositories.FiltroAuditoria{
		Severity:  q.Get("severidade"),
		Action:    q.Get("acao"),
		SessaoRef: services.ReferenciaSessao(sessaoDe(r).ID),
	}
	for nome, destino := range map[string]**time.Time{"inicio": &filtro.Inicio, "fim": &filtro.Fim} {
		v := q.Get(nome)
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			escreverErro(w, r, core.WrapErrorf(core.ErrInvalidInput, "data inválida em %s: %q", nome, v))
			return
		}
		*destino = &t
	}
	for nome, destino := range map[string]*int{"limite": &filtro.Limit, "offset": &filtro.Offset} {
		v := q.Get(nome)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			escreverErro(w, r, core.WrapErrorf(core.ErrInvalidInput, "%s inválido: %q", nome, v))
			return
		}
		*destino = n
	}

	logs, total, err := h.auditoria.GetAuditLogs(r.Context(), filtro)
	if err != nil {
		escreverErro(w, r, err)
		return
	}
	escreverJSON(w, http.StatusOK, map[string]interface{}{"total": total, "registros": logs})
}
