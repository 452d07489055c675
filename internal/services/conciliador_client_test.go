package services_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/services"
)

func planilha(nome, conteudo string) services.ArquivoPlanilha {
	return services.ArquivoPlanilha{Nome: nome, Conteudo: strings.NewReader(conteudo)}
}

func TestExtrairMensagemErro(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail texto", `{"detail": "Planilha DE sem coluna valor"}`, "Planilha DE sem coluna valor"},
		{"detail lista", `{"detail": [{"loc": ["body"], "msg": "field required"}]}`, "field required"},
		{"lista sem msg", `{"detail": [{"loc": ["body"]}]}`, services.MensagemErroConciliacao},
		{"lista vazia", `{"detail": []}`, services.MensagemErroConciliacao},
		{"detail numérico", `{"detail": 42}`, services.MensagemErroConciliacao},
		{"sem detail", `{"erro": "x"}`, services.MensagemErroConciliacao},
		{"corpo não JSON", `<html>502</html>`, services.MensagemErroConciliacao},
		{"corpo vazio", ``, services.MensagemErroConciliacao},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ExtrairMensagemErro([]byte(tt.body)))
		})
	}
}

func TestValidarArquivos(t *testing.T) {
	ref, comp := planilha("de.xlsx", "a"), planilha("PARA.XLSX", "b")
	assert.NoError(t, services.ValidarArquivos(&ref, &comp))

	err := services.ValidarArquivos(&ref, nil)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, services.MensagemArquivosAusentes, services.MensagemParaUsuario(err))

	csv := planilha("para.csv", "b")
	err = services.ValidarArquivos(&ref, &csv)
	assert.Equal(t, services.MensagemExtensaoInvalida, services.MensagemParaUsuario(err))
}

func TestConciliadorHTTP_Sucesso(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/conciliar", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		for campo, esperado := range map[string]string{
			services.CampoArquivoReferencia: "conteudo DE",
			services.CampoArquivoComparacao: "conteudo PARA",
		} {
			f, h, err := r.FormFile(campo)
			if !assert.NoError(t, err) {
				continue
			}
			b, _ := io.ReadAll(f)
			assert.Equal(t, esperado, string(b))
			assert.True(t, strings.HasSuffix(h.Filename, ".xlsx"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resumo": {}, "resultados": []}`))
	}))
	defer srv.Close()

	cli := services.NovoConciliadorHTTP(srv.URL+"/", 5*time.Second)
	raw, err := cli.Conciliar(context.Background(), planilha("de.xlsx", "conteudo DE"), planilha("para.xlsx", "conteudo PARA"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"resumo": {}, "resultados": []}`, string(raw))
}

func TestConciliadorHTTP_ErroDoServico(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": [{"msg": "Arquivo DE vazio"}]}`))
	}))
	defer srv.Close()

	cli := services.NovoConciliadorHTTP(srv.URL, 5*time.Second)
	_, err := cli.Conciliar(context.Background(), planilha("de.xlsx", "x"), planilha("para.xlsx", "y"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUpstream)

	var erroUpstream *services.ErroUpstream
	require.True(t, errors.As(err, &erroUpstream))
	assert.Equal(t, http.StatusUnprocessableEntity, erroUpstream.Status)
	assert.Equal(t, "Arquivo DE vazio", services.MensagemParaUsuario(err))
}

func TestConciliadorHTTP_FalhaDeRede(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	cli := services.NovoConciliadorHTTP(url, time.Second)
	_, err := cli.Conciliar(context.Background(), planilha("de.xlsx", "x"), planilha("para.xlsx", "y"))
	assert.ErrorIs(t, err, core.ErrUpstream)
	assert.Equal(t, services.MensagemErroProcessar, services.MensagemParaUsuario(err))
}

func TestConciliadorHTTP_RespeitaContexto(t *testing.T) {
	liberar := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-liberar:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(liberar)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	cli := services.NovoConciliadorHTTP(srv.URL, 10*time.Second)
	_, err := cli.Conciliar(ctx, planilha("de.xlsx", "x"), planilha("para.xlsx", "y"))
	assert.ErrorIs(t, err, core.ErrUpstream)
}
