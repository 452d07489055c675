package models

import (
	"encoding/json"
	"strings"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
)

// StatusResultado é o veredito do serviço de conciliação para uma linha de referência.
type StatusResultado string

const (
	StatusOK            StatusResultado = "ok"
	StatusDivergente    StatusResultado = "divergente"
	StatusNaoEncontrado StatusResultado = "nao_encontrado"
	StatusInfoFaltante  StatusResultado = "info_faltante"
)

var statusLabels = map[StatusResultado]string{
	StatusOK:            "OK",
	StatusDivergente:    "Divergente",
	StatusNaoEncontrado: "Não encontrado",
	StatusInfoFaltante:  "Info faltante",
}

// Label retorna o rótulo de exibição. Valores desconhecidos são exibidos como vieram.
func (s StatusResultado) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valido informa se o status pertence ao conjunto fechado conhecido.
func (s StatusResultado) Valido() bool {
	_, ok := statusLabels[s]
	return ok
}

// EhProblema é verdadeiro para os status que exigem revisão.
func (s StatusResultado) EhProblema() bool {
	switch s {
	case StatusDivergente, StatusNaoEncontrado, StatusInfoFaltante:
		return true
	default:
		return false
	}
}

// RegistroItem é uma linha de razão contábil, repassada sem alteração.
type RegistroItem struct {
	Fornecedor   string  `json:"fornecedor"`
	Valor        float64 `json:"valor"`
	Data         string  `json:"data"`
	CentroCusto  string  `json:"centro_custo"`
	Departamento string  `json:"departamento"`
}

// ResultadoItem é o resultado da conciliação de uma linha DE.
// Decisões sobre o lado PARA dependem apenas de Comparacao != nil, nunca do Status.
type ResultadoItem struct {
	Status         StatusResultado `json:"status"`
	Referencia     RegistroItem    `json:"referencia"`
	Comparacao     *RegistroItem   `json:"comparacao"`
	ScoreNome      *float64        `json:"score_nome"`
	DiferencaValor *float64        `json:"diferenca_valor"`
	Alerta         string          `json:"alerta"`
}

// TemComparacao informa se existe uma linha PARA associada.
func (r ResultadoItem) TemComparacao() bool {
	return r.Comparacao != nil
}

// AlertaDiario é uma mensagem de divergência no nível do dia.
type AlertaDiario struct {
	Data     string `json:"data"`
	Mensagem string `json:"mensagem"`
}

// PorData agrega os resultados de um dia. Contagens, totais e Divergente vêm prontos do serviço.
type PorData struct {
	Data       string          `json:"data"`
	QtdRef     int             `json:"qtd_ref"`
	QtdComp    int             `json:"qtd_comp"`
	TotalRef   float64         `json:"total_ref"`
	TotalComp  float64         `json:"total_comp"`
	Divergente bool            `json:"divergente"`
	Resultados []ResultadoItem `json:"resultados"`
}

// Resumo traz os totais da conciliação.
type Resumo struct {
	TotalReferencia     int `json:"total_referencia"`
	TotalComparacao     int `json:"total_comparacao"`
	MatchesConfirmados  int `json:"matches_confirmados"`
	Divergentes         int `json:"divergentes"`
	NaoEncontrados      int `json:"nao_encontrados"`
	InfoFaltante        int `json:"info_faltante"`
	TotalAlertasDiarios int `json:"total_alertas_diarios"`
}

// AnaliseConciliacao é uma visão completa (resumo, resultados e agregados por data).
type AnaliseConciliacao struct {
	Resumo     Resumo          `json:"resumo"`
	Resultados []ResultadoItem `json:"resultados"`
	PorData    []PorData       `json:"por_data"`
}

// RespostaConciliacao é o envelope devolvido pelo serviço de conciliação.
type RespostaConciliacao struct {
	Resumo             Resumo              `json:"resumo"`
	Resultados         []ResultadoItem     `json:"resultados"`
	AlertasDiarios     []AlertaDiario      `json:"alertas_diarios"`
	PorData            []PorData           `json:"por_data"`
	AnaliseCentroCusto *AnaliseConciliacao `json:"analise_centro_custo,omitempty"`
}

// AnalisePadrao retorna a análise valor+data que acompanha o envelope.
func (r *RespostaConciliacao) AnalisePadrao() AnaliseConciliacao {
	if r == nil {
		return AnaliseConciliacao{Resultados: []ResultadoItem{}, PorData: []PorData{}}
	}
	return AnaliseConciliacao{Resumo: r.Resumo, Resultados: r.Resultados, PorData: r.PorData}
}

// respostaWire existe para detectar campos obrigatórios ausentes.
type respostaWire struct {
	Resumo             *Resumo             `json:"resumo"`
	Resultados         []ResultadoItem     `json:"resultados"`
	AlertasDiarios     []AlertaDiario      `json:"alertas_diarios"`
	PorData            []PorData           `json:"por_data"`
	AnaliseCentroCusto *AnaliseConciliacao `json:"analise_centro_custo"`
}

// DecodificarResposta faz a leitura estrutural do envelope. Entrada vazia, JSON inválido
// ou envelope sem resumo/resultados retornam ErrPayloadInvalido.
func DecodificarResposta(raw []byte) (*RespostaConciliacao, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, core.WrapErrorf(core.ErrPayloadInvalido, "conteúdo vazio")
	}
	var w respostaWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, core.WrapErrorf(core.ErrPayloadInvalido, "JSON inválido (%v)", err)
	}
	if w.Resumo == nil || w.Resultados == nil {
		return nil, core.WrapErrorf(core.ErrPayloadInvalido, "envelope sem 'resumo' ou 'resultados'")
	}

	resp := &RespostaConciliacao{
		Resumo:             *w.Resumo,
		Resultados:         w.Resultados,
		AlertasDiarios:     w.AlertasDiarios,
		PorData:            w.PorData,
		AnaliseCentroCusto: w.AnaliseCentroCusto,
	}
	resp.normalizar()
	return resp, nil
}

// Codificar serializa o envelope para o armazenamento de sessão.
func (r *RespostaConciliacao) Codificar() ([]byte, error) {
	if r == nil {
		return nil, core.WrapErrorf(core.ErrPayloadInvalido, "envelope nulo")
	}
	return json.Marshal(r)
}

// normalizar troca listas ausentes por listas vazias.
func (r *RespostaConciliacao) normalizar() {
	if r.Resultados == nil {
		r.Resultados = []ResultadoItem{}
	}
	if r.AlertasDiarios == nil {
		r.AlertasDiarios = []AlertaDiario{}
	}
	r.PorData = normalizarPorData(r.PorData)
	if a := r.AnaliseCentroCusto; a != nil {
		if a.Resultados == nil {
			a.Resultados = []ResultadoItem{}
		}
		a.PorData = normalizarPorData(a.PorData)
	}
}

func normalizarPorData(pd []PorData) []PorData {
	if pd == nil {
		return []PorData{}
	}
	for i := range pd {
		if pd[i].Resultados == nil {
			pd[i].Resultados = []ResultadoItem{}
		}
	}
	return pd
}

// ResumoConsistente confere se as contagens por status do resumo batem com a lista de resultados.
// Usado apenas para diagnóstico em log; o envelope nunca é rejeitado por isso.
func ResumoConsistente(resumo Resumo, resultados []ResultadoItem) bool {
	contagem := make(map[StatusResultado]int, len(statusLabels))
	for _, r := range resultados {
		contagem[r.Status]++
	}
	return contagem[StatusOK] == resumo.MatchesConfirmados &&
		contagem[StatusDivergente] == resumo.Divergentes &&
		contagem[StatusNaoEncontrado] == resumo.NaoEncontrados &&
		contagem[StatusInfoFaltante] == resumo.InfoFaltante
}
